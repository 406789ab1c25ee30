package node

import "testing"

func TestStripMarkdownFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"only prefix", "```json\n{\"a\":1}", `{"a":1}`},
		{"whitespace", "   {\"a\":1}   ", `{"a":1}`},
		{"inner backticks kept", "```json\n{\"code\":\"``` not a fence\"}\n```", `{"code":"` + "```" + ` not a fence"}`},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripMarkdownFence(tc.in); got != tc.want {
				t.Errorf("StripMarkdownFence(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"story":"x"}`, `{"story":"x"}`},
		{"leading prose", `Sure, here it is: {"story":"x"}`, `{"story":"x"}`},
		{"fenced", "```json\n{\"story\":\"x\"}\n```", `{"story":"x"}`},
		{"array", `[1,2,3]`, `[1,2,3]`},
		{"trailing prose", `{"a":1} hope that helps!`, `{"a":1}`},
		{"not json at all", "just a story about ants", "just a story about ants"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSONObject(tc.in); got != tc.want {
				t.Errorf("ExtractJSONObject(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
