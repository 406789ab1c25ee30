package illustration

import "strings"

// Motif 插图主题，决定画面中央的示意图形
type Motif string

const (
	MotifLayers   Motif = "layers"
	MotifNetwork  Motif = "network"
	MotifDatabase Motif = "database"
	MotifGeneric  Motif = "generic"
)

// DetectMotif 根据视觉提示文本选择主题。
// 匹配按优先级进行：层级 → 网络 → 数据，均不命中时退化为通用图形。
func DetectMotif(cue string) Motif {
	lower := strings.ToLower(cue)
	switch {
	case strings.Contains(lower, "layer") || strings.Contains(lower, "osi"):
		return MotifLayers
	case strings.Contains(lower, "network"):
		return MotifNetwork
	case strings.Contains(lower, "data") || strings.Contains(lower, "database"):
		return MotifDatabase
	default:
		return MotifGeneric
	}
}
