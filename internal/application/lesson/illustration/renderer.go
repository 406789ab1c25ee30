package illustration

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/fogleman/gg"
)

// 背景色按插图序号轮换
var backgroundColors = []string{
	"#4A90E2", // 蓝
	"#5CB85C", // 绿
	"#F0AD4E", // 橙
}

const textColor = "#FFFFFF"

// Renderer 教学示意图渲染器。
// 输出 512x384（可配置）的 PNG，base64 编码，不带 data URI 前缀。
type Renderer struct {
	width  int
	height int
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// Render 渲染单张示意图：标题、居中折行的提示文本、主题图形。
func (r *Renderer) Render(cue string, index int) (string, error) {
	dc := gg.NewContext(r.width, r.height)

	w := float64(r.width)
	h := float64(r.height)

	dc.SetHexColor(backgroundColors[index%len(backgroundColors)])
	dc.Clear()
	dc.SetHexColor(textColor)
	dc.SetLineWidth(2)

	// 标题
	title := fmt.Sprintf("Educational Diagram %d", index+1)
	dc.DrawStringAnchored(title, w/2, 36, 0.5, 0.5)

	// 提示文本折行居中，两侧各留 20px
	y := 80.0
	for _, line := range dc.WordWrap(cue, w-40) {
		dc.DrawStringAnchored(line, w/2, y, 0.5, 0.5)
		y += 25
	}

	cx := w / 2
	cy := h/2 + 20

	switch DetectMotif(cue) {
	case MotifLayers:
		for i := 0; i < 4; i++ {
			ly := cy + float64(i*30) - 60
			dc.DrawRectangle(cx-100, ly, 200, 25)
			dc.Stroke()
			dc.DrawString(fmt.Sprintf("Layer %d", i+1), cx-90, ly+17)
		}
	case MotifNetwork:
		for i := 0; i < 3; i++ {
			nx := cx + float64(i-1)*80
			dc.DrawCircle(nx, cy, 25)
			dc.Stroke()
			dc.DrawStringAnchored(fmt.Sprintf("N%d", i+1), nx, cy, 0.5, 0.5)
		}
	case MotifDatabase:
		dc.DrawEllipse(cx, cy-50, 40, 10)
		dc.Stroke()
		dc.DrawRectangle(cx-40, cy-50, 80, 60)
		dc.Stroke()
		dc.DrawEllipse(cx, cy+10, 40, 10)
		dc.Stroke()
	default:
		dc.DrawRectangle(cx-60, cy-40, 120, 80)
		dc.Stroke()
		dc.DrawStringAnchored("Concept", cx, cy, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
