// Package illustration 实现课程插图生成步骤
package illustration

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"techtales-ai-api/pkg/logger"
	"techtales-ai-api/pkg/metrics"
)

// Generator 插图生成器：对视觉提示做有界并发渲染。
// 插图步骤永远不会使流水线失败：单张渲染失败只记录日志和指标，
// 结果列表按输入顺序保留成功的图片。
type Generator struct {
	renderer  *Renderer
	maxImages int
}

func NewGenerator(renderer *Renderer, maxImages int) *Generator {
	return &Generator{renderer: renderer, maxImages: maxImages}
}

// Generate 渲染最多 maxImages 张插图，返回 base64 PNG 列表。
func (g *Generator) Generate(ctx context.Context, cues []string) []string {
	if g == nil || g.renderer == nil || len(cues) == 0 {
		return []string{}
	}

	if len(cues) > g.maxImages {
		cues = cues[:g.maxImages]
	}

	results := make([]string, len(cues))

	var eg errgroup.Group
	eg.SetLimit(g.maxImages)
	for i, cue := range cues {
		eg.Go(func() error {
			start := time.Now()
			motif := DetectMotif(cue)

			encoded, err := g.renderer.Render(cue, i)
			metrics.IllustrationRenderDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				logger.Warn(ctx, "illustration render failed, skipping",
					"cue", cue,
					"index", i,
					"error", err.Error(),
				)
				metrics.IllustrationsRendered.WithLabelValues(string(motif), "error").Inc()
				return nil
			}

			metrics.IllustrationsRendered.WithLabelValues(string(motif), "ok").Inc()
			results[i] = encoded
			return nil
		})
	}
	// goroutine 不返回错误，Wait 仅用于同步
	_ = eg.Wait()

	images := make([]string, 0, len(results))
	for _, img := range results {
		if img != "" {
			images = append(images, img)
		}
	}
	return images
}
