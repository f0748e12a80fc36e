package itinerary

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/trip-planner/internal/infra/llm/chatgpt"
)

const (
	defaultImageSize        = "1024x1024"
	defaultImageConcurrency = PromptCount
)

var errMissingImageURL = errors.New("image response carried no url")

// ImageClient renders one image per request.
type ImageClient interface {
	CreateImage(ctx context.Context, req chatgpt.ImageRequest) (chatgpt.ImageResponse, error)
}

// Renderer turns image prompts into URLs, one independent call per prompt.
type Renderer struct {
	cfg    Config
	client ImageClient
	logger *slog.Logger
}

// NewRenderer wires the image fan-out.
func NewRenderer(cfg Config, client ImageClient, logger *slog.Logger) *Renderer {
	return &Renderer{cfg: cfg, client: client, logger: logger.With("component", "itinerary.renderer")}
}

// Render returns one result per prompt at the same index. A failed prompt yields a
// failure marker in its slot and never affects the others.
func (r *Renderer) Render(ctx context.Context, prompts [PromptCount]string) [PromptCount]ImageResult {
	var results [PromptCount]ImageResult

	var group errgroup.Group
	group.SetLimit(r.concurrency())
	for i, prompt := range prompts {
		i, prompt := i, prompt
		group.Go(func() error {
			results[i] = r.renderOne(ctx, i, prompt)
			return nil
		})
	}
	_ = group.Wait()

	return results
}

func (r *Renderer) renderOne(ctx context.Context, index int, prompt string) ImageResult {
	url, err := r.generate(ctx, prompt)
	if err != nil {
		r.logger.Warn("image generation failed", "index", index, "error", err)
		return imageFailed(err.Error())
	}
	return ImageResult{URL: url}
}

func (r *Renderer) generate(ctx context.Context, prompt string) (string, error) {
	size := r.cfg.ImageSize
	if size == "" {
		size = defaultImageSize
	}
	resp, err := r.client.CreateImage(ctx, chatgpt.ImageRequest{
		Model:  r.cfg.ImageModel,
		Prompt: prompt,
		N:      1,
		Size:   size,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].URL) == "" {
		return "", errMissingImageURL
	}
	return resp.Data[0].URL, nil
}

func (r *Renderer) concurrency() int {
	if r.cfg.ImageConcurrency > 0 {
		return r.cfg.ImageConcurrency
	}
	return defaultImageConcurrency
}
