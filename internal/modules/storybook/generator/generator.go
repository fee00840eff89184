package generator

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
	"github.com/yungbote/ehon-backend/internal/platform/openai"
)

const DefaultTargetAge = 5

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type Deps struct {
	Log    *logger.Logger
	AI     openai.Client
	Images ImageGenerator
	// Limiter paces illustration calls. Nil means unpaced.
	Limiter *rate.Limiter
}

type Generator struct {
	log       *logger.Logger
	ai        openai.Client
	images    ImageGenerator
	limiter   *rate.Limiter
	targetAge int
}

func New(deps Deps, targetAge int) (*Generator, error) {
	if deps.Log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.AI == nil || deps.Images == nil {
		return nil, fmt.Errorf("generator: text and image clients required")
	}
	if targetAge <= 0 {
		targetAge = DefaultTargetAge
	}
	return &Generator{
		log:       deps.Log.With("module", "generator"),
		ai:        deps.AI,
		images:    deps.Images,
		limiter:   deps.Limiter,
		targetAge: targetAge,
	}, nil
}

// Generate writes numPages pages in order. pages and illustrations always have numPages entries;
// an illustration that could not be produced is "". Only a page-text failure aborts.
func (g *Generator) Generate(ctx context.Context, seed storybook.StorySeed, numPages int) ([]string, []string, error) {
	if numPages <= 0 {
		numPages = storybook.DefaultPageCount
	}
	pages := make([]string, 0, numPages)
	illustrations := make([]string, 0, numPages)

	for page := 1; page <= numPages; page++ {
		text, err := g.ai.GenerateText(ctx, pageSystem, pagePrompt(seed, g.targetAge, page, numPages, pages))
		if err != nil {
			return nil, nil, fmt.Errorf("page %d text: %w", page, err)
		}
		text = strings.TrimSpace(text)
		pages = append(pages, text)

		url, err := g.illustrate(ctx, page, text, seed)
		if err != nil {
			return nil, nil, err
		}
		illustrations = append(illustrations, url)
	}
	return pages, illustrations, nil
}

// illustrate returns "" on any upstream failure. The error return is reserved for ctx cancellation.
func (g *Generator) illustrate(ctx context.Context, page int, text string, seed storybook.StorySeed) (string, error) {
	prompt, err := g.ai.GenerateText(ctx, promptSystem, illustrationPrompt(text, seed, g.targetAge))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		g.log.Warn("illustration prompt failed", "page", page, "error", err)
		return "", nil
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("page %d illustration pacing: %w", page, err)
		}
	}
	url, err := g.images.GenerateImage(ctx, strings.TrimSpace(prompt))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		g.log.Warn("illustration failed", "page", page, "error", err)
		return "", nil
	}
	return url, nil
}
