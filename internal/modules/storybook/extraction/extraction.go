package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/platform/gcp"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
	"github.com/yungbote/ehon-backend/internal/platform/nlp"
	"github.com/yungbote/ehon-backend/internal/platform/openai"
)

const (
	DefaultLabelMinScore = 0.8
	DefaultLanguage      = "ja"
)

type LabelDetector interface {
	DetectLabels(ctx context.Context, img []byte) ([]gcp.Label, error)
}

type Deps struct {
	Log        *logger.Logger
	Captioner  openai.Captioner
	Labels     LabelDetector
	Translator gcp.Translator
}

type Config struct {
	// LabelMinScore is inclusive. Nil means DefaultLabelMinScore; zero keeps every label.
	LabelMinScore *float64
	Language      string
}

type Pipeline struct {
	log        *logger.Logger
	captioner  openai.Captioner
	labels     LabelDetector
	translator gcp.Translator
	minScore   float64
	language   string
}

func New(deps Deps, cfg Config) (*Pipeline, error) {
	if deps.Log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Captioner == nil || deps.Labels == nil || deps.Translator == nil {
		return nil, fmt.Errorf("extraction: captioner, label detector and translator required")
	}
	minScore := DefaultLabelMinScore
	if cfg.LabelMinScore != nil {
		minScore = *cfg.LabelMinScore
	}
	lang := strings.TrimSpace(cfg.Language)
	if lang == "" {
		lang = DefaultLanguage
	}
	return &Pipeline{
		log:        deps.Log.With("module", "extraction"),
		captioner:  deps.Captioner,
		labels:     deps.Labels,
		translator: deps.Translator,
		minScore:   minScore,
		language:   lang,
	}, nil
}

// Extract captions, labels and translates the picture. Any failing step aborts the whole run.
func (p *Pipeline) Extract(ctx context.Context, image []byte, mimeType string) (storybook.Elements, error) {
	if len(image) == 0 {
		return storybook.Elements{}, fmt.Errorf("extract: empty image")
	}

	caption, err := p.captioner.Caption(ctx, image, mimeType)
	if err != nil {
		return storybook.Elements{}, fmt.Errorf("caption: %w", err)
	}

	raw, err := p.labels.DetectLabels(ctx, image)
	if err != nil {
		return storybook.Elements{}, fmt.Errorf("labels: %w", err)
	}
	labels := FilterLabels(raw, p.minScore)

	nouns, err := nlp.CommonNouns(caption)
	if err != nil {
		return storybook.Elements{}, fmt.Errorf("nouns: %w", err)
	}
	terms := nlp.UnionTerms(nouns, labels)

	translated := make([]string, 0, len(terms))
	for _, term := range terms {
		t, err := p.translator.Translate(ctx, term, p.language)
		if err != nil {
			return storybook.Elements{}, fmt.Errorf("translate: %w", err)
		}
		if t = strings.TrimSpace(t); t != "" {
			translated = append(translated, t)
		}
	}

	p.log.Info("picture analysed", "labels", len(labels), "terms", len(terms), "caption", caption)
	return storybook.Elements{
		Caption: caption,
		Labels:  labels,
		Nouns:   nlp.UnionTerms(translated),
	}, nil
}

// FilterLabels keeps the descriptions whose score is at least min.
func FilterLabels(labels []gcp.Label, min float64) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l.Score >= min && strings.TrimSpace(l.Description) != "" {
			out = append(out, l.Description)
		}
	}
	return out
}
