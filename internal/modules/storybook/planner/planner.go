package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
	"github.com/yungbote/ehon-backend/internal/platform/openai"
)

// Planner turns extracted elements into themes, questions and finally a story seed.
// Each operation is exactly one model call; output counts are not validated.
type Planner struct {
	log *logger.Logger
	ai  openai.Client
}

func New(log *logger.Logger, ai openai.Client) (*Planner, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ai == nil {
		return nil, fmt.Errorf("openai client required")
	}
	return &Planner{log: log.With("module", "planner"), ai: ai}, nil
}

func (p *Planner) ProposeThemes(ctx context.Context, el storybook.Elements) ([]string, error) {
	out, err := p.ai.GenerateText(ctx, plannerSystem, themesPrompt(el))
	if err != nil {
		return nil, fmt.Errorf("propose themes: %w", err)
	}
	themes := SplitLines(out)
	for i, th := range themes {
		themes[i] = trimQuotes(th)
	}
	p.log.Debug("themes proposed", "count", len(themes))
	return themes, nil
}

func (p *Planner) ProposeQuestions(ctx context.Context, theme string, el storybook.Elements) ([]string, error) {
	out, err := p.ai.GenerateText(ctx, plannerSystem, questionsPrompt(theme, el))
	if err != nil {
		return nil, fmt.Errorf("propose questions: %w", err)
	}
	questions := SplitLines(out)
	p.log.Debug("questions proposed", "count", len(questions))
	return questions, nil
}

func (p *Planner) BuildStorySeed(ctx context.Context, theme string, el storybook.Elements, questions []string, answers []storybook.Answer) (storybook.StorySeed, error) {
	out, err := p.ai.GenerateText(ctx, plannerSystem, seedPrompt(theme, el, questions, answers))
	if err != nil {
		return storybook.StorySeed{}, fmt.Errorf("build story seed: %w", err)
	}
	return ParseSeed(out), nil
}

// SplitLines splits model output into items, dropping blanks and leading bullets or numbering.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = stripBullet(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func stripBullet(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*•・ ")
	// "1." / "2)" / "3．"
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) {
		rest := line[i:]
		for _, sep := range []string{".", ")", "．", "）"} {
			if strings.HasPrefix(rest, sep) {
				line = rest[len(sep):]
				break
			}
		}
	}
	return strings.TrimSpace(line)
}

func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "「")
	s = strings.TrimSuffix(s, "」")
	return strings.TrimSpace(s)
}
