package gcp

import (
	"context"
	"fmt"
	"html"
	"strings"

	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"

	"github.com/yungbote/ehon-backend/internal/platform/ctxutil"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type Translator interface {
	// Translate translates a single term into target (BCP-47, e.g. "ja").
	Translate(ctx context.Context, term string, target string) (string, error)
}

type translator struct {
	log *logger.Logger
	svc *translate.Service
}

// NewTranslator builds a Cloud Translation v2 client. apiKey, when set, takes precedence over creds.
func NewTranslator(ctx context.Context, log *logger.Logger, creds Credentials, apiKey string) (Translator, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	var opts []option.ClientOption
	if k := strings.TrimSpace(apiKey); k != "" {
		opts = append(opts, option.WithAPIKey(k))
	} else {
		opts = append(opts, ClientOptions(creds)...)
	}
	svc, err := translate.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("translate client: %w", err)
	}
	return &translator{log: log.With("service", "gcp.Translator"), svc: svc}, nil
}

func (t *translator) Translate(ctx context.Context, term string, target string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", nil
	}
	ctx = ctxutil.Default(ctx)
	resp, err := t.svc.Translations.List([]string{term}, target).Format("text").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("translate %q: %w", term, err)
	}
	if resp == nil || len(resp.Translations) == 0 || resp.Translations[0] == nil {
		return "", fmt.Errorf("translate %q: empty response", term)
	}
	return strings.TrimSpace(html.UnescapeString(resp.Translations[0].TranslatedText)), nil
}
