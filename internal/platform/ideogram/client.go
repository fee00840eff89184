package ideogram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/ehon-backend/internal/platform/ctxutil"
	"github.com/yungbote/ehon-backend/internal/platform/httpx"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

// ErrNoImage is returned when the service answers 2xx without an image datum.
var ErrNoImage = errors.New("ideogram: no image returned")

type Client interface {
	// GenerateImage returns the URL of one generated illustration.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	AspectRatio    string
	StyleType      string
	NegativePrompt string
	Timeout        time.Duration
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing IDEOGRAM_API_KEY")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.ideogram.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "V_2_TURBO"
	}
	if cfg.AspectRatio == "" {
		cfg.AspectRatio = "ASPECT_1_1"
	}
	if cfg.StyleType == "" {
		cfg.StyleType = "DESIGN"
	}
	if cfg.NegativePrompt == "" {
		cfg.NegativePrompt = "text, watermark, logo, distorted features, unrelated elements"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &client{
		log:        log.With("service", "IdeogramClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type imageRequest struct {
	Prompt         string `json:"prompt"`
	AspectRatio    string `json:"aspect_ratio,omitempty"`
	Model          string `json:"model,omitempty"`
	StyleType      string `json:"style_type,omitempty"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

type generateRequest struct {
	ImageRequest imageRequest `json:"image_request"`
}

type generateResponse struct {
	Data []struct {
		URL    string `json:"url"`
		Prompt string `json:"prompt"`
	} `json:"data"`
}

func (c *client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("image prompt required")
	}
	ctx = ctxutil.Default(ctx)

	var resp generateResponse
	err := httpx.DoJSON(ctx, c.httpClient, httpx.Request{
		Service: "ideogram",
		URL:     c.cfg.BaseURL + "/generate",
		Headers: map[string]string{"Api-Key": c.cfg.APIKey},
		Body: generateRequest{ImageRequest: imageRequest{
			Prompt:         prompt,
			AspectRatio:    c.cfg.AspectRatio,
			Model:          c.cfg.Model,
			StyleType:      c.cfg.StyleType,
			NegativePrompt: c.cfg.NegativePrompt,
		}},
	}, &resp)
	if err != nil {
		return "", err
	}
	for _, d := range resp.Data {
		if u := strings.TrimSpace(d.URL); u != "" {
			return u, nil
		}
	}
	return "", ErrNoImage
}
