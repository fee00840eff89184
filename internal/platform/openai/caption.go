package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/ehon-backend/internal/platform/ctxutil"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

// Captioner turns a picture into one short English sentence.
type Captioner interface {
	Caption(ctx context.Context, image []byte, mimeType string) (string, error)
}

type captioner struct {
	log    *logger.Logger
	client Client
}

func NewCaptioner(log *logger.Logger, client Client) (Captioner, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if client == nil {
		return nil, fmt.Errorf("openai client required")
	}
	return &captioner{
		log:    log.With("service", "Captioner"),
		client: client,
	}, nil
}

const captionSystem = "You caption children's drawings. Describe only what is visible."

const captionPrompt = "Write one plain English sentence (at most 20 words) describing this picture. " +
	"Name the things and creatures you can see. Output the sentence only."

func (c *captioner) Caption(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image required")
	}
	if strings.TrimSpace(mimeType) == "" {
		return "", fmt.Errorf("mime type required")
	}
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	raw, err := c.client.GenerateTextWithImages(ctx, captionSystem, captionPrompt, []ImageInput{
		{ImageURL: dataURL(mimeType, image), Detail: "low"},
	})
	if err != nil {
		return "", fmt.Errorf("caption: %w", err)
	}
	caption := strings.Join(strings.Fields(raw), " ")
	caption = strings.Trim(caption, `"`)
	if caption == "" {
		return "", fmt.Errorf("caption: empty response")
	}
	return caption, nil
}

func dataURL(mime string, b []byte) string {
	enc := base64.StdEncoding.EncodeToString(b)
	return fmt.Sprintf("data:%s;base64,%s", mime, enc)
}
