package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

func responsesServer(t *testing.T, text string, inspect func(body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path: got=%q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization: got=%q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		if inspect != nil {
			inspect(body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"output": []any{
				map[string]any{
					"type": "message",
					"role": "assistant",
					"content": []any{
						map[string]any{"type": "output_text", "text": text},
					},
				},
			},
		})
	}))
}

func TestGenerateTextExtractsOutput(t *testing.T) {
	srv := responsesServer(t, "こんにちは", func(body map[string]any) {
		if body["model"] != "gpt-test" {
			t.Errorf("model: got=%v", body["model"])
		}
	})
	defer srv.Close()

	c, err := NewClient(logger.Nop(), Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := c.GenerateText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "こんにちは" {
		t.Fatalf("text: got=%q", got)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestCaptionSendsDataURL(t *testing.T) {
	srv := responsesServer(t, "  A cat   under a tree. ", func(body map[string]any) {
		input, _ := body["input"].([]any)
		if len(input) != 2 {
			t.Errorf("input messages: got=%d", len(input))
			return
		}
		user, _ := input[1].(map[string]any)
		content, _ := user["content"].([]any)
		if len(content) != 2 {
			t.Errorf("user content parts: got=%d", len(content))
			return
		}
		img, _ := content[1].(map[string]any)
		url, _ := img["image_url"].(string)
		if !strings.HasPrefix(url, "data:image/png;base64,") {
			t.Errorf("image_url: got=%q", url)
		}
	})
	defer srv.Close()

	c, err := NewClient(logger.Nop(), Config{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	cap, err := NewCaptioner(logger.Nop(), c)
	if err != nil {
		t.Fatalf("NewCaptioner: %v", err)
	}
	got, err := cap.Caption(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	if got != "A cat under a tree." {
		t.Fatalf("caption: got=%q", got)
	}
}

func TestBaseURLWithVersionSuffix(t *testing.T) {
	srv := responsesServer(t, "ok", nil)
	defer srv.Close()

	for _, base := range []string{srv.URL, srv.URL + "/", srv.URL + "/v1", srv.URL + "/v1/"} {
		c, err := NewClient(logger.Nop(), Config{APIKey: "test-key", BaseURL: base})
		if err != nil {
			t.Fatalf("NewClient(%q): %v", base, err)
		}
		if _, err := c.GenerateText(context.Background(), "sys", "user"); err != nil {
			t.Fatalf("GenerateText with base %q: %v", base, err)
		}
	}
}
