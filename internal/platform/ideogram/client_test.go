package ideogram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/ehon-backend/internal/platform/httpx"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestGenerateImageReturnsFirstURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			t.Errorf("path: got=%q", r.URL.Path)
		}
		if r.Header.Get("Api-Key") != "k" {
			t.Errorf("missing Api-Key header")
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.ImageRequest.Prompt != "a bear by the sea" || req.ImageRequest.Model != "V_2_TURBO" {
			t.Errorf("unexpected request: %+v", req.ImageRequest)
		}
		_, _ = w.Write([]byte(`{"data":[{"url":"https://ideogram.test/a.png"}]}`))
	})

	got, err := c.GenerateImage(context.Background(), "a bear by the sea")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if got != "https://ideogram.test/a.png" {
		t.Fatalf("url: got=%q", got)
	}
}

func TestGenerateImageEmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	if _, err := c.GenerateImage(context.Background(), "p"); !errors.Is(err, ErrNoImage) {
		t.Fatalf("err: got=%v want=%v", err, ErrNoImage)
	}
}

func TestGenerateImageNonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad prompt", http.StatusUnprocessableEntity)
	})
	_, err := c.GenerateImage(context.Background(), "p")
	var se *httpx.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("err: got=%v", err)
	}
}
