package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/ehon-backend/internal/platform/logger"
	"github.com/yungbote/ehon-backend/internal/platform/openai"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("IDEOGRAM_API_KEY", "ig-test")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("RECORD_STORE", "Memory")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RecordStore != StoreMemory {
		t.Fatalf("RecordStore: got=%q want=%q", cfg.RecordStore, StoreMemory)
	}
	if cfg.PageCount != 5 || cfg.LabelMinScore != 0.8 || cfg.DisplayLanguage != "ja" {
		t.Fatalf("defaults: got page=%d score=%v lang=%q", cfg.PageCount, cfg.LabelMinScore, cfg.DisplayLanguage)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("SessionTTL: got=%v want=2h", cfg.SessionTTL)
	}
	if cfg.BooksSheet != "GeneratedBooks" || cfg.PremiseRange != "DB!A:G" {
		t.Fatalf("sheet defaults: got=%q %q", cfg.BooksSheet, cfg.PremiseRange)
	}
}

func TestLoadConfigParsesLists(t *testing.T) {
	setRequired(t)
	t.Setenv("RECORD_STORE", "sqlite")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("PAGE_COUNT", "8")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins: got=%v", cfg.CORSOrigins)
	}
	if cfg.PageCount != 8 {
		t.Fatalf("PageCount: got=%d want=8", cfg.PageCount)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		RecordStore:     StoreMemory,
		DisplayLanguage: "ja",
		OpenAIAPIKey:    "k",
		IdeogramAPIKey:  "k",
		LabelMinScore:   0.8,
		PageCount:       5,
	}
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"ok", func(*Config) {}, ""},
		{"sheets without id", func(c *Config) { c.RecordStore = StoreSheets }, "SPREADSHEET_ID"},
		{"postgres without dsn", func(c *Config) { c.RecordStore = StorePostgres }, "DATABASE_DSN"},
		{"unknown store", func(c *Config) { c.RecordStore = "csv" }, "RECORD_STORE"},
		{"bad language", func(c *Config) { c.DisplayLanguage = "not a tag!" }, "DISPLAY_LANGUAGE"},
		{"missing openai key", func(c *Config) { c.OpenAIAPIKey = "" }, "OPENAI_API_KEY"},
		{"score out of range", func(c *Config) { c.LabelMinScore = 1.5 }, "LABEL_MIN_SCORE"},
		{"no pages", func(c *Config) { c.PageCount = 0 }, "PAGE_COUNT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error: got=%v want mention of %s", err, tc.want)
			}
		})
	}
}

func TestOpenAIDefaultsReachResponsesEndpoint(t *testing.T) {
	setRequired(t)
	t.Setenv("RECORD_STORE", StoreMemory)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.OpenAIBaseURL != "https://api.openai.com" {
		t.Fatalf("OpenAIBaseURL default: got=%q", cfg.OpenAIBaseURL)
	}
	if cfg.IdeogramModel != "V_2_TURBO" || cfg.IdeogramStyle != "DESIGN" {
		t.Fatalf("ideogram defaults: got model=%q style=%q", cfg.IdeogramModel, cfg.IdeogramStyle)
	}

	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"ok"}]}]}`))
	}))
	defer srv.Close()

	// The default host with the versioned form some deployments configure.
	for _, base := range []string{srv.URL, srv.URL + "/v1"} {
		c, err := openai.NewClient(logger.Nop(), openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: base,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.OpenAITimeout,
		})
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}
		if _, err := c.GenerateText(context.Background(), "sys", "user"); err != nil {
			t.Fatalf("GenerateText with base %q: %v", base, err)
		}
	}
	for _, p := range paths {
		if p != "/v1/responses" {
			t.Fatalf("requested path: got=%q want=/v1/responses", p)
		}
	}
}
