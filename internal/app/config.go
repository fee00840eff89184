package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

const (
	StoreSheets   = "sheets"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	LogMode     string `env:"LOG_MODE" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"local"`
	Version     string `env:"APP_VERSION" envDefault:"dev"`

	RecordStore     string `env:"RECORD_STORE" envDefault:"sheets"`
	DatabaseDSN     string `env:"DATABASE_DSN"`
	SpreadsheetID   string `env:"SPREADSHEET_ID"`
	BooksSheet      string `env:"BOOKS_SHEET_TITLE" envDefault:"GeneratedBooks"`
	PremiseRange    string `env:"PREMISE_RANGE" envDefault:"DB!A:G"`
	PremiseSeedFile string `env:"PREMISE_SEED_FILE"`

	GoogleCredentialsJSON string `env:"GOOGLE_CREDENTIALS_JSON"`
	GoogleCredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	TranslateAPIKey       string `env:"TRANSLATE_API_KEY"`

	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	OpenAIModel       string        `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	OpenAITemperature float64       `env:"OPENAI_TEMPERATURE" envDefault:"0.7"`
	OpenAITimeout     time.Duration `env:"OPENAI_TIMEOUT" envDefault:"120s"`

	IdeogramAPIKey      string        `env:"IDEOGRAM_API_KEY"`
	IdeogramBaseURL     string        `env:"IDEOGRAM_BASE_URL" envDefault:"https://api.ideogram.ai"`
	IdeogramModel       string        `env:"IDEOGRAM_MODEL" envDefault:"V_2_TURBO"`
	IdeogramAspectRatio string        `env:"IDEOGRAM_ASPECT_RATIO" envDefault:"ASPECT_1_1"`
	IdeogramStyle       string        `env:"IDEOGRAM_STYLE_TYPE" envDefault:"DESIGN"`
	IdeogramTimeout     time.Duration `env:"IDEOGRAM_TIMEOUT" envDefault:"120s"`

	// IllustrationRate is the sustained image requests per second. Zero disables pacing.
	IllustrationRate float64 `env:"ILLUSTRATION_RATE" envDefault:"0.5"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	IllustrationBucket string `env:"ILLUSTRATION_BUCKET"`
	BucketCDNDomain    string `env:"BUCKET_CDN_DOMAIN"`
	BucketPublicURL    string `env:"BUCKET_PUBLIC_BASE_URL"`
	StorageEmulator    string `env:"STORAGE_EMULATOR_HOST"`

	LabelMinScore     float64 `env:"LABEL_MIN_SCORE" envDefault:"0.8"`
	DisplayLanguage   string  `env:"DISPLAY_LANGUAGE" envDefault:"ja"`
	PageCount         int     `env:"PAGE_COUNT" envDefault:"5"`
	TargetAge         int     `env:"TARGET_AGE" envDefault:"5"`
	PremiseSampleSize int     `env:"PREMISE_SAMPLE_SIZE" envDefault:"3"`
	SaveSeedAsPremise bool    `env:"SAVE_SEED_AS_PREMISE" envDefault:"true"`
	MaxUploadBytes    int64   `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	MaxImageEdge      int     `env:"MAX_IMAGE_EDGE" envDefault:"1024"`

	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:","`
	MetricsEnabled bool     `env:"METRICS_ENABLED" envDefault:"false"`

	OtelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"ehon"`
	OtelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	OtelSampleRatio float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.RecordStore = strings.ToLower(strings.TrimSpace(cfg.RecordStore))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every inconsistency at once.
func (c Config) Validate() error {
	var errs []error
	switch c.RecordStore {
	case StoreSheets:
		if strings.TrimSpace(c.SpreadsheetID) == "" {
			errs = append(errs, errors.New("SPREADSHEET_ID is required when RECORD_STORE=sheets"))
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required when RECORD_STORE=postgres"))
		}
	case StoreSQLite, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("RECORD_STORE %q: want sheets, sqlite, postgres or memory", c.RecordStore))
	}
	if _, err := language.Parse(c.DisplayLanguage); err != nil {
		errs = append(errs, fmt.Errorf("DISPLAY_LANGUAGE %q: %w", c.DisplayLanguage, err))
	}
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if strings.TrimSpace(c.IdeogramAPIKey) == "" {
		errs = append(errs, errors.New("IDEOGRAM_API_KEY is required"))
	}
	if c.LabelMinScore < 0 || c.LabelMinScore > 1 {
		errs = append(errs, fmt.Errorf("LABEL_MIN_SCORE %v: want 0..1", c.LabelMinScore))
	}
	if c.PageCount <= 0 {
		errs = append(errs, fmt.Errorf("PAGE_COUNT %d: want > 0", c.PageCount))
	}
	if c.IllustrationRate < 0 {
		errs = append(errs, fmt.Errorf("ILLUSTRATION_RATE %v: want >= 0", c.IllustrationRate))
	}
	return errors.Join(errs...)
}
