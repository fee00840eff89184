package app

import (
	"context"
	"fmt"

	"github.com/yungbote/ehon-backend/internal/platform/gcp"
	"github.com/yungbote/ehon-backend/internal/platform/ideogram"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
	"github.com/yungbote/ehon-backend/internal/platform/openai"
)

type Clients struct {
	OpenAI     openai.Client
	Captioner  openai.Captioner
	Ideogram   ideogram.Client
	Vision     gcp.Vision
	Translator gcp.Translator
	// Bucket is nil unless ILLUSTRATION_BUCKET is set.
	Bucket gcp.Bucket
}

func (cfg Config) googleCredentials() gcp.Credentials {
	return gcp.Credentials{JSON: cfg.GoogleCredentialsJSON, File: cfg.GoogleCredentialsFile}
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, []func() error, error) {
	log.Info("Wiring clients...")
	var closers []func() error

	ai, err := openai.NewClient(log, openai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		Timeout:     cfg.OpenAITimeout,
	})
	if err != nil {
		return Clients{}, closers, fmt.Errorf("init openai: %w", err)
	}
	captioner, err := openai.NewCaptioner(log, ai)
	if err != nil {
		return Clients{}, closers, fmt.Errorf("init captioner: %w", err)
	}
	images, err := ideogram.NewClient(log, ideogram.Config{
		APIKey:      cfg.IdeogramAPIKey,
		BaseURL:     cfg.IdeogramBaseURL,
		Model:       cfg.IdeogramModel,
		AspectRatio: cfg.IdeogramAspectRatio,
		StyleType:   cfg.IdeogramStyle,
		Timeout:     cfg.IdeogramTimeout,
	})
	if err != nil {
		return Clients{}, closers, fmt.Errorf("init ideogram: %w", err)
	}

	creds := cfg.googleCredentials()
	vision, err := gcp.NewVision(ctx, log, creds)
	if err != nil {
		return Clients{}, closers, fmt.Errorf("init vision: %w", err)
	}
	closers = append(closers, vision.Close)

	translator, err := gcp.NewTranslator(ctx, log, creds, cfg.TranslateAPIKey)
	if err != nil {
		return Clients{}, closers, fmt.Errorf("init translate: %w", err)
	}

	var bucket gcp.Bucket
	if cfg.IllustrationBucket != "" {
		bucket, err = gcp.NewBucket(ctx, log, gcp.BucketConfig{
			Name:          cfg.IllustrationBucket,
			CDNDomain:     cfg.BucketCDNDomain,
			EmulatorHost:  cfg.StorageEmulator,
			PublicBaseURL: cfg.BucketPublicURL,
			Credentials:   creds,
		})
		if err != nil {
			return Clients{}, closers, fmt.Errorf("init bucket: %w", err)
		}
		closers = append(closers, bucket.Close)
	}

	return Clients{
		OpenAI:     ai,
		Captioner:  captioner,
		Ideogram:   images,
		Vision:     vision,
		Translator: translator,
		Bucket:     bucket,
	}, closers, nil
}
