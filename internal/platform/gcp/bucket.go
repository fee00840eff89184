package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/ehon-backend/internal/platform/ctxutil"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type BucketConfig struct {
	Name      string
	CDNDomain string
	// EmulatorHost points the client at fake-gcs-server (e.g. http://localhost:4443).
	EmulatorHost  string
	PublicBaseURL string
	Credentials   Credentials
}

// Bucket is the write side of the illustration archive.
type Bucket interface {
	Upload(ctx context.Context, key string, file io.Reader) error
	PublicURL(key string) string
	Close() error
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	name          string
	cdnDomain     string
	publicBaseURL string
}

func NewBucket(ctx context.Context, log *logger.Logger, cfg BucketConfig) (Bucket, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, fmt.Errorf("missing bucket name")
	}
	publicBaseURL, err := resolvePublicBaseURL(cfg)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if host := strings.TrimSpace(cfg.EmulatorHost); host != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(host, "/"))
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(ClientOptions(cfg.Credentials), option.WithScopes(storage.ScopeReadWrite))
	}
	stClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog := log.With("service", "gcp.Bucket")
	serviceLog.Info("Illustration archive initialized", "bucket", name, "emulator_host", cfg.EmulatorHost, "public_base_url", publicBaseURL)
	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		name:          name,
		cdnDomain:     strings.TrimSpace(cfg.CDNDomain),
		publicBaseURL: publicBaseURL,
	}, nil
}

func resolvePublicBaseURL(cfg BucketConfig) (string, error) {
	if raw := strings.TrimSpace(cfg.PublicBaseURL); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return "", fmt.Errorf("invalid public base url %q; expected absolute URL like http://localhost:4443", raw)
		}
		return strings.TrimRight(raw, "/"), nil
	}
	return strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"), nil
}

func (bs *bucketService) Upload(ctx context.Context, key string, file io.Reader) error {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(bs.name).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (bs *bucketService) PublicURL(key string) string {
	return publicObjectURL(bs.name, bs.cdnDomain, bs.publicBaseURL, key)
}

func (bs *bucketService) Close() error {
	if bs == nil || bs.storageClient == nil {
		return nil
	}
	return bs.storageClient.Close()
}

func publicObjectURL(bucket, cdnDomain, publicBaseURL, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cdnDomain, key)
	}
	if publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", publicBaseURL, bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	default:
		return ""
	}
}
