package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/ehon-backend/internal/data/repos/books"
	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/platform/httpx"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

const maxIllustrationBytes = 20 << 20

// Archive stores copies of illustrations; gcp.Bucket satisfies it.
type Archive interface {
	Upload(ctx context.Context, key string, file io.Reader) error
	PublicURL(key string) string
}

type Deps struct {
	Log   *logger.Logger
	Books books.Repo

	// Archive is optional. When set, illustrations are copied before the rows are written.
	Archive    Archive
	HTTPClient *http.Client
}

type Publisher struct {
	log     *logger.Logger
	books   books.Repo
	archive Archive
	http    *http.Client

	// mu serialises identifier assignment and the page appends that claim it.
	mu sync.Mutex
}

func New(deps Deps) (*Publisher, error) {
	if deps.Log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Books == nil {
		return nil, fmt.Errorf("books repo required")
	}
	hc := deps.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Publisher{
		log:     deps.Log.With("module", "publisher"),
		books:   deps.Books,
		archive: deps.Archive,
		http:    hc,
	}, nil
}

// Publish assigns the next identifier and appends pages 1..N.
func (p *Publisher) Publish(ctx context.Context, pages []string, illustrations []string) (storybook.Book, error) {
	if len(pages) == 0 {
		return storybook.Book{}, fmt.Errorf("publish: no pages")
	}
	if len(pages) != len(illustrations) {
		return storybook.Book{}, fmt.Errorf("publish: %d pages but %d illustrations", len(pages), len(illustrations))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.books.NextIdentifier(ctx)
	if err != nil {
		return storybook.Book{}, fmt.Errorf("next identifier: %w", err)
	}

	records := make([]storybook.StoryRecord, 0, len(pages))
	for i, text := range pages {
		rec := storybook.StoryRecord{
			BookID:          id,
			PageNumber:      i + 1,
			PageText:        text,
			IllustrationURL: p.archived(ctx, id, i+1, illustrations[i]),
		}
		if err := p.books.AppendPage(ctx, rec); err != nil {
			return storybook.Book{}, fmt.Errorf("append page %d of %s: %w", i+1, id, err)
		}
		records = append(records, rec)
	}
	p.log.Info("book published", "book_id", id, "pages", len(records))
	return storybook.BookFromRecords(id, records), nil
}

// archived returns the archive URL of url, or url itself when archiving is off or fails.
func (p *Publisher) archived(ctx context.Context, id storybook.BookID, page int, url string) string {
	if p.archive == nil || strings.TrimSpace(url) == "" {
		return url
	}
	data, _, err := httpx.Download(ctx, p.http, url, maxIllustrationBytes)
	if err != nil {
		p.log.Warn("illustration download failed; keeping source url", "book_id", id, "page", page, "error", err)
		return url
	}
	key := ArchiveKey(id, page)
	if err := p.archive.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		p.log.Warn("illustration archive failed; keeping source url", "book_id", id, "page", page, "error", err)
		return url
	}
	return p.archive.PublicURL(key)
}

func ArchiveKey(id storybook.BookID, page int) string {
	return fmt.Sprintf("books/%s/page-%d.png", id, page)
}
