package books

import (
	"context"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
)

// Repo persists generated pages, one row per page.
type Repo interface {
	// NextIdentifier scans every stored identifier and returns max+1.
	NextIdentifier(ctx context.Context) (storybook.BookID, error)
	// AppendPage appends one row. Uniqueness of (book, page) is not checked.
	AppendPage(ctx context.Context, rec storybook.StoryRecord) error
	// FindByIdentifier returns the rows of id in stored order; empty on miss.
	FindByIdentifier(ctx context.Context, id storybook.BookID) ([]storybook.StoryRecord, error)
}
