package books

import (
	"context"
	"sync"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
)

type memoryRepo struct {
	mu   sync.RWMutex
	rows []storybook.StoryRecord
}

func NewMemoryRepo(seed ...storybook.StoryRecord) Repo {
	return &memoryRepo{rows: append([]storybook.StoryRecord(nil), seed...)}
}

func (r *memoryRepo) NextIdentifier(ctx context.Context) (storybook.BookID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.rows))
	for _, row := range r.rows {
		ids = append(ids, row.BookID.String())
	}
	return storybook.NextBookID(ids), nil
}

func (r *memoryRepo) AppendPage(ctx context.Context, rec storybook.StoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rec)
	return nil
}

func (r *memoryRepo) FindByIdentifier(ctx context.Context, id storybook.BookID) ([]storybook.StoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []storybook.StoryRecord{}
	for _, row := range r.rows {
		if row.BookID == id {
			out = append(out, row)
		}
	}
	return out, nil
}
