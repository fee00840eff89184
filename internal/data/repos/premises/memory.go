package premises

import (
	"context"
	"sync"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
)

type memoryRepo struct {
	mu   sync.RWMutex
	rows []storybook.Premise
}

func NewMemoryRepo(seed ...storybook.Premise) Repo {
	return &memoryRepo{rows: append([]storybook.Premise(nil), seed...)}
}

func (r *memoryRepo) List(ctx context.Context) ([]storybook.Premise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]storybook.Premise{}, r.rows...), nil
}

func (r *memoryRepo) Append(ctx context.Context, p storybook.Premise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, p)
	return nil
}
