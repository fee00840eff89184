package premises

import (
	"context"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
)

// Repo is the premise table: pre-written story seeds used for random sampling.
type Repo interface {
	List(ctx context.Context) ([]storybook.Premise, error)
	Append(ctx context.Context, p storybook.Premise) error
}
