package sessions

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

const DefaultTTL = 2 * time.Hour

// Store keeps encoded session state between requests. Put refreshes the TTL.
type Store interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Put(ctx context.Context, id string, data []byte) error
	Delete(ctx context.Context, id string) error
}
