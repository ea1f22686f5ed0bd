// Package memory holds map-backed repositories used for local runs and tests.
package memory

import (
	"context"

	"github.com/google/uuid"
)

// Transactor runs fn directly; each memory repository call is already atomic.
type Transactor struct{}

func NewTransactor() Transactor {
	return Transactor{}
}

func (Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// page slices items for a 1-based page. A non-positive limit returns everything.
func page[T any](items []T, pageNum, limit int) []T {
	if limit <= 0 {
		return items
	}
	if pageNum < 1 {
		pageNum = 1
	}
	start := (pageNum - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
