package postgres

import (
	"context"
	"fmt"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo implements CounterRepository on PostgreSQL (usable with pool or
// tx). The upsert takes a row lock on the counter, so concurrent order
// creations for the same year serialize here and each one sees a distinct
// value.
type CounterRepo struct {
	q Querier
}

// NewCounterRepository builds the counter adapter. Pass the pool or a tx (Querier).
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// NextValue atomically increments the counter under key and returns the new
// value, creating the row at 1 on first use.
func (r *CounterRepo) NextValue(ctx context.Context, key string) (int, error) {
	query := `
		INSERT INTO counters (key, value) VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET value = counters.value + 1
		RETURNING value`
	var value int
	if err := r.q.QueryRow(ctx, query, key).Scan(&value); err != nil {
		return 0, fmt.Errorf("next counter value %s: %w", key, err)
	}
	return value, nil
}
