package repository

import "context"

// CounterRepository is the transactional key-value increment primitive behind
// order numbering. NextValue atomically increments the counter under key and
// returns the new value, creating the row at 1 on first use. Called inside
// the order-creation transaction so an aborted order never burns a number
// permanently, only within the rolled-back attempt.
type CounterRepository interface {
	NextValue(ctx context.Context, key string) (int, error)
}
