// Package sequence hands out monotonically increasing event sequence numbers
// per partition key. Order events use the order number as the key, so
// consumers can detect gaps and reordering per order.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var ErrEmptyPartitionKey = errors.New("sequence: empty partition key")

// Store is satisfied by *pgxpool.Pool and pgx.Tx.
type Store interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// The first event of a partition gets 1.
const bumpSequenceSQL = `
	INSERT INTO event_sequence AS s (partition_key, last_sequence)
	VALUES ($1, 1)
	ON CONFLICT (partition_key)
	DO UPDATE SET last_sequence = s.last_sequence + 1, updated_at = now()
	RETURNING s.last_sequence`

type Repository struct {
	store Store
}

func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, ErrEmptyPartitionKey
	}
	var next int64
	if err := r.store.QueryRow(ctx, bumpSequenceSQL, partitionKey).Scan(&next); err != nil {
		return 0, fmt.Errorf("bump sequence for %s: %w", partitionKey, err)
	}
	return next, nil
}
