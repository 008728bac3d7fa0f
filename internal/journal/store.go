package journal

import (
	"context"

	"tradelink/internal/errors"
	"tradelink/pkg/conn"
)

// Store persists journal rows.
type Store interface {
	SaveFill(ctx context.Context, r *FillRecord) error
	SaveOrder(ctx context.Context, r *OrderRecord) error
}

// PostgresStore writes journal rows through gorm.
type PostgresStore struct {
	client *conn.Client
}

// NewPostgresStore migrates the journal tables and returns a store.
func NewPostgresStore(client *conn.Client) (*PostgresStore, error) {
	if err := client.Migrate(&FillRecord{}, &OrderRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate journal tables")
	}
	return &PostgresStore{client: client}, nil
}

func (s *PostgresStore) SaveFill(ctx context.Context, r *FillRecord) error {
	return s.client.DB().WithContext(ctx).Create(r).Error
}

func (s *PostgresStore) SaveOrder(ctx context.Context, r *OrderRecord) error {
	return s.client.DB().WithContext(ctx).Create(r).Error
}
