package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trackshelf/trackshelf-backend/pkg/database"
)

// OwnerRepository removes everything stored for an owner
type OwnerRepository struct {
	db *database.DB
}

// NewOwnerRepository creates a new owner repository
func NewOwnerRepository(db *database.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

// Shopping items go before their groups because of the foreign key.
var purgeTables = []string{"shopping_items", "shopping_groups", "shelf_items", "user_settings"}

// Purge deletes the owner's shelf, settings and shopping list in one
// transaction. Purging an unknown owner is not an error.
func (r *OwnerRepository) Purge(ctx context.Context, ownerID string) (int64, error) {
	var removed int64
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, table := range purgeTables {
			res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE owner_id = $1`, ownerID)
			if err != nil {
				return fmt.Errorf("purge %s: %w", table, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("purge %s: %w", table, err)
			}
			removed += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
