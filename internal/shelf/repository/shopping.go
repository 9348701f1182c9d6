package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/pkg/database"
)

// ShoppingRepository stores the owner's shopping list as a whole
type ShoppingRepository struct {
	db *database.DB
}

// NewShoppingRepository creates a new shopping list repository
func NewShoppingRepository(db *database.DB) *ShoppingRepository {
	return &ShoppingRepository{db: db}
}

// Load returns the list ordered by sort order. An owner without a list gets an empty one.
func (r *ShoppingRepository) Load(ctx context.Context, ownerID string) (*domain.ShoppingList, error) {
	list := &domain.ShoppingList{Groups: []domain.ShoppingGroup{}, Items: []domain.ShoppingItem{}}

	if err := r.db.SelectContext(ctx, &list.Groups,
		`SELECT id, name, sort_order FROM shopping_groups WHERE owner_id = $1 ORDER BY sort_order, id`,
		ownerID); err != nil {
		return nil, fmt.Errorf("load shopping groups: %w", err)
	}
	if err := r.db.SelectContext(ctx, &list.Items,
		`SELECT id, group_id, name, amount, done, sort_order FROM shopping_items WHERE owner_id = $1 ORDER BY sort_order, id`,
		ownerID); err != nil {
		return nil, fmt.Errorf("load shopping items: %w", err)
	}
	return list, nil
}

// ReplaceAll swaps the stored list for list in one transaction. The list is
// expected to be sanitized; a group reference outside list.Groups is stored as NULL.
// It returns the number of stored items.
func (r *ShoppingRepository) ReplaceAll(ctx context.Context, ownerID string, list domain.ShoppingList) (int, error) {
	known := make(map[string]bool, len(list.Groups))
	for _, g := range list.Groups {
		known[g.ID] = true
	}

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shopping_items WHERE owner_id = $1`, ownerID); err != nil {
			return fmt.Errorf("delete shopping items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM shopping_groups WHERE owner_id = $1`, ownerID); err != nil {
			return fmt.Errorf("delete shopping groups: %w", err)
		}

		for _, g := range list.Groups {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO shopping_groups (owner_id, id, name, sort_order) VALUES ($1, $2, $3, $4)`,
				ownerID, g.ID, g.Name, g.Order); err != nil {
				return mapErr("insert shopping group", err)
			}
		}

		for _, it := range list.Items {
			groupID := it.GroupID
			if groupID != nil && !known[*groupID] {
				groupID = nil
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO shopping_items (owner_id, id, group_id, name, amount, done, sort_order) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				ownerID, it.ID, groupID, it.Name, it.Amount, it.Done, it.Order); err != nil {
				return mapErr("insert shopping item", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(list.Items), nil
}
