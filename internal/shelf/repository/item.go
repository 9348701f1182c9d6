// Package repository persists shelves, settings and shopping lists in PostgreSQL.
// Every query is scoped by owner ID.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/pkg/database"
	"github.com/trackshelf/trackshelf-backend/pkg/errors"
)

const itemColumns = `id, owner_id, name, quantity, unit, category, acquired_date, expiry_date,
	image_url, position, created_at, updated_at`

// ItemRepository handles shelf item persistence
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// ListByOwner returns the owner's items in manual (position) order
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	items := []domain.Item{}
	query := `SELECT ` + itemColumns + ` FROM shelf_items WHERE owner_id = $1 ORDER BY position, created_at`
	if err := r.db.SelectContext(ctx, &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

const insertItem = `
	INSERT INTO shelf_items (id, owner_id, name, quantity, unit, category, acquired_date, expiry_date, image_url, position)
	VALUES (:id, :owner_id, :name, :quantity, :unit, :category, :acquired_date, :expiry_date, :image_url, :position)`

// ReplaceAllForOwner atomically swaps the owner's shelf for items. Positions
// follow slice order. An empty slice deletes everything.
func (r *ItemRepository) ReplaceAllForOwner(ctx context.Context, ownerID string, items []domain.Item) (int, error) {
	rows := make([]domain.Item, len(items))
	for i, it := range items {
		it.OwnerID = ownerID
		it.Position = i
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		rows[i] = it
	}

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shelf_items WHERE owner_id = $1`, ownerID); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NamedExecContext(ctx, insertItem, rows); err != nil {
			return mapErr("insert items", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Create appends an item at the end of the owner's shelf
func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	query := `
		INSERT INTO shelf_items (id, owner_id, name, quantity, unit, category, acquired_date, expiry_date, image_url, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM shelf_items WHERE owner_id = $2))
		RETURNING position, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		item.ID, item.OwnerID, item.Name, item.Quantity, item.Unit, item.Category,
		item.AcquiredDate, item.ExpiryDate, item.ImageURL,
	).Scan(&item.Position, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return mapErr("create item", err)
	}
	return nil
}

// GetByID gets one of the owner's items
func (r *ItemRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Item, error) {
	var item domain.Item
	query := `SELECT ` + itemColumns + ` FROM shelf_items WHERE owner_id = $1 AND id = $2`
	err := r.db.GetContext(ctx, &item, query, ownerID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("item")
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

// Update overwrites the editable fields. Position is kept.
func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE shelf_items
		SET name = $3, quantity = $4, unit = $5, category = $6, acquired_date = $7,
		    expiry_date = $8, image_url = $9, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2
		RETURNING position, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		item.OwnerID, item.ID, item.Name, item.Quantity, item.Unit, item.Category,
		item.AcquiredDate, item.ExpiryDate, item.ImageURL,
	).Scan(&item.Position, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NotFound("item")
	}
	if err != nil {
		return mapErr("update item", err)
	}
	return nil
}

// Delete removes one of the owner's items
func (r *ItemRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shelf_items WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		return errors.NotFound("item")
	}
	return nil
}

// ListOwners returns every owner holding at least one dated item
func (r *ItemRepository) ListOwners(ctx context.Context) ([]string, error) {
	owners := []string{}
	query := `SELECT DISTINCT owner_id FROM shelf_items WHERE expiry_date IS NOT NULL ORDER BY owner_id`
	if err := r.db.SelectContext(ctx, &owners, query); err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return owners, nil
}

// mapErr turns constraint violations into AppErrors and wraps everything else
func mapErr(op string, err error) error {
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return fmt.Errorf("%s: %w", op, err)
}
