package domain

import (
	"strings"
	"time"

	"github.com/trackshelf/trackshelf-backend/pkg/errors"
)

// Item is one tracked product on an owner's shelf.
// WarnLevel is never stored; see Item.Classify.
type Item struct {
	ID           string    `json:"id" db:"id"`
	OwnerID      string    `json:"-" db:"owner_id"`
	Name         string    `json:"name" db:"name"`
	Quantity     int       `json:"quantity" db:"quantity"`
	Unit         string    `json:"unit" db:"unit"`
	Category     string    `json:"category" db:"category"`
	AcquiredDate Date      `json:"acquired_date" db:"acquired_date"`
	ExpiryDate   *Date     `json:"expiry_date" db:"expiry_date"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	Position     int       `json:"position" db:"position"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Normalize trims the free-text fields in place.
func (i *Item) Normalize() {
	i.Name = strings.TrimSpace(i.Name)
	i.Unit = strings.TrimSpace(i.Unit)
	i.Category = strings.TrimSpace(i.Category)
	i.ImageURL = strings.TrimSpace(i.ImageURL)
}

// Validate checks the stored-item invariants against the catalog.
// The result is a Validation AppError keyed by JSON field name.
func (i *Item) Validate(c *Catalog) error {
	details := map[string]string{}
	if strings.TrimSpace(i.Name) == "" {
		details["name"] = "must not be empty"
	}
	if i.Quantity < 1 {
		details["quantity"] = "must be at least 1"
	}
	if !c.HasUnit(i.Unit) {
		details["unit"] = "is not an allowed unit"
	}
	if !c.HasCategory(i.Category) {
		details["category"] = "is not an allowed category"
	}
	if i.AcquiredDate.IsZero() {
		details["acquired_date"] = "is required"
	}
	if i.ExpiryDate != nil && i.ExpiryDate.IsZero() {
		details["expiry_date"] = "is invalid"
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// Classify derives the warn level. ok is false when the expiry is unknown.
func (i *Item) Classify(today Date, th Thresholds) (level WarnLevel, ok bool) {
	if i.ExpiryDate == nil || i.ExpiryDate.IsZero() {
		return "", false
	}
	return Classify(*i.ExpiryDate, today, th), true
}
