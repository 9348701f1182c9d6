package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
)

// Fixed clock used across service and handler tests: 10.03.2025 09:30 in Zurich.
var (
	Zurich    = mustLoadLocation("Europe/Zurich")
	FixedNow  = time.Date(2025, time.March, 10, 9, 30, 0, 0, Zurich)
	FixedDay  = domain.MustParseDate("10.03.2025")
	TestOwner = "owner-1"
)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 3600)
	}
	return loc
}

// FixedClock returns a clock that always reports FixedNow
func FixedClock() func() time.Time {
	return func() time.Time { return FixedNow }
}

// TestCatalog returns the default unit and category tables
func TestCatalog() *domain.Catalog {
	c, err := domain.NewCatalog(
		[]string{"Stk", "g", "kg", "ml", "L", "Packung"},
		[]string{"Obst", "Früchte", "Gemüse", "Fleisch", "Milchprodukt", "Backware", "Getreide",
			"Süßigkeit", "Nuss", "Flüssigkeit", "Konserve", "Tiefkühl", "Sonstiges"},
		"Stk", "Sonstiges",
	)
	if err != nil {
		panic(err)
	}
	return c
}

// FixtureFactory creates shelf fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{}
}

// Item returns a valid item. expiry is DD.MM.YYYY or empty for unknown.
func (f *FixtureFactory) Item(name, expiry string) domain.Item {
	f.sequence++
	it := domain.Item{
		ID:           uuid.New().String(),
		OwnerID:      TestOwner,
		Name:         name,
		Quantity:     1,
		Unit:         "Stk",
		Category:     "Sonstiges",
		AcquiredDate: FixedDay.AddDays(-7),
		Position:     f.sequence - 1,
	}
	if it.Name == "" {
		it.Name = fmt.Sprintf("Item %d", f.sequence)
	}
	if expiry != "" {
		d := domain.MustParseDate(expiry)
		it.ExpiryDate = &d
	}
	return it
}

// ShoppingList returns a list with one group holding one item plus one ungrouped item
func (f *FixtureFactory) ShoppingList() domain.ShoppingList {
	groupID := uuid.New().String()
	return domain.ShoppingList{
		Groups: []domain.ShoppingGroup{{ID: groupID, Name: "Migros", Order: 1}},
		Items: []domain.ShoppingItem{
			{ID: uuid.New().String(), GroupID: &groupID, Name: "Milch", Amount: "2 L", Order: 1},
			{ID: uuid.New().String(), Name: "Brot", Order: 2},
		},
	}
}
