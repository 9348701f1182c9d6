package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackshelf/trackshelf-backend/pkg/errors"
)

func TestItem_Validate(t *testing.T) {
	c := testCatalog(t)
	valid := Item{
		Name: "Milch", Quantity: 1, Unit: "L", Category: "Milchprodukt",
		AcquiredDate: MustParseDate("10.03.2025"),
	}
	assert.NoError(t, valid.Validate(c))

	bad := Item{Name: "  ", Quantity: 0, Unit: "Fass", Category: "Dairy"}
	err := bad.Validate(c)
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Len(t, appErr.Details, 5)
	assert.Contains(t, appErr.Details, "name")
	assert.Contains(t, appErr.Details, "quantity")
	assert.Contains(t, appErr.Details, "unit")
	assert.Contains(t, appErr.Details, "category")
	assert.Contains(t, appErr.Details, "acquired_date")
}

func TestItem_Classify(t *testing.T) {
	today := MustParseDate("14.03.2025")
	item := Item{Name: "Joghurt"}

	_, ok := item.Classify(today, DefaultThresholds())
	assert.False(t, ok)

	item.ExpiryDate = ptr(MustParseDate("13.03.2025"))
	level, ok := item.Classify(today, DefaultThresholds())
	assert.True(t, ok)
	assert.Equal(t, WarnExpired, level)
}

func TestShoppingList_SanitizeDanglingGroup(t *testing.T) {
	dangling := "gone"
	dairy := "g-dairy"
	list := ShoppingList{
		Groups: []ShoppingGroup{
			{ID: dairy, Name: " Milchprodukte ", Order: 2},
			{ID: "g-empty", Name: "  "},
			{Name: "Gemüse", Order: 1},
		},
		Items: []ShoppingItem{
			{Name: "Butter", GroupID: &dairy, Order: 1},
			{Name: "", Order: 2},
			{ID: "i-1", Name: "Brot", GroupID: &dangling},
		},
	}

	list.Sanitize()

	require.Len(t, list.Groups, 2)
	assert.Equal(t, "Gemüse", list.Groups[0].Name)
	assert.NotEmpty(t, list.Groups[0].ID)
	assert.Equal(t, "Milchprodukte", list.Groups[1].Name)

	require.Len(t, list.Items, 2)
	names := []string{list.Items[0].Name, list.Items[1].Name}
	assert.ElementsMatch(t, []string{"Butter", "Brot"}, names)
	for _, it := range list.Items {
		assert.NotEmpty(t, it.ID)
		if it.Name == "Brot" {
			assert.Nil(t, it.GroupID)
		} else {
			require.NotNil(t, it.GroupID)
			assert.Equal(t, dairy, *it.GroupID)
		}
	}
}
