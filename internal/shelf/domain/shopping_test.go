package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingList_Sanitize(t *testing.T) {
	migros, blank, gone := "g-migros", "g-blank", "g-gone"
	l := ShoppingList{
		Groups: []ShoppingGroup{
			{ID: migros, Name: " Migros ", Order: 2},
			{ID: blank, Name: "   ", Order: 1},
			{Name: "Coop"},
		},
		Items: []ShoppingItem{
			{ID: "i1", GroupID: &migros, Name: "Milch", Amount: " 2 L ", Order: 3},
			{ID: "i2", GroupID: &blank, Name: "Brot", Order: 1},
			{GroupID: &gone, Name: "Eier", Order: 2},
			{ID: "i4", Name: "  "},
			{ID: "i1", Name: "Käse", Order: 4},
		},
	}

	l.Sanitize()

	require.Len(t, l.Groups, 2)
	assert.Equal(t, "Migros", l.Groups[0].Name)
	// missing order falls back to the submitted index; ties keep submission order
	assert.Equal(t, "Coop", l.Groups[1].Name)
	assert.Equal(t, 2, l.Groups[1].Order)
	assert.NotEmpty(t, l.Groups[1].ID)

	require.Len(t, l.Items, 4)
	names := make([]string, len(l.Items))
	for i, it := range l.Items {
		names[i] = it.Name
	}
	assert.Equal(t, []string{"Brot", "Eier", "Milch", "Käse"}, names)

	assert.Nil(t, l.Items[0].GroupID, "group with blank name was dropped")
	assert.Nil(t, l.Items[1].GroupID, "unknown group")
	assert.NotEmpty(t, l.Items[1].ID)
	require.NotNil(t, l.Items[2].GroupID)
	assert.Equal(t, migros, *l.Items[2].GroupID)
	assert.Equal(t, "2 L", l.Items[2].Amount)
	assert.Equal(t, "i1", l.Items[2].ID)
	assert.NotEqual(t, "i1", l.Items[3].ID, "duplicate IDs are regenerated")
}

func TestShoppingList_SanitizeEmpty(t *testing.T) {
	var l ShoppingList
	l.Sanitize()
	assert.NotNil(t, l.Groups)
	assert.NotNil(t, l.Items)
	assert.Empty(t, l.Items)
}
