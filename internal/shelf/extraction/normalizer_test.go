package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	c, err := domain.NewCatalog(
		[]string{"Stk", "g", "kg", "ml", "L", "Packung"},
		[]string{"Obst", "Gemüse", "Milchprodukt", "Fleisch", "Sonstiges"},
		"Stk", "Sonstiges",
	)
	require.NoError(t, err)
	n, err := NewNormalizer(c)
	require.NoError(t, err)
	return n
}

func TestNewNormalizer_MissingCatalog(t *testing.T) {
	_, err := NewNormalizer(nil)
	assert.ErrorIs(t, err, domain.ErrCatalogMissing)
}

func TestNormalize_InstancesOverrideQuantity(t *testing.T) {
	n := newTestNormalizer(t)
	rec, ok := n.Normalize(Candidate{
		"name":      "Milch",
		"quantity":  1.0,
		"instances": []any{map[string]any{"x": 0.1}, map[string]any{}, map[string]any{"c": 0.9}},
	})
	require.True(t, ok)
	assert.Equal(t, 3, rec.Quantity)
	assert.Equal(t, 3, rec.InstanceCount)
	assert.Equal(t, 3, rec.QuantityMin)
	assert.Equal(t, 3, rec.QuantityMax)
	assert.Equal(t, 3, rec.QuantityBest)
}

func TestNormalizeBatch_ArrayShapedInstances(t *testing.T) {
	n := newTestNormalizer(t)
	res := n.NormalizeBatch([]byte(`{"items":[{"name":"Milch","quantity":1,"instances":[[0,0,1,1],[1,1,1,1],[2,2,1,1]]}]}`))

	require.Len(t, res.Items, 1)
	rec := res.Items[0]
	assert.Equal(t, 3, rec.InstanceCount)
	assert.Equal(t, 3, rec.Quantity)
	require.Len(t, rec.Instances, 3)
	assert.Equal(t, Instance{}, rec.Instances[0])
	assert.NoError(t, n.Schema().ValidateRecord(rec))
}

func TestNormalize_MixedInstanceEntries(t *testing.T) {
	n := newTestNormalizer(t)
	rec, ok := n.Normalize(Candidate{
		"name":      "Ei",
		"instances": []any{map[string]any{"x": 0.5, "c": "0.8"}, "box", 7.0, nil},
	})
	require.True(t, ok)
	assert.Equal(t, 4, rec.InstanceCount)
	assert.Equal(t, 4, rec.Quantity)
	assert.Equal(t, Instance{X: 0.5, C: 0.8}, rec.Instances[0])
	assert.Equal(t, Instance{}, rec.Instances[3])
}

func TestNormalize_QuantityPriority(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name      string
		candidate Candidate
		want      int
		wantMin   int
		wantMax   int
		wantBest  int
	}{
		{"best wins over quantity", Candidate{"name": "Ei", "quantity_best": 6.0, "quantity": 4.0}, 6, 6, 6, 6},
		{"plain quantity", Candidate{"name": "Ei", "quantity": 4.0}, 4, 4, 4, 4},
		{"german key", Candidate{"name": "Ei", "menge": "10"}, 10, 10, 10, 10},
		{"default one", Candidate{"name": "Ei"}, 1, 1, 1, 1},
		{"rounding", Candidate{"name": "Ei", "quantity": 2.5}, 3, 3, 3, 3},
		{"clamp zero", Candidate{"name": "Ei", "quantity": 0.0}, 1, 1, 1, 1},
		{"clamp negative", Candidate{"name": "Ei", "quantity": -4.0}, 1, 1, 1, 1},
		{"range kept and clamped", Candidate{"name": "Ei", "quantity": 5.0, "quantity_min": 0.2, "quantity_max": 7.4}, 5, 1, 7, 5},
		{"non numeric ignored", Candidate{"name": "Ei", "quantity": "viele", "quantity_best": true}, 1, 1, 1, 1},
		{"best reported with instances", Candidate{"name": "Ei", "quantity_best": 5.0, "instances": []any{map[string]any{}, map[string]any{}}}, 2, 2, 2, 5},
		{"empty instances fall through", Candidate{"name": "Ei", "quantity": 4.0, "instances": []any{}}, 4, 4, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := n.Normalize(tt.candidate)
			require.True(t, ok)
			assert.Equal(t, tt.want, rec.Quantity, "quantity")
			assert.Equal(t, tt.wantMin, rec.QuantityMin, "min")
			assert.Equal(t, tt.wantMax, rec.QuantityMax, "max")
			assert.Equal(t, tt.wantBest, rec.QuantityBest, "best")
		})
	}
}

func TestNormalize_Fields(t *testing.T) {
	n := newTestNormalizer(t)

	t.Run("empty name discards", func(t *testing.T) {
		_, ok := n.Normalize(Candidate{"name": "   ", "quantity": 5.0})
		assert.False(t, ok)
		_, ok = n.Normalize(Candidate{"quantity": 5.0})
		assert.False(t, ok)
		_, ok = n.Normalize(Candidate{"name": 42.0})
		assert.False(t, ok)
	})

	t.Run("name is trimmed", func(t *testing.T) {
		rec, ok := n.Normalize(Candidate{"name": "  Apfel \n"})
		require.True(t, ok)
		assert.Equal(t, "Apfel", rec.Name)
	})

	t.Run("invalid unit falls back", func(t *testing.T) {
		rec, _ := n.Normalize(Candidate{"name": "Joghurt", "unit": "XYZ"})
		assert.Equal(t, "Stk", rec.Unit)
		rec, _ = n.Normalize(Candidate{"name": "Joghurt", "unit": "KG"})
		assert.Equal(t, "Stk", rec.Unit)
		rec, _ = n.Normalize(Candidate{"name": "Joghurt", "einheit": "g"})
		assert.Equal(t, "g", rec.Unit)
	})

	t.Run("invalid category falls back", func(t *testing.T) {
		rec, _ := n.Normalize(Candidate{"name": "Joghurt", "category": "Dairy"})
		assert.Equal(t, "Sonstiges", rec.Category)
		rec, _ = n.Normalize(Candidate{"name": "Joghurt", "category": ""})
		assert.Equal(t, "Sonstiges", rec.Category)
		rec, _ = n.Normalize(Candidate{"name": "Joghurt", "kategorie": "Milchprodukt"})
		assert.Equal(t, "Milchprodukt", rec.Category)
	})

	t.Run("expiry must be canonical", func(t *testing.T) {
		rec, _ := n.Normalize(Candidate{"name": "Apfel", "ablaufdatum": "2025-12-14"})
		assert.Nil(t, rec.ExpiryDate)
		rec, _ = n.Normalize(Candidate{"name": "Apfel", "expiry_guess": "31.04.2025"})
		assert.Nil(t, rec.ExpiryDate)
		rec, _ = n.Normalize(Candidate{"name": "Apfel", "expiry_guess": nil})
		assert.Nil(t, rec.ExpiryDate)
		rec, _ = n.Normalize(Candidate{"name": "Apfel", "ablaufdatum": "14.12.2025"})
		require.NotNil(t, rec.ExpiryDate)
		assert.Equal(t, "14.12.2025", rec.ExpiryDate.String())
	})

	t.Run("confidence defaults and clamps", func(t *testing.T) {
		rec, _ := n.Normalize(Candidate{"name": "Apfel"})
		assert.Equal(t, 0.5, rec.Confidence)
		rec, _ = n.Normalize(Candidate{"name": "Apfel", "confidence": "hoch"})
		assert.Equal(t, 0.5, rec.Confidence)
		rec, _ = n.Normalize(Candidate{"name": "Apfel", "confidence": 1.7})
		assert.Equal(t, 1.0, rec.Confidence)
		rec, _ = n.Normalize(Candidate{"name": "Apfel", "confidence": 0.8})
		assert.Equal(t, 0.8, rec.Confidence)
	})

	t.Run("uncertain needs low confidence and catch-all", func(t *testing.T) {
		rec, _ := n.Normalize(Candidate{"name": "Ding", "confidence": 0.2})
		assert.True(t, rec.Uncertain)
		rec, _ = n.Normalize(Candidate{"name": "Apfel", "category": "Obst", "confidence": 0.2})
		assert.False(t, rec.Uncertain)
		rec, _ = n.Normalize(Candidate{"name": "Ding"})
		assert.False(t, rec.Uncertain)
	})
}

func TestNormalizeText(t *testing.T) {
	n := newTestNormalizer(t)

	t.Run("recognized", func(t *testing.T) {
		res := n.NormalizeText([]byte(`{"name":"Milch","menge":2,"einheit":"L","kategorie":"Milchprodukt","ablaufdatum":"20.03.2025"}`))
		require.True(t, res.Recognized)
		assert.Equal(t, "Milch", res.Record.Name)
		assert.Equal(t, 2, res.Record.Quantity)
		assert.Equal(t, "L", res.Record.Unit)
		assert.Equal(t, "20.03.2025", res.Record.ExpiryDate.String())
	})

	t.Run("code fence is stripped", func(t *testing.T) {
		res := n.NormalizeText([]byte("```json\n{\"name\":\"Brot\"}\n```"))
		require.True(t, res.Recognized)
		assert.Equal(t, "Brot", res.Record.Name)
	})

	t.Run("prose before json", func(t *testing.T) {
		res := n.NormalizeText([]byte(`Hier ist das Ergebnis: {"name":"Käse"}`))
		require.True(t, res.Recognized)
		assert.Equal(t, "Käse", res.Record.Name)
	})

	for name, raw := range map[string]string{
		"malformed": `{"name": "Milch"`,
		"empty":     ``,
		"array":     `[{"name":"Milch"}]`,
		"null":      `null`,
		"no name":   `{"menge": 3, "einheit": "kg"}`,
	} {
		t.Run(name+" degrades to defaults", func(t *testing.T) {
			res := n.NormalizeText([]byte(raw))
			assert.False(t, res.Recognized)
			assert.Equal(t, n.Defaults(), res.Record)
			assert.Equal(t, "", res.Record.Name)
			assert.Equal(t, 1, res.Record.Quantity)
			assert.Equal(t, "Stk", res.Record.Unit)
			assert.Equal(t, "Sonstiges", res.Record.Category)
			assert.Nil(t, res.Record.ExpiryDate)
		})
	}
}

func TestNormalizeBatch(t *testing.T) {
	n := newTestNormalizer(t)

	raw := []byte(`{
		"items": [
			{"name": "Apfel", "quantity": 1, "category": "Obst", "instances": [{"x":0,"y":0,"w":1,"h":1,"c":0.9},{"x":1,"y":0,"w":1,"h":1,"c":0.8}]},
			{"name": "", "quantity": 5},
			"garbage",
			{"name": "Unbekannt", "unit": "Stück", "confidence": 0.3}
		],
		"notes": "  Teilweise verdeckt  "
	}`)

	res := n.NormalizeBatch(raw)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.Discarded)
	assert.Equal(t, "Teilweise verdeckt", res.Notes)

	assert.Equal(t, "Apfel", res.Items[0].Name)
	assert.Equal(t, 2, res.Items[0].Quantity)
	assert.Equal(t, 0.9, res.Items[0].Instances[0].C)

	assert.Equal(t, "Stk", res.Items[1].Unit)
	assert.True(t, res.Items[1].Uncertain)
}

func TestNormalizeBatch_Degrades(t *testing.T) {
	n := newTestNormalizer(t)

	for _, raw := range []string{``, `{`, `{"items": "nope"}`, `42`, `{"notes": 7}`} {
		res := n.NormalizeBatch([]byte(raw))
		assert.NotNil(t, res.Items, raw)
		assert.Empty(t, res.Items, raw)
		assert.Equal(t, "", res.Notes, raw)
	}

	res := n.NormalizeBatch([]byte(`[{"name":"Tomate"}]`))
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Tomate", res.Items[0].Name)
}

func TestRecord_ToItem(t *testing.T) {
	n := newTestNormalizer(t)
	rec, ok := n.Normalize(Candidate{"name": "Milch", "unit": "L", "expiry_guess": "20.03.2025"})
	require.True(t, ok)

	item := rec.ToItem(domain.MustParseDate("14.03.2025"))
	assert.Equal(t, "Milch", item.Name)
	assert.Equal(t, "14.03.2025", item.AcquiredDate.String())
	assert.Equal(t, "20.03.2025", item.ExpiryDate.String())
	assert.NoError(t, item.Validate(mustCatalog(t)))
}

func mustCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	c, err := domain.NewCatalog([]string{"Stk", "L"}, []string{"Sonstiges"}, "Stk", "Sonstiges")
	require.NoError(t, err)
	return c
}
