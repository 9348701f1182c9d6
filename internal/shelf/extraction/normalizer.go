package extraction

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
)

// DefaultConfidence is used when upstream reports none.
const DefaultConfidence = 0.5

// Record is a normalized candidate. Every field satisfies the item invariants
// except Name, which is empty when nothing was recognized.
type Record struct {
	Name          string       `json:"name"`
	Quantity      int          `json:"quantity"`
	QuantityMin   int          `json:"quantity_min"`
	QuantityMax   int          `json:"quantity_max"`
	QuantityBest  int          `json:"quantity_best"`
	Unit          string       `json:"unit"`
	Category      string       `json:"category"`
	ExpiryDate    *domain.Date `json:"expiry_date"`
	Confidence    float64      `json:"confidence"`
	InstanceCount int          `json:"instance_count"`
	Instances     []Instance   `json:"instances,omitempty"`
	// Uncertain flags low confidence combined with the catch-all category.
	Uncertain bool `json:"uncertain"`
}

// ToItem turns a record into a draft item acquired on the given day.
func (r Record) ToItem(acquired domain.Date) domain.Item {
	return domain.Item{
		Name:         r.Name,
		Quantity:     r.Quantity,
		Unit:         r.Unit,
		Category:     r.Category,
		AcquiredDate: acquired,
		ExpiryDate:   r.ExpiryDate,
	}
}

// Normalizer reconciles untrusted extraction output into records.
// It holds only immutable configuration and is safe for concurrent use.
type Normalizer struct {
	catalog *domain.Catalog
	schema  *Schema
}

// NewNormalizer fails with domain.ErrCatalogMissing when c is nil.
func NewNormalizer(c *domain.Catalog) (*Normalizer, error) {
	if c == nil {
		return nil, domain.ErrCatalogMissing
	}
	schema, err := NewSchema(c)
	if err != nil {
		return nil, err
	}
	return &Normalizer{catalog: c, schema: schema}, nil
}

// Schema returns the compiled schemas for records and upstream payloads.
func (n *Normalizer) Schema() *Schema { return n.schema }

// Defaults is the "nothing recognized" record.
func (n *Normalizer) Defaults() Record {
	return Record{
		Quantity:     1,
		QuantityMin:  1,
		QuantityMax:  1,
		QuantityBest: 1,
		Unit:         n.catalog.DefaultUnit(),
		Category:     n.catalog.CatchAll(),
		Confidence:   DefaultConfidence,
	}
}

// Normalize applies the per-field rules to one candidate. ok is false when the
// trimmed name is empty; the record is still fully defaulted in that case.
func (n *Normalizer) Normalize(c Candidate) (rec Record, ok bool) {
	name, _ := c.text(keysName)
	rec.Name = strings.TrimSpace(name)

	rec.Unit = n.catalog.DefaultUnit()
	if unit, found := c.text(keysUnit); found && n.catalog.HasUnit(strings.TrimSpace(unit)) {
		rec.Unit = strings.TrimSpace(unit)
	}

	rec.Category = n.catalog.CatchAll()
	if cat, found := c.text(keysCategory); found && n.catalog.HasCategory(strings.TrimSpace(cat)) {
		rec.Category = strings.TrimSpace(cat)
	}

	if raw, found := c.text(keysExpiry); found {
		if d, err := domain.ParseDate(strings.TrimSpace(raw)); err == nil {
			rec.ExpiryDate = &d
		}
	}

	rec.Instances = c.instances()
	rec.InstanceCount = len(rec.Instances)
	n.resolveQuantities(c, &rec)

	rec.Confidence = DefaultConfidence
	if conf, found := c.number(keysConf); found {
		rec.Confidence = math.Min(1, math.Max(0, conf))
	}
	rec.Uncertain = rec.Confidence < DefaultConfidence && rec.Category == n.catalog.CatchAll()

	return rec, rec.Name != ""
}

// resolveQuantities picks the final quantity: instance count when positive,
// then quantity_best, then quantity, then 1. Min, max and best default to the
// final value when absent. Every value is rounded and clamped to >= 1.
func (n *Normalizer) resolveQuantities(c Candidate, rec *Record) {
	best, hasBest := c.number(keysBest)
	plain, hasPlain := c.number(keysQuantity)

	var final float64
	switch {
	case rec.InstanceCount > 0:
		final = float64(rec.InstanceCount)
	case hasBest:
		final = best
	case hasPlain:
		final = plain
	default:
		final = 1
	}
	rec.Quantity = toCount(final)

	orFinal := func(v float64, ok bool) int {
		if !ok {
			return rec.Quantity
		}
		return toCount(v)
	}
	lo, hasLo := c.number(keysMin)
	hi, hasHi := c.number(keysMax)
	rec.QuantityMin = orFinal(lo, hasLo)
	rec.QuantityMax = orFinal(hi, hasHi)
	rec.QuantityBest = orFinal(best, hasBest)
}

func toCount(f float64) int {
	r := math.Round(f)
	if r < 1 {
		return 1
	}
	if r > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(r)
}

// TextResult is the outcome of single-item mode (typed or spoken input).
type TextResult struct {
	Record Record `json:"record"`
	// Recognized is false when the payload was malformed or carried no name.
	// Record then holds the defaults so the caller can re-prompt.
	Recognized bool `json:"recognized"`
}

// NormalizeText handles single-item payloads. Malformed JSON degrades to the
// defaults and never errors.
func (n *Normalizer) NormalizeText(raw []byte) TextResult {
	obj, ok := decodeObject(raw)
	if !ok {
		return TextResult{Record: n.Defaults()}
	}
	rec, ok := n.Normalize(Candidate(obj))
	if !ok {
		return TextResult{Record: n.Defaults()}
	}
	return TextResult{Record: rec, Recognized: true}
}

// BatchResult is the outcome of batch mode (image analysis).
type BatchResult struct {
	Items     []Record `json:"items"`
	Notes     string   `json:"notes"`
	Discarded int      `json:"discarded"`
}

// NormalizeBatch handles {"items":[...],"notes":"..."} payloads. A bare array
// of candidates is accepted too. Each candidate is normalized on its own;
// candidates without a name or that are not objects are counted as discarded.
func (n *Normalizer) NormalizeBatch(raw []byte) BatchResult {
	res := BatchResult{Items: []Record{}}

	candidates, notes := n.splitBatch(raw)
	res.Notes = notes
	for _, c := range candidates {
		obj, isObj := c.(map[string]any)
		if !isObj {
			res.Discarded++
			continue
		}
		rec, ok := n.Normalize(Candidate(obj))
		if !ok {
			res.Discarded++
			continue
		}
		res.Items = append(res.Items, rec)
	}
	return res
}

func (n *Normalizer) splitBatch(raw []byte) ([]any, string) {
	cleaned := cleanPayload(raw)
	if len(cleaned) > 0 && cleaned[0] == '[' {
		var list []any
		if err := json.Unmarshal(cleaned, &list); err == nil {
			return list, ""
		}
		return nil, ""
	}
	obj, ok := decodeObject(cleaned)
	if !ok {
		return nil, ""
	}
	c := Candidate(obj)
	notes, _ := c.text([]string{"notes"})
	return c.list([]string{"items", "products"}), strings.TrimSpace(notes)
}
