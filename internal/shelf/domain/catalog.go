package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCatalogMissing signals a deployment without usable unit or category tables.
var ErrCatalogMissing = errors.New("allowed-value tables missing")

// Catalog holds the ordered allowed units and categories plus their fallbacks.
// It is immutable after construction and safe for concurrent use.
type Catalog struct {
	units       []string
	categories  []string
	unitSet     map[string]struct{}
	categorySet map[string]struct{}
	defaultUnit string
	catchAll    string
}

// NewCatalog validates the tables. Blank entries are dropped, duplicates collapsed.
// Both fallbacks must be members of their table.
func NewCatalog(units, categories []string, defaultUnit, catchAll string) (*Catalog, error) {
	c := &Catalog{
		unitSet:     make(map[string]struct{}),
		categorySet: make(map[string]struct{}),
		defaultUnit: strings.TrimSpace(defaultUnit),
		catchAll:    strings.TrimSpace(catchAll),
	}
	c.units = addAll(c.unitSet, units)
	c.categories = addAll(c.categorySet, categories)

	if len(c.units) == 0 {
		return nil, fmt.Errorf("%w: no units configured", ErrCatalogMissing)
	}
	if len(c.categories) == 0 {
		return nil, fmt.Errorf("%w: no categories configured", ErrCatalogMissing)
	}
	if !c.HasUnit(c.defaultUnit) {
		return nil, fmt.Errorf("%w: default unit %q is not an allowed unit", ErrCatalogMissing, c.defaultUnit)
	}
	if !c.HasCategory(c.catchAll) {
		return nil, fmt.Errorf("%w: catch-all %q is not an allowed category", ErrCatalogMissing, c.catchAll)
	}
	return c, nil
}

func addAll(set map[string]struct{}, values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := set[v]; dup {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Units returns a copy of the allowed units in configured order.
func (c *Catalog) Units() []string { return append([]string(nil), c.units...) }

// Categories returns a copy of the allowed categories in configured order.
func (c *Catalog) Categories() []string { return append([]string(nil), c.categories...) }

func (c *Catalog) DefaultUnit() string { return c.defaultUnit }
func (c *Catalog) CatchAll() string    { return c.catchAll }

// HasUnit reports exact, case-sensitive membership.
func (c *Catalog) HasUnit(u string) bool {
	_, ok := c.unitSet[u]
	return ok
}

// HasCategory reports exact, case-sensitive membership.
func (c *Catalog) HasCategory(cat string) bool {
	_, ok := c.categorySet[cat]
	return ok
}
