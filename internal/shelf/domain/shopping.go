package domain

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ShoppingGroup is a named section of the shopping list.
type ShoppingGroup struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Order int    `json:"order" db:"sort_order"`
}

// ShoppingItem is one entry; GroupID is nil for ungrouped entries.
type ShoppingItem struct {
	ID      string  `json:"id" db:"id"`
	GroupID *string `json:"group_id" db:"group_id"`
	Name    string  `json:"name" db:"name"`
	Amount  string  `json:"amount" db:"amount"`
	Done    bool    `json:"done" db:"done"`
	Order   int     `json:"order" db:"sort_order"`
}

// ShoppingList is the whole list of one owner, saved and loaded as a unit.
type ShoppingList struct {
	Groups []ShoppingGroup `json:"groups"`
	Items  []ShoppingItem  `json:"items"`
}

// Sanitize prepares a client-submitted list for a replace-all save:
// entries with blank names are dropped, missing IDs are generated, orders
// default to the submitted position, and items pointing at a group that is
// not part of the list become ungrouped. Both slices end up sorted by order.
func (l *ShoppingList) Sanitize() {
	groups := make([]ShoppingGroup, 0, len(l.Groups))
	known := make(map[string]bool, len(l.Groups))
	for idx, g := range l.Groups {
		g.Name = strings.TrimSpace(g.Name)
		if g.Name == "" {
			continue
		}
		if g.ID == "" || known[g.ID] {
			g.ID = uuid.New().String()
		}
		if g.Order <= 0 {
			g.Order = idx
		}
		known[g.ID] = true
		groups = append(groups, g)
	}

	items := make([]ShoppingItem, 0, len(l.Items))
	seen := make(map[string]bool, len(l.Items))
	for idx, it := range l.Items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			continue
		}
		it.Amount = strings.TrimSpace(it.Amount)
		if it.ID == "" || seen[it.ID] {
			it.ID = uuid.New().String()
		}
		seen[it.ID] = true
		if it.GroupID != nil && !known[*it.GroupID] {
			it.GroupID = nil
		}
		if it.Order <= 0 {
			it.Order = idx
		}
		items = append(items, it)
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Order < groups[j].Order })
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	l.Groups, l.Items = groups, items
}
