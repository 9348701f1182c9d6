// Package owner carries the identity of the shelf owner through a request.
// Every stored item, setting and shopping list row belongs to exactly one owner.
package owner

import (
	"context"
	"errors"
)

type contextKey string

const ownerIDKey contextKey = "owner_id"

// ErrNoOwnerInContext is returned when the middleware did not resolve an owner
var ErrNoOwnerInContext = errors.New("no owner in context")

// WithOwnerID adds the owner ID to ctx
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// OwnerID extracts the owner ID from ctx
func OwnerID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(ownerIDKey).(string)
	if !ok || id == "" {
		return "", ErrNoOwnerInContext
	}
	return id, nil
}
