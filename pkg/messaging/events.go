package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published on the shelf exchange. The routing key equals the type.
const (
	EventItemsReplaced   = "shelf.items.replaced"
	EventItemCreated     = "shelf.item.created"
	EventItemUpdated     = "shelf.item.updated"
	EventItemDeleted     = "shelf.item.deleted"
	EventSettingsUpdated = "shelf.settings.updated"
	EventShoppingSaved   = "shelf.shopping.saved"
	EventExpiryDigest    = "shelf.expiry.digest"
)

// Account events consumed from the auth provider's exchange
const (
	EventUserDeleted = "user.deleted"
)

// UserDeletedEvent is published by the auth provider when an account is removed
type UserDeletedEvent struct {
	UserID string `json:"user_id"`
}

// Event is the envelope of every message
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent marshals data into a new envelope stamped with at
func NewEvent(eventType, source, correlationID string, at time.Time, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     at.UTC(),
		CorrelationID: correlationID,
		Data:          raw,
	}, nil
}

// UnmarshalData decodes the payload into v
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}
