package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"flathub/internal/core"
)

// ActivityMessage mirrors a recorded activity on the wire. MessageID is
// assigned by the publisher and is the deduplication key for consumers;
// the activity id alone is not unique across server runs because the
// memory backend restarts its counters.
type ActivityMessage struct {
	MessageID   string    `json:"messageId"`
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	UserID      int64     `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	PublishedAt time.Time `json:"publishedAt"`
}

// NewActivityMessage wraps a recorded activity for publishing.
func NewActivityMessage(a core.Activity) *ActivityMessage {
	return &ActivityMessage{
		MessageID:   uuid.NewString(),
		ID:          a.ID,
		Type:        a.Type,
		Description: a.Description,
		UserID:      a.UserID,
		CreatedAt:   a.CreatedAt,
		PublishedAt: time.Now(),
	}
}

// Activity converts the message back to the domain type.
func (m *ActivityMessage) Activity() core.Activity {
	return core.Activity{
		ID:          m.ID,
		Type:        m.Type,
		Description: m.Description,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON creates a message from JSON bytes.
func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
