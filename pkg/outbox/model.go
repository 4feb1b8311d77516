package outbox

import (
	"encoding/json"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// Event is a message written in the same transaction as the state change
// it describes and delivered to Kafka later by the Relay.
type Event struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement"           json:"id"`
	Topic         string     `gorm:"size:128;not null"                  json:"topic"`
	AggregateType string     `gorm:"size:64;not null"                   json:"aggregate_type"`
	AggregateID   string     `gorm:"size:64;not null;index"             json:"aggregate_id"`
	Type          string     `gorm:"size:64;not null"                   json:"type"`
	Payload       []byte     `gorm:"not null"                           json:"payload"`
	Status        Status     `gorm:"size:16;not null;index;default:pending" json:"status"`
	Attempts      int        `gorm:"not null;default:0"                 json:"attempts"`
	LastError     string     `json:"last_error,omitempty"`
	ClaimToken    string     `gorm:"size:128;index"                     json:"-"`
	LockedUntil   *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
}

func (Event) TableName() string {
	return "outbox_events"
}

func NewEvent(topic, aggregateType, aggregateID, eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("outbox: marshal %s payload: %w", eventType, err)
	}
	return &Event{
		Topic:         topic,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Type:          eventType,
		Payload:       data,
		Status:        StatusPending,
	}, nil
}
