package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification is a persisted domain event the client polls for: points
// increased, medal unlocked, reward claimed. Written by the event-bus
// subscriber, never by the progression engine directly.
type Notification struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string         `gorm:"size:50;not null" json:"type"`
	Message   string         `gorm:"size:500;not null" json:"message"`
	Payload   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"payload"`
	Read      bool           `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
