package events

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/telbinapp/telbin-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationWriter persists each domain event as a Notification row the
// client polls for.
type NotificationWriter struct {
	db *gorm.DB
}

func NewNotificationWriter(db *gorm.DB) *NotificationWriter {
	return &NotificationWriter{db: db}
}

func (w *NotificationWriter) Handle(e Event) {
	n := models.Notification{
		ID:      uuid.New(),
		UserID:  e.UserID,
		Type:    e.Type,
		Message: e.Message,
	}
	if len(e.Payload) > 0 {
		if b, err := json.Marshal(e.Payload); err == nil {
			n.Payload = datatypes.JSON(b)
		}
	}
	if err := w.db.Create(&n).Error; err != nil {
		slog.Error("failed to persist notification", "type", e.Type, "user_id", e.UserID, "error", err)
	}
}
