package models

import (
	"time"

	"github.com/google/uuid"
)

// PublicReport is the denormalized feed copy of a submission, written
// fire-and-forget after the primary commit. It exists so other users'
// recent activity can be listed without touching ledgers; staleness and
// write failures are tolerated.
type PublicReport struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;index" json:"submission_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	DisplayName  string    `gorm:"size:255" json:"display_name"`
	TrashClass   string    `gorm:"size:30;not null" json:"trash_class"`
	Location     string    `gorm:"size:500" json:"location"`
	ImageRef     string    `gorm:"type:text" json:"image_ref"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (PublicReport) TableName() string {
	return "public_reports"
}
