package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger is the per-user point counter. TotalPoints only ever grows, and
// every mutation goes through a conditional UPDATE (never read-modify-write)
// so concurrent sessions of the same user cannot lose increments.
// Submission history, owned medals and claimed rewards live in their own
// tables keyed by UserID.
type Ledger struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	TotalPoints int       `gorm:"not null;default:0;check:total_points >= 0" json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
}
