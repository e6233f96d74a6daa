package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Medal is a catalog entry, read-only to the progression engine. The
// catalog is totally ordered by MinPoints; the MinPoints == 0 entry is the
// starter medal bound to every new ledger.
type Medal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MedalID   string    `gorm:"size:50;not null;uniqueIndex" json:"medal_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Emoji     string    `gorm:"size:10" json:"emoji"`
	MinPoints int       `gorm:"not null;index;check:min_points >= 0" json:"min_points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserMedal marks one unlocked medal. The unique index makes awarding an
// idempotent set-add: a duplicate concurrent award inserts zero rows.
type UserMedal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_medal" json:"user_id"`
	MedalID   string    `gorm:"size:50;not null;uniqueIndex:idx_user_medal" json:"medal_id"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

func (m *Medal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (UserMedal) TableName() string {
	return "user_medals"
}
