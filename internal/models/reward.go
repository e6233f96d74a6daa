package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reward is a catalog entry: a one-time bonus claimable once the user's
// submission count reaches SubmissionsRequired.
type Reward struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RewardID            string    `gorm:"size:50;not null;uniqueIndex" json:"reward_id"`
	Title               string    `gorm:"size:100;not null" json:"title"`
	Description         string    `gorm:"size:255" json:"description"`
	Icon                string    `gorm:"size:10" json:"icon"`
	SubmissionsRequired int       `gorm:"not null;check:submissions_required >= 0" json:"submissions_required"`
	BonusPoints         int       `gorm:"not null;check:bonus_points >= 0" json:"bonus_points"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// RewardClaim marks a claimed reward. The unique index is the double-claim
// guard: the claim transaction inserts with ON CONFLICT DO NOTHING and
// treats zero affected rows as "already claimed".
type RewardClaim struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_reward" json:"user_id"`
	RewardID    string    `gorm:"size:50;not null;uniqueIndex:idx_user_reward" json:"reward_id"`
	BonusPoints int       `gorm:"not null" json:"bonus_points"`
	CreatedAt   time.Time `json:"created_at"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (RewardClaim) TableName() string {
	return "reward_claims"
}
