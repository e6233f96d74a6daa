package dto

import (
	"time"

	"github.com/google/uuid"
)

type MedalResponse struct {
	MedalID   string `json:"medal_id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	MinPoints int    `json:"min_points"`
	Unlocked  bool   `json:"unlocked"`
}

type LedgerResponse struct {
	TotalPoints  int              `json:"total_points"`
	TotalScans   int64            `json:"total_scans"`
	MostScanned  string           `json:"most_scanned,omitempty"`
	HighestMedal *MedalResponse   `json:"highest_medal,omitempty"`
	Medals       []MedalResponse  `json:"medals"`
	ClaimedCount int              `json:"claimed_count"`
	ClassCounts  map[string]int64 `json:"class_counts"`
}

type RewardResponse struct {
	RewardID            string  `json:"reward_id"`
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	Icon                string  `json:"icon"`
	SubmissionsRequired int     `json:"submissions_required"`
	BonusPoints         int     `json:"bonus_points"`
	Progress            float64 `json:"progress"`
	Claimable           bool    `json:"claimable"`
	Claimed             bool    `json:"claimed"`
}

type ClaimRewardResponse struct {
	RewardID    string          `json:"reward_id"`
	BonusPoints int             `json:"bonus_points"`
	TotalPoints int             `json:"total_points"`
	NewMedals   []MedalResponse `json:"new_medals,omitempty"`
}

type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type UpsertMedalRequest struct {
	MedalID   string `json:"medal_id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	MinPoints int    `json:"min_points"`
}

type UpsertRewardRequest struct {
	RewardID            string `json:"reward_id"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	Icon                string `json:"icon"`
	SubmissionsRequired int    `json:"submissions_required"`
	BonusPoints         int    `json:"bonus_points"`
}
