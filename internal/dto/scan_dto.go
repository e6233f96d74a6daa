package dto

import (
	"time"

	"github.com/google/uuid"
)

// ClassifyRequest previews a classification without persisting anything.
// Images arrive as base64 payloads, matching the client's camera capture.
type ClassifyRequest struct {
	ImageData string `json:"image_data"`
}

type ClassifyResponse struct {
	TrashClass string  `json:"trash_class"`
	Confidence float64 `json:"confidence"`
	Accepted   bool    `json:"accepted"`
	Points     int     `json:"points"`
}

// SubmitRequest carries the full scan + cleanup-proof cycle.
type SubmitRequest struct {
	ImageData      string `json:"image_data"`
	ProofImageData string `json:"proof_image_data"`
	Location       string `json:"location"`
}

// SubmitChecks reports each gate independently so the client can tell the
// user exactly which one is missing.
type SubmitChecks struct {
	Classification bool `json:"classification"`
	Location       bool `json:"location"`
	Proof          bool `json:"proof"`
}

type SubmitResponse struct {
	Accepted    bool                `json:"accepted"`
	Checks      SubmitChecks        `json:"checks"`
	TrashClass  string              `json:"trash_class"`
	Confidence  float64             `json:"confidence"`
	Submission  *SubmissionResponse `json:"submission,omitempty"`
	TotalPoints int                 `json:"total_points,omitempty"`
	NewMedals   []MedalResponse     `json:"new_medals,omitempty"`
}

type SubmissionResponse struct {
	ID            uuid.UUID `json:"id"`
	TrashClass    string    `json:"trash_class"`
	Confidence    float64   `json:"confidence"`
	Location      string    `json:"location"`
	PointsAwarded int       `json:"points_awarded"`
	CreatedAt     time.Time `json:"created_at"`
	Timestamp     string    `json:"timestamp"`
}

type HistoryResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
}

type FeedItemResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	TrashClass  string    `json:"trash_class"`
	Location    string    `json:"location"`
	ImageRef    string    `json:"image_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
