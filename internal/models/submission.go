package models

import (
	"time"

	"github.com/google/uuid"
)

// Recognized trash classes. A scan whose label falls outside this set (or
// whose classification failed entirely) reports ClassUnknown and is never
// persisted as a Submission.
const (
	ClassBiodegradable = "biodegradable"
	ClassCardboard     = "cardboard"
	ClassGlass         = "glass"
	ClassMetal         = "metal"
	ClassPaper         = "paper"
	ClassPlastic       = "plastic"
	ClassUnknown       = "unknown"
)

var TrashClasses = []string{
	ClassBiodegradable, ClassCardboard, ClassGlass,
	ClassMetal, ClassPaper, ClassPlastic,
}

func ValidTrashClass(class string) bool {
	for _, c := range TrashClasses {
		if c == class {
			return true
		}
	}
	return false
}

// Submission is one accepted scan + cleanup-proof cycle. Rows are created
// once and never updated; insertion order is the user's history order.
type Submission struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TrashClass      string    `gorm:"size:30;not null" json:"trash_class"`
	Confidence      float64   `gorm:"not null;check:confidence >= 0 AND confidence <= 1" json:"confidence"`
	Location        string    `gorm:"size:500;not null" json:"location"`
	ScannedImageRef string    `gorm:"type:text" json:"scanned_image_ref"`
	ProofImageRef   string    `gorm:"type:text" json:"proof_image_ref"`
	PointsAwarded   int       `gorm:"not null" json:"points_awarded"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	User            User      `gorm:"foreignKey:UserID" json:"-"`
}
