package services

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/telbinapp/telbin-backend/internal/dto"
	"github.com/telbinapp/telbin-backend/internal/models"
	"gorm.io/gorm"
)

// FeedService maintains the denormalized public activity feed. Writes are
// best-effort relative to the primary submission commit and staleness is
// tolerated.
type FeedService struct {
	db *gorm.DB
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// Publish copies a committed submission into the feed. Failures are
// logged, never propagated: the primary commit already happened.
func (s *FeedService) Publish(sub *models.Submission) {
	var user models.User
	displayName := "Eco Warrior"
	if err := s.db.First(&user, "id = ?", sub.UserID).Error; err == nil && user.FullName != "" {
		displayName = user.FullName
	}

	report := models.PublicReport{
		ID:           uuid.New(),
		SubmissionID: sub.ID,
		UserID:       sub.UserID,
		DisplayName:  displayName,
		TrashClass:   sub.TrashClass,
		Location:     sub.Location,
		ImageRef:     sub.ScannedImageRef,
		CreatedAt:    sub.CreatedAt,
	}
	if err := s.db.Create(&report).Error; err != nil {
		slog.Error("failed to publish feed report", "submission_id", sub.ID, "error", err)
	}
}

// List returns recent feed entries, excluding users the viewer has
// blocked.
func (s *FeedService) List(viewerID uuid.UUID, limit int) ([]dto.FeedItemResponse, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}

	var reports []models.PublicReport
	err := s.db.
		Where("user_id NOT IN (?)",
			s.db.Model(&models.Block{}).Select("blocked_id").Where("blocker_id = ?", viewerID)).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}

	items := make([]dto.FeedItemResponse, len(reports))
	for i, r := range reports {
		items[i] = dto.FeedItemResponse{
			ID:          r.ID,
			DisplayName: r.DisplayName,
			TrashClass:  r.TrashClass,
			Location:    r.Location,
			ImageRef:    r.ImageRef,
			CreatedAt:   r.CreatedAt,
		}
	}
	return items, nil
}
