package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/telbinapp/telbin-backend/internal/dto"
	"github.com/telbinapp/telbin-backend/internal/events"
	"github.com/telbinapp/telbin-backend/internal/models"
	"gorm.io/gorm"
)

var ErrRewardNotFound = errors.New("reward not found")

// RewardService exchanges submission-count progress for one-time bonus
// awards.
type RewardService struct {
	db     *gorm.DB
	ledger *LedgerService
	medals *MedalService
	bus    *events.Bus
}

func NewRewardService(db *gorm.DB, ledger *LedgerService, medals *MedalService, bus *events.Bus) *RewardService {
	return &RewardService{db: db, ledger: ledger, medals: medals, bus: bus}
}

// List returns the catalog with per-reward progress. Claimed rewards show
// 100% regardless of later history growth.
func (s *RewardService) List(userID uuid.UUID) ([]dto.RewardResponse, error) {
	var rewards []models.Reward
	if err := s.db.Order("submissions_required ASC").Find(&rewards).Error; err != nil {
		return nil, fmt.Errorf("failed to load reward catalog: %w", err)
	}

	claimed, err := s.ledger.ClaimedRewardIDs(userID)
	if err != nil {
		return nil, err
	}
	count, err := s.ledger.SubmissionCount(userID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.RewardResponse, len(rewards))
	for i, r := range rewards {
		progress := 1.0
		if !claimed[r.RewardID] && r.SubmissionsRequired > 0 {
			progress = float64(count) / float64(r.SubmissionsRequired)
			if progress > 1.0 {
				progress = 1.0
			}
		}
		resp[i] = dto.RewardResponse{
			RewardID:            r.RewardID,
			Title:               r.Title,
			Description:         r.Description,
			Icon:                r.Icon,
			SubmissionsRequired: r.SubmissionsRequired,
			BonusPoints:         r.BonusPoints,
			Progress:            progress,
			Claimable:           !claimed[r.RewardID] && count >= int64(r.SubmissionsRequired),
			Claimed:             claimed[r.RewardID],
		}
	}
	return resp, nil
}

// Claim applies a one-time bonus. A second attempt on the same reward is
// rejected with ErrAlreadyClaimed and changes nothing. A successful claim
// may cross medal thresholds, so the unlock engine runs again afterwards.
func (s *RewardService) Claim(userID uuid.UUID, rewardID string) (*dto.ClaimRewardResponse, error) {
	var reward models.Reward
	if err := s.db.Where("reward_id = ?", rewardID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, fmt.Errorf("failed to load reward: %w", err)
	}

	if err := s.ledger.ApplyRewardClaim(userID, &reward); err != nil {
		return nil, err
	}

	ledger, err := s.ledger.Get(userID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.Event{
		Type:    events.TypeRewardClaimed,
		UserID:  userID,
		Message: fmt.Sprintf("Reward claimed: %s (+%d pts)", reward.Title, reward.BonusPoints),
		Payload: map[string]interface{}{
			"reward_id":    reward.RewardID,
			"bonus_points": reward.BonusPoints,
		},
	})
	s.bus.Publish(events.Event{
		Type:    events.TypePointsIncreased,
		UserID:  userID,
		Message: fmt.Sprintf("You earned %d bonus points", reward.BonusPoints),
		Payload: map[string]interface{}{
			"delta":        reward.BonusPoints,
			"total_points": ledger.TotalPoints,
		},
	})
	slog.Info("reward claimed", "user_id", userID, "reward_id", reward.RewardID, "bonus", reward.BonusPoints)

	newMedals, err := s.medals.Evaluate(userID)
	if err != nil {
		// The claim is committed; a failed medal pass will be retried on
		// the next point change.
		slog.Error("medal evaluation after claim failed", "user_id", userID, "error", err)
	}

	resp := &dto.ClaimRewardResponse{
		RewardID:    reward.RewardID,
		BonusPoints: reward.BonusPoints,
		TotalPoints: ledger.TotalPoints,
	}
	for _, m := range newMedals {
		resp.NewMedals = append(resp.NewMedals, dto.MedalResponse{
			MedalID:   m.MedalID,
			Name:      m.Name,
			Emoji:     m.Emoji,
			MinPoints: m.MinPoints,
			Unlocked:  true,
		})
	}
	return resp, nil
}

// Upsert creates or updates a catalog entry (admin).
func (s *RewardService) Upsert(req *dto.UpsertRewardRequest) (*models.Reward, error) {
	if req.RewardID == "" || req.Title == "" {
		return nil, errors.New("reward_id and title are required")
	}
	if req.SubmissionsRequired < 0 || req.BonusPoints < 0 {
		return nil, errors.New("submissions_required and bonus_points must be non-negative")
	}

	var reward models.Reward
	err := s.db.Where("reward_id = ?", req.RewardID).First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		reward = models.Reward{
			ID:                  uuid.New(),
			RewardID:            req.RewardID,
			Title:               req.Title,
			Description:         req.Description,
			Icon:                req.Icon,
			SubmissionsRequired: req.SubmissionsRequired,
			BonusPoints:         req.BonusPoints,
		}
		if err := s.db.Create(&reward).Error; err != nil {
			return nil, fmt.Errorf("failed to create reward: %w", err)
		}
		return &reward, nil
	} else if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":                req.Title,
		"description":          req.Description,
		"icon":                 req.Icon,
		"submissions_required": req.SubmissionsRequired,
		"bonus_points":         req.BonusPoints,
	}
	if err := s.db.Model(&reward).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update reward: %w", err)
	}
	return &reward, nil
}
