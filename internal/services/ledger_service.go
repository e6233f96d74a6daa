package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/telbinapp/telbin-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrLedgerNotFound = errors.New("ledger not found")
	ErrAlreadyClaimed = errors.New("reward already claimed")
	ErrNotEligible    = errors.New("not enough submissions to claim this reward")
	ErrStarterMedal   = errors.New("starter medal missing from catalog")
)

// LedgerService owns the mutation primitives for per-user progression
// state. Every mutation is a conditional update (column increment or
// unique-index insert), never a read-modify-write of whole rows, so
// concurrent sessions of the same user cannot lose or double-apply
// updates.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// CreateForUser initializes a zero-point ledger bound to the starter
// (lowest-tier) medal. Runs inside the caller's transaction so a user row
// never exists without its ledger.
func (s *LedgerService) CreateForUser(tx *gorm.DB, userID uuid.UUID) error {
	var starter models.Medal
	if err := tx.Where("min_points = 0").Order("created_at ASC").First(&starter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStarterMedal
		}
		return fmt.Errorf("failed to look up starter medal: %w", err)
	}

	ledger := models.Ledger{
		ID:          uuid.New(),
		UserID:      userID,
		TotalPoints: 0,
	}
	if err := tx.Create(&ledger).Error; err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}

	owned := models.UserMedal{
		ID:      uuid.New(),
		UserID:  userID,
		MedalID: starter.MedalID,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&owned).Error; err != nil {
		return fmt.Errorf("failed to bind starter medal: %w", err)
	}
	return nil
}

// Get returns the ledger row for a user.
func (s *LedgerService) Get(userID uuid.UUID) (*models.Ledger, error) {
	var ledger models.Ledger
	if err := s.db.Where("user_id = ?", userID).First(&ledger).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return &ledger, nil
}

// SubmissionCount returns the length of the user's history.
func (s *LedgerService) SubmissionCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Submission{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// History returns the user's submissions newest first.
func (s *LedgerService) History(userID uuid.UUID, limit, offset int) ([]models.Submission, int64, error) {
	var subs []models.Submission
	var total int64

	if err := s.db.Model(&models.Submission{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&subs).Error
	return subs, total, err
}

// ClassCounts aggregates submissions per trash class.
func (s *LedgerService) ClassCounts(userID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		TrashClass string
		Count      int64
	}
	err := s.db.Model(&models.Submission{}).
		Select("trash_class, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("trash_class").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.TrashClass] = r.Count
	}
	return counts, nil
}

// AppendSubmission persists the record and applies its point award as one
// transaction: a submission recorded but not reflected in the total (or
// vice versa) cannot happen.
func (s *LedgerService) AppendSubmission(sub *models.Submission) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return fmt.Errorf("failed to persist submission: %w", err)
		}

		result := tx.Model(&models.Ledger{}).
			Where("user_id = ?", sub.UserID).
			UpdateColumn("total_points", gorm.Expr("total_points + ?", sub.PointsAwarded))
		if result.Error != nil {
			return fmt.Errorf("failed to apply point award: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrLedgerNotFound
		}
		return nil
	})
}

// ApplyRewardClaim atomically marks the reward claimed and applies its
// bonus. The already-claimed check is the insert itself (unique index +
// ON CONFLICT DO NOTHING), not a separate prior read, so a duplicate
// concurrent claim inserts zero rows and gets ErrAlreadyClaimed with no
// side effects. Eligibility is verified inside the same transaction.
func (s *LedgerService) ApplyRewardClaim(userID uuid.UUID, reward *models.Reward) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		claim := models.RewardClaim{
			ID:          uuid.New(),
			UserID:      userID,
			RewardID:    reward.RewardID,
			BonusPoints: reward.BonusPoints,
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&claim)
		if result.Error != nil {
			return fmt.Errorf("failed to record claim: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}

		var count int64
		if err := tx.Model(&models.Submission{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count submissions: %w", err)
		}
		if count < int64(reward.SubmissionsRequired) {
			return ErrNotEligible
		}

		update := tx.Model(&models.Ledger{}).
			Where("user_id = ?", userID).
			UpdateColumn("total_points", gorm.Expr("total_points + ?", reward.BonusPoints))
		if update.Error != nil {
			return fmt.Errorf("failed to apply bonus: %w", update.Error)
		}
		if update.RowsAffected == 0 {
			return ErrLedgerNotFound
		}
		return nil
	})
}

// AwardMedal is an idempotent set-add: awarding an owned medal inserts
// zero rows and reports awarded=false.
func (s *LedgerService) AwardMedal(userID uuid.UUID, medalID string) (bool, error) {
	owned := models.UserMedal{
		ID:      uuid.New(),
		UserID:  userID,
		MedalID: medalID,
	}
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&owned)
	if result.Error != nil {
		return false, fmt.Errorf("failed to award medal: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// OwnedMedalIDs returns the set of medal IDs the user has unlocked.
func (s *LedgerService) OwnedMedalIDs(userID uuid.UUID) (map[string]bool, error) {
	var rows []models.UserMedal
	if err := s.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(rows))
	for _, r := range rows {
		owned[r.MedalID] = true
	}
	return owned, nil
}

// ClaimedRewardIDs returns the set of reward IDs the user has claimed.
func (s *LedgerService) ClaimedRewardIDs(userID uuid.UUID) (map[string]bool, error) {
	var rows []models.RewardClaim
	if err := s.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	claimed := make(map[string]bool, len(rows))
	for _, r := range rows {
		claimed[r.RewardID] = true
	}
	return claimed, nil
}
