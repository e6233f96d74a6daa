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

var ErrMedalNotFound = errors.New("medal not found")

// MedalService evaluates unlock thresholds against the catalog. It never
// revokes a medal and re-running it against an unchanged ledger awards
// nothing.
type MedalService struct {
	db     *gorm.DB
	ledger *LedgerService
	bus    *events.Bus
}

func NewMedalService(db *gorm.DB, ledger *LedgerService, bus *events.Bus) *MedalService {
	return &MedalService{db: db, ledger: ledger, bus: bus}
}

// Evaluate awards every catalog medal whose threshold the user's total
// now meets (boundary inclusive). A single large point jump can cross
// several tiers; all of them are awarded in one pass. Must be called
// after every point-total change.
func (s *MedalService) Evaluate(userID uuid.UUID) ([]models.Medal, error) {
	ledger, err := s.ledger.Get(userID)
	if err != nil {
		return nil, err
	}

	var qualified []models.Medal
	if err := s.db.Where("min_points <= ?", ledger.TotalPoints).
		Order("min_points ASC").
		Find(&qualified).Error; err != nil {
		return nil, fmt.Errorf("failed to load medal catalog: %w", err)
	}

	var awarded []models.Medal
	for _, m := range qualified {
		newlyAwarded, err := s.ledger.AwardMedal(userID, m.MedalID)
		if err != nil {
			return awarded, err
		}
		if !newlyAwarded {
			continue
		}
		awarded = append(awarded, m)
		s.bus.Publish(events.Event{
			Type:    events.TypeMedalUnlocked,
			UserID:  userID,
			Message: fmt.Sprintf("Medal unlocked: %s %s", m.Emoji, m.Name),
			Payload: map[string]interface{}{
				"medal_id":   m.MedalID,
				"name":       m.Name,
				"min_points": m.MinPoints,
			},
		})
		slog.Info("medal unlocked", "user_id", userID, "medal_id", m.MedalID, "min_points", m.MinPoints)
	}
	return awarded, nil
}

// Catalog returns all medals ordered by threshold with the user's unlock
// state attached.
func (s *MedalService) Catalog(userID uuid.UUID) ([]dto.MedalResponse, error) {
	var medals []models.Medal
	if err := s.db.Order("min_points ASC").Find(&medals).Error; err != nil {
		return nil, fmt.Errorf("failed to load medal catalog: %w", err)
	}

	owned, err := s.ledger.OwnedMedalIDs(userID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.MedalResponse, len(medals))
	for i, m := range medals {
		resp[i] = dto.MedalResponse{
			MedalID:   m.MedalID,
			Name:      m.Name,
			Emoji:     m.Emoji,
			MinPoints: m.MinPoints,
			Unlocked:  owned[m.MedalID],
		}
	}
	return resp, nil
}

// Highest returns the owned medal with the greatest threshold, or nil for
// a user with no medals.
func (s *MedalService) Highest(userID uuid.UUID) (*dto.MedalResponse, error) {
	catalog, err := s.Catalog(userID)
	if err != nil {
		return nil, err
	}
	var highest *dto.MedalResponse
	for i := range catalog {
		if catalog[i].Unlocked {
			highest = &catalog[i]
		}
	}
	return highest, nil
}

// Upsert creates or updates a catalog entry (admin).
func (s *MedalService) Upsert(req *dto.UpsertMedalRequest) (*models.Medal, error) {
	if req.MedalID == "" || req.Name == "" {
		return nil, errors.New("medal_id and name are required")
	}
	if req.MinPoints < 0 {
		return nil, errors.New("min_points must be non-negative")
	}

	var medal models.Medal
	err := s.db.Where("medal_id = ?", req.MedalID).First(&medal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		medal = models.Medal{
			ID:        uuid.New(),
			MedalID:   req.MedalID,
			Name:      req.Name,
			Emoji:     req.Emoji,
			MinPoints: req.MinPoints,
		}
		if err := s.db.Create(&medal).Error; err != nil {
			return nil, fmt.Errorf("failed to create medal: %w", err)
		}
		return &medal, nil
	} else if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":       req.Name,
		"emoji":      req.Emoji,
		"min_points": req.MinPoints,
	}
	if err := s.db.Model(&medal).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update medal: %w", err)
	}
	return &medal, nil
}
