package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/telbinapp/telbin-backend/internal/config"
	"github.com/telbinapp/telbin-backend/internal/dto"
	"github.com/telbinapp/telbin-backend/internal/events"
	"github.com/telbinapp/telbin-backend/internal/models"
	"github.com/telbinapp/telbin-backend/internal/vision"
)

// VisionClient is satisfied by *vision.Client; tests substitute stubs.
type VisionClient interface {
	Classify(ctx context.Context, image []byte) (*vision.Prediction, error)
	Detect(ctx context.Context, image []byte) (int, error)
}

// ScanService gates submission persistence behind three independent
// checks (recognized class, non-empty location, cleanup proof) and only
// then commits the record and its point award as one unit.
type ScanService struct {
	cfg    *config.Config
	vision VisionClient
	ledger *LedgerService
	medals *MedalService
	feed   *FeedService
	bus    *events.Bus
}

func NewScanService(cfg *config.Config, vc VisionClient, ledger *LedgerService, medals *MedalService, feed *FeedService, bus *events.Bus) *ScanService {
	return &ScanService{cfg: cfg, vision: vc, ledger: ledger, medals: medals, feed: feed, bus: bus}
}

// Classify runs the classification check alone, for the client's
// preview-before-save flow. Nothing is persisted. A failed or
// unrecognized classification is a normal outcome, reported as class
// "unknown" with accepted=false.
func (s *ScanService) Classify(ctx context.Context, imageData string) (*dto.ClassifyResponse, error) {
	class, confidence := s.classify(ctx, imageData)
	accepted := class != models.ClassUnknown
	points := 0
	if accepted {
		points = s.cfg.PointsPerSubmission
	}
	return &dto.ClassifyResponse{
		TrashClass: class,
		Confidence: confidence,
		Accepted:   accepted,
		Points:     points,
	}, nil
}

// Submit runs all three checks and, only if every one passes, commits the
// submission. A blocked submission is a normal outcome (not an error):
// the response reports each check so the client can explain exactly what
// is missing. Persistence failures are returned as errors.
func (s *ScanService) Submit(ctx context.Context, userID uuid.UUID, req *dto.SubmitRequest) (*dto.SubmitResponse, error) {
	resp := &dto.SubmitResponse{}

	class, confidence := s.classify(ctx, req.ImageData)
	resp.TrashClass = class
	resp.Confidence = confidence
	resp.Checks.Classification = class != models.ClassUnknown

	location := strings.TrimSpace(req.Location)
	resp.Checks.Location = location != ""

	resp.Checks.Proof = s.proof(ctx, req.ProofImageData)

	if !resp.Checks.Classification || !resp.Checks.Location || !resp.Checks.Proof {
		return resp, nil
	}

	now := time.Now().UTC()
	sub := &models.Submission{
		ID:              uuid.New(),
		UserID:          userID,
		TrashClass:      class,
		Confidence:      confidence,
		Location:        location,
		ScannedImageRef: imageRef(req.ImageData),
		ProofImageRef:   imageRef(req.ProofImageData),
		PointsAwarded:   s.cfg.PointsPerSubmission,
		CreatedAt:       now,
	}

	if err := s.ledger.AppendSubmission(sub); err != nil {
		return nil, err
	}

	ledger, err := s.ledger.Get(userID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.Event{
		Type:    events.TypePointsIncreased,
		UserID:  userID,
		Message: fmt.Sprintf("You earned %d points for recycling %s", sub.PointsAwarded, class),
		Payload: map[string]interface{}{
			"delta":        sub.PointsAwarded,
			"total_points": ledger.TotalPoints,
			"trash_class":  class,
		},
	})

	newMedals, err := s.medals.Evaluate(userID)
	if err != nil {
		slog.Error("medal evaluation after submission failed", "user_id", userID, "error", err)
	}

	// Denormalized feed copy is fire-and-forget: its failure never rolls
	// back the committed submission.
	go s.feed.Publish(sub)

	resp.Accepted = true
	resp.TotalPoints = ledger.TotalPoints
	resp.Submission = &dto.SubmissionResponse{
		ID:            sub.ID,
		TrashClass:    sub.TrashClass,
		Confidence:    sub.Confidence,
		Location:      sub.Location,
		PointsAwarded: sub.PointsAwarded,
		CreatedAt:     sub.CreatedAt,
		Timestamp:     sub.CreatedAt.Format(time.RFC3339),
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

// classify decodes the image and maps every failure mode (bad payload,
// transport error, unrecognized label, low confidence) to the single
// "unknown" outcome the intake flow blocks on.
func (s *ScanService) classify(ctx context.Context, imageData string) (string, float64) {
	image, err := decodeImage(imageData)
	if err != nil {
		return models.ClassUnknown, 0
	}

	pred, err := s.vision.Classify(ctx, image)
	if err != nil {
		slog.Warn("classification call failed", "error", err)
		return models.ClassUnknown, 0
	}
	if !models.ValidTrashClass(pred.Class) || pred.Confidence < s.cfg.MinConfidence {
		return models.ClassUnknown, pred.Confidence
	}
	return pred.Class, pred.Confidence
}

// proof accepts the cleanup photo when the detector finds at least one
// object. No class matching: presence alone is sufficient.
func (s *ScanService) proof(ctx context.Context, proofData string) bool {
	image, err := decodeImage(proofData)
	if err != nil {
		return false
	}
	count, err := s.vision.Detect(ctx, image)
	if err != nil {
		slog.Warn("detection call failed", "error", err)
		return false
	}
	return count >= 1
}

func decodeImage(data string) ([]byte, error) {
	if data == "" {
		return nil, fmt.Errorf("empty image payload")
	}
	// Accept both raw base64 and data-URL payloads from the client.
	if idx := strings.Index(data, ";base64,"); idx >= 0 {
		data = data[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(data)
}

// imageRef stores the opaque reference persisted with a submission. The
// client sends embedded data URLs; they are kept as-is, matching the
// document-store behavior the mobile app expects.
func imageRef(data string) string {
	return data
}
