package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/telbinapp/telbin-backend/internal/dto"
	"github.com/telbinapp/telbin-backend/internal/middleware"
	"github.com/telbinapp/telbin-backend/internal/services"
)

type ScanHandler struct {
	scanService   *services.ScanService
	ledgerService *services.LedgerService
}

func NewScanHandler(scanService *services.ScanService, ledgerService *services.LedgerService) *ScanHandler {
	return &ScanHandler{scanService: scanService, ledgerService: ledgerService}
}

// Classify previews the classification verdict without persisting.
func (h *ScanHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if req.ImageData == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "image_data is required",
		})
	}

	resp, err := h.scanService.Classify(c.UserContext(), req.ImageData)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Classification failed",
		})
	}

	return c.JSON(resp)
}

// Submit runs the full intake gate and commits the submission when every
// check passes. A blocked submission returns 200 with accepted=false.
func (h *ScanHandler) Submit(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.scanService.Submit(c.UserContext(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save submission",
		})
	}

	return c.JSON(resp)
}

func (h *ScanHandler) History(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	subs, total, err := h.ledgerService.History(userID, limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch history",
		})
	}

	resp := dto.HistoryResponse{
		Submissions: make([]dto.SubmissionResponse, len(subs)),
		Total:       total,
		Page:        page,
		Limit:       limit,
	}
	for i, s := range subs {
		resp.Submissions[i] = dto.SubmissionResponse{
			ID:            s.ID,
			TrashClass:    s.TrashClass,
			Confidence:    s.Confidence,
			Location:      s.Location,
			PointsAwarded: s.PointsAwarded,
			CreatedAt:     s.CreatedAt,
			Timestamp:     s.CreatedAt.Format(time.RFC3339),
		}
	}

	return c.JSON(resp)
}
