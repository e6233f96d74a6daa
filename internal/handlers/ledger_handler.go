package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/telbinapp/telbin-backend/internal/dto"
	"github.com/telbinapp/telbin-backend/internal/middleware"
	"github.com/telbinapp/telbin-backend/internal/services"
)

// LedgerHandler serves the progression dashboard: points, medal ladder
// and per-class scan statistics.
type LedgerHandler struct {
	ledgerService *services.LedgerService
	medalService  *services.MedalService
}

func NewLedgerHandler(ledgerService *services.LedgerService, medalService *services.MedalService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, medalService: medalService}
}

func (h *LedgerHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	ledger, err := h.ledgerService.Get(userID)
	if err != nil {
		if errors.Is(err, services.ErrLedgerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Ledger not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch ledger",
		})
	}

	totalScans, err := h.ledgerService.SubmissionCount(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch statistics",
		})
	}

	classCounts, err := h.ledgerService.ClassCounts(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch statistics",
		})
	}

	mostScanned := ""
	var best int64
	for class, count := range classCounts {
		if count > best {
			best = count
			mostScanned = class
		}
	}

	medals, err := h.medalService.Catalog(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch medals",
		})
	}

	highest, err := h.medalService.Highest(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch medals",
		})
	}

	claimed, err := h.ledgerService.ClaimedRewardIDs(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch claims",
		})
	}

	return c.JSON(dto.LedgerResponse{
		TotalPoints:  ledger.TotalPoints,
		TotalScans:   totalScans,
		MostScanned:  mostScanned,
		HighestMedal: highest,
		Medals:       medals,
		ClaimedCount: len(claimed),
		ClassCounts:  classCounts,
	})
}

func (h *LedgerHandler) Medals(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	medals, err := h.medalService.Catalog(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch medals",
		})
	}

	return c.JSON(fiber.Map{"medals": medals})
}

// UpsertMedal is admin-only: it adds or adjusts a tier in the ladder.
func (h *LedgerHandler) UpsertMedal(c *fiber.Ctx) error {
	var req dto.UpsertMedalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	medal, err := h.medalService.Upsert(&req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(medal)
}
