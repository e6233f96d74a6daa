package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/telbinapp/telbin-backend/internal/dto"
	"github.com/telbinapp/telbin-backend/internal/middleware"
	"github.com/telbinapp/telbin-backend/internal/services"
)

type FeedHandler struct {
	feedService *services.FeedService
}

func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// List returns recent community submissions, with entries from users the
// viewer has blocked filtered out.
func (h *FeedHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	items, err := h.feedService.List(userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch feed",
		})
	}

	return c.JSON(fiber.Map{"items": items})
}
