package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abujafor1924/newmilikoz/internal/cache"
	"github.com/abujafor1924/newmilikoz/internal/errs"
	"github.com/abujafor1924/newmilikoz/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	popularItemsCacheKey = "interactions:popular_items"
	popularItemsTTL      = 5 * time.Minute
)

type InteractionHandler struct {
	DB    *gorm.DB
	Cache cache.Cache
	Log   zerolog.Logger
}

func NewInteractionHandler(db *gorm.DB, c cache.Cache, log zerolog.Logger) *InteractionHandler {
	return &InteractionHandler{DB: db, Cache: c, Log: log}
}

// RecordInteractionRequest defines the payload for an interaction event
type RecordInteractionRequest struct {
	ItemID uint   `json:"item_id"`
	Kind   string `json:"kind"`
}

// RecordInteraction - POST /api/interactions/record
// Persists the event and bumps the item's popularity counter. Responds 202
// so the caller never waits on aggregation.
func (h *InteractionHandler) RecordInteraction(c *fiber.Ctx) error {
	var req RecordInteractionRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}
	if req.ItemID == 0 {
		return errs.Validation("item_id is required")
	}
	switch req.Kind {
	case models.InteractionLike, models.InteractionView, models.InteractionClick:
	default:
		return errs.Validation("kind must be like, view or click")
	}

	var userID uint
	if id, ok := c.Locals("user_id").(uint); ok {
		userID = id
	}

	interaction := models.Interaction{
		UserID: userID,
		ItemID: req.ItemID,
		Kind:   req.Kind,
	}
	if err := h.DB.Create(&interaction).Error; err != nil {
		return errs.Internal("could not record interaction", err)
	}

	ctx := context.Background()
	key := fmt.Sprintf("interactions:score:%d", req.ItemID)
	if _, err := h.Cache.Increment(ctx, key, 1); err != nil {
		h.Log.Warn().Err(err).Uint("item_id", req.ItemID).Msg("failed to bump popularity score")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

// PopularItem is one entry of the popularity listing.
type PopularItem struct {
	ItemID uint  `json:"item_id"`
	Score  int64 `json:"score"`
}

// GetPopularItems - GET /api/interactions/popular
// The aggregate is cached for five minutes; recomputation groups the
// interaction table by item.
func (h *InteractionHandler) GetPopularItems(c *fiber.Ctx) error {
	ctx := context.Background()

	if cached, ok := h.Cache.Get(ctx, popularItemsCacheKey); ok {
		c.Set("X-Cache", "HIT")
		c.Set("Content-Type", "application/json")
		return c.Send(cached)
	}

	var items []PopularItem
	err := h.DB.Model(&models.Interaction{}).
		Select("item_id, COUNT(*) as score").
		Group("item_id").
		Order("score DESC").
		Limit(10).
		Scan(&items).Error
	if err != nil {
		return errs.Internal("could not compute popular items", err)
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return errs.Internal("could not encode popular items", err)
	}
	h.Cache.Set(ctx, popularItemsCacheKey, payload, popularItemsTTL)

	c.Set("Content-Type", "application/json")
	return c.Send(payload)
}
