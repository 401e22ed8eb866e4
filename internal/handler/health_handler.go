package handler

import (
	"context"
	"time"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache domain.Cache // nil when running without Redis
}

func NewHealthHandler(db Pinger, cache domain.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check godoc
// @Summary Health check
// @Description Pings the database and the cache.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Services: map[string]string{}}

	if err := h.db.PingContext(ctx); err != nil {
		logger.Get().Error("Health check: database unreachable", zap.Error(err))
		resp.Status = "degraded"
		resp.Services["database"] = "down"
	} else {
		resp.Services["database"] = "up"
	}

	switch {
	case h.cache == nil:
		resp.Services["cache"] = "disabled"
	case h.cache.Ping(ctx) != nil:
		logger.Get().Warn("Health check: cache unreachable")
		resp.Status = "degraded"
		resp.Services["cache"] = "down"
	default:
		resp.Services["cache"] = "up"
	}

	status := fiber.StatusOK
	if resp.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}
