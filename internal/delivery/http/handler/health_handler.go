package handler

import (
	"time"

	"talenthub/internal/pkg/response"
	"talenthub/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	uc usecase.DashboardUsecase
}

func NewHealthHandler(uc usecase.DashboardUsecase) *HealthHandler {
	return &HealthHandler{uc: uc}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Health)
}

// Health answers 503 when the database is down. Redis and storage only
// degrade features, so they are reported without failing the probe.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	status := h.uc.Health(c.Context())
	data := map[string]any{
		"status":      status,
		"server_time": time.Now().UTC(),
	}
	if status.Database != "up" {
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, data)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
