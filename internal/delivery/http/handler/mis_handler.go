package handler

import (
	"talenthub/internal/delivery/http/dto"
	"talenthub/internal/domain/user"
	"talenthub/internal/pkg/response"
	"talenthub/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type MISHandler struct {
	dashboard usecase.DashboardUsecase
	users     usecase.UserUsecase
}

func NewMISHandler(dashboard usecase.DashboardUsecase, users usecase.UserUsecase) *MISHandler {
	return &MISHandler{dashboard: dashboard, users: users}
}

func (h *MISHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	mis := only(user.RoleMIS)
	r.Get("/stats", g.Auth, mis, h.Stats)
	r.Get("/users", g.Auth, mis, h.ListUsers)
}

func (h *MISHandler) Stats(c fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, stats)
}

func (h *MISHandler) ListUsers(c fiber.Ctx) error {
	limit, offset, err := parsePage(c, 20, 100)
	if err != nil {
		return err
	}

	items, total, err := h.users.ListUsers(c.Context(), user.ListFilter{
		Role:   user.Role(c.Query("role")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Paginated(c, dto.NewUserResponses(items), total, limit, offset)
}
