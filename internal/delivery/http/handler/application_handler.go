package handler

import (
	"talenthub/internal/delivery/http/middleware"
	"talenthub/internal/domain/application"
	"talenthub/internal/domain/user"
	"talenthub/internal/pkg/response"
	"talenthub/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ApplicationHandler struct {
	uc usecase.ApplicationUsecase
}

type changeApplicationStatusRequest struct {
	Status application.Status `json:"status"`
}

func NewApplicationHandler(uc usecase.ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

func (h *ApplicationHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	candidates := only(user.RoleCandidate)
	managers := only(user.RoleEmployer, user.RoleAgency, user.RoleMIS)

	r.Post("/jobs/:id/applications", g.Auth, candidates, h.Apply)
	r.Get("/jobs/:id/applications", g.Auth, managers, h.ListForJob)
	r.Get("/candidates/me/applications", g.Auth, candidates, h.ListMine)
	r.Post("/applications/:id/withdraw", g.Auth, candidates, h.Withdraw)
	r.Patch("/applications/:id/status", g.Auth, managers, h.ChangeStatus)
}

func (h *ApplicationHandler) Apply(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	jobID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req usecase.ApplyInput
	if len(c.Body()) > 0 {
		if err := bindBody(c, &req); err != nil {
			return err
		}
	}

	a, err := h.uc.Apply(c.Context(), userID, jobID, req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, a)
}

func (h *ApplicationHandler) ListMine(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	items, err := h.uc.ListMine(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *ApplicationHandler) Withdraw(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	a, err := h.uc.Withdraw(c.Context(), userID, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, a)
}

func (h *ApplicationHandler) ListForJob(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	jobID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	status := application.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid status", nil, nil)
	}

	items, err := h.uc.ListForJob(c.Context(), actor, jobID, status)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *ApplicationHandler) ChangeStatus(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req changeApplicationStatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	a, err := h.uc.ChangeStatus(c.Context(), actor, id, req.Status)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, a)
}
