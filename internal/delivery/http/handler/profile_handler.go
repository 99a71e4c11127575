package handler

import (
	"talenthub/internal/domain/candidate"
	"talenthub/internal/domain/user"
	"talenthub/internal/pkg/response"
	"talenthub/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ProfileHandler struct {
	uc usecase.ProfileUsecase
}

func NewProfileHandler(uc usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

// RegisterRoutes expects r to be mounted under the candidate's own scope.
func (h *ProfileHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	candidates := only(user.RoleCandidate)
	r.Get("/profile", g.Auth, candidates, h.GetProfile)
	r.Put("/profile", g.Auth, candidates, h.UpdateProfile)
	r.Get("/full-profile", g.Auth, candidates, h.GetFullProfile)
	r.Put("/full-profile", g.Auth, candidates, h.UpsertFullProfile)
}

func (h *ProfileHandler) GetProfile(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	p, err := h.uc.GetProfile(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req candidate.Profile
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.uc.UpdateProfile(c.Context(), userID, req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *ProfileHandler) GetFullProfile(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	fp, err := h.uc.GetFullProfile(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fp)
}

func (h *ProfileHandler) UpsertFullProfile(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req candidate.FullProfileInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	fp, err := h.uc.UpsertFullProfile(c.Context(), userID, req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fp)
}

// SectionHandler serves CRUD for one repeatable profile section.
type SectionHandler[T candidate.Entry] struct {
	uc usecase.SectionUsecase[T]
}

func NewSectionHandler[T candidate.Entry](uc usecase.SectionUsecase[T]) *SectionHandler[T] {
	return &SectionHandler[T]{uc: uc}
}

func (h *SectionHandler[T]) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	candidates := only(user.RoleCandidate)
	r.Get("/", g.Auth, candidates, h.List)
	r.Post("/", g.Auth, candidates, h.Create)
	r.Put("/:id", g.Auth, candidates, h.Update)
	r.Delete("/:id", g.Auth, candidates, h.Delete)
}

func (h *SectionHandler[T]) List(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *SectionHandler[T]) Create(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req T
	if err := bindBody(c, &req); err != nil {
		return err
	}

	created, err := h.uc.Create(c.Context(), userID, req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, created)
}

func (h *SectionHandler[T]) Update(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req T
	if err := bindBody(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.Update(c.Context(), userID, id, req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, updated)
}

func (h *SectionHandler[T]) Delete(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), userID, id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
