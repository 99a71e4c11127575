package handler

import (
	"strconv"

	"talenthub/internal/delivery/http/middleware"
	"talenthub/internal/domain/organization"
	"talenthub/internal/domain/user"
	"talenthub/internal/pkg/response"
	"talenthub/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type OrganizationHandler struct {
	uc usecase.OrganizationUsecase
}

type verifyOrganizationRequest struct {
	Verified *bool `json:"verified"`
}

func NewOrganizationHandler(uc usecase.OrganizationUsecase) *OrganizationHandler {
	return &OrganizationHandler{uc: uc}
}

func (h *OrganizationHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	owners := only(user.RoleEmployer, user.RoleAgency)
	r.Get("/organizations/me", g.Auth, owners, h.GetMine)
	r.Put("/organizations/me", g.Auth, owners, h.UpdateMine)
	r.Get("/organizations/:id", h.Get)

	agency := only(user.RoleAgency)
	r.Get("/agency/clients", g.Auth, agency, h.ListClients)
	r.Post("/agency/clients/:employer_id", g.Auth, agency, h.LinkClient)

	mis := only(user.RoleMIS)
	r.Get("/mis/organizations", g.Auth, mis, h.List)
	r.Post("/mis/organizations", g.Auth, mis, h.CreateEmployer)
	r.Patch("/mis/organizations/:id/verify", g.Auth, mis, h.SetVerified)
}

func (h *OrganizationHandler) GetMine(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	org, err := h.uc.GetMine(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, org)
}

func (h *OrganizationHandler) UpdateMine(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req usecase.OrganizationInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	org, err := h.uc.UpdateMine(c.Context(), userID, req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, org)
}

func (h *OrganizationHandler) Get(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	org, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, org)
}

func (h *OrganizationHandler) ListClients(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	items, err := h.uc.ListClients(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *OrganizationHandler) LinkClient(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	employerID, err := paramUUID(c, "employer_id")
	if err != nil {
		return err
	}

	org, err := h.uc.LinkClient(c.Context(), userID, employerID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, org)
}

func (h *OrganizationHandler) List(c fiber.Ctx) error {
	limit, offset, err := parsePage(c, 20, 100)
	if err != nil {
		return err
	}

	f := organization.ListFilter{
		Kind:   organization.Kind(c.Query("kind")),
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	}
	if s := c.Query("verified"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid verified", nil, err)
		}
		f.Verified = &v
	}

	items, total, err := h.uc.List(c.Context(), f)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Paginated(c, items, total, limit, offset)
}

func (h *OrganizationHandler) CreateEmployer(c fiber.Ctx) error {
	var req usecase.OrganizationInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	org, err := h.uc.CreateEmployer(c.Context(), req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, org)
}

func (h *OrganizationHandler) SetVerified(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req verifyOrganizationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.Verified == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, nil)
	}

	org, err := h.uc.SetVerified(c.Context(), id, *req.Verified)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, org)
}
