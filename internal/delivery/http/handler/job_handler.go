package handler

import (
	"talenthub/internal/delivery/http/middleware"
	"talenthub/internal/domain/job"
	"talenthub/internal/domain/user"
	"talenthub/internal/pkg/response"
	"talenthub/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type JobHandler struct {
	uc usecase.JobPostingUsecase
}

type changeJobStatusRequest struct {
	Status job.Status `json:"status"`
}

func NewJobHandler(uc usecase.JobPostingUsecase) *JobHandler {
	return &JobHandler{uc: uc}
}

func (h *JobHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	managers := only(user.RoleEmployer, user.RoleAgency, user.RoleMIS)

	r.Get("/jobs", h.List)
	r.Get("/jobs/:id", g.Optional, h.Get)
	r.Post("/jobs", g.Auth, managers, h.Create)
	r.Put("/jobs/:id", g.Auth, managers, h.Update)
	r.Patch("/jobs/:id/status", g.Auth, managers, h.ChangeStatus)
	r.Delete("/jobs/:id", g.Auth, managers, h.Delete)
	r.Get("/employer/jobs", g.Auth, managers, h.ListManaged)
}

func (h *JobHandler) List(c fiber.Ctx) error {
	params, err := jobListParams(c)
	if err != nil {
		return err
	}

	res, err := h.uc.ListPublished(c.Context(), params)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Paginated(c, res.Items, res.Total, res.Limit, res.Offset)
}

func (h *JobHandler) ListManaged(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	params, err := jobListParams(c)
	if err != nil {
		return err
	}

	res, err := h.uc.ListManaged(c.Context(), actor, params, job.Status(c.Query("status")))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Paginated(c, res.Items, res.Total, res.Limit, res.Offset)
}

func (h *JobHandler) Get(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var actor *usecase.Actor
	if a, err := currentActor(c); err == nil {
		actor = &a
	}

	p, err := h.uc.Get(c.Context(), actor, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *JobHandler) Create(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var req usecase.JobInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.uc.Create(c.Context(), actor, req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, p)
}

func (h *JobHandler) Update(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req usecase.JobInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.uc.Update(c.Context(), actor, id, req)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *JobHandler) ChangeStatus(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req changeJobStatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if !req.Status.Valid() {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid status", nil, nil)
	}

	p, err := h.uc.ChangeStatus(c.Context(), actor, id, req.Status)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *JobHandler) Delete(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), actor, id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func jobListParams(c fiber.Ctx) (usecase.JobListParams, error) {
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return usecase.JobListParams{}, err
	}
	offset, err := parseQueryIntStrict(c, "offset", 0)
	if err != nil {
		return usecase.JobListParams{}, err
	}

	params := usecase.JobListParams{
		Query:          c.Query("q"),
		Location:       c.Query("location"),
		EmploymentType: c.Query("employment_type"),
		WorkMode:       c.Query("work_mode"),
		Skills:         parseSkillsQuery(c.Query("skills")),
		Limit:          limit,
		Offset:         offset,
	}
	if s := c.Query("employer_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return usecase.JobListParams{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid employer_id", nil, err)
		}
		params.EmployerID = &id
	}
	return params, nil
}
