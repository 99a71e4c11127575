package handler

import (
	"errors"
	"strconv"
	"strings"

	"talenthub/internal/delivery/http/middleware"
	"talenthub/internal/domain/user"
	"talenthub/internal/pkg/response"
	"talenthub/internal/pkg/validation"
	"talenthub/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// Guards are the auth handlers protected routes are wrapped with.
type Guards struct {
	Auth     fiber.Handler
	Optional fiber.Handler
}

func only(roles ...user.Role) fiber.Handler {
	return middleware.RequireRoles(roles...)
}

func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return id, nil
}

func currentActor(c fiber.Ctx) (usecase.Actor, error) {
	id, err := currentUserID(c)
	if err != nil {
		return usecase.Actor{}, err
	}
	return usecase.Actor{UserID: id, Role: middleware.Role(c)}, nil
}

func paramUUID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}

func bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	return nil
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return v, nil
}

func parsePage(c fiber.Ctx, defaultLimit, maxLimit int) (int, int, error) {
	limit, err := parseQueryIntStrict(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	offset, err := parseQueryIntStrict(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	if limit < 1 || limit > maxLimit || offset < 0 {
		return 0, 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid pagination", nil, nil)
	}
	return limit, offset, nil
}

func parseSkillsQuery(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// mapUsecaseError translates usecase sentinels to HTTP errors. Validation
// errors pass through for the error middleware to render.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		return err
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, invalidInputMessage(err), nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	case errors.Is(err, usecase.ErrSkillNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Skill not found", nil, err)
	case errors.Is(err, usecase.ErrSkillAlreadyExists):
		return middleware.NewAppError(fiber.StatusConflict, "Skill already exists", nil, err)
	case errors.Is(err, usecase.ErrOrganizationNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Organization not found", nil, err)
	case errors.Is(err, usecase.ErrAgencyClientExists):
		return middleware.NewAppError(fiber.StatusConflict, "Employer already linked", nil, err)
	case errors.Is(err, usecase.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, "Invalid status transition", nil, err)
	case errors.Is(err, usecase.ErrJobNotPublishable):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Job needs a title and description to be published", nil, err)
	case errors.Is(err, usecase.ErrJobClosed):
		return middleware.NewAppError(fiber.StatusConflict, "Job is not accepting applications", nil, err)
	case errors.Is(err, usecase.ErrApplicationNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Application not found", nil, err)
	case errors.Is(err, usecase.ErrAlreadyApplied):
		return middleware.NewAppError(fiber.StatusConflict, "Already applied", nil, err)
	case errors.Is(err, usecase.ErrFileNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "File not found", nil, err)
	case errors.Is(err, usecase.ErrUnsupportedMedia):
		return middleware.NewAppError(fiber.StatusUnsupportedMediaType, response.MessageUnsupportedMedia, nil, err)
	case errors.Is(err, usecase.ErrPayloadTooLarge):
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, response.MessagePayloadTooLarge, nil, err)
	case errors.Is(err, usecase.ErrUnprocessable):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Could not read the document", nil, err)
	case errors.Is(err, usecase.ErrStorageUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "File storage unavailable", nil, err)
	case errors.Is(err, usecase.ErrExtractionUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "CV extraction unavailable", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

// invalidInputMessage keeps the detail usecases attach to ErrInvalidInput,
// such as the offending profile entry.
func invalidInputMessage(err error) string {
	msg := err.Error()
	if msg == usecase.ErrInvalidInput.Error() {
		return "Invalid request payload"
	}
	return msg
}
