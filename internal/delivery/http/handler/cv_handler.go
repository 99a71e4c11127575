package handler

import (
	"io"
	"strings"

	"talenthub/internal/delivery/http/middleware"
	"talenthub/internal/domain/user"
	"talenthub/internal/pkg/response"
	"talenthub/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type CVHandler struct {
	uc       usecase.CVExtractionUsecase
	maxBytes int64
}

type extractCVRequest struct {
	FileID string `json:"file_id"`
}

func NewCVHandler(uc usecase.CVExtractionUsecase, maxBytes int64) *CVHandler {
	return &CVHandler{uc: uc, maxBytes: maxBytes}
}

func (h *CVHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Post("/candidates/me/cv/extract", g.Auth, only(user.RoleCandidate), h.Extract)
}

// Extract accepts either a multipart upload under "file" or the id of a cv
// the candidate uploaded earlier.
func (h *CVHandler) Extract(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	src, err := h.source(c)
	if err != nil {
		return err
	}

	draft, err := h.uc.Extract(c.Context(), userID, src)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, draft)
}

func (h *CVHandler) source(c fiber.Ctx) (usecase.CVSource, error) {
	if fh, err := c.FormFile("file"); err == nil {
		if h.maxBytes > 0 && fh.Size > h.maxBytes {
			return usecase.CVSource{}, middleware.NewAppError(fiber.StatusRequestEntityTooLarge, response.MessagePayloadTooLarge, nil, nil)
		}
		f, err := fh.Open()
		if err != nil {
			return usecase.CVSource{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid file", nil, err)
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, h.limit()))
		if err != nil {
			return usecase.CVSource{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid file", nil, err)
		}
		if h.maxBytes > 0 && int64(len(data)) > h.maxBytes {
			return usecase.CVSource{}, middleware.NewAppError(fiber.StatusRequestEntityTooLarge, response.MessagePayloadTooLarge, nil, nil)
		}
		return usecase.CVSource{Filename: fh.Filename, Data: data}, nil
	}

	raw := c.FormValue("file_id")
	if raw == "" && strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var req extractCVRequest
		if err := bindBody(c, &req); err != nil {
			return usecase.CVSource{}, err
		}
		raw = req.FileID
	}
	if raw == "" {
		return usecase.CVSource{}, middleware.NewAppError(fiber.StatusBadRequest, "Provide a file or file_id", nil, nil)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return usecase.CVSource{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid file_id", nil, err)
	}
	return usecase.CVSource{FileID: id}, nil
}

func (h *CVHandler) limit() int64 {
	if h.maxBytes <= 0 {
		return 10 << 20
	}
	return h.maxBytes + 1
}
