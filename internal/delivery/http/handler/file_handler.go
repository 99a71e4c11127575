package handler

import (
	"mime/multipart"

	"talenthub/internal/delivery/http/middleware"
	"talenthub/internal/domain/file"
	"talenthub/internal/pkg/response"
	"talenthub/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type FileHandler struct {
	uc usecase.FileUsecase
}

func NewFileHandler(uc usecase.FileUsecase) *FileHandler {
	return &FileHandler{uc: uc}
}

func (h *FileHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Post("/", g.Auth, h.Upload)
	r.Get("/:id", g.Auth, h.Get)
	r.Delete("/:id", g.Auth, h.Delete)
}

func (h *FileHandler) Upload(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing file", nil, err)
	}
	purpose := file.Purpose(c.FormValue("purpose"))
	if !purpose.Valid() {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid purpose", nil, nil)
	}

	stored, err := h.upload(c, userID, purpose, fh)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, stored)
}

func (h *FileHandler) upload(c fiber.Ctx, userID uuid.UUID, purpose file.Purpose, fh *multipart.FileHeader) (usecase.StoredFile, error) {
	src, err := fh.Open()
	if err != nil {
		return usecase.StoredFile{}, usecase.ErrInvalidInput
	}
	defer src.Close()

	return h.uc.Upload(c.Context(), userID, usecase.UploadInput{
		Purpose:  purpose,
		Filename: fh.Filename,
		Size:     fh.Size,
		Body:     src,
	})
}

func (h *FileHandler) Get(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	stored, err := h.uc.Get(c.Context(), userID, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, stored)
}

func (h *FileHandler) Delete(c fiber.Ctx) error {
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
