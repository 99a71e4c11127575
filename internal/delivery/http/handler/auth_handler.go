package handler

import (
	"errors"

	"talenthub/internal/delivery/http/dto"
	"talenthub/internal/delivery/http/middleware"
	"talenthub/internal/domain/user"
	"talenthub/internal/pkg/response"
	"talenthub/internal/usecase"
	ucauth "talenthub/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	uc usecase.AuthUsecase
}

func NewAuthHandler(uc usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router, g Guards) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/verify-email", h.VerifyEmail)
	r.Post("/resend-otp", h.ResendOTP)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/change-password", g.Auth, h.ChangePassword)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, err := h.uc.Register(c.Context(), ucauth.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		FullName:         req.FullName,
		Phone:            req.Phone,
		Role:             user.Role(req.Role),
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Registration successful, check your email for the verification code", dto.NewUserResponse(usr))
}

func (h *AuthHandler) VerifyEmail(c fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, access, refresh, err := h.uc.VerifyEmail(c.Context(), req.Email, req.Code)
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.AuthResponse{
		User:         dto.NewUserResponse(usr),
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (h *AuthHandler) ResendOTP(c fiber.Ctx) error {
	var req dto.ResendOTPRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	if err := h.uc.ResendOTP(c.Context(), req.Email); err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "If the account exists, a new code has been sent", nil)
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	usr, access, refresh, err := h.uc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.AuthResponse{
		User:         dto.NewUserResponse(usr),
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok, ok := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	access, refresh, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		if errors.Is(err, usecase.ErrRefreshTokenExpired) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
		}
		if errors.Is(err, usecase.ErrInvalidRefreshToken) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
		}
		if errors.Is(err, usecase.ErrUnauthorized) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.TokenResponse{AccessToken: access, RefreshToken: refresh})
}

func (h *AuthHandler) ChangePassword(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.ChangePasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	if err := h.uc.ChangePassword(c.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Password updated", nil)
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var cooldown *ucauth.CooldownError
	switch {
	case errors.As(err, &cooldown):
		return middleware.NewAppError(fiber.StatusTooManyRequests, "Please wait before requesting another code",
			map[string]int{"retry_after_seconds": cooldown.RetryAfterSeconds()}, cooldown)
	case errors.Is(err, ucauth.ErrEmailAlreadyRegistered):
		return middleware.NewAppError(fiber.StatusConflict, "Email already registered", nil, err)
	case errors.Is(err, ucauth.ErrAlreadyVerified):
		return middleware.NewAppError(fiber.StatusConflict, "Email already verified", nil, err)
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid email or password", nil, err)
	case errors.Is(err, ucauth.ErrEmailNotVerified):
		return middleware.NewAppError(fiber.StatusForbidden, "Email not verified", nil, err)
	case errors.Is(err, ucauth.ErrRoleNotAllowed):
		return middleware.NewAppError(fiber.StatusForbidden, "Role cannot self-register", nil, err)
	case errors.Is(err, ucauth.ErrOTPInvalid):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid verification code", nil, err)
	case errors.Is(err, ucauth.ErrOTPExpired):
		return middleware.NewAppError(fiber.StatusBadRequest, "Verification code expired", nil, err)
	case errors.Is(err, ucauth.ErrOTPAttemptsExceeded):
		return middleware.NewAppError(fiber.StatusTooManyRequests, "Too many attempts, request a new code", nil, err)
	case errors.Is(err, ucauth.ErrOTPCooldown):
		return middleware.NewAppError(fiber.StatusTooManyRequests, "Please wait before requesting another code", nil, err)
	case errors.Is(err, ucauth.ErrOTPUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Verification service unavailable", nil, err)
	case errors.Is(err, ucauth.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	case errors.Is(err, ucauth.ErrInternal):
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	default:
		return mapUsecaseError(err)
	}
}
