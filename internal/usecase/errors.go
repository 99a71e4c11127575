package usecase

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInternal            = errors.New("internal error")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")

	ErrSkillAlreadyExists = errors.New("skill already exists")
	ErrSkillNotFound      = errors.New("skill not found")

	ErrOrganizationNotFound = errors.New("organization not found")
	ErrAgencyClientExists   = errors.New("employer already linked to agency")

	ErrJobNotFound       = errors.New("job posting not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrJobNotPublishable = errors.New("job posting needs a title and description before publishing")
	ErrJobClosed         = errors.New("job posting is not accepting applications")

	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("already applied to this job")

	ErrFileNotFound       = errors.New("file not found")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrStorageUnavailable = errors.New("object storage unavailable")

	ErrUnprocessable         = errors.New("unprocessable document")
	ErrExtractionUnavailable = errors.New("cv extraction unavailable")
)
