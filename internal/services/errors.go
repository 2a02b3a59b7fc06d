package services

import "errors"

// Token lifecycle and external-call failures surfaced to handlers.
var (
	ErrInvalidToken    = errors.New("invalid verification link")
	ErrLinkExpired     = errors.New("verification link has expired")
	ErrAlreadyVerified = errors.New("account is already verified")
	ErrEmailSend       = errors.New("failed to send email")
	ErrDescriptionGen  = errors.New("failed to generate description")
	ErrExternalService = errors.New("external service failure")
)
