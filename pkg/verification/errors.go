package verification

import apperrors "github.com/tendant/inspection-idm/pkg/errors"

var (
	// ErrInvalidCode covers both a wrong and an expired confirmation code.
	ErrInvalidCode          = apperrors.New(apperrors.ErrCodeInvalidInput, "Invalid or expired verification code.")
	ErrInvalidRecoveryToken = apperrors.New(apperrors.ErrCodeInvalidInput, "Invalid recovery token.")
	ErrTooManyAttempts      = apperrors.New(apperrors.ErrCodeTooManyAttempts, "Too many password reset attempts. Please try again later.")
	ErrDeliveryFailed       = apperrors.New(apperrors.ErrCodeDeliveryFailed, "failed to deliver verification email")
)
