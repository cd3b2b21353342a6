package login

import apperrors "github.com/tendant/inspection-idm/pkg/errors"

var (
	// ErrInvalidCredentials is returned for an unknown email, a wrong
	// password and an unverified account alike.
	ErrInvalidCredentials = apperrors.Unauthorized("invalid email or password")
	ErrWrongPassword      = apperrors.Unauthorized("current password is incorrect")
)
