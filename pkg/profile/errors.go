package profile

import (
	"errors"

	apperrors "github.com/tendant/inspection-idm/pkg/errors"
)

var (
	ErrProfileNotFound = apperrors.NotFound("profile not found")
	// ErrProfileMissing means an account exists with a role that requires a
	// profile row, and the row is absent.
	ErrProfileMissing = apperrors.New(apperrors.ErrCodeIntegrity, "profile missing for account")

	// ErrNoRow is returned by Store implementations when the joined profile
	// query matches nothing.
	ErrNoRow = errors.New("no profile row")
)
