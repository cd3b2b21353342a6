package provisioning

import apperrors "github.com/tendant/inspection-idm/pkg/errors"

var (
	ErrEmailTaken       = apperrors.Conflict("account already exists")
	ErrCompanyNameTaken = apperrors.Conflict("company already registered")
	ErrCompanyNotFound  = apperrors.NotFound("company not found")
	ErrCityNotFound     = apperrors.NotFound("city not found")
	ErrDeliveryFailed   = apperrors.New(apperrors.ErrCodeDeliveryFailed, "failed to deliver account credentials")

	ErrInvalidEmail       = apperrors.InvalidInput("email", "must be a valid address")
	ErrInvalidPassword    = apperrors.InvalidInput("password", "must be at least 8 characters")
	ErrInvalidCompanyName = apperrors.InvalidInput("name", "must not be empty")
)
