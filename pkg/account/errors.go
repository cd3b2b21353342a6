package account

import apperrors "github.com/tendant/inspection-idm/pkg/errors"

var ErrAccountNotFound = apperrors.NotFound("account not found")
