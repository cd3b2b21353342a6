package session

import apperrors "github.com/tendant/inspection-idm/pkg/errors"

var (
	ErrUnauthorized      = apperrors.Unauthorized("unauthorized")
	ErrNotCompanyAccount = apperrors.Forbidden("account does not act on behalf of a company")
	ErrCompanyMismatch   = apperrors.Forbidden("access to this company is forbidden")
)
