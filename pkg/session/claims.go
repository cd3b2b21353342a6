package session

import (
	"context"

	"github.com/tendant/inspection-idm/pkg/account"
)

// Claims is the authorization payload attached to a session at sign-in. It
// is passed by value and never changes for the lifetime of the session.
type Claims struct {
	AccountID int64        `json:"uid"`
	Role      account.Role `json:"role"`
	// CompanyID is zero for accounts that do not belong to a company.
	CompanyID int64 `json:"cid,omitempty"`
}

func (c Claims) Empty() bool {
	return c.AccountID == 0
}

// Company returns the owning company id, if any.
func (c Claims) Company() (int64, bool) {
	return c.CompanyID, c.CompanyID != 0
}

// Owns reports whether the claims authorize acting on behalf of companyID.
func (c Claims) Owns(companyID int64) bool {
	cid, ok := c.Company()
	return ok && c.Role.CompanyScoped() && cid == companyID
}

type claimsContextKey struct{}

type idContextKey struct{}

func ContextWithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, c)
}

// ClaimsFromContext returns the claims stored by the session middleware.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsContextKey{}).(Claims)
	if !ok || c.Empty() {
		return Claims{}, false
	}
	return c, true
}

func contextWithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idContextKey{}, id)
}

func idFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(idContextKey{}).(string)
	return id, ok && id != ""
}
