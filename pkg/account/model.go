package account

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles. It mirrors the account_role enum
// in the database.
type Role string

const (
	RoleInspector     Role = "inspector"
	RoleManager       Role = "manager"
	RoleAdministrator Role = "administrator"
	RoleSysadmin      Role = "sysadmin"
)

var roles = []Role{RoleInspector, RoleManager, RoleAdministrator, RoleSysadmin}

func ParseRole(s string) (Role, error) {
	for _, r := range roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// CompanyScoped reports whether accounts of this role act on behalf of a
// company.
func (r Role) CompanyScoped() bool {
	return r == RoleAdministrator || r == RoleManager
}

type Account struct {
	ID          int64      `json:"id"`
	Role        Role       `json:"role"`
	Email       string     `json:"email"`
	Password    string     `json:"-"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastVisitAt time.Time  `json:"last_visit_at"`
}

func (a Account) Verified() bool {
	return a.VerifiedAt != nil
}

// NormalizeEmail is applied to every email before it is stored, looked up or
// used as part of a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
