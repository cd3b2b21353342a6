package profile

import (
	"time"

	"github.com/tendant/inspection-idm/pkg/account"
)

// Profile is the role-specific view of an account. The set of
// implementations is closed: *Inspector, *Administrator and *Manager.
type Profile interface {
	Kind() account.Role
	Identity() Header
	// CompanyID is the owning company for company-scoped roles and nil
	// otherwise.
	CompanyID() *int64

	sealed()
}

// Header carries the account columns shared by every profile. Role is the
// discriminator in the JSON encoding.
type Header struct {
	AccountID  int64        `json:"id"`
	Role       account.Role `json:"role"`
	Email      string       `json:"email"`
	VerifiedAt *time.Time   `json:"verified_at"`
}

type Person struct {
	FirstName  *string    `json:"first_name"`
	LastName   *string    `json:"last_name"`
	Birthday   *time.Time `json:"birthday"`
	Address    *string    `json:"address"`
	SocialLink *string    `json:"social_link"`
}

type City struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Region *string `json:"region"`
}

type Phone struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
}

type Company struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	LogoURL *string `json:"logo_url"`
}

type Inspector struct {
	Header
	Person
	City  *City  `json:"city"`
	Phone *Phone `json:"phone_number"`
}

// Administrator is the contact person of a company.
type Administrator struct {
	Header
	Person
	Company Company `json:"company"`
	Phone   *Phone  `json:"phone_number"`
}

// Manager is a company employee.
type Manager struct {
	Header
	Person
	Company Company `json:"company"`
	City    City    `json:"city"`
	Phone   *Phone  `json:"phone_number"`
}

func (p *Inspector) Kind() account.Role { return account.RoleInspector }
func (p *Inspector) Identity() Header   { return p.Header }
func (p *Inspector) CompanyID() *int64  { return nil }
func (*Inspector) sealed()              {}

func (p *Administrator) Kind() account.Role { return account.RoleAdministrator }
func (p *Administrator) Identity() Header   { return p.Header }
func (p *Administrator) CompanyID() *int64  { id := p.Company.ID; return &id }
func (*Administrator) sealed()              {}

func (p *Manager) Kind() account.Role { return account.RoleManager }
func (p *Manager) Identity() Header   { return p.Header }
func (p *Manager) CompanyID() *int64  { id := p.Company.ID; return &id }
func (*Manager) sealed()              {}
