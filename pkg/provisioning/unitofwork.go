package provisioning

import (
	"context"

	"github.com/tendant/inspection-idm/pkg/account"
	"github.com/tendant/inspection-idm/pkg/profile"
)

// UnitOfWork runs fn inside one transaction. The transaction commits only if
// fn returns nil; any error rolls back every write made through w.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, w Writer) error) error
}

// Writer is the set of statements a provisioning transaction may issue.
// Insert methods enforce uniqueness themselves and return ErrEmailTaken or
// ErrCompanyNameTaken on a violation, so the existence checks are only a
// fast path.
type Writer interface {
	EmailTaken(ctx context.Context, email string) (bool, error)
	CompanyNameTaken(ctx context.Context, name string) (bool, error)
	CompanyExists(ctx context.Context, companyID int64) (bool, error)
	CityExists(ctx context.Context, cityID int64) (bool, error)

	InsertAccount(ctx context.Context, a NewAccount) (int64, error)
	InsertQuestionnaire(ctx context.Context) (int64, error)
	InsertCompany(ctx context.Context, name string, questionnaireID int64) (int64, error)
	InsertPhone(ctx context.Context, number string) (int64, error)
	InsertInspector(ctx context.Context, row InspectorRow) error
	InsertAdministrator(ctx context.Context, row AdministratorRow) error
	InsertManager(ctx context.Context, row ManagerRow) error
	InsertCompanyInspector(ctx context.Context, companyID, inspectorID int64) error
}

type NewAccount struct {
	Role     account.Role
	Email    string
	Password string // digest
}

type InspectorRow struct {
	AccountID int64
	profile.Person
	CityID  *int64
	PhoneID *int64
}

type AdministratorRow struct {
	AccountID int64
	CompanyID int64
	profile.Person
	PhoneID *int64
}

type ManagerRow struct {
	AccountID int64
	CompanyID int64
	CityID    int64
	profile.Person
	PhoneID *int64
}
