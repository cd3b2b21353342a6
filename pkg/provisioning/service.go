package provisioning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tendant/inspection-idm/pkg/account"
	apperrors "github.com/tendant/inspection-idm/pkg/errors"
	"github.com/tendant/inspection-idm/pkg/profile"
)

// CredentialSender delivers the generated password of an invited account.
type CredentialSender interface {
	SendCredentials(ctx context.Context, email, password string) error
}

// PasswordEncrypter is implemented by *credential.Codec.
type PasswordEncrypter interface {
	Encrypt(password string) (string, error)
}

type Service struct {
	uow              UnitOfWork
	codec            PasswordEncrypter
	sender           CredentialSender
	generatePassword func() (string, error)
}

type Option func(*Service)

func WithPasswordGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.generatePassword = fn
	}
}

func NewService(uow UnitOfWork, codec PasswordEncrypter, sender CredentialSender, opts ...Option) *Service {
	s := &Service{
		uow:              uow,
		codec:            codec,
		sender:           sender,
		generatePassword: GeneratePassword,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CompanySignup struct {
	Name     string
	Email    string
	Password string
}

type CompanyResult struct {
	AccountID int64
	CompanyID int64
}

// SignUpCompany creates an administrator account, a questionnaire, the
// company and its contact person in one transaction.
func (s *Service) SignUpCompany(ctx context.Context, in CompanySignup) (CompanyResult, error) {
	name := strings.TrimSpace(in.Name)
	email := account.NormalizeEmail(in.Email)
	if name == "" {
		return CompanyResult{}, ErrInvalidCompanyName
	}
	digest, err := s.prepare(email, in.Password)
	if err != nil {
		return CompanyResult{}, err
	}

	var res CompanyResult
	err = s.uow.Do(ctx, func(ctx context.Context, w Writer) error {
		if err := precheckCompanyName(ctx, w, name); err != nil {
			return err
		}
		if err := precheckEmail(ctx, w, email); err != nil {
			return err
		}

		accountID, err := w.InsertAccount(ctx, NewAccount{Role: account.RoleAdministrator, Email: email, Password: digest})
		if err != nil {
			return err
		}
		questionnaireID, err := w.InsertQuestionnaire(ctx)
		if err != nil {
			return err
		}
		companyID, err := w.InsertCompany(ctx, name, questionnaireID)
		if err != nil {
			return err
		}
		if err := w.InsertAdministrator(ctx, AdministratorRow{AccountID: accountID, CompanyID: companyID}); err != nil {
			return err
		}
		res = CompanyResult{AccountID: accountID, CompanyID: companyID}
		return nil
	})
	if err != nil {
		return CompanyResult{}, err
	}

	slog.Info("Company registered", "account_id", res.AccountID, "company_id", res.CompanyID)
	return res, nil
}

type InspectorSignup struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (s *Service) SignUpInspector(ctx context.Context, in InspectorSignup) (int64, error) {
	email := account.NormalizeEmail(in.Email)
	digest, err := s.prepare(email, in.Password)
	if err != nil {
		return 0, err
	}

	var accountID int64
	err = s.uow.Do(ctx, func(ctx context.Context, w Writer) error {
		if err := precheckEmail(ctx, w, email); err != nil {
			return err
		}
		id, err := w.InsertAccount(ctx, NewAccount{Role: account.RoleInspector, Email: email, Password: digest})
		if err != nil {
			return err
		}
		row := InspectorRow{
			AccountID: id,
			Person:    profile.Person{FirstName: optional(in.FirstName), LastName: optional(in.LastName)},
		}
		if err := w.InsertInspector(ctx, row); err != nil {
			return err
		}
		accountID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Inspector registered", "account_id", accountID)
	return accountID, nil
}

type EmployeeInvite struct {
	Email  string
	CityID int64
	Phone  string
	profile.Person
}

// InviteEmployee creates a manager account with a generated password for
// companyID. The password is delivered before commit, so a delivery failure
// leaves nothing behind.
func (s *Service) InviteEmployee(ctx context.Context, companyID int64, in EmployeeInvite) (int64, error) {
	return s.invite(ctx, companyID, in.Email, account.RoleManager, func(ctx context.Context, w Writer, accountID int64) error {
		ok, err := w.CityExists(ctx, in.CityID)
		if err != nil {
			return fmt.Errorf("check city: %w", err)
		}
		if !ok {
			return ErrCityNotFound
		}
		phoneID, err := insertPhone(ctx, w, in.Phone)
		if err != nil {
			return err
		}
		return w.InsertManager(ctx, ManagerRow{
			AccountID: accountID,
			CompanyID: companyID,
			CityID:    in.CityID,
			Person:    in.Person,
			PhoneID:   phoneID,
		})
	})
}

type InspectorInvite struct {
	Email  string
	CityID *int64
	Phone  string
	profile.Person
}

// InviteInspector creates an inspector account engaged by companyID.
func (s *Service) InviteInspector(ctx context.Context, companyID int64, in InspectorInvite) (int64, error) {
	return s.invite(ctx, companyID, in.Email, account.RoleInspector, func(ctx context.Context, w Writer, accountID int64) error {
		if in.CityID != nil {
			ok, err := w.CityExists(ctx, *in.CityID)
			if err != nil {
				return fmt.Errorf("check city: %w", err)
			}
			if !ok {
				return ErrCityNotFound
			}
		}
		phoneID, err := insertPhone(ctx, w, in.Phone)
		if err != nil {
			return err
		}
		err = w.InsertInspector(ctx, InspectorRow{
			AccountID: accountID,
			Person:    in.Person,
			CityID:    in.CityID,
			PhoneID:   phoneID,
		})
		if err != nil {
			return err
		}
		return w.InsertCompanyInspector(ctx, companyID, accountID)
	})
}

type profileWriter func(ctx context.Context, w Writer, accountID int64) error

func (s *Service) invite(ctx context.Context, companyID int64, rawEmail string, role account.Role, writeProfile profileWriter) (int64, error) {
	email := account.NormalizeEmail(rawEmail)
	if err := validateEmail(email); err != nil {
		return 0, err
	}
	password, err := s.generatePassword()
	if err != nil {
		return 0, err
	}
	digest, err := s.codec.Encrypt(password)
	if err != nil {
		return 0, fmt.Errorf("encrypt password: %w", err)
	}

	var accountID int64
	err = s.uow.Do(ctx, func(ctx context.Context, w Writer) error {
		ok, err := w.CompanyExists(ctx, companyID)
		if err != nil {
			return fmt.Errorf("check company: %w", err)
		}
		if !ok {
			return ErrCompanyNotFound
		}
		if err := precheckEmail(ctx, w, email); err != nil {
			return err
		}

		id, err := w.InsertAccount(ctx, NewAccount{Role: role, Email: email, Password: digest})
		if err != nil {
			return err
		}
		if err := writeProfile(ctx, w, id); err != nil {
			return err
		}

		if err := s.sender.SendCredentials(ctx, email, password); err != nil {
			slog.Error("Failed to deliver credentials", "company_id", companyID, "role", role, "error", err)
			return apperrors.Wrap(err, apperrors.ErrCodeDeliveryFailed, ErrDeliveryFailed.Message)
		}
		accountID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Account invited", "account_id", accountID, "company_id", companyID, "role", role)
	return accountID, nil
}

func (s *Service) prepare(email, password string) (string, error) {
	if err := validateEmail(email); err != nil {
		return "", err
	}
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	digest, err := s.codec.Encrypt(password)
	if err != nil {
		return "", fmt.Errorf("encrypt password: %w", err)
	}
	return digest, nil
}

func precheckEmail(ctx context.Context, w Writer, email string) error {
	taken, err := w.EmailTaken(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func precheckCompanyName(ctx context.Context, w Writer, name string) error {
	taken, err := w.CompanyNameTaken(ctx, name)
	if err != nil {
		return fmt.Errorf("check company name: %w", err)
	}
	if taken {
		return ErrCompanyNameTaken
	}
	return nil
}

func insertPhone(ctx context.Context, w Writer, number string) (*int64, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, nil
	}
	id, err := w.InsertPhone(ctx, number)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
