package signup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/inspection-idm/pkg/account"
	"github.com/tendant/inspection-idm/pkg/metrics"
	"github.com/tendant/inspection-idm/pkg/profile"
	"github.com/tendant/inspection-idm/pkg/provisioning"
)

// Provisioner writes accounts and their profile rows. *provisioning.Service
// implements it.
type Provisioner interface {
	SignUpCompany(ctx context.Context, in provisioning.CompanySignup) (provisioning.CompanyResult, error)
	SignUpInspector(ctx context.Context, in provisioning.InspectorSignup) (int64, error)
	InviteEmployee(ctx context.Context, companyID int64, in provisioning.EmployeeInvite) (int64, error)
	InviteInspector(ctx context.Context, companyID int64, in provisioning.InspectorInvite) (int64, error)
}

// Confirmer issues email confirmation codes. *verification.Service
// implements it.
type Confirmer interface {
	IssueEmailConfirmation(ctx context.Context, email string) error
}

type ProfileResolver interface {
	ResolveAs(ctx context.Context, accountID int64, role account.Role) (profile.Profile, error)
}

type SignupService struct {
	provisioner Provisioner
	confirmer   Confirmer
	profiles    ProfileResolver
}

type SignupServiceOption func(*SignupService)

func NewSignupService(provisioner Provisioner, opts ...SignupServiceOption) *SignupService {
	s := &SignupService{provisioner: provisioner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithConfirmer(c Confirmer) SignupServiceOption {
	return func(s *SignupService) {
		s.confirmer = c
	}
}

func WithProfileResolver(r ProfileResolver) SignupServiceOption {
	return func(s *SignupService) {
		s.profiles = r
	}
}

// RegisterCompany creates the company with its administrator and sends the
// administrator a confirmation code.
func (s *SignupService) RegisterCompany(ctx context.Context, in provisioning.CompanySignup) (provisioning.CompanyResult, error) {
	res, err := s.provisioner.SignUpCompany(ctx, in)
	if err != nil {
		return provisioning.CompanyResult{}, err
	}
	metrics.SignUps.WithLabelValues("company").Inc()

	if err := s.confirm(ctx, in.Email); err != nil {
		return res, err
	}
	return res, nil
}

func (s *SignupService) RegisterInspector(ctx context.Context, in provisioning.InspectorSignup) (int64, error) {
	id, err := s.provisioner.SignUpInspector(ctx, in)
	if err != nil {
		return 0, err
	}
	metrics.SignUps.WithLabelValues("inspector").Inc()

	if err := s.confirm(ctx, in.Email); err != nil {
		return id, err
	}
	return id, nil
}

// InviteEmployee provisions a manager for companyID and returns the new
// profile.
func (s *SignupService) InviteEmployee(ctx context.Context, companyID int64, in provisioning.EmployeeInvite) (profile.Profile, error) {
	id, err := s.provisioner.InviteEmployee(ctx, companyID, in)
	if err != nil {
		return nil, err
	}
	metrics.SignUps.WithLabelValues("employee").Inc()
	return s.afterInvite(ctx, id, account.RoleManager, in.Email)
}

// InviteInspector provisions an inspector engaged by companyID and returns
// the new profile.
func (s *SignupService) InviteInspector(ctx context.Context, companyID int64, in provisioning.InspectorInvite) (profile.Profile, error) {
	id, err := s.provisioner.InviteInspector(ctx, companyID, in)
	if err != nil {
		return nil, err
	}
	metrics.SignUps.WithLabelValues("invited_inspector").Inc()
	return s.afterInvite(ctx, id, account.RoleInspector, in.Email)
}

// afterInvite answers the inviter with the committed profile. A failed
// confirmation email is only logged; the invitee can request a resend.
func (s *SignupService) afterInvite(ctx context.Context, accountID int64, role account.Role, email string) (profile.Profile, error) {
	if err := s.confirm(ctx, email); err != nil {
		slog.Error("Failed to send confirmation to invited account", "account_id", accountID, "error", err)
	}
	if s.profiles == nil {
		return nil, fmt.Errorf("signup: no profile resolver configured")
	}
	p, err := s.profiles.ResolveAs(ctx, accountID, role)
	if err != nil {
		return nil, fmt.Errorf("load invited profile: %w", err)
	}
	return p, nil
}

func (s *SignupService) confirm(ctx context.Context, email string) error {
	if s.confirmer == nil {
		slog.Warn("No confirmer configured, skipping email confirmation", "email", email)
		return nil
	}
	return s.confirmer.IssueEmailConfirmation(ctx, email)
}
