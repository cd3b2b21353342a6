package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tendant/inspection-idm/pkg/account"
)

// Store runs the per-role profile queries.
type Store interface {
	// AccountRole returns account.ErrAccountNotFound for unknown ids.
	AccountRole(ctx context.Context, accountID int64) (account.Role, error)
	Inspector(ctx context.Context, accountID int64) (*Inspector, error)
	Administrator(ctx context.Context, accountID int64) (*Administrator, error)
	Manager(ctx context.Context, accountID int64) (*Manager, error)
}

type loader func(ctx context.Context, s Store, accountID int64) (Profile, error)

// loaders has no entry for sysadmin: that role has no profile table.
var loaders = map[account.Role]loader{
	account.RoleInspector: func(ctx context.Context, s Store, id int64) (Profile, error) {
		return s.Inspector(ctx, id)
	},
	account.RoleAdministrator: func(ctx context.Context, s Store, id int64) (Profile, error) {
		return s.Administrator(ctx, id)
	},
	account.RoleManager: func(ctx context.Context, s Store, id int64) (Profile, error) {
		return s.Manager(ctx, id)
	},
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve looks up the account role and returns the matching profile.
func (r *Resolver) Resolve(ctx context.Context, accountID int64) (Profile, error) {
	role, err := r.store.AccountRole(ctx, accountID)
	if errors.Is(err, account.ErrAccountNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account role: %w", err)
	}
	return r.resolve(ctx, accountID, role, true)
}

// ResolveAs skips the role lookup when the caller already knows the role.
func (r *Resolver) ResolveAs(ctx context.Context, accountID int64, role account.Role) (Profile, error) {
	return r.resolve(ctx, accountID, role, false)
}

func (r *Resolver) resolve(ctx context.Context, accountID int64, role account.Role, roleChecked bool) (Profile, error) {
	load, ok := loaders[role]
	if !ok {
		return nil, ErrProfileNotFound
	}

	p, err := load(ctx, r.store, accountID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNoRow) {
		return nil, fmt.Errorf("load %s profile: %w", role, err)
	}

	if !roleChecked {
		actual, err := r.store.AccountRole(ctx, accountID)
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, ErrProfileNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("lookup account role: %w", err)
		}
		if actual != role {
			return nil, ErrProfileNotFound
		}
	}

	slog.Error("Account has no profile row", "account_id", accountID, "role", role)
	return nil, ErrProfileMissing
}
