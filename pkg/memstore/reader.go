package memstore

import (
	"context"
	"time"

	"github.com/tendant/inspection-idm/pkg/account"
	"github.com/tendant/inspection-idm/pkg/profile"
)

// account.Repository

func (s *Store) FindByEmail(_ context.Context, email string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = account.NormalizeEmail(email)
	for _, a := range s.t.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, account.ErrAccountNotFound
}

func (s *Store) FindByID(_ context.Context, id int64) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.t.accounts[id]
	if !ok {
		return account.Account{}, account.ErrAccountNotFound
	}
	return a, nil
}

func (s *Store) MarkVerified(_ context.Context, id int64, at time.Time) error {
	return s.update(id, func(a *account.Account) {
		if a.VerifiedAt == nil {
			a.VerifiedAt = &at
		}
	})
}

func (s *Store) UpdatePassword(_ context.Context, id int64, digest string) error {
	return s.update(id, func(a *account.Account) { a.Password = digest })
}

func (s *Store) TouchLastVisit(_ context.Context, id int64, at time.Time) error {
	return s.update(id, func(a *account.Account) { a.LastVisitAt = at })
}

func (s *Store) update(id int64, fn func(*account.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.t.accounts[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	fn(&a)
	s.t.accounts[id] = a
	return nil
}

// profile.Store

func (s *Store) AccountRole(_ context.Context, accountID int64) (account.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.t.accounts[accountID]
	if !ok {
		return "", account.ErrAccountNotFound
	}
	return a.Role, nil
}

func (s *Store) header(accountID int64, role account.Role) (profile.Header, bool) {
	a, ok := s.t.accounts[accountID]
	if !ok || a.Role != role {
		return profile.Header{}, false
	}
	return profile.Header{AccountID: a.ID, Role: a.Role, Email: a.Email, VerifiedAt: a.VerifiedAt}, true
}

func (s *Store) Inspector(_ context.Context, accountID int64) (*profile.Inspector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.header(accountID, account.RoleInspector)
	row, found := s.t.inspectors[accountID]
	if !ok || !found {
		return nil, profile.ErrNoRow
	}
	p := &profile.Inspector{Header: h, Person: row.Person, Phone: s.phone(row.PhoneID)}
	if row.CityID != nil {
		if c, ok := s.t.cities[*row.CityID]; ok {
			p.City = &c
		}
	}
	return p, nil
}

func (s *Store) Administrator(_ context.Context, accountID int64) (*profile.Administrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.header(accountID, account.RoleAdministrator)
	row, found := s.t.contacts[accountID]
	if !ok || !found {
		return nil, profile.ErrNoRow
	}
	co, ok := s.company(row.CompanyID)
	if !ok {
		return nil, profile.ErrNoRow
	}
	return &profile.Administrator{Header: h, Person: row.Person, Company: co, Phone: s.phone(row.PhoneID)}, nil
}

func (s *Store) Manager(_ context.Context, accountID int64) (*profile.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.header(accountID, account.RoleManager)
	row, found := s.t.employees[accountID]
	if !ok || !found {
		return nil, profile.ErrNoRow
	}
	co, ok := s.company(row.CompanyID)
	if !ok {
		return nil, profile.ErrNoRow
	}
	city, ok := s.t.cities[row.CityID]
	if !ok {
		return nil, profile.ErrNoRow
	}
	return &profile.Manager{Header: h, Person: row.Person, Company: co, City: city, Phone: s.phone(row.PhoneID)}, nil
}

func (s *Store) company(id int64) (profile.Company, bool) {
	c, ok := s.t.companies[id]
	if !ok {
		return profile.Company{}, false
	}
	return profile.Company{ID: id, Name: c.name, LogoURL: c.logoURL}, true
}

func (s *Store) phone(id *int64) *profile.Phone {
	if id == nil {
		return nil
	}
	number, ok := s.t.phones[*id]
	if !ok {
		return nil
	}
	return &profile.Phone{ID: *id, Number: number}
}
