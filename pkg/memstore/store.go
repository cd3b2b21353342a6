// Package memstore is an in-process stand-in for the relational store. It
// backs tests and the single-node development mode (STORE_BACKEND=memory).
//
// Transactions are serialized: Do holds the store lock for the duration of
// the callback and works on a copy of every table, which replaces the
// committed state only when the callback succeeds.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tendant/inspection-idm/pkg/account"
	"github.com/tendant/inspection-idm/pkg/profile"
	"github.com/tendant/inspection-idm/pkg/provisioning"
)

type company struct {
	name            string
	questionnaireID int64
	logoURL         *string
}

type tables struct {
	seq               int64
	accounts          map[int64]account.Account
	inspectors        map[int64]provisioning.InspectorRow
	contacts          map[int64]provisioning.AdministratorRow
	employees         map[int64]provisioning.ManagerRow
	companies         map[int64]company
	questionnaires    map[int64]time.Time
	phones            map[int64]string
	cities            map[int64]profile.City
	companyInspectors map[[2]int64]struct{}
}

func newTables() *tables {
	return &tables{
		accounts:          make(map[int64]account.Account),
		inspectors:        make(map[int64]provisioning.InspectorRow),
		contacts:          make(map[int64]provisioning.AdministratorRow),
		employees:         make(map[int64]provisioning.ManagerRow),
		companies:         make(map[int64]company),
		questionnaires:    make(map[int64]time.Time),
		phones:            make(map[int64]string),
		cities:            make(map[int64]profile.City),
		companyInspectors: make(map[[2]int64]struct{}),
	}
}

func clone[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t *tables) clone() *tables {
	return &tables{
		seq:               t.seq,
		accounts:          clone(t.accounts),
		inspectors:        clone(t.inspectors),
		contacts:          clone(t.contacts),
		employees:         clone(t.employees),
		companies:         clone(t.companies),
		questionnaires:    clone(t.questionnaires),
		phones:            clone(t.phones),
		cities:            clone(t.cities),
		companyInspectors: clone(t.companyInspectors),
	}
}

// nextID hands out ids from one sequence shared by all tables.
func (t *tables) nextID() int64 {
	t.seq++
	return t.seq
}

type Store struct {
	mu sync.RWMutex
	t  *tables
}

type Option func(*Store)

// WithCities seeds the city table so invites have cities to reference.
func WithCities(names ...string) Option {
	return func(s *Store) {
		for _, name := range names {
			s.AddCity(name)
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{t: newTables()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cities lists the city table ordered by id.
func (s *Store) Cities() []profile.City {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]profile.City, 0, len(s.t.cities))
	for _, c := range s.t.cities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddCity seeds a city and returns its id.
func (s *Store) AddCity(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.t.nextID()
	s.t.cities[id] = profile.City{ID: id, Name: name}
	return id
}

// Counts reports the number of rows in the account, profile and company
// tables.
func (s *Store) Counts() (accounts, profiles, companies int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.t.accounts), len(s.t.inspectors) + len(s.t.contacts) + len(s.t.employees), len(s.t.companies)
}

// CompanyInspectorExists reports whether the engagement row exists.
func (s *Store) CompanyInspectorExists(companyID, inspectorID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.t.companyInspectors[[2]int64{companyID, inspectorID}]
	return ok
}

func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, w provisioning.Writer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.t.clone()
	if err := fn(ctx, &writer{t: staged}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.t = staged
	return nil
}

// AddAccount inserts a bare account without a profile row and returns it
// with its assigned id.
func (s *Store) AddAccount(a account.Account) account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.t.nextID()
	a.Email = account.NormalizeEmail(a.Email)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
		a.LastVisitAt = a.CreatedAt
	}
	s.t.accounts[a.ID] = a
	return a
}
