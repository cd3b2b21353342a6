package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tendant/inspection-idm/pkg/account"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db Querier
}

func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) AccountRole(ctx context.Context, accountID int64) (account.Role, error) {
	var role string
	err := s.db.QueryRow(ctx, `SELECT role::text FROM accounts WHERE id = $1`, accountID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", account.ErrAccountNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query account role: %w", err)
	}
	return account.Role(role), nil
}

const inspectorQuery = `
SELECT a.id, a.email, a.verified_at,
       i.first_name, i.last_name, i.birthday, i.address, i.social_link,
       c.id, c.name, c.region,
       p.id, p.number
FROM accounts a
JOIN inspectors i ON i.account_id = a.id
LEFT JOIN cities c ON c.id = i.city_id
LEFT JOIN phone_numbers p ON p.id = i.phone_id
WHERE a.id = $1 AND a.role = 'inspector'`

func (s *PostgresStore) Inspector(ctx context.Context, accountID int64) (*Inspector, error) {
	p := &Inspector{Header: Header{Role: account.RoleInspector}}
	var city nullCity
	var phone nullPhone
	err := s.db.QueryRow(ctx, inspectorQuery, accountID).Scan(
		&p.AccountID, &p.Email, &p.VerifiedAt,
		&p.FirstName, &p.LastName, &p.Birthday, &p.Address, &p.SocialLink,
		&city.id, &city.name, &city.region,
		&phone.id, &phone.number,
	)
	if err := noRow(err, "inspector"); err != nil {
		return nil, err
	}
	p.City = city.value()
	p.Phone = phone.value()
	return p, nil
}

const administratorQuery = `
SELECT a.id, a.email, a.verified_at,
       cc.first_name, cc.last_name, cc.birthday, cc.address, cc.social_link,
       co.id, co.name, co.logo_url,
       p.id, p.number
FROM accounts a
JOIN company_contacts cc ON cc.account_id = a.id
JOIN companies co ON co.id = cc.company_id
LEFT JOIN phone_numbers p ON p.id = cc.phone_id
WHERE a.id = $1 AND a.role = 'administrator'`

func (s *PostgresStore) Administrator(ctx context.Context, accountID int64) (*Administrator, error) {
	p := &Administrator{Header: Header{Role: account.RoleAdministrator}}
	var phone nullPhone
	err := s.db.QueryRow(ctx, administratorQuery, accountID).Scan(
		&p.AccountID, &p.Email, &p.VerifiedAt,
		&p.FirstName, &p.LastName, &p.Birthday, &p.Address, &p.SocialLink,
		&p.Company.ID, &p.Company.Name, &p.Company.LogoURL,
		&phone.id, &phone.number,
	)
	if err := noRow(err, "administrator"); err != nil {
		return nil, err
	}
	p.Phone = phone.value()
	return p, nil
}

const managerQuery = `
SELECT a.id, a.email, a.verified_at,
       ce.first_name, ce.last_name, ce.birthday, ce.address, ce.social_link,
       co.id, co.name, co.logo_url,
       c.id, c.name, c.region,
       p.id, p.number
FROM accounts a
JOIN company_employees ce ON ce.account_id = a.id
JOIN companies co ON co.id = ce.company_id
JOIN cities c ON c.id = ce.city_id
LEFT JOIN phone_numbers p ON p.id = ce.phone_id
WHERE a.id = $1 AND a.role = 'manager'`

func (s *PostgresStore) Manager(ctx context.Context, accountID int64) (*Manager, error) {
	p := &Manager{Header: Header{Role: account.RoleManager}}
	var phone nullPhone
	err := s.db.QueryRow(ctx, managerQuery, accountID).Scan(
		&p.AccountID, &p.Email, &p.VerifiedAt,
		&p.FirstName, &p.LastName, &p.Birthday, &p.Address, &p.SocialLink,
		&p.Company.ID, &p.Company.Name, &p.Company.LogoURL,
		&p.City.ID, &p.City.Name, &p.City.Region,
		&phone.id, &phone.number,
	)
	if err := noRow(err, "manager"); err != nil {
		return nil, err
	}
	p.Phone = phone.value()
	return p, nil
}

func noRow(err error, kind string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoRow
	}
	if err != nil {
		return fmt.Errorf("query %s profile: %w", kind, err)
	}
	return nil
}

// Left joined references scan into pointers and collapse to nil.

type nullCity struct {
	id     *int64
	name   *string
	region *string
}

func (c nullCity) value() *City {
	if c.id == nil {
		return nil
	}
	city := &City{ID: *c.id, Region: c.region}
	if c.name != nil {
		city.Name = *c.name
	}
	return city
}

type nullPhone struct {
	id     *int64
	number *string
}

func (p nullPhone) value() *Phone {
	if p.id == nil {
		return nil
	}
	phone := &Phone{ID: *p.id}
	if p.number != nil {
		phone.Number = *p.number
	}
	return phone
}
