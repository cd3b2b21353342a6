package provisioning

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresUnitOfWork runs provisioning writes in a pgx transaction.
type PostgresUnitOfWork struct {
	pool *pgxpool.Pool
}

func NewPostgresUnitOfWork(pool *pgxpool.Pool) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{pool: pool}
}

func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, w Writer) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgWriter{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapUnique(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

type pgWriter struct {
	tx pgx.Tx
}

func (w *pgWriter) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := w.tx.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (w *pgWriter) EmailTaken(ctx context.Context, email string) (bool, error) {
	return w.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email)
}

func (w *pgWriter) CompanyNameTaken(ctx context.Context, name string) (bool, error) {
	return w.exists(ctx, `SELECT EXISTS (SELECT 1 FROM companies WHERE name = $1)`, name)
}

func (w *pgWriter) CompanyExists(ctx context.Context, companyID int64) (bool, error) {
	return w.exists(ctx, `SELECT EXISTS (SELECT 1 FROM companies WHERE id = $1)`, companyID)
}

func (w *pgWriter) CityExists(ctx context.Context, cityID int64) (bool, error) {
	return w.exists(ctx, `SELECT EXISTS (SELECT 1 FROM cities WHERE id = $1)`, cityID)
}

func (w *pgWriter) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := w.tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, mapUnique(err)
	}
	return id, nil
}

func (w *pgWriter) InsertAccount(ctx context.Context, a NewAccount) (int64, error) {
	return w.insertReturningID(ctx,
		`INSERT INTO accounts (role, email, password) VALUES (($1::text)::account_role, $2, $3) RETURNING id`,
		string(a.Role), a.Email, a.Password)
}

func (w *pgWriter) InsertQuestionnaire(ctx context.Context) (int64, error) {
	return w.insertReturningID(ctx, `INSERT INTO company_questionnaires DEFAULT VALUES RETURNING id`)
}

func (w *pgWriter) InsertCompany(ctx context.Context, name string, questionnaireID int64) (int64, error) {
	return w.insertReturningID(ctx,
		`INSERT INTO companies (name, questionnaire_id) VALUES ($1, $2) RETURNING id`,
		name, questionnaireID)
}

func (w *pgWriter) InsertPhone(ctx context.Context, number string) (int64, error) {
	return w.insertReturningID(ctx, `INSERT INTO phone_numbers (number) VALUES ($1) RETURNING id`, number)
}

func (w *pgWriter) InsertInspector(ctx context.Context, row InspectorRow) error {
	_, err := w.tx.Exec(ctx, `
INSERT INTO inspectors (account_id, first_name, last_name, birthday, address, social_link, city_id, phone_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		row.AccountID, row.FirstName, row.LastName, row.Birthday, row.Address, row.SocialLink, row.CityID, row.PhoneID)
	return wrapInsert("inspector", err)
}

func (w *pgWriter) InsertAdministrator(ctx context.Context, row AdministratorRow) error {
	_, err := w.tx.Exec(ctx, `
INSERT INTO company_contacts (account_id, company_id, first_name, last_name, birthday, address, social_link, phone_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		row.AccountID, row.CompanyID, row.FirstName, row.LastName, row.Birthday, row.Address, row.SocialLink, row.PhoneID)
	return wrapInsert("company contact", err)
}

func (w *pgWriter) InsertManager(ctx context.Context, row ManagerRow) error {
	_, err := w.tx.Exec(ctx, `
INSERT INTO company_employees (account_id, company_id, city_id, first_name, last_name, birthday, address, social_link, phone_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		row.AccountID, row.CompanyID, row.CityID, row.FirstName, row.LastName, row.Birthday, row.Address, row.SocialLink, row.PhoneID)
	return wrapInsert("company employee", err)
}

func (w *pgWriter) InsertCompanyInspector(ctx context.Context, companyID, inspectorID int64) error {
	_, err := w.tx.Exec(ctx,
		`INSERT INTO company_inspectors (company_id, inspector_id) VALUES ($1, $2)`,
		companyID, inspectorID)
	return wrapInsert("company inspector", err)
}

func wrapInsert(what string, err error) error {
	if err == nil {
		return nil
	}
	if mapped := mapUnique(err); mapped != err {
		return mapped
	}
	return fmt.Errorf("insert %s: %w", what, err)
}

// mapUnique turns unique violations on accounts.email and companies.name
// into their conflict errors. Concurrent sign-ups that both pass the
// existence checks end up here.
func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "accounts_email_key":
		return ErrEmailTaken
	case "companies_name_key":
		return ErrCompanyNameTaken
	}
	return err
}
