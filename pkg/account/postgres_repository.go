package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectAccount = `
SELECT id, role::text, email, password, verified_at, created_at, last_visit_at
FROM accounts`

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	return r.scanOne(ctx, selectAccount+` WHERE email = $1`, NormalizeEmail(email))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (Account, error) {
	return r.scanOne(ctx, selectAccount+` WHERE id = $1`, id)
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, arg any) (Account, error) {
	var a Account
	var role string
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&a.ID, &role, &a.Email, &a.Password, &a.VerifiedAt, &a.CreatedAt, &a.LastVisitAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("query account: %w", err)
	}
	a.Role = Role(role)
	return a, nil
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, `UPDATE accounts SET verified_at = COALESCE(verified_at, $2) WHERE id = $1`, id, at)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, digest string) error {
	return r.exec(ctx, `UPDATE accounts SET password = $2 WHERE id = $1`, id, digest)
}

func (r *PostgresRepository) TouchLastVisit(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, `UPDATE accounts SET last_visit_at = $2 WHERE id = $1`, id, at)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
