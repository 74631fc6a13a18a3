package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domain "github.com/corvusHold/outreach/internal/auth/domain"
	"github.com/corvusHold/outreach/internal/platform/pgdb"
	trepo "github.com/corvusHold/outreach/internal/tenants/repository"
)

type PGRepository struct{ db pgdb.Beginner }

func New(db pgdb.Beginner) *PGRepository { return &PGRepository{db: db} }

const userColumns = `id, company_id, email_address, password_hash, first_name, last_name,
	invalid_login_attempts, is_login_with_email_locked, last_login_at, created_at`

const (
	insertUserSQL = `
INSERT INTO users (id, company_id, email_address, password_hash, first_name, last_name)
VALUES ($1, $2, $3, $4, $5, $6)`
	getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE lower(email_address) = lower($1)`
	getUserByIDSQL    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	failedLoginSQL    = `
UPDATE users
SET invalid_login_attempts = invalid_login_attempts + 1,
    is_login_with_email_locked = is_login_with_email_locked OR invalid_login_attempts + 1 > $2,
    updated_at = now()
WHERE id = $1
RETURNING invalid_login_attempts, is_login_with_email_locked`
	successfulLoginSQL = `
UPDATE users SET invalid_login_attempts = 0, last_login_at = $2, updated_at = now() WHERE id = $1`
)

func (r *PGRepository) CreateWithCompany(ctx context.Context, companyID uuid.UUID, companyName string, u domain.User) error {
	err := pgdb.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := trepo.New(tx).Create(ctx, companyID, companyName); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insertUserSQL, u.ID, companyID, u.EmailAddress, u.PasswordHash, u.FirstName, u.LastName)
		return err
	})
	if pgdb.IsUniqueViolation(err) {
		return domain.ErrEmailAlreadyRegistered.Wrap(err)
	}
	return err
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.CompanyID, &u.EmailAddress, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.InvalidLoginAttempts, &u.IsLoginWithEmailLocked, &u.LastLoginAt, &u.CreatedAt)
	if pgdb.IsNoRows(err) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

func (r *PGRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, getUserByEmailSQL, email))
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, getUserByIDSQL, id))
}

func (r *PGRepository) RecordFailedLogin(ctx context.Context, id uuid.UUID, lockAfter int) (int, bool, error) {
	var attempts int
	var locked bool
	err := r.db.QueryRow(ctx, failedLoginSQL, id, lockAfter).Scan(&attempts, &locked)
	if pgdb.IsNoRows(err) {
		return 0, false, domain.ErrUserNotFound
	}
	return attempts, locked, err
}

func (r *PGRepository) RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, successfulLoginSQL, id, at)
	return err
}
