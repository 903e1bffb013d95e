package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, email, password_hash, first_name, last_name,
	role, is_active, is_email_verified, verification_token_hash,
	reset_token_hash, reset_token_expires_at, last_login, created_at, updated_at`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.AdminUser, error) {
	var (
		u         domain.AdminUser
		firstName sql.NullString
		lastName  sql.NullString
		role      string
		verifHash sql.NullString
		resetHash sql.NullString
		resetExp  sql.NullTime
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&firstName, &lastName, &role, &u.Active, &u.EmailVerified,
		&verifHash, &resetHash, &resetExp, &lastLogin,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.AdminUser{}, err
	}
	u.FirstName = mapNullString(firstName)
	u.LastName = mapNullString(lastName)
	u.Role = domain.Role(role)
	u.VerificationTokenHash = mapNullStringPtr(verifHash)
	u.ResetTokenHash = mapNullStringPtr(resetHash)
	u.ResetTokenExpiresAt = mapNullTimePtr(resetExp)
	u.LastLogin = mapNullTimePtr(lastLogin)
	return u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.AdminUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM admin_users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.AdminUser{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (domain.AdminUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM admin_users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		return domain.AdminUser{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (domain.AdminUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM admin_users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return domain.AdminUser{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u domain.AdminUser) error {
	ts := now()
	if !u.CreatedAt.IsZero() {
		ts = u.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_users (
			id, username, email, password_hash, first_name, last_name,
			role, is_active, is_email_verified, verification_token_hash,
			reset_token_hash, reset_token_expires_at, last_login,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash,
		mapStringNull(u.FirstName), mapStringNull(u.LastName),
		string(u.Role), u.Active, u.EmailVerified,
		mapOptionalString(u.VerificationTokenHash),
		mapOptionalString(u.ResetTokenHash),
		mapOptionalTime(u.ResetTokenExpiresAt),
		mapOptionalTime(u.LastLogin),
		ts, ts,
	)
	return mapConstraint(err)
}

func (r *usersRepo) List(ctx context.Context) ([]domain.AdminUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM admin_users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.AdminUser
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) StampLastLogin(ctx context.Context, userID string) error {
	ts := now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE admin_users SET last_login = ?, updated_at = ? WHERE id = ?`,
		ts, ts, userID)
	return err
}

func (r *usersRepo) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE admin_users
		SET reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		tokenHash, expiresAt.UTC(), now(), userID)
	return err
}

func (r *usersRepo) GetByResetTokenHash(ctx context.Context, tokenHash string) (domain.AdminUser, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM admin_users
		WHERE reset_token_hash = ? AND reset_token_expires_at > ?`,
		tokenHash, now())
	u, err := scanUser(row)
	if err != nil {
		return domain.AdminUser{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) UpdatePasswordAndClearReset(ctx context.Context, userID, newHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE admin_users
		SET password_hash = ?, reset_token_hash = NULL,
			reset_token_expires_at = NULL, updated_at = ?
		WHERE id = ?`,
		newHash, now(), userID)
	return err
}

func (r *usersRepo) GetByVerificationTokenHash(ctx context.Context, tokenHash string) (domain.AdminUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM admin_users WHERE verification_token_hash = ?`,
		tokenHash)
	u, err := scanUser(row)
	if err != nil {
		return domain.AdminUser{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE admin_users
		SET is_email_verified = 1, verification_token_hash = NULL, updated_at = ?
		WHERE id = ?`,
		now(), userID)
	return err
}

func (r *usersRepo) ClearExpiredResetTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE admin_users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = ?
		WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at <= ?`,
		now(), now())
	return err
}
