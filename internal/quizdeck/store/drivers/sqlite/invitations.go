package sqlite

import (
	"context"
	"database/sql"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, token_hash, email, role, invited_by, used,
	used_by, expires_at, created_at, updated_at`

func scanInvitation(row rowScanner) (domain.Invitation, error) {
	var (
		inv    domain.Invitation
		role   string
		usedBy sql.NullString
	)
	err := row.Scan(
		&inv.ID, &inv.TokenHash, &inv.Email, &role, &inv.InvitedBy,
		&inv.Used, &usedBy, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.Role = domain.Role(role)
	inv.UsedBy = mapNullString(usedBy)
	return inv, nil
}

func (r *invitationsRepo) Create(ctx context.Context, inv domain.Invitation) error {
	ts := now()
	if !inv.CreatedAt.IsZero() {
		ts = inv.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_invitations (
			id, token_hash, email, role, invited_by, used, used_by,
			expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, inv.Email, string(inv.Role), inv.InvitedBy,
		inv.Used, mapStringNull(inv.UsedBy), inv.ExpiresAt.UTC(), ts, ts,
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetActiveByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+` FROM admin_invitations
		WHERE token_hash = ? AND used = 0 AND expires_at > ?`,
		hash, now())
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

// MarkUsed consumes the invitation. The used = 0 guard makes the update the
// single-use gate: of two racing redemptions only one affects a row, the
// other gets store.ErrNotFound and rolls back.
func (r *invitationsRepo) MarkUsed(ctx context.Context, invitationID, usedByUserID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE admin_invitations
		SET used = 1, used_by = ?, updated_at = ?
		WHERE id = ? AND used = 0`,
		usedByUserID, now(), invitationID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *invitationsRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM admin_invitations WHERE expires_at <= ?`, now())
	return err
}
