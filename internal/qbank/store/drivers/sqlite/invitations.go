package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/qbankhq/qbank/internal/qbank/domain"
	"github.com/qbankhq/qbank/internal/qbank/store"
)

type invitationsRepo struct {
	db dbtx
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (id, token, company_id, created_by, email, role, expires_at, used, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		inv.ID, inv.Token, inv.CompanyID, inv.CreatedBy, inv.Email, string(inv.Role),
		inv.ExpiresAt.UTC(), now, now,
	)
	return mapConflict(err)
}

func (r *invitationsRepo) GetActiveInvitationByToken(
	ctx context.Context,
	token string,
	now time.Time,
) (domain.Invitation, error) {
	var (
		inv    domain.Invitation
		role   string
		usedBy sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, token, company_id, created_by, email, role, expires_at, used, used_by, created_at, updated_at
		FROM invitations
		WHERE token = ? AND used = 0 AND expires_at > ?`,
		token, now.UTC(),
	).Scan(&inv.ID, &inv.Token, &inv.CompanyID, &inv.CreatedBy, &inv.Email, &role,
		&inv.ExpiresAt, &inv.Used, &usedBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	inv.Role = domain.Role(role)
	inv.UsedBy = mapNullString(usedBy)
	return inv, nil
}

// MarkInvitationUsed is conditional on used = 0 so that exactly one of any
// concurrent redeems wins; losers observe ErrNotFound.
func (r *invitationsRepo) MarkInvitationUsed(
	ctx context.Context,
	invitationID string,
	usedByUserID string,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET used = 1, used_by = ?, updated_at = ?
		WHERE id = ? AND used = 0`,
		mapStringNull(usedByUserID), time.Now().UTC(), invitationID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM invitations
		WHERE expires_at <= ? OR used = 1`,
		now.UTC(),
	)
	return err
}
