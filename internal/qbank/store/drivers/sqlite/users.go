package sqlite

import (
	"context"
	"time"

	"github.com/qbankhq/qbank/internal/qbank/domain"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, subject, company_id, email, role, full_name, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Subject, u.CompanyID, u.Email, string(u.Role), u.FullName, u.Active, now, now,
	)
	return mapConflict(err)
}

func (r *usersRepo) GetUserBySubject(ctx context.Context, subject string) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, subject, company_id, email, role, full_name, active, created_at, updated_at
		FROM users
		WHERE subject = ?`,
		subject,
	).Scan(&u.ID, &u.Subject, &u.CompanyID, &u.Email, &role, &u.FullName, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	return u, nil
}
