package sqlite

import (
	"context"
	"time"

	"github.com/qbankhq/qbank/internal/qbank/domain"
)

type companiesRepo struct {
	db dbtx
}

func (r *companiesRepo) CreateCompany(ctx context.Context, c domain.Company) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, now, now,
	)
	return mapConflict(err)
}

func (r *companiesRepo) GetCompanyByID(ctx context.Context, id string) (domain.Company, error) {
	var c domain.Company
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM companies
		WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Company{}, mapNotFound(err)
	}
	return c, nil
}
