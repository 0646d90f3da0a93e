package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/qbankhq/qbank/internal/qbank/domain"
	"github.com/qbankhq/qbank/internal/qbank/store"
	"github.com/qbankhq/qbank/pkg/slogx"
)

type UserService struct {
	Store store.Store
}

// GetProfileBySubject returns the provisioned user for a verified subject
// along with their company.
func (s *UserService) GetProfileBySubject(
	ctx context.Context,
	subject string,
) (domain.User, domain.Company, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("profile requested for unprovisioned subject",
				slog.String("subject", subject),
			)
			return domain.User{}, domain.Company{}, ErrUserNotFound
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, domain.Company{}, err
	}

	company, err := s.Store.Companies().GetCompanyByID(ctx, user.CompanyID)
	if err != nil {
		log.Error("failed to fetch user's company",
			slog.String("company_id", user.CompanyID),
			slog.Any("error", err),
		)
		return domain.User{}, domain.Company{}, err
	}

	return user, company, nil
}
