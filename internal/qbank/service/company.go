package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/qbankhq/qbank/internal/qbank/domain"
	"github.com/qbankhq/qbank/internal/qbank/identity"
	"github.com/qbankhq/qbank/internal/qbank/metrics"
	"github.com/qbankhq/qbank/internal/qbank/store"
	"github.com/qbankhq/qbank/pkg/idx"
	"github.com/qbankhq/qbank/pkg/slogx"
)

const maxCompanyNameLength = 255

type CompanyService struct {
	Store    store.Store
	Identity identity.Provider
	Metrics  metrics.Recorder
}

// RegisterCompany creates a company and provisions the registering user as
// its admin. The user's identity comes from the provider-issued ID token; the
// admin claims are stored back at the provider in the same transaction so a
// propagation failure leaves no partial state behind.
func (s *CompanyService) RegisterCompany(
	ctx context.Context,
	companyName string,
	description string,
	adminEmail string,
	fullName string,
	idToken string,
) (domain.Company, domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	companyName = strings.TrimSpace(companyName)
	if companyName == "" || len(companyName) > maxCompanyNameLength {
		log.Warn("company registration with invalid name")
		return domain.Company{}, domain.User{}, ErrInvalidRegistration
	}
	email := strings.TrimSpace(adminEmail)
	if _, err := mail.ParseAddress(email); err != nil {
		log.Warn("company registration with invalid email")
		return domain.Company{}, domain.User{}, ErrInvalidEmail
	}

	// 2. Verify the ID token and extract the subject.
	subject, err := s.Identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		log.Warn("company registration with unverifiable id token", slog.Any("error", err))
		return domain.Company{}, domain.User{}, ErrInvalidIDToken
	}

	// 3. Reject subjects that are already provisioned.
	if _, err := s.Store.Users().GetUserBySubject(ctx, subject); err == nil {
		log.Warn("company registration for already-provisioned subject",
			slog.String("subject", subject),
		)
		return domain.Company{}, domain.User{}, ErrAccountExists
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check subject", slog.Any("error", err))
		return domain.Company{}, domain.User{}, err
	}

	company := domain.Company{
		ID:          idx.New().String(),
		Name:        companyName,
		Description: strings.TrimSpace(description),
	}
	admin := domain.User{
		ID:        idx.New().String(),
		Subject:   subject,
		CompanyID: company.ID,
		Email:     email,
		Role:      domain.RoleAdmin,
		FullName:  fullName,
		Active:    true,
	}

	// 4. Create company and admin, then store the claims at the provider.
	// The provider call runs inside the transaction so an upstream failure
	// rolls back the local writes.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Companies().CreateCompany(ctx, company); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrCompanyNameTaken
			}
			return err
		}

		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAccountExists
			}
			return err
		}

		if err := s.Identity.SetCustomClaims(ctx, subject, identity.CustomClaims{
			Role:      domain.RoleAdmin.String(),
			CompanyID: company.ID,
		}); err != nil {
			log.Error("failed to propagate admin claims",
				slog.String("subject", subject),
				slog.Any("error", err),
			)
			s.Metrics.RecordClaimsPropagationFailure()
			return ErrClaimsPropagation
		}

		return nil
	})
	if err != nil {
		return domain.Company{}, domain.User{}, err
	}

	s.Metrics.RecordCompanyRegistered()

	log.Info("company registered",
		slog.String("company_id", company.ID),
		slog.String("admin_user_id", admin.ID),
	)

	return company, admin, nil
}
