package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/qbankhq/qbank/internal/qbank/domain"
	"github.com/qbankhq/qbank/internal/qbank/identity"
	"github.com/qbankhq/qbank/internal/qbank/metrics"
	"github.com/qbankhq/qbank/internal/qbank/store"
	"github.com/qbankhq/qbank/pkg/cryptox"
	"github.com/qbankhq/qbank/pkg/idx"
	"github.com/qbankhq/qbank/pkg/slogx"
)

// tokenInsertAttempts bounds retries on the astronomically unlikely token
// collision.
const tokenInsertAttempts = 3

type InvitationService struct {
	Store    store.Store
	Identity identity.Provider
	Metrics  metrics.Recorder
}

// CreateInvitation mints a single-use invitation token tied to the creator's
// company. Only evaluator and candidate roles can be invited.
func (s *InvitationService) CreateInvitation(
	ctx context.Context,
	createdBySubject string,
	email string,
	roleName string,
) (string, domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		log.Warn("invitation requested with invalid email")
		return "", domain.Invitation{}, ErrInvalidEmail
	}

	role, err := domain.ParseInvitableRole(roleName)
	if err != nil {
		log.Warn("invitation requested with invalid role",
			slog.String("role", roleName),
		)
		return "", domain.Invitation{}, ErrInvalidRole
	}

	// 2. Resolve the creator; the invitation inherits their company.
	creator, err := s.Store.Users().GetUserBySubject(ctx, createdBySubject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invitation requested by unprovisioned subject",
				slog.String("subject", createdBySubject),
			)
			return "", domain.Invitation{}, ErrUserNotFound
		}
		log.Error("failed to fetch creator", slog.Any("error", err))
		return "", domain.Invitation{}, err
	}

	// 3. Generate a token and insert, retrying on collision.
	var inv domain.Invitation
	for attempt := 0; ; attempt++ {
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			log.Error("failed to generate invitation token", slog.Any("error", err))
			return "", domain.Invitation{}, err
		}

		inv = domain.Invitation{
			ID:        idx.New().String(),
			Token:     token,
			CompanyID: creator.CompanyID,
			CreatedBy: creator.ID,
			Email:     email,
			Role:      role,
			ExpiresAt: time.Now().UTC().Add(domain.InvitationTTL),
		}

		err = s.Store.Invitations().CreateInvitation(ctx, inv)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrAlreadyExists) && attempt < tokenInsertAttempts-1 {
			log.Warn("invitation token collision, regenerating")
			continue
		}
		log.Error("failed to create invitation", slog.Any("error", err))
		return "", domain.Invitation{}, err
	}

	s.Metrics.RecordInvitationCreated(role.String())

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("company_id", inv.CompanyID),
		slog.String("role", role.String()),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	return inv.Token, inv, nil
}

// VerifyInvitation looks up a still-active invitation by its token. Used,
// expired and unknown tokens are all ErrInvitationNotFound so callers cannot
// probe token state.
func (s *InvitationService) VerifyInvitation(
	ctx context.Context,
	token string,
) (domain.Invitation, domain.Company, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.Invitation{}, domain.Company{}, ErrInvitationNotFound
	}

	inv, err := s.Store.Invitations().GetActiveInvitationByToken(ctx, token, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("verification of invalid or expired invitation token")
			return domain.Invitation{}, domain.Company{}, ErrInvitationNotFound
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.Invitation{}, domain.Company{}, err
	}

	company, err := s.Store.Companies().GetCompanyByID(ctx, inv.CompanyID)
	if err != nil {
		log.Error("failed to fetch invitation's company", slog.Any("error", err))
		return domain.Invitation{}, domain.Company{}, err
	}

	return inv, company, nil
}

// AcceptInvitation consumes an invitation and provisions the invitee. The
// invitation is marked used, the user row is created and the claims are
// stored at the provider inside one transaction; any failure rolls the whole
// thing back and leaves the invitation redeemable (unless a concurrent accept
// already won).
func (s *InvitationService) AcceptInvitation(
	ctx context.Context,
	token string,
	idToken string,
	fullName string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if token == "" || idToken == "" {
		log.Warn("invitation accept missing required fields")
		return domain.User{}, ErrInvalidInvitationRequest
	}

	// 2. Look up the active invitation.
	inv, err := s.Store.Invitations().GetActiveInvitationByToken(ctx, token, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("accept attempted with invalid or expired invitation token")
			return domain.User{}, ErrInvitationNotFound
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.User{}, err
	}

	// 3. Verify the invitee's ID token.
	subject, err := s.Identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		log.Warn("invitation accept with unverifiable id token", slog.Any("error", err))
		return domain.User{}, ErrInvalidIDToken
	}

	user := domain.User{
		ID:        idx.New().String(),
		Subject:   subject,
		CompanyID: inv.CompanyID,
		Email:     inv.Email,
		Role:      inv.Role,
		FullName:  fullName,
		Active:    true,
	}

	// 4. Mark used, create the user and propagate claims atomically. The
	// mark-used runs first so concurrent accepts of the same token all fail
	// with ErrInvitationNotFound rather than a conflict on the user row; the
	// used_by reference is deferred, so it resolves once the user row lands
	// later in the same transaction.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().MarkInvitationUsed(ctx, inv.ID, user.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationNotFound
			}
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAccountExists
			}
			return err
		}

		if err := s.Identity.SetCustomClaims(ctx, subject, identity.CustomClaims{
			Role:      inv.Role.String(),
			CompanyID: inv.CompanyID,
		}); err != nil {
			log.Error("failed to propagate invitee claims",
				slog.String("subject", subject),
				slog.Any("error", err),
			)
			s.Metrics.RecordClaimsPropagationFailure()
			return ErrClaimsPropagation
		}

		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	s.Metrics.RecordInvitationAccepted(inv.Role.String())

	log.Info("invitation accepted",
		slog.String("invitation_id", inv.ID),
		slog.String("user_id", user.ID),
		slog.String("company_id", inv.CompanyID),
		slog.String("role", inv.Role.String()),
	)

	return user, nil
}
