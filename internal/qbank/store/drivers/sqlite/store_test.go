package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbankhq/qbank/internal/qbank/domain"
	"github.com/qbankhq/qbank/internal/qbank/store"
	"github.com/qbankhq/qbank/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedCompany(t *testing.T, s store.Store, name string) domain.Company {
	t.Helper()

	c := domain.Company{ID: idx.New().String(), Name: name}
	require.NoError(t, s.Companies().CreateCompany(context.Background(), c))
	return c
}

func seedUser(t *testing.T, s store.Store, companyID string, role domain.Role) domain.User {
	t.Helper()

	u := domain.User{
		ID:        idx.New().String(),
		Subject:   "sub_" + idx.New().String(),
		CompanyID: companyID,
		Email:     idx.New().String() + "@example.com",
		Role:      role,
		Active:    true,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestCompaniesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := seedCompany(t, s, "Acme")

	got, err := s.Companies().GetCompanyByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Acme", got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.Companies().GetCompanyByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCompanyNameUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedCompany(t, s, "Acme")

	err := s.Companies().CreateCompany(ctx, domain.Company{ID: idx.New().String(), Name: "Acme"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	company := seedCompany(t, s, "Acme")
	created := seedUser(t, s, company.ID, domain.RoleAdmin)

	got, err := s.Users().GetUserBySubject(ctx, created.Subject)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, domain.RoleAdmin, got.Role)
	assert.Equal(t, company.ID, got.CompanyID)
	assert.True(t, got.Active)

	_, err = s.Users().GetUserBySubject(ctx, "sub_missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserSubjectUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	company := seedCompany(t, s, "Acme")
	existing := seedUser(t, s, company.ID, domain.RoleEvaluator)

	dup := domain.User{
		ID:        idx.New().String(),
		Subject:   existing.Subject,
		CompanyID: company.ID,
		Email:     "other@example.com",
		Role:      domain.RoleCandidate,
		Active:    true,
	}
	assert.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
}

func TestUserEmailUniquePerCompany(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acme := seedCompany(t, s, "Acme")
	other := seedCompany(t, s, "Globex")

	u := domain.User{
		ID:        idx.New().String(),
		Subject:   "sub_a",
		CompanyID: acme.ID,
		Email:     "shared@example.com",
		Role:      domain.RoleEvaluator,
		Active:    true,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	// Same email within the same company conflicts.
	dup := u
	dup.ID = idx.New().String()
	dup.Subject = "sub_b"
	assert.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	// Same email in a different company is fine.
	elsewhere := dup
	elsewhere.ID = idx.New().String()
	elsewhere.Subject = "sub_c"
	elsewhere.CompanyID = other.ID
	assert.NoError(t, s.Users().CreateUser(ctx, elsewhere))
}

func seedInvitation(t *testing.T, s store.Store, companyID, createdBy string, expiresAt time.Time) domain.Invitation {
	t.Helper()

	inv := domain.Invitation{
		ID:        idx.New().String(),
		Token:     "tok_" + idx.New().String(),
		CompanyID: companyID,
		CreatedBy: createdBy,
		Email:     "invitee@example.com",
		Role:      domain.RoleEvaluator,
		ExpiresAt: expiresAt,
	}
	require.NoError(t, s.Invitations().CreateInvitation(context.Background(), inv))
	return inv
}

func TestInvitationActiveLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	company := seedCompany(t, s, "Acme")
	admin := seedUser(t, s, company.ID, domain.RoleAdmin)
	inv := seedInvitation(t, s, company.ID, admin.ID, now.Add(time.Hour))

	got, err := s.Invitations().GetActiveInvitationByToken(ctx, inv.Token, now)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, domain.RoleEvaluator, got.Role)
	assert.False(t, got.Used)
}

func TestInvitationExpiredLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	company := seedCompany(t, s, "Acme")
	admin := seedUser(t, s, company.ID, domain.RoleAdmin)
	inv := seedInvitation(t, s, company.ID, admin.ID, now.Add(-time.Minute))

	_, err := s.Invitations().GetActiveInvitationByToken(ctx, inv.Token, now)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInvitationTokenUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	company := seedCompany(t, s, "Acme")
	admin := seedUser(t, s, company.ID, domain.RoleAdmin)
	inv := seedInvitation(t, s, company.ID, admin.ID, now.Add(time.Hour))

	dup := inv
	dup.ID = idx.New().String()
	assert.ErrorIs(t, s.Invitations().CreateInvitation(ctx, dup), store.ErrAlreadyExists)
}

func TestMarkInvitationUsedOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	company := seedCompany(t, s, "Acme")
	admin := seedUser(t, s, company.ID, domain.RoleAdmin)
	invitee := seedUser(t, s, company.ID, domain.RoleEvaluator)
	inv := seedInvitation(t, s, company.ID, admin.ID, now.Add(time.Hour))

	require.NoError(t, s.Invitations().MarkInvitationUsed(ctx, inv.ID, invitee.ID))

	// Second mark hits the used = 0 guard.
	err := s.Invitations().MarkInvitationUsed(ctx, inv.ID, invitee.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Used invitations drop out of the active lookup.
	_, err = s.Invitations().GetActiveInvitationByToken(ctx, inv.Token, now)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMarkInvitationUsedBeforeInviteeExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	company := seedCompany(t, s, "Acme")
	admin := seedUser(t, s, company.ID, domain.RoleAdmin)
	inv := seedInvitation(t, s, company.ID, admin.ID, now.Add(time.Hour))

	// Accepting writes in this order: mark used referencing the invitee,
	// then insert the invitee. The used_by reference must hold until commit.
	inviteeID := idx.New().String()
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().MarkInvitationUsed(ctx, inv.ID, inviteeID); err != nil {
			return err
		}
		return tx.Users().CreateUser(ctx, domain.User{
			ID:        inviteeID,
			Subject:   "sub_invitee",
			CompanyID: company.ID,
			Email:     inv.Email,
			Role:      inv.Role,
			Active:    true,
		})
	})
	require.NoError(t, err)

	_, err = s.Invitations().GetActiveInvitationByToken(ctx, inv.Token, now)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Users().GetUserBySubject(ctx, "sub_invitee")
	require.NoError(t, err)
	assert.Equal(t, inviteeID, got.ID)
}

func TestDeleteExpiredInvitations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	company := seedCompany(t, s, "Acme")
	admin := seedUser(t, s, company.ID, domain.RoleAdmin)

	live := seedInvitation(t, s, company.ID, admin.ID, now.Add(time.Hour))
	expired := seedInvitation(t, s, company.ID, admin.ID, now.Add(-time.Hour))

	require.NoError(t, s.Invitations().DeleteExpiredInvitations(ctx, now))

	_, err := s.Invitations().GetActiveInvitationByToken(ctx, live.Token, now)
	assert.NoError(t, err)

	_, err = s.Invitations().GetActiveInvitationByToken(ctx, expired.Token, now.Add(-2*time.Hour))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	company := seedCompany(t, s, "Acme")

	wantErr := assert.AnError
	err := s.WithTx(ctx, func(tx store.Tx) error {
		u := domain.User{
			ID:        idx.New().String(),
			Subject:   "sub_tx",
			CompanyID: company.ID,
			Email:     "tx@example.com",
			Role:      domain.RoleAdmin,
			Active:    true,
		}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	_, err = s.Users().GetUserBySubject(ctx, "sub_tx")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	company := seedCompany(t, s, "Acme")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, domain.User{
			ID:        idx.New().String(),
			Subject:   "sub_committed",
			CompanyID: company.ID,
			Email:     "ok@example.com",
			Role:      domain.RoleAdmin,
			Active:    true,
		})
	})
	require.NoError(t, err)

	got, err := s.Users().GetUserBySubject(ctx, "sub_committed")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)
}
