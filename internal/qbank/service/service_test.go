package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/qbankhq/qbank/internal/qbank/identity"
	"github.com/qbankhq/qbank/internal/qbank/metrics"
	"github.com/qbankhq/qbank/internal/qbank/store"
	"github.com/qbankhq/qbank/internal/qbank/store/drivers/sqlite"
)

// fakeIdentity verifies tokens of the form "idtok:<subject>" and records the
// claims written against each subject.
type fakeIdentity struct {
	mu     sync.Mutex
	claims map[string]identity.CustomClaims

	failClaims bool
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{claims: map[string]identity.CustomClaims{}}
}

func (f *fakeIdentity) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	const prefix = "idtok:"
	if len(idToken) <= len(prefix) || idToken[:len(prefix)] != prefix {
		return "", identity.ErrInvalidToken
	}
	return idToken[len(prefix):], nil
}

func (f *fakeIdentity) SetCustomClaims(ctx context.Context, subject string, claims identity.CustomClaims) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClaims {
		return errors.Join(identity.ErrUpstream, errors.New("injected failure"))
	}
	f.claims[subject] = claims
	return nil
}

func (f *fakeIdentity) Ping(ctx context.Context) error { return nil }

func (f *fakeIdentity) claimsFor(subject string) (identity.CustomClaims, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.claims[subject]
	return c, ok
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestRecorder() metrics.Recorder {
	return metrics.NewCollector(prometheus.NewRegistry())
}
