package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credentialNow = time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)

func clockAt(t *testing.T, now time.Time) *mocks.MockClock {
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(now)
	return clock
}

func TestCredentialManagerFailsWithoutEstablishedCredential(t *testing.T) {
	refresher := mocks.NewMockTokenRefresher(t)
	manager := NewCredentialManager(refresher, fixedClock{now: credentialNow})

	_, err := manager.GetValidCredential(context.Background())
	require.ErrorIs(t, err, domain.ErrAuth)
}

func TestCredentialManagerReturnsValidCredentialWithoutRefresh(t *testing.T) {
	refresher := mocks.NewMockTokenRefresher(t)
	manager := NewCredentialManager(refresher, clockAt(t, credentialNow))

	cred := domain.Credential{AccessToken: "access", RefreshToken: "refresh", ExpiresAt: credentialNow.Add(time.Hour)}
	manager.Establish(cred)

	got, err := manager.GetValidCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cred, got)
}

func TestCredentialManagerReturnsStaleCredentialWhenRefreshFails(t *testing.T) {
	refresher := mocks.NewMockTokenRefresher(t)
	manager := NewCredentialManager(refresher, clockAt(t, credentialNow))

	stale := domain.Credential{AccessToken: "old", RefreshToken: "refresh", ExpiresAt: credentialNow.Add(-time.Minute), SubjectID: "42"}
	manager.Establish(stale)

	refresher.EXPECT().Refresh(mockAnyContext(), "refresh").
		Return(domain.Credential{}, errors.New("token endpoint returned status 500")).Once()

	got, err := manager.GetValidCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stale, got)
	assert.Equal(t, stale, manager.Current())
}

func TestCredentialManagerRefreshesExpiredCredential(t *testing.T) {
	refresher := mocks.NewMockTokenRefresher(t)

	var persisted []domain.Credential
	manager := NewCredentialManager(refresher, clockAt(t, credentialNow), WithOnRefresh(func(_ context.Context, cred domain.Credential) error {
		persisted = append(persisted, cred)
		return nil
	}))
	manager.Establish(domain.Credential{AccessToken: "old", RefreshToken: "refresh", ExpiresAt: credentialNow, SubjectID: "42"})

	refresher.EXPECT().Refresh(mockAnyContext(), "refresh").
		Return(domain.Credential{AccessToken: "new", ExpiresAt: credentialNow.Add(time.Hour)}, nil).Once()

	got, err := manager.GetValidCredential(context.Background())
	require.NoError(t, err)

	want := domain.Credential{AccessToken: "new", RefreshToken: "refresh", ExpiresAt: credentialNow.Add(time.Hour), SubjectID: "42"}
	assert.Equal(t, want, got)
	assert.Equal(t, []domain.Credential{want}, persisted)
}

func TestCredentialManagerIgnoresPersistHookFailure(t *testing.T) {
	refresher := mocks.NewMockTokenRefresher(t)
	manager := NewCredentialManager(refresher, fixedClock{now: credentialNow}, WithOnRefresh(func(context.Context, domain.Credential) error {
		return errors.New("disk full")
	}))
	manager.Establish(domain.Credential{AccessToken: "old", RefreshToken: "refresh", ExpiresAt: credentialNow})

	refresher.EXPECT().Refresh(mockAnyContext(), "refresh").
		Return(domain.Credential{AccessToken: "new", RefreshToken: "rotated", ExpiresAt: credentialNow.Add(time.Hour)}, nil).Once()

	got, err := manager.GetValidCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)
	assert.Equal(t, "rotated", got.RefreshToken)
}

func TestCredentialManagerRefreshesWithinSkew(t *testing.T) {
	refresher := mocks.NewMockTokenRefresher(t)
	manager := NewCredentialManager(refresher, clockAt(t, credentialNow), WithRefreshSkew(time.Minute))
	manager.Establish(domain.Credential{AccessToken: "old", RefreshToken: "refresh", ExpiresAt: credentialNow.Add(30 * time.Second)})

	refresher.EXPECT().Refresh(mockAnyContext(), "refresh").
		Return(domain.Credential{AccessToken: "new", RefreshToken: "refresh", ExpiresAt: credentialNow.Add(time.Hour)}, nil).Once()

	got, err := manager.GetValidCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)
}

func TestCredentialManagerExpiredWithoutRefreshTokenIsReturnedAsIs(t *testing.T) {
	refresher := mocks.NewMockTokenRefresher(t)
	manager := NewCredentialManager(refresher, clockAt(t, credentialNow))

	cred := domain.Credential{AccessToken: "old", ExpiresAt: credentialNow.Add(-time.Hour)}
	manager.Establish(cred)

	got, err := manager.GetValidCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cred, got)
}

func TestCredentialManagerRefreshesOnceClockPassesExpiry(t *testing.T) {
	refresher := mocks.NewMockTokenRefresher(t)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(credentialNow).Once()
	clock.EXPECT().Now().Return(credentialNow.Add(2 * time.Hour))

	manager := NewCredentialManager(refresher, clock)
	manager.Establish(domain.Credential{AccessToken: "old", RefreshToken: "refresh", ExpiresAt: credentialNow.Add(time.Hour)})

	got, err := manager.GetValidCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", got.AccessToken)

	refresher.EXPECT().Refresh(mockAnyContext(), "refresh").
		Return(domain.Credential{AccessToken: "new", ExpiresAt: credentialNow.Add(3 * time.Hour)}, nil).Once()

	got, err = manager.GetValidCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)
}

func TestCredentialManagerExpireForcesRefresh(t *testing.T) {
	refresher := mocks.NewMockTokenRefresher(t)
	manager := NewCredentialManager(refresher, fixedClock{now: credentialNow})
	manager.Establish(domain.Credential{AccessToken: "old", RefreshToken: "refresh"})

	refresher.EXPECT().Refresh(mockAnyContext(), "refresh").
		Return(domain.Credential{AccessToken: "new", RefreshToken: "refresh"}, nil).Once()

	manager.Expire()
	got, err := manager.GetValidCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)

	got, err = manager.GetValidCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)
}

func TestCredentialManagerSerializesConcurrentRefresh(t *testing.T) {
	refresher := mocks.NewMockTokenRefresher(t)
	manager := NewCredentialManager(refresher, fixedClock{now: credentialNow})
	manager.Establish(domain.Credential{AccessToken: "old", RefreshToken: "refresh", ExpiresAt: credentialNow})

	var calls atomic.Int32
	refresher.EXPECT().Refresh(mockAnyContext(), "refresh").
		RunAndReturn(func(context.Context, string) (domain.Credential, error) {
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			return domain.Credential{AccessToken: "new", RefreshToken: "refresh", ExpiresAt: credentialNow.Add(time.Hour)}, nil
		}).Once()

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cred, err := manager.GetValidCredential(context.Background())
			if err == nil {
				results[i] = cred.AccessToken
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, token := range results {
		assert.Equal(t, "new", token)
	}
}

func TestCredentialManagerClear(t *testing.T) {
	refresher := mocks.NewMockTokenRefresher(t)
	manager := NewCredentialManager(refresher, fixedClock{now: credentialNow})
	manager.Establish(domain.Credential{AccessToken: "a"})
	manager.Clear()

	_, err := manager.GetValidCredential(context.Background())
	require.ErrorIs(t, err, domain.ErrAuth)
}
