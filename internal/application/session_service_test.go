package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testCredential() domain.Credential {
	return domain.Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Unix(1772370000, 0).UTC(),
		SubjectID:    "4611",
	}
}

func encodedTestCredential(t *testing.T) string {
	t.Helper()
	value, err := EncodeCredential(testCredential())
	require.NoError(t, err)
	return value
}

func TestSessionServiceSignInCreatesSession(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewSessionService(repo, store, fixedClock{now: sessionNow})

	identity := domain.Identity{Platform: domain.PlatformSteam, MembershipID: "7"}
	repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(domain.Session{}, domain.ErrSessionNotFound)
	store.EXPECT().Put(mockAnyContext(), "bungie://default/oauth_tokens", encodedTestCredential(t)).Return(nil)
	repo.EXPECT().Save(mockAnyContext(), domain.Session{
		ID:          domain.DefaultSessionID,
		Identity:    identity,
		DisplayName: "Guardian#1234",
		Auth:        domain.Auth{Method: domain.AuthMethodOAuth, SecretRef: "bungie://default/oauth_tokens"},
		UpdatedAt:   sessionNow,
	}).Return(nil)

	err := service.SignIn(context.Background(), SignInCommand{
		ID:          domain.DefaultSessionID,
		Identity:    identity,
		DisplayName: "Guardian#1234",
		Credential:  testCredential(),
	})
	require.NoError(t, err)
}

func TestSessionServiceSignInRollsBackSecretWhenSaveFails(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewSessionService(repo, store, fixedClock{now: sessionNow})

	saveErr := errors.New("disk full")
	repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(domain.Session{ID: domain.DefaultSessionID}, nil)
	store.EXPECT().Put(mockAnyContext(), "bungie://default/oauth_tokens", encodedTestCredential(t)).Return(nil)
	repo.EXPECT().Save(mockAnyContext(), mockAnyContext()).Return(saveErr)
	store.EXPECT().Delete(mockAnyContext(), "bungie://default/oauth_tokens").Return(nil)

	err := service.SignIn(context.Background(), SignInCommand{ID: domain.DefaultSessionID, Credential: testCredential()})
	require.ErrorIs(t, err, saveErr)
}

func TestSessionServiceSignInJoinsRollbackError(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewSessionService(repo, store, fixedClock{now: sessionNow})

	saveErr := errors.New("disk full")
	rollbackErr := errors.New("keyring locked")
	repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(domain.Session{ID: domain.DefaultSessionID}, nil)
	store.EXPECT().Put(mockAnyContext(), "bungie://default/oauth_tokens", encodedTestCredential(t)).Return(nil)
	repo.EXPECT().Save(mockAnyContext(), mockAnyContext()).Return(saveErr)
	store.EXPECT().Delete(mockAnyContext(), "bungie://default/oauth_tokens").Return(rollbackErr)

	err := service.SignIn(context.Background(), SignInCommand{ID: domain.DefaultSessionID, Credential: testCredential()})
	require.ErrorIs(t, err, saveErr)
	require.ErrorIs(t, err, rollbackErr)
}

func TestSessionServiceSignInRotationDeletesPreviousSecretRef(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewSessionService(repo, store, fixedClock{now: sessionNow})

	existing := domain.Session{
		ID:   domain.DefaultSessionID,
		Auth: domain.Auth{Method: domain.AuthMethodOAuth, SecretRef: "bungie://default/legacy"},
	}
	repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(existing, nil)
	store.EXPECT().Put(mockAnyContext(), "bungie://default/oauth_tokens", encodedTestCredential(t)).Return(nil)
	repo.EXPECT().Save(mockAnyContext(), mockAnyContext()).Return(nil).Once()
	store.EXPECT().Delete(mockAnyContext(), "bungie://default/legacy").Return(nil)

	err := service.SignIn(context.Background(), SignInCommand{ID: domain.DefaultSessionID, Credential: testCredential()})
	require.NoError(t, err)
}

func TestSessionServiceSignInRotationRestoresWhenPreviousDeleteFails(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewSessionService(repo, store, fixedClock{now: sessionNow})

	deleteErr := errors.New("delete legacy secret failed")
	existing := domain.Session{
		ID:   domain.DefaultSessionID,
		Auth: domain.Auth{Method: domain.AuthMethodOAuth, SecretRef: "bungie://default/legacy"},
	}
	repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(existing, nil)
	store.EXPECT().Put(mockAnyContext(), "bungie://default/oauth_tokens", encodedTestCredential(t)).Return(nil)
	repo.EXPECT().Save(mockAnyContext(), domain.Session{
		ID:        domain.DefaultSessionID,
		Auth:      domain.Auth{Method: domain.AuthMethodOAuth, SecretRef: "bungie://default/oauth_tokens"},
		UpdatedAt: sessionNow,
	}).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), "bungie://default/legacy").Return(deleteErr)
	repo.EXPECT().Save(mockAnyContext(), existing).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), "bungie://default/oauth_tokens").Return(nil)

	err := service.SignIn(context.Background(), SignInCommand{ID: domain.DefaultSessionID, Credential: testCredential()})
	require.ErrorIs(t, err, deleteErr)
}

func TestSessionServiceSignOutDeletesSecret(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewSessionService(repo, store, fixedClock{now: sessionNow})

	identity := domain.Identity{Platform: domain.PlatformSteam, MembershipID: "7"}
	existing := domain.Session{
		ID:       domain.DefaultSessionID,
		Identity: identity,
		Auth:     domain.Auth{Method: domain.AuthMethodOAuth, SecretRef: "bungie://default/oauth_tokens"},
	}
	repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(existing, nil)
	repo.EXPECT().Save(mockAnyContext(), domain.Session{
		ID:        domain.DefaultSessionID,
		Identity:  identity,
		UpdatedAt: sessionNow,
	}).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), "bungie://default/oauth_tokens").Return(nil)

	require.NoError(t, service.SignOut(context.Background(), domain.DefaultSessionID))
}

func TestSessionServiceSignOutToleratesMissingSecret(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewSessionService(repo, store, fixedClock{now: sessionNow})

	existing := domain.Session{
		ID:   domain.DefaultSessionID,
		Auth: domain.Auth{Method: domain.AuthMethodOAuth, SecretRef: "bungie://default/oauth_tokens"},
	}
	repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(existing, nil)
	repo.EXPECT().Save(mockAnyContext(), mockAnyContext()).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), "bungie://default/oauth_tokens").Return(domain.ErrSecretNotFound)

	require.NoError(t, service.SignOut(context.Background(), domain.DefaultSessionID))
}

func TestSessionServiceSignOutRestoresSessionWhenDeleteFails(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewSessionService(repo, store, fixedClock{now: sessionNow})

	deleteErr := errors.New("pass exited 1")
	existing := domain.Session{
		ID:   domain.DefaultSessionID,
		Auth: domain.Auth{Method: domain.AuthMethodOAuth, SecretRef: "bungie://default/oauth_tokens"},
	}
	repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(existing, nil)
	repo.EXPECT().Save(mockAnyContext(), domain.Session{ID: domain.DefaultSessionID, UpdatedAt: sessionNow}).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), "bungie://default/oauth_tokens").Return(deleteErr)
	repo.EXPECT().Save(mockAnyContext(), existing).Return(nil)

	err := service.SignOut(context.Background(), domain.DefaultSessionID)
	require.ErrorIs(t, err, deleteErr)
}

func TestSessionServiceLoadCredential(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewSessionService(repo, store, fixedClock{now: sessionNow})

	existing := domain.Session{
		ID:   domain.DefaultSessionID,
		Auth: domain.Auth{Method: domain.AuthMethodOAuth, SecretRef: "bungie://default/oauth_tokens"},
	}
	repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(existing, nil)
	store.EXPECT().Get(mockAnyContext(), "bungie://default/oauth_tokens").Return(encodedTestCredential(t), nil)

	cred, err := service.LoadCredential(context.Background(), domain.DefaultSessionID)
	require.NoError(t, err)
	assert.Equal(t, testCredential(), cred)
}

func TestSessionServiceLoadCredentialSignedOut(t *testing.T) {
	tests := []struct {
		name    string
		session domain.Session
		repoErr error
	}{
		{name: "missing session", repoErr: domain.ErrSessionNotFound},
		{name: "no secret ref", session: domain.Session{ID: domain.DefaultSessionID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockSessionRepository(t)
			store := mocks.NewMockSecretStore(t)
			service := NewSessionService(repo, store, fixedClock{now: sessionNow})

			repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(tt.session, tt.repoErr)

			_, err := service.LoadCredential(context.Background(), domain.DefaultSessionID)
			require.ErrorIs(t, err, domain.ErrAuth)
		})
	}
}

func TestSessionServiceSaveCredentialOverwritesSecret(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewSessionService(repo, store, fixedClock{now: sessionNow})

	existing := domain.Session{
		ID:   domain.DefaultSessionID,
		Auth: domain.Auth{Method: domain.AuthMethodOAuth, SecretRef: "bungie://default/oauth_tokens"},
	}
	repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(existing, nil)
	store.EXPECT().Put(mockAnyContext(), "bungie://default/oauth_tokens", encodedTestCredential(t)).Return(nil)

	require.NoError(t, service.SaveCredential(context.Background(), domain.DefaultSessionID, testCredential()))
}

func TestSessionServiceGetStatusAll(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewSessionService(repo, store, fixedClock{now: sessionNow})

	signedIn := domain.Session{
		ID:   domain.DefaultSessionID,
		Auth: domain.Auth{Method: domain.AuthMethodOAuth, SecretRef: "bungie://default/oauth_tokens"},
	}
	signedOut := domain.Session{ID: "alt"}
	repo.EXPECT().List(mockAnyContext()).Return([]domain.Session{signedIn, signedOut}, nil)
	repo.EXPECT().GetByID(mockAnyContext(), domain.DefaultSessionID).Return(signedIn, nil)
	store.EXPECT().Get(mockAnyContext(), "bungie://default/oauth_tokens").Return(encodedTestCredential(t), nil)

	statuses, err := service.GetStatusAll(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.True(t, statuses[0].HasCredential)
	assert.True(t, statuses[0].CanRefresh)
	assert.False(t, statuses[0].Expired)
	assert.Equal(t, testCredential().ExpiresAt, statuses[0].ExpiresAt)

	assert.False(t, statuses[1].HasCredential)
	assert.Empty(t, statuses[1].CredentialError)
}

func TestSessionServiceGetWrapsNotFound(t *testing.T) {
	repo := mocks.NewMockSessionRepository(t)
	service := NewSessionService(repo, mocks.NewMockSecretStore(t), fixedClock{now: sessionNow})

	repo.EXPECT().GetByID(mockAnyContext(), domain.SessionID("alt")).Return(domain.Session{}, domain.ErrSessionNotFound)
	repo.EXPECT().List(mockAnyContext()).Return([]domain.Session{{ID: domain.DefaultSessionID}}, nil)

	_, err := service.Get(context.Background(), "alt")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	sessions, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestCredentialCodec(t *testing.T) {
	t.Run("round trip keeps unix expiry", func(t *testing.T) {
		decoded, err := DecodeCredential(encodedTestCredential(t))
		require.NoError(t, err)
		assert.Equal(t, testCredential(), decoded)
	})

	t.Run("zero expiry is omitted", func(t *testing.T) {
		value, err := EncodeCredential(domain.Credential{AccessToken: "a"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"access_token":"a"}`, value)
	})

	t.Run("rejects empty tokens", func(t *testing.T) {
		_, err := DecodeCredential(`{"membership_id":"1"}`)
		require.Error(t, err)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := DecodeCredential(`{`)
		require.Error(t, err)
	})
}
