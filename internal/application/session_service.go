package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports"
)

type SessionService struct {
	repo  ports.SessionRepository
	store ports.SecretStore
	clock ports.Clock
}

func NewSessionService(repo ports.SessionRepository, store ports.SecretStore, clock ports.Clock) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SessionService{
		repo:  repo,
		store: store,
		clock: clock,
	}
}

// SecretRefFor is the secret-store key holding a session's credential.
func SecretRefFor(id domain.SessionID) string {
	return fmt.Sprintf("bungie://%s/oauth_tokens", id)
}

// SignIn stores the credential and records the session metadata. A secret left
// behind by an earlier sign-in under another key is removed; any failure is
// compensated so the session keeps pointing at a secret that exists.
func (s *SessionService) SignIn(ctx context.Context, cmd SignInCommand) error {
	session, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("get session by id: %w", err)
		}
		session = domain.Session{ID: cmd.ID}
	}
	originalSession := session
	previousSecretRef := session.Auth.SecretRef

	secretKey := cmd.SecretKey
	if secretKey == "" {
		secretKey = SecretRefFor(cmd.ID)
	}

	secretValue, err := EncodeCredential(cmd.Credential)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, secretKey, secretValue); err != nil {
		return fmt.Errorf("store credential secret: %w", err)
	}

	session.Auth = domain.Auth{Method: domain.AuthMethodOAuth, SecretRef: secretKey}
	if cmd.Identity.Valid() {
		session.Identity = cmd.Identity
	}
	if cmd.DisplayName != "" {
		session.DisplayName = cmd.DisplayName
	}
	session.UpdatedAt = s.clock.Now()

	if err := s.repo.Save(ctx, session); err != nil {
		if rollbackErr := s.store.Delete(ctx, secretKey); rollbackErr != nil {
			return fmt.Errorf("save session and rollback stored secret: %w", errors.Join(err, rollbackErr))
		}

		return fmt.Errorf("save session: %w", err)
	}

	if previousSecretRef == "" || previousSecretRef == secretKey {
		return nil
	}

	if err := s.store.Delete(ctx, previousSecretRef); err != nil {
		var rollbackErr error
		if restoreErr := s.repo.Save(ctx, originalSession); restoreErr != nil {
			rollbackErr = errors.Join(rollbackErr, restoreErr)
		}
		if newSecretDeleteErr := s.store.Delete(ctx, secretKey); newSecretDeleteErr != nil {
			rollbackErr = errors.Join(rollbackErr, newSecretDeleteErr)
		}
		if rollbackErr != nil {
			return fmt.Errorf("delete previous credential secret and rollback sign-in: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("delete previous credential secret: %w", err)
	}

	return nil
}

// SignOut clears the session's auth and deletes its secret. If the delete
// fails the session is restored to point at the surviving secret.
func (s *SessionService) SignOut(ctx context.Context, id domain.SessionID) error {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get session by id: %w", err)
	}
	originalSession := session
	secretRef := session.Auth.SecretRef

	session.Auth = domain.Auth{}
	session.UpdatedAt = s.clock.Now()

	if err := s.repo.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if secretRef == "" {
		return nil
	}

	if err := s.store.Delete(ctx, secretRef); err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return nil
		}
		if restoreErr := s.repo.Save(ctx, originalSession); restoreErr != nil {
			return fmt.Errorf("delete credential secret and restore session: %w", errors.Join(err, restoreErr))
		}
		return fmt.Errorf("delete credential secret: %w", err)
	}

	return nil
}

func (s *SessionService) LoadCredential(ctx context.Context, id domain.SessionID) (domain.Credential, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Credential{}, fmt.Errorf("session %s: %w", id, domain.ErrAuth)
		}
		return domain.Credential{}, fmt.Errorf("get session by id: %w", err)
	}
	if !session.SignedIn() {
		return domain.Credential{}, fmt.Errorf("session %s: %w", id, domain.ErrAuth)
	}

	secretValue, err := s.store.Get(ctx, session.Auth.SecretRef)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return domain.Credential{}, fmt.Errorf("session %s credential missing: %w", id, domain.ErrAuth)
		}
		return domain.Credential{}, fmt.Errorf("read credential secret: %w", err)
	}

	return DecodeCredential(secretValue)
}

// SaveCredential overwrites the stored credential in place, used after refresh.
func (s *SessionService) SaveCredential(ctx context.Context, id domain.SessionID, cred domain.Credential) error {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get session by id: %w", err)
	}
	if !session.SignedIn() {
		return fmt.Errorf("session %s: %w", id, domain.ErrAuth)
	}

	secretValue, err := EncodeCredential(cred)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, session.Auth.SecretRef, secretValue); err != nil {
		return fmt.Errorf("store refreshed credential: %w", err)
	}
	return nil
}

func (s *SessionService) Get(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session by id: %w", err)
	}
	return session, nil
}

func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *SessionService) GetStatus(ctx context.Context, id domain.SessionID) (Status, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Status{}, fmt.Errorf("get session by id: %w", err)
	}

	return s.statusFromSession(ctx, session), nil
}

func (s *SessionService) GetStatusAll(ctx context.Context) ([]Status, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	statuses := make([]Status, 0, len(sessions))
	for _, session := range sessions {
		statuses = append(statuses, s.statusFromSession(ctx, session))
	}

	return statuses, nil
}

func (s *SessionService) statusFromSession(ctx context.Context, session domain.Session) Status {
	status := Status{Session: session}
	if !session.SignedIn() {
		return status
	}

	cred, err := s.LoadCredential(ctx, session.ID)
	if err != nil {
		status.CredentialError = err.Error()
		return status
	}

	status.HasCredential = true
	status.CanRefresh = cred.CanRefresh()
	status.ExpiresAt = cred.ExpiresAt
	status.Expired = cred.Expired(s.clock.Now(), 0)
	return status
}
