package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports"
	"github.com/bnema/fireteam-cli/internal/slogx"
)

// CredentialManager owns one session's credential and refreshes it lazily.
// Refreshes are serialized; readers observe either the old or the new credential.
type CredentialManager struct {
	refresher ports.TokenRefresher
	clock     ports.Clock
	skew      time.Duration
	onRefresh func(context.Context, domain.Credential) error

	mu       sync.RWMutex
	current  domain.Credential
	forced   bool
	attempts uint64
}

type CredentialManagerOption func(*CredentialManager)

// WithRefreshSkew refreshes credentials that expire within skew.
func WithRefreshSkew(skew time.Duration) CredentialManagerOption {
	return func(m *CredentialManager) {
		m.skew = skew
	}
}

// WithOnRefresh registers a hook called after every successful refresh, typically
// to persist the rotated tokens. Hook errors are logged and otherwise ignored.
func WithOnRefresh(hook func(context.Context, domain.Credential) error) CredentialManagerOption {
	return func(m *CredentialManager) {
		m.onRefresh = hook
	}
}

func NewCredentialManager(refresher ports.TokenRefresher, clock ports.Clock, opts ...CredentialManagerOption) *CredentialManager {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	m := &CredentialManager{refresher: refresher, clock: clock}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *CredentialManager) Establish(cred domain.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = cred
	m.forced = false
}

// Expire marks the current credential as unusable so the next call refreshes it.
// Used when the upstream rejects a credential that looked valid locally.
func (m *CredentialManager) Expire() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.forced = true
}

func (m *CredentialManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = domain.Credential{}
	m.forced = false
}

func (m *CredentialManager) Current() domain.Credential {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// GetValidCredential returns the current credential, refreshing it first when it
// has expired. A failed refresh returns the stale credential without error; only
// a session that never had a credential fails with domain.ErrAuth.
func (m *CredentialManager) GetValidCredential(ctx context.Context) (domain.Credential, error) {
	m.mu.RLock()
	current := m.current
	stale := m.needsRefresh()
	observed := m.attempts
	m.mu.RUnlock()

	if !current.Established() {
		return domain.Credential{}, domain.ErrAuth
	}
	if !stale {
		return current, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller already attempted a refresh while we waited for the lock.
	if m.attempts != observed || !m.needsRefresh() {
		return m.current, nil
	}
	if !m.current.CanRefresh() {
		return m.current, nil
	}

	m.attempts++
	logger := slogx.FromContext(ctx)

	refreshed, err := m.refresher.Refresh(ctx, m.current.RefreshToken)
	if err != nil {
		credentialRefreshes.WithLabelValues("failed").Inc()
		logger.Warn("credential refresh failed, continuing with stale credential", "error", err)
		return m.current, nil
	}
	credentialRefreshes.WithLabelValues("ok").Inc()

	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = m.current.RefreshToken
	}
	if refreshed.SubjectID == "" {
		refreshed.SubjectID = m.current.SubjectID
	}
	m.current = refreshed
	m.forced = false

	if m.onRefresh != nil {
		if err := m.onRefresh(ctx, refreshed); err != nil {
			logger.Warn("persist refreshed credential", "error", fmt.Errorf("on refresh hook: %w", err))
		}
	}

	return m.current, nil
}

// needsRefresh must be called with mu held.
func (m *CredentialManager) needsRefresh() bool {
	return m.forced || m.current.Expired(m.clock.Now(), m.skew)
}
