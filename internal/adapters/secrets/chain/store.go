package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/fireteam-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/fireteam-cli/internal/adapters/secrets/pass"
	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports"
	"github.com/bnema/fireteam-cli/internal/slogx"
)

// Backend is a named secret store taking part in a chain.
type Backend struct {
	Name  string
	Store ports.SecretStore
}

// Store tries its backends in order. Reads return the first hit, writes land
// in the first backend that accepts them, deletes reach every backend.
type Store struct {
	backends []Backend
}

var _ ports.SecretStore = (*Store)(nil)

var errNoBackends = errors.New("secret store chain has no backends")

func NewStore(backends ...Backend) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend.Store == nil {
			return nil, fmt.Errorf("secret backend %d (%s) is nil", i, backend.Name)
		}
	}

	return &Store{backends: append([]Backend(nil), backends...)}, nil
}

func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStore(
		Backend{Name: "pass", Store: passstore.NewStore()},
		Backend{Name: "file", Store: filestore.NewStore(fileRoot)},
	)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var errs []error
	for i, backend := range s.backends {
		err := backend.Store.Put(ctx, key, value)
		if err == nil {
			s.dropShadowed(ctx, key, i)
			return nil
		}
		if isContextError(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("%s backend put failed: %w", backend.Name, err))
	}

	return errors.Join(errs...)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for _, backend := range s.backends {
		value, err := backend.Store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if isContextError(err) {
			return "", err
		}
		errs = append(errs, fmt.Errorf("%s backend get failed: %w", backend.Name, err))
	}

	return "", errors.Join(errs...)
}

// Delete removes the key from every backend so a stale copy cannot resurface
// from a later one. Missing entries are not errors.
func (s *Store) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, backend := range s.backends {
		err := backend.Store.Delete(ctx, key)
		if err == nil || errors.Is(err, domain.ErrSecretNotFound) {
			continue
		}
		if isContextError(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("%s backend delete failed: %w", backend.Name, err))
	}

	return errors.Join(errs...)
}

// dropShadowed removes copies held by backends after the one that just took
// the write. Failures only leave an unreachable stale copy behind.
func (s *Store) dropShadowed(ctx context.Context, key string, written int) {
	for _, backend := range s.backends[written+1:] {
		if err := backend.Store.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
			slogx.FromContext(ctx).Debug("drop shadowed secret", "backend", backend.Name, "error", err)
		}
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
