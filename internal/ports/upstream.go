package ports

import (
	"context"

	"github.com/bnema/fireteam-cli/internal/domain"
)

// ProfileSource reads live player data from the upstream profile service.
type ProfileSource interface {
	GetProfile(ctx context.Context, identity domain.Identity, components []domain.Component) (domain.Profile, error)
	GetCurrentMembership(ctx context.Context) (domain.Identity, string, error)
	GetFriends(ctx context.Context) ([]domain.Friend, error)
}

// ReferenceSource reads static, path-versioned definition content.
type ReferenceSource interface {
	FetchManifest(ctx context.Context) (domain.Manifest, error)
	FetchDefinitions(ctx context.Context, path string) (domain.DefinitionTable, error)
}

type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (domain.Credential, error)
}
