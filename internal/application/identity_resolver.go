package application

import (
	"context"
	"sync"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports"
	"github.com/bnema/fireteam-cli/internal/slogx"
)

// IdentityResolver finds the platform a membership id is active on by probing
// every known platform in ascending order. Resolved identities are kept for the
// lifetime of the resolver.
type IdentityResolver struct {
	profiles   ports.ProfileSource
	components []domain.Component

	mu       sync.RWMutex
	resolved map[string]domain.Identity
}

func NewIdentityResolver(profiles ports.ProfileSource) *IdentityResolver {
	return &IdentityResolver{
		profiles:   profiles,
		components: domain.MemberComponents,
		resolved:   map[string]domain.Identity{},
	}
}

func (r *IdentityResolver) Resolve(ctx context.Context, membershipID string) (domain.Identity, bool) {
	profile, ok := r.ResolveProfile(ctx, membershipID)
	if !ok {
		return domain.Identity{}, false
	}
	return profile.Identity, true
}

// ResolveProfile returns the profile fetched by the probe that succeeded. A
// previously resolved identity is fetched directly without probing.
func (r *IdentityResolver) ResolveProfile(ctx context.Context, membershipID string) (domain.Profile, bool) {
	logger := slogx.FromContext(ctx).With("membership_id", membershipID)

	if identity, ok := r.cached(membershipID); ok {
		profile, err := r.profiles.GetProfile(ctx, identity, r.components)
		if err != nil {
			logger.Debug("fetch resolved member failed", "platform", identity.Platform, "error", err)
			return domain.Profile{}, false
		}
		if len(profile.Characters) == 0 {
			return domain.Profile{}, false
		}
		return withIdentity(profile, identity), true
	}

	for _, platform := range domain.ProbeOrder() {
		if ctx.Err() != nil {
			return domain.Profile{}, false
		}

		identity := domain.Identity{Platform: platform, MembershipID: membershipID}
		profile, err := r.profiles.GetProfile(ctx, identity, r.components)
		if err != nil {
			identityProbes.WithLabelValues("error").Inc()
			logger.Debug("platform probe failed", "platform", platform, "error", err)
			continue
		}
		if len(profile.Characters) == 0 {
			identityProbes.WithLabelValues("empty").Inc()
			continue
		}

		identityProbes.WithLabelValues("resolved").Inc()
		r.remember(membershipID, identity)
		return withIdentity(profile, identity), true
	}

	logger.Info("member unresolvable on every platform")
	return domain.Profile{}, false
}

func (r *IdentityResolver) Remember(identity domain.Identity) {
	if !identity.Valid() {
		return
	}
	r.remember(identity.MembershipID, identity)
}

func (r *IdentityResolver) Forget(membershipID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resolved, membershipID)
}

// Reset drops every resolved identity so the next pass probes again.
func (r *IdentityResolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = map[string]domain.Identity{}
}

func (r *IdentityResolver) cached(membershipID string) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.resolved[membershipID]
	return identity, ok
}

func (r *IdentityResolver) remember(membershipID string, identity domain.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resolved[membershipID]; ok {
		return
	}
	r.resolved[membershipID] = identity
}

func withIdentity(profile domain.Profile, identity domain.Identity) domain.Profile {
	if !profile.Identity.Valid() {
		profile.Identity = identity
	}
	return profile
}
