package application

import (
	"context"
	"fmt"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports"
	"github.com/bnema/fireteam-cli/internal/slogx"
	"golang.org/x/sync/errgroup"
)

const defaultRosterConcurrency = 4

type RosterBuilder struct {
	profiles       ports.ProfileSource
	resolver       *IdentityResolver
	maxConcurrency int
}

func NewRosterBuilder(profiles ports.ProfileSource, resolver *IdentityResolver, maxConcurrency int) *RosterBuilder {
	if resolver == nil {
		resolver = NewIdentityResolver(profiles)
	}
	if maxConcurrency <= 0 {
		maxConcurrency = defaultRosterConcurrency
	}
	return &RosterBuilder{profiles: profiles, resolver: resolver, maxConcurrency: maxConcurrency}
}

// SelfSnapshot fetches the signed-in member's profile including party data.
func (b *RosterBuilder) SelfSnapshot(ctx context.Context, identity domain.Identity) (domain.MemberSnapshot, error) {
	profile, err := b.profiles.GetProfile(ctx, identity, domain.SelfComponents)
	if err != nil {
		return domain.MemberSnapshot{}, fmt.Errorf("fetch own profile: %w", err)
	}
	if !profile.Identity.Valid() {
		profile.Identity = identity
	}

	snapshot, ok := domain.NewMemberSnapshot(profile)
	if !ok {
		return domain.MemberSnapshot{}, fmt.Errorf("own profile %s has no characters: %w", identity, domain.ErrMalformedData)
	}

	b.resolver.Remember(identity)
	return snapshot, nil
}

// Build expands the party into member snapshots in party order. Members that
// cannot be resolved, or have no characters, are left out. The caller's own
// snapshot is reused for its party slot and leads the roster when the party
// list does not name the caller.
func (b *RosterBuilder) Build(ctx context.Context, self domain.MemberSnapshot, partyMemberIDs []string) domain.Roster {
	if len(partyMemberIDs) == 0 {
		return domain.Roster{self}
	}

	logger := slogx.FromContext(ctx)
	slots := make([]*domain.MemberSnapshot, len(partyMemberIDs))
	selfIncluded := false

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.maxConcurrency)

	for i, membershipID := range partyMemberIDs {
		if membershipID == self.Identity.MembershipID {
			if !selfIncluded {
				own := self
				slots[i] = &own
				selfIncluded = true
			}
			continue
		}

		i, membershipID := i, membershipID
		g.Go(func() error {
			profile, ok := b.resolver.ResolveProfile(gctx, membershipID)
			if !ok {
				return nil
			}
			snapshot, ok := domain.NewMemberSnapshot(profile)
			if !ok {
				return nil
			}
			slots[i] = &snapshot
			return nil
		})
	}
	// Workers never return errors; omission is how failures surface.
	_ = g.Wait()

	roster := make(domain.Roster, 0, len(partyMemberIDs)+1)
	if !selfIncluded {
		roster = append(roster, self)
	}

	seen := map[string]struct{}{}
	for i, slot := range slots {
		if slot == nil {
			if partyMemberIDs[i] != self.Identity.MembershipID {
				rosterMembersOmitted.Inc()
				logger.Info("party member omitted from roster", "membership_id", partyMemberIDs[i])
			}
			continue
		}
		if _, dup := seen[slot.Identity.MembershipID]; dup {
			continue
		}
		seen[slot.Identity.MembershipID] = struct{}{}
		roster = append(roster, *slot)
	}

	return roster
}
