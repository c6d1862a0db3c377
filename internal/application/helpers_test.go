package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/stretchr/testify/mock"
)

func mockAnyContext() interface{} {
	return mock.Anything
}

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// fakeProfiles serves canned profiles keyed by identity and records every probe.
type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[domain.Identity]domain.Profile
	errs     map[domain.Identity]error
	calls    []domain.Identity
	friends  []domain.Friend
	self     domain.Identity
	selfName string
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		profiles: map[domain.Identity]domain.Profile{},
		errs:     map[domain.Identity]error{},
	}
}

func (f *fakeProfiles) add(profile domain.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.Identity] = profile
}

func (f *fakeProfiles) fail(identity domain.Identity, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[identity] = err
}

func (f *fakeProfiles) GetProfile(ctx context.Context, identity domain.Identity, _ []domain.Component) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, identity)
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}
	if err, ok := f.errs[identity]; ok {
		return domain.Profile{}, err
	}
	profile, ok := f.profiles[identity]
	if !ok {
		return domain.Profile{}, fmt.Errorf("profile %s: %w", identity, domain.ErrUpstreamUnavailable)
	}
	return profile, nil
}

func (f *fakeProfiles) GetCurrentMembership(context.Context) (domain.Identity, string, error) {
	if !f.self.Valid() {
		return domain.Identity{}, "", domain.ErrUnauthorized
	}
	return f.self, f.selfName, nil
}

func (f *fakeProfiles) GetFriends(context.Context) ([]domain.Friend, error) {
	return f.friends, nil
}

func (f *fakeProfiles) probes(membershipID string) []domain.Platform {
	f.mu.Lock()
	defer f.mu.Unlock()

	var platforms []domain.Platform
	for _, call := range f.calls {
		if call.MembershipID == membershipID {
			platforms = append(platforms, call.Platform)
		}
	}
	return platforms
}

func memberProfile(platform domain.Platform, membershipID, name string, records map[uint32][]domain.ObjectiveProgress) domain.Profile {
	return domain.Profile{
		Identity:    domain.Identity{Platform: platform, MembershipID: membershipID},
		DisplayName: name,
		Characters: []domain.Character{
			{ID: membershipID + "-c1", LastPlayed: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
		Records: records,
	}
}

func objectiveSet(done, total int) []domain.ObjectiveProgress {
	result := make([]domain.ObjectiveProgress, 0, total)
	for i := 0; i < total; i++ {
		complete := i < done
		progress := int64(0)
		if complete {
			progress = 1
		}
		result = append(result, domain.ObjectiveProgress{
			ObjectiveHash:   uint32(1000 + i),
			Progress:        progress,
			CompletionValue: 1,
			Complete:        complete,
			Visible:         true,
		})
	}
	return result
}
