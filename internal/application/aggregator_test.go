package application

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorPassBuildsScoredSnapshot(t *testing.T) {
	profiles := newFakeProfiles()
	self := memberProfile(domain.PlatformSteam, "self", "me", map[uint32][]domain.ObjectiveProgress{1: objectiveSet(2, 4)})
	self.PartyMembers = []domain.PartyMember{{MembershipID: "self"}, {MembershipID: "ghost"}, {MembershipID: "mate"}}
	profiles.add(self)
	profiles.add(memberProfile(domain.PlatformPSN, "mate", "mate", map[uint32][]domain.ObjectiveProgress{1: objectiveSet(4, 4)}))

	source := mocks.NewMockReferenceSource(t)
	source.EXPECT().FetchManifest(mockAnyContext()).Return(testManifest(), nil).Once()
	source.EXPECT().FetchDefinitions(mockAnyContext(), "/en/records-v1.json").Return(rawTable(t, map[string]any{
		"1": recordDef(1, "Raid Veteran", "Triumphs", 0),
	}), nil).Once()
	source.EXPECT().FetchDefinitions(mockAnyContext(), "/en/nodes-v1.json").Return(rawTable(t, map[string]any{
		"100": nodeDef(100, "Raids", 1),
	}), nil).Once()
	source.EXPECT().FetchDefinitions(mockAnyContext(), "/en/objectives-v1.json").Return(domain.DefinitionTable{}, nil).Once()

	credentials := NewCredentialManager(mocks.NewMockTokenRefresher(t), fixedClock{now: credentialNow})
	credentials.Establish(domain.Credential{AccessToken: "a", ExpiresAt: credentialNow.Add(time.Hour)})

	resolver := NewIdentityResolver(profiles)
	aggregator := NewAggregator(credentials, NewRosterBuilder(profiles, resolver, 0), NewReferenceService(source, nil), AggregatorConfig{
		Self:       self.Identity,
		RecordType: "Triumphs",
	})

	snapshot, err := aggregator.Pass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"self", "mate"}, rosterIDs(snapshot.Roster))
	require.Len(t, snapshot.Scores, 1)
	assert.InDelta(t, 0.75, snapshot.Scores[0].CompletionScore, 1e-9)
	assert.Equal(t, domain.ConsistencyOneHoldout, snapshot.Scores[0].Consistency)

	worst := Rescore(snapshot, domain.CompletionWorst)
	assert.InDelta(t, 0.5, worst.Scores[0].CompletionScore, 1e-9)
	assert.InDelta(t, 0.75, snapshot.Scores[0].CompletionScore, 1e-9, "rescoring does not mutate the source snapshot")
}

func TestAggregatorPassFailsWithoutCredential(t *testing.T) {
	profiles := newFakeProfiles()
	credentials := NewCredentialManager(mocks.NewMockTokenRefresher(t), nil)
	aggregator := NewAggregator(credentials, NewRosterBuilder(profiles, nil, 0), NewReferenceService(mocks.NewMockReferenceSource(t), nil), AggregatorConfig{
		Self: domain.Identity{Platform: domain.PlatformSteam, MembershipID: "self"},
	})

	_, err := aggregator.Pass(context.Background())
	require.ErrorIs(t, err, domain.ErrAuth)
	assert.Empty(t, profiles.calls)
}
