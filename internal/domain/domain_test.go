package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		cred Credential
		skew time.Duration
		want bool
	}{
		{name: "zero expiry never expires", cred: Credential{AccessToken: "a"}, want: false},
		{name: "future expiry", cred: Credential{ExpiresAt: now.Add(time.Minute)}, want: false},
		{name: "expiry equal to now", cred: Credential{ExpiresAt: now}, want: true},
		{name: "past expiry", cred: Credential{ExpiresAt: now.Add(-time.Second)}, want: true},
		{name: "inside skew window", cred: Credential{ExpiresAt: now.Add(30 * time.Second)}, skew: time.Minute, want: true},
		{name: "negative skew treated as zero", cred: Credential{ExpiresAt: now.Add(time.Second)}, skew: -time.Hour, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cred.Expired(now, tc.skew))
		})
	}
}

func TestProbeOrderIsAscending(t *testing.T) {
	t.Parallel()

	order := ProbeOrder()
	require.Len(t, order, 5)
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1], order[i])
	}

	order[0] = 99
	assert.Equal(t, PlatformXbox, ProbeOrder()[0])
}

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    Platform
		wantErr bool
	}{
		{raw: "3", want: PlatformSteam},
		{raw: "Steam", want: PlatformSteam},
		{raw: " psn ", want: PlatformPSN},
		{raw: "6", wantErr: true},
		{raw: "switch", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParsePlatform(tc.raw)
		if tc.wantErr {
			assert.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got)
	}
}

func TestComponentsRoundTrip(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "100,200,204,205,900", FormatComponents(MemberComponents))
	assert.Equal(t, "100,200,204,205,900,1000", FormatComponents(SelfComponents))

	parsed, err := ParseComponents("100, 200,,900")
	require.NoError(t, err)
	assert.Equal(t, []Component{ComponentProfiles, ComponentCharacters, ComponentRecords}, parsed)

	_, err = ParseComponents("100,abc")
	assert.Error(t, err)
}

func TestActiveCharacterPicksMostRecentFirstOnTie(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	chars := []Character{
		{ID: "a", LastPlayed: base},
		{ID: "b", LastPlayed: base.Add(time.Hour)},
		{ID: "c", LastPlayed: base.Add(time.Hour)},
	}

	got, ok := ActiveCharacter(chars)
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	_, ok = ActiveCharacter(nil)
	assert.False(t, ok)
}

func TestMemberSnapshotObjectivesVisibility(t *testing.T) {
	t.Parallel()

	snapshot, ok := NewMemberSnapshot(Profile{
		Identity:   Identity{Platform: PlatformSteam, MembershipID: "1"},
		Characters: []Character{{ID: "c1"}},
		Records: map[uint32][]ObjectiveProgress{
			10: {{Complete: true}},
			11: {},
		},
		CharRecords: map[string]map[uint32][]ObjectiveProgress{
			"c1": {12: {{Complete: false}}},
			"c2": {13: {{Complete: false}}},
		},
	})
	require.True(t, ok)

	_, visible := snapshot.Objectives(10)
	assert.True(t, visible)
	_, visible = snapshot.Objectives(11)
	assert.False(t, visible, "empty objective list means no visibility")
	_, visible = snapshot.Objectives(12)
	assert.True(t, visible)
	_, visible = snapshot.Objectives(13)
	assert.False(t, visible, "inactive character records are ignored")

	_, ok = NewMemberSnapshot(Profile{})
	assert.False(t, ok)
}

func TestClassifyConsistency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fractions []float64
		want      Consistency
	}{
		{name: "no samples", want: ConsistencyUnknown},
		{name: "nobody done", fractions: []float64{0, 0.5}, want: ConsistencyAllNeed},
		{name: "everyone done", fractions: []float64{1, 1}, want: ConsistencyAllDone},
		{name: "one holdout", fractions: []float64{0.5, 1}, want: ConsistencyOneHoldout},
		{name: "mixed", fractions: []float64{0.5, 0.2, 1}, want: ConsistencyMixed},
		{name: "solo incomplete", fractions: []float64{0.5}, want: ConsistencyAllNeed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ClassifyConsistency(tc.fractions))
		})
	}
}

func TestClassifyEfficiency(t *testing.T) {
	t.Parallel()

	assert.Equal(t, EfficiencyHigh, ClassifyEfficiency(1))
	assert.Equal(t, EfficiencyMedium, ClassifyEfficiency(1.5))
	assert.Equal(t, EfficiencyMedium, ClassifyEfficiency(2.9))
	assert.Equal(t, EfficiencyLow, ClassifyEfficiency(3))
	assert.Equal(t, EfficiencyLow, ClassifyEfficiency(math.Inf(1)))
}

func TestParseCompletionMode(t *testing.T) {
	t.Parallel()

	mode, err := ParseCompletionMode("")
	require.NoError(t, err)
	assert.Equal(t, CompletionAverage, mode)

	mode, err = ParseCompletionMode("WORST")
	require.NoError(t, err)
	assert.Equal(t, CompletionWorst, mode)

	_, err = ParseCompletionMode("median")
	assert.ErrorContains(t, err, "unsupported completion mode")

	assert.Equal(t, CompletionWorst, CompletionAverage.Next())
	assert.Equal(t, CompletionBest, CompletionWorst.Next())
	assert.Equal(t, CompletionAverage, CompletionBest.Next())
}

func TestSortFriendsOnlineFirstCaseInsensitive(t *testing.T) {
	t.Parallel()

	got := SortFriends([]Friend{
		{DisplayName: "zed", Online: true},
		{DisplayName: "Bob"},
		{DisplayName: "alice"},
		{DisplayName: "Amy", Online: true},
	})

	names := make([]string, 0, len(got))
	for _, friend := range got {
		names = append(names, friend.DisplayName)
	}
	assert.Equal(t, []string{"Amy", "zed", "alice", "Bob"}, names)
}

func TestManifestPath(t *testing.T) {
	t.Parallel()

	m := Manifest{Paths: map[string]map[string]string{
		"en": {TableRecords: "/common/records.json"},
		"fr": {TableRecords: ""},
	}}

	path, ok := m.Path("en", TableRecords)
	require.True(t, ok)
	assert.Equal(t, "/common/records.json", path)

	_, ok = m.Path("fr", TableRecords)
	assert.False(t, ok)
	_, ok = m.Path("de", TableRecords)
	assert.False(t, ok)
	assert.Equal(t, []string{"en", "fr"}, m.Languages())
}

func TestSessionValidate(t *testing.T) {
	t.Parallel()

	assert.ErrorContains(t, Session{}.Validate(), "id is required")
	assert.ErrorContains(t, Session{ID: "default", Identity: Identity{Platform: 9}}.Validate(), "unsupported platform")
	assert.NoError(t, Session{ID: "default"}.Validate())
}
