package records

import (
	"errors"
	"testing"

	"github.com/bnema/fireteam-cli/internal/application"
	"github.com/bnema/fireteam-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	latest   *domain.Snapshot
	state    application.SchedulerState
	err      error
	triggers int
	updates  chan *domain.Snapshot
}

func newFakeSource(latest *domain.Snapshot) *fakeSource {
	state := application.StateLoading
	if latest != nil {
		state = application.StateIdle
	}
	return &fakeSource{latest: latest, state: state, updates: make(chan *domain.Snapshot, 1)}
}

func (f *fakeSource) Trigger()                           { f.triggers++ }
func (f *fakeSource) Latest() *domain.Snapshot           { return f.latest }
func (f *fakeSource) State() application.SchedulerState  { return f.state }
func (f *fakeSource) LastError() error                   { return f.err }
func (f *fakeSource) Subscribe() <-chan *domain.Snapshot { return f.updates }

func press(t *testing.T, m WatchModel, key string) WatchModel {
	t.Helper()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	model, ok := next.(WatchModel)
	require.True(t, ok)
	return model
}

func deliver(t *testing.T, m WatchModel, snapshot *domain.Snapshot) WatchModel {
	t.Helper()

	next, cmd := m.Update(snapshotMsg{snapshot: snapshot})
	require.NotNil(t, cmd)
	model, ok := next.(WatchModel)
	require.True(t, ok)
	return model
}

func TestWatchModelShowsLoadingUntilFirstSnapshot(t *testing.T) {
	source := newFakeSource(nil)
	m := NewWatchModel(source, application.ViewOptions{}, 10)

	assert.Contains(t, m.View(), "loading fireteam progress")
	assert.NotContains(t, m.View(), "All Triumphs")

	source.state = application.StateIdle
	m = deliver(t, m, testSnapshot(1, domain.Roster{member("1", "Ana#0001", 5, 20)}))

	view := m.View()
	assert.Contains(t, view, "updated")
	assert.Contains(t, view, "1 members · pass 1")
	assert.Contains(t, view, "All Triumphs")
}

func TestWatchModelHighlightsImprovedRecords(t *testing.T) {
	source := newFakeSource(testSnapshot(1, domain.Roster{member("1", "Ana#0001", 5, 20)}))
	m := NewWatchModel(source, application.ViewOptions{}, 10)
	assert.Empty(t, m.highlight)

	m = deliver(t, m, testSnapshot(2, domain.Roster{member("1", "Ana#0001", 10, 20)}))

	assert.Equal(t, map[uint32]bool{recordRaid.Hash: true}, m.highlight)
	assert.Contains(t, m.View(), "+ Flawless Raider")
}

func TestWatchModelIgnoresOlderSnapshots(t *testing.T) {
	source := newFakeSource(testSnapshot(3, domain.Roster{member("1", "Ana#0001", 5, 20)}))
	m := NewWatchModel(source, application.ViewOptions{}, 10)

	m = deliver(t, m, testSnapshot(2, domain.Roster{member("1", "Ana#0001", 10, 20)}))

	assert.Equal(t, uint64(3), m.published.Generation)
}

func TestWatchModelKeys(t *testing.T) {
	source := newFakeSource(testSnapshot(1, domain.Roster{
		member("1", "Ana#0001", 10, 20),
		member("2", "Cayde#0006", 4, 30),
	}))
	m := NewWatchModel(source, application.ViewOptions{}, 1)

	m = press(t, m, "r")
	assert.Equal(t, 1, source.triggers)

	m = press(t, m, "m")
	assert.Equal(t, domain.CompletionWorst, m.view.Options().Mode)
	assert.Equal(t, domain.CompletionWorst, m.shown.Mode)
	assert.Contains(t, m.View(), "mode worst")

	m = press(t, m, "s")
	assert.Equal(t, application.SortByTimeToFinish, m.view.Options().Sort)

	m = press(t, m, "h")
	assert.True(t, m.view.Options().HideCompleted)

	m = press(t, m, "n")
	assert.Equal(t, 2, m.view.Visible())

	m = press(t, m, "g")
	assert.NotEqual(t, domain.GroupAll, m.view.Options().Group)
	assert.Equal(t, 1, m.view.Visible())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWatchModelShowsLastError(t *testing.T) {
	source := newFakeSource(testSnapshot(1, domain.Roster{member("1", "Ana#0001", 5, 20)}))
	m := NewWatchModel(source, application.ViewOptions{}, 10)

	source.err = errors.New("upstream unavailable")
	source.state = application.StateRefreshing
	next, cmd := m.Update(pollMsg{})
	require.NotNil(t, cmd)
	m = next.(WatchModel)

	view := m.View()
	assert.Contains(t, view, "last refresh failed: upstream unavailable")
	assert.Contains(t, view, "refreshing")
	assert.Contains(t, view, "All Triumphs")
}

func TestWatchModelFitsRowsToWindow(t *testing.T) {
	source := newFakeSource(testSnapshot(1, domain.Roster{member("1", "Ana#0001", 5, 20)}))
	m := NewWatchModel(source, application.ViewOptions{}, 10)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = next.(WatchModel)

	assert.Equal(t, 1, m.rowBudget())
	assert.Contains(t, m.View(), "1 more not shown")
}
