package records

import (
	"fmt"
	"time"

	"github.com/bnema/fireteam-cli/internal/application"
	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const statusPollInterval = time.Second

// SnapshotSource is the part of the scheduler the watch view reads.
type SnapshotSource interface {
	Trigger()
	Latest() *domain.Snapshot
	State() application.SchedulerState
	LastError() error
	Subscribe() <-chan *domain.Snapshot
}

type snapshotMsg struct {
	snapshot *domain.Snapshot
}

type pollMsg struct{}

// WatchModel is the interactive view over a refreshing snapshot source.
type WatchModel struct {
	source  SnapshotSource
	updates <-chan *domain.Snapshot
	view    *application.ViewState
	spinner spinner.Model
	styles  styles

	// published is the scheduler's snapshot; shown is published rescored
	// under the selected mode.
	published *domain.Snapshot
	shown     domain.Snapshot
	highlight map[uint32]bool

	state  application.SchedulerState
	err    error
	height int
}

func NewWatchModel(source SnapshotSource, opts application.ViewOptions, pageSize int) WatchModel {
	view := application.NewViewState(pageSize)
	view.Apply(opts)

	m := WatchModel{
		source:  source,
		updates: source.Subscribe(),
		view:    view,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		styles: newStyles(),
		state:  source.State(),
	}
	if latest := source.Latest(); latest != nil {
		m = m.receive(latest)
	}
	return m
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForSnapshot(), poll())
}

func (m WatchModel) waitForSnapshot() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		snapshot, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg{snapshot: snapshot}
	}
}

func poll() tea.Cmd {
	return tea.Tick(statusPollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case snapshotMsg:
		m = m.receive(msg.snapshot)
		m.state = m.source.State()
		m.err = m.source.LastError()
		return m, m.waitForSnapshot()
	case pollMsg:
		m.state = m.source.State()
		m.err = m.source.LastError()
		return m, poll()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opts := m.view.Options()

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "r":
		m.source.Trigger()
		return m, nil
	case "m":
		opts.Mode = opts.Mode.Next()
		m.view.Apply(opts)
		m = m.rescore()
	case "s":
		if opts.Sort == application.SortByTimeToFinish {
			opts.Sort = application.SortByCompletion
		} else {
			opts.Sort = application.SortByTimeToFinish
		}
		m.view.Apply(opts)
	case "h":
		opts.HideCompleted = !opts.HideCompleted
		m.view.Apply(opts)
	case "g":
		opts.Group = m.nextGroup(opts.Group)
		m.view.Apply(opts)
	case "n":
		m.view.LoadMore()
	}

	return m, nil
}

// receive installs a newly published snapshot and marks records that improved
// since the previously shown one.
func (m WatchModel) receive(snapshot *domain.Snapshot) WatchModel {
	if snapshot == nil {
		return m
	}
	if m.published != nil && snapshot.Generation <= m.published.Generation {
		return m
	}

	previous := m.shown.Scores
	hadPrevious := m.published != nil
	m.published = snapshot
	m = m.rescore()

	m.highlight = nil
	if hadPrevious {
		improved := application.Improvements(previous, m.shown.Scores)
		m.highlight = make(map[uint32]bool, len(improved))
		for _, hash := range improved {
			m.highlight[hash] = true
		}
	}
	return m
}

func (m WatchModel) rescore() WatchModel {
	if m.published == nil {
		return m
	}
	m.shown = application.Rescore(*m.published, m.view.Options().Mode)
	return m
}

func (m WatchModel) nextGroup(current domain.GroupID) domain.GroupID {
	if m.published == nil {
		return current
	}

	summaries := application.GroupSummaries(m.shown.Catalog, m.shown.Scores)
	for i, summary := range summaries {
		if summary.ID == current {
			return summaries[(i+1)%len(summaries)].ID
		}
	}
	return domain.GroupAll
}

func (m WatchModel) View() string {
	lines := []string{m.statusLine()}
	if m.err != nil {
		lines = append(lines, m.styles.warning.Render("last refresh failed: "+m.err.Error()+" (press r to retry)"))
	}

	if m.published != nil {
		opts := m.view.Options()
		page, err := m.view.Page(m.shown.Catalog, m.shown.Scores)
		if err != nil {
			lines = append(lines, m.styles.warning.Render(err.Error()))
		} else {
			lines = append(lines, renderPage(page, m.shown.Catalog, PageOptions{
				Mode:       opts.Mode,
				Sort:       opts.Sort,
				Pin:        opts.Pin,
				Highlight:  m.highlight,
				MaxRecords: m.rowBudget(),
			}, m.styles))
		}
	}

	lines = append(lines, m.styles.empty.Render("r refresh · m mode · s sort · g group · h hide done · n more · q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m WatchModel) statusLine() string {
	switch m.state {
	case application.StateLoading:
		return fmt.Sprintf("%s loading fireteam progress", m.spinner.View())
	case application.StateRefreshing:
		return fmt.Sprintf("%s refreshing · %s", m.spinner.View(), m.updatedLabel())
	default:
		return m.styles.header.Render(m.updatedLabel())
	}
}

func (m WatchModel) updatedLabel() string {
	if m.published == nil {
		return "no data yet"
	}
	return fmt.Sprintf(
		"updated %s · %d members · pass %d",
		m.published.CompletedAt.Local().Format("15:04:05"),
		len(m.published.Roster),
		m.published.Generation,
	)
}

// rowBudget fits record rows to the terminal; each row takes about four lines.
func (m WatchModel) rowBudget() int {
	if m.height <= 0 {
		return 0
	}
	rows := (m.height - 6) / 4
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Watch runs the interactive view until the user quits.
func Watch(source SnapshotSource, opts application.ViewOptions, pageSize int) error {
	_, err := tea.NewProgram(NewWatchModel(source, opts, pageSize), tea.WithAltScreen()).Run()
	return err
}
