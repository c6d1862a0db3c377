package records

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/fireteam-cli/internal/application"
	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 20

type PageOptions struct {
	Mode domain.CompletionMode
	Sort application.SortMode
	Pin  uint32
	// Highlight marks records whose score rose since the previous pass.
	Highlight map[uint32]bool
	// MaxRecords caps rendered rows without changing the page; 0 renders all.
	MaxRecords int
}

func renderPage(page application.Page, catalog domain.Catalog, opts PageOptions, s styles) string {
	lines := []string{
		s.title.Render(page.Name),
		s.header.Render(pageMeta(page, opts)),
	}

	if len(page.Records) == 0 {
		lines = append(lines, s.empty.Render("No records match."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := page.Records
	if opts.MaxRecords > 0 && len(rows) > opts.MaxRecords {
		rows = rows[:opts.MaxRecords]
	}
	for _, result := range rows {
		lines = append(lines, s.section.Render(renderRecord(result, catalog, opts, s)))
	}

	if page.HasMore || len(rows) < len(page.Records) {
		lines = append(lines, s.section.Render(s.empty.Render(
			fmt.Sprintf("%d more not shown", page.Total-len(rows)),
		)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func pageMeta(page application.Page, opts PageOptions) string {
	mode := opts.Mode
	if mode == "" {
		mode = domain.CompletionAverage
	}
	sortMode := opts.Sort
	if sortMode == "" {
		sortMode = application.SortByCompletion
	}

	return fmt.Sprintf("showing %d of %d · mode %s · sort %s", len(page.Records), page.Total, mode, sortMode)
}

func renderRecord(result domain.ScoreResult, catalog domain.Catalog, opts PageOptions, s styles) string {
	nameStyle := s.record
	marker := "  "
	switch {
	case opts.Pin != 0 && result.Record.Hash == opts.Pin:
		nameStyle = s.pinned
		marker = "* "
	case opts.Highlight[result.Record.Hash]:
		nameStyle = s.improved
		marker = "+ "
	}

	percent := result.CompletionScore * 100
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100))

	summary := lipgloss.JoinHorizontal(
		lipgloss.Top,
		nameStyle.Render(marker+recordName(result.Record)),
		" ",
		renderProgressBar(percent, barWidth, s),
		" ",
		percentStyle.Render(fmt.Sprintf("%3.0f%%", clampPercent(percent))),
	)

	parts := []string{summary, s.detail.Render("  " + recordMeta(result))}
	if line := blockerLine(result, catalog); line != "" {
		parts = append(parts, s.detail.Render("  "+line))
	}
	if result.Divergent() {
		parts = append(parts, s.warning.Render(fmt.Sprintf(
			"  spread %.0f%%-%.0f%%",
			result.Spread.Min*100,
			result.Spread.Max*100,
		)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func recordName(record domain.RecordDefinition) string {
	if name := strings.TrimSpace(record.Name); name != "" {
		return name
	}
	return fmt.Sprintf("record %d", record.Hash)
}

func recordMeta(result domain.ScoreResult) string {
	consistency := string(result.Consistency)
	if consistency == "" {
		consistency = "no data"
	}

	if !result.Estimable() {
		return fmt.Sprintf("%s · ttf n/a · %s", consistency, result.Efficiency)
	}
	return fmt.Sprintf("%s · ttf %.1f · %s", consistency, result.TimeToFinish, result.Efficiency)
}

func blockerLine(result domain.ScoreResult, catalog domain.Catalog) string {
	blocker := result.ClosestBlocker
	if blocker == nil {
		return ""
	}

	description := catalog.ObjectiveDescription(blocker.Objective.ObjectiveHash)
	if description == "" {
		description = "objective"
	}
	who := blocker.DisplayName
	if who == "" {
		who = blocker.MembershipID
	}

	return fmt.Sprintf(
		"closest: %s, %s %d/%d",
		who,
		description,
		blocker.Objective.Progress,
		blocker.Objective.CompletionValue,
	)
}

func renderGroups(summaries []application.GroupSummary, s styles) string {
	lines := []string{
		s.title.Render("Triumph Groups"),
		s.header.Render(fmt.Sprintf("groups: %d", len(summaries))),
	}
	if len(summaries) == 0 {
		lines = append(lines, s.empty.Render("No groups available."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, summary := range summaries {
		mean := summary.MeanScore * 100
		line := lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.key.Render(fmt.Sprintf("%-32s", summary.Name)),
			" ",
			renderProgressBar(mean, barWidth, s),
			" ",
			s.meta.Render(fmt.Sprintf("%3.0f%% · %d records · %s", clampPercent(mean), summary.Count, summary.ID)),
		)
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderRoster lists members in roster order; activities maps activity hashes
// to display names and may be nil.
func renderRoster(roster domain.Roster, activities map[uint32]string, s styles) string {
	lines := []string{
		s.title.Render("Fireteam"),
		s.header.Render(fmt.Sprintf("members: %d", len(roster))),
	}
	if len(roster) == 0 {
		lines = append(lines, s.empty.Render("No members resolved."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for i, member := range roster {
		name := member.DisplayName
		if name == "" {
			name = member.Identity.MembershipID
		}
		if i == 0 {
			name += " (you)"
		}

		parts := []string{
			s.record.Render(name),
			s.detail.Render(fmt.Sprintf(
				"  %s · light %d · %s",
				className(member.Character.ClassType),
				member.Character.Light,
				member.Identity,
			)),
		}
		if activity, ok := member.CurrentActivity(); ok {
			label := activities[activity]
			if label == "" {
				label = fmt.Sprintf("activity %d", activity)
			}
			parts = append(parts, s.detail.Render("  in "+label))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, parts...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func className(classType int) string {
	switch classType {
	case 0:
		return "Titan"
	case 1:
		return "Hunter"
	case 2:
		return "Warlock"
	default:
		return "Unknown"
	}
}

func renderFriends(friends []domain.Friend, s styles) string {
	online := 0
	for _, friend := range friends {
		if friend.Online {
			online++
		}
	}

	lines := []string{
		s.title.Render("Friends"),
		s.header.Render(fmt.Sprintf("online: %d of %d", online, len(friends))),
	}
	if len(friends) == 0 {
		lines = append(lines, s.empty.Render("No friends found."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, friend := range friends {
		if friend.Online {
			lines = append(lines, s.online.Render("● "+friend.DisplayName))
			continue
		}
		lines = append(lines, s.offline.Render("○ "+friend.DisplayName))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStatus(statuses []application.Status, now time.Time, s styles) string {
	lines := []string{
		s.title.Render("Fireteam Sessions"),
		s.header.Render(fmt.Sprintf("sessions: %d", len(statuses))),
	}
	if len(statuses) == 0 {
		lines = append(lines, s.empty.Render("No sessions. Run `ft login` to sign in."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, status := range statuses {
		lines = append(lines, s.section.Render(renderSession(status, now, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSession(status application.Status, now time.Time, s styles) string {
	session := status.Session
	title := string(session.ID)
	if session.DisplayName != "" {
		title = fmt.Sprintf("%s (%s)", session.DisplayName, session.ID)
	}

	membership := "membership: unresolved"
	if session.Identity.Valid() {
		membership = "membership: " + session.Identity.String()
	}

	parts := []string{
		s.record.Render(title),
		s.detail.Render("  " + membership),
		s.detail.Render("  auth: " + authLabel(session.Auth.Method)),
	}

	switch {
	case status.CredentialError != "":
		parts = append(parts, s.warning.Render("  credential: "+status.CredentialError))
	case !status.HasCredential:
		parts = append(parts, s.warning.Render("  credential: missing"))
	default:
		parts = append(parts, s.detail.Render("  credential: "+expiryLabel(status, now)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func authLabel(method domain.AuthMethod) string {
	if method == "" {
		return "none"
	}

	return string(method)
}

func expiryLabel(status application.Status, now time.Time) string {
	refresh := "no refresh token"
	if status.CanRefresh {
		refresh = "refreshable"
	}

	if status.ExpiresAt.IsZero() {
		return "expiry unknown, " + refresh
	}
	if status.Expired {
		return "expired, " + refresh
	}
	if now.IsZero() {
		return fmt.Sprintf("expires %s, %s", status.ExpiresAt.Format(time.RFC3339), refresh)
	}

	return fmt.Sprintf("expires in %s, %s", formatRemaining(status.ExpiresAt.Sub(now)), refresh)
}

func formatRemaining(remaining time.Duration) string {
	if remaining < time.Minute {
		return "under a minute"
	}
	if remaining < time.Hour {
		minutes := int(remaining.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}

	hours := int(math.Ceil(remaining.Hours()))
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := clampPercent(percent) / 100.0
	filled := int(math.Round(float64(width) * fraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", width-filled))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
