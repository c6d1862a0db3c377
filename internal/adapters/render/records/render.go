package records

import (
	"time"

	"github.com/bnema/fireteam-cli/internal/application"
	"github.com/bnema/fireteam-cli/internal/domain"
)

func RenderPage(page application.Page, catalog domain.Catalog, opts PageOptions) (string, error) {
	return run(func(s styles) string {
		return renderPage(page, catalog, opts, s)
	})
}

func RenderGroups(summaries []application.GroupSummary) (string, error) {
	return run(func(s styles) string {
		return renderGroups(summaries, s)
	})
}

func RenderRoster(roster domain.Roster, activities map[uint32]string) (string, error) {
	return run(func(s styles) string {
		return renderRoster(roster, activities, s)
	})
}

func RenderFriends(friends []domain.Friend) (string, error) {
	return run(func(s styles) string {
		return renderFriends(friends, s)
	})
}

// RenderStatus renders session statuses; a zero now prints absolute expiry times.
func RenderStatus(statuses []application.Status, now time.Time) (string, error) {
	return run(func(s styles) string {
		return renderStatus(statuses, now, s)
	})
}
