package domain

import (
	"sort"
	"strings"
)

type Friend struct {
	MembershipID string
	DisplayName  string
	Online       bool
}

// SortFriends returns online friends first, each half ordered by name ignoring case.
func SortFriends(friends []Friend) []Friend {
	sorted := append([]Friend(nil), friends...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Online != sorted[j].Online {
			return sorted[i].Online
		}
		return strings.ToLower(sorted[i].DisplayName) < strings.ToLower(sorted[j].DisplayName)
	})
	return sorted
}
