package domain

import (
	"strconv"
	"strings"
	"time"
)

type Component int

const (
	ComponentProfiles            Component = 100
	ComponentCharacters          Component = 200
	ComponentCharacterActivities Component = 204
	ComponentCharacterEquipment  Component = 205
	ComponentRecords             Component = 900
	ComponentTransitory          Component = 1000
)

// MemberComponents is what a roster member profile is fetched with.
var MemberComponents = []Component{
	ComponentProfiles,
	ComponentCharacters,
	ComponentCharacterActivities,
	ComponentCharacterEquipment,
	ComponentRecords,
}

// SelfComponents adds transitory party data to MemberComponents.
var SelfComponents = append(append([]Component(nil), MemberComponents...), ComponentTransitory)

func FormatComponents(components []Component) string {
	parts := make([]string, 0, len(components))
	for _, component := range components {
		parts = append(parts, strconv.Itoa(int(component)))
	}
	return strings.Join(parts, ",")
}

func ParseComponents(raw string) ([]Component, error) {
	fields := strings.Split(raw, ",")
	components := make([]Component, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		components = append(components, Component(n))
	}
	return components, nil
}

type Character struct {
	ID                   string
	ClassType            int
	Light                int
	LastPlayed           time.Time
	EmblemPath           string
	EmblemBackgroundPath string
}

type ObjectiveProgress struct {
	ObjectiveHash   uint32
	Progress        int64
	CompletionValue int64
	Complete        bool
	Visible         bool
}

// Ratio is progress over completion value, 0 when the completion value is unknown.
func (o ObjectiveProgress) Ratio() float64 {
	if o.CompletionValue <= 0 {
		return 0
	}
	return float64(o.Progress) / float64(o.CompletionValue)
}

type PartyMember struct {
	MembershipID string
	DisplayName  string
	Status       int
}

// Profile is the decoded subset of a profile response. A nil map means the
// component was not returned, which callers must treat as no visibility.
type Profile struct {
	Identity     Identity
	DisplayName  string
	Characters   []Character
	Records      map[uint32][]ObjectiveProgress
	CharRecords  map[string]map[uint32][]ObjectiveProgress
	Activities   map[string]uint32
	PartyMembers []PartyMember
}

func (p Profile) PartyMemberIDs() []string {
	ids := make([]string, 0, len(p.PartyMembers))
	for _, member := range p.PartyMembers {
		if member.MembershipID == "" {
			continue
		}
		ids = append(ids, member.MembershipID)
	}
	return ids
}
