package domain

type MemberSnapshot struct {
	Identity    Identity
	DisplayName string
	Character   Character
	Profile     Profile
}

// NewMemberSnapshot returns false when the profile carries no characters.
func NewMemberSnapshot(profile Profile) (MemberSnapshot, bool) {
	character, ok := ActiveCharacter(profile.Characters)
	if !ok {
		return MemberSnapshot{}, false
	}

	return MemberSnapshot{
		Identity:    profile.Identity,
		DisplayName: profile.DisplayName,
		Character:   character,
		Profile:     profile,
	}, true
}

// ActiveCharacter picks the most recently played character; ties keep the first.
func ActiveCharacter(characters []Character) (Character, bool) {
	if len(characters) == 0 {
		return Character{}, false
	}

	best := characters[0]
	for _, character := range characters[1:] {
		if character.LastPlayed.After(best.LastPlayed) {
			best = character
		}
	}
	return best, true
}

// Objectives returns the member's objective states for a record. Profile-scoped
// records win over the active character's records. An empty list is reported as
// not visible.
func (m MemberSnapshot) Objectives(recordHash uint32) ([]ObjectiveProgress, bool) {
	if objectives := m.Profile.Records[recordHash]; len(objectives) > 0 {
		return objectives, true
	}
	if objectives := m.Profile.CharRecords[m.Character.ID][recordHash]; len(objectives) > 0 {
		return objectives, true
	}
	return nil, false
}

func (m MemberSnapshot) CurrentActivity() (uint32, bool) {
	hash, ok := m.Profile.Activities[m.Character.ID]
	if !ok || hash == 0 {
		return 0, false
	}
	return hash, true
}

type Roster []MemberSnapshot

func (r Roster) Contains(membershipID string) bool {
	for _, member := range r {
		if member.Identity.MembershipID == membershipID {
			return true
		}
	}
	return false
}
