package bungie

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/slogx"
)

func (c *Client) GetProfile(ctx context.Context, identity domain.Identity, components []domain.Component) (domain.Profile, error) {
	if !identity.Valid() {
		return domain.Profile{}, fmt.Errorf("get profile: invalid identity %q", identity)
	}

	path := fmt.Sprintf("/Destiny2/%d/Profile/%s/", int(identity.Platform), url.PathEscape(identity.MembershipID))
	query := url.Values{}
	query.Set("components", domain.FormatComponents(components))

	var payload profileResponse
	if err := c.getPlatform(ctx, path, query, true, &payload); err != nil {
		return domain.Profile{}, err
	}

	return mapProfile(ctx, identity, payload), nil
}

// GetCurrentMembership returns the signed-in user's primary Destiny membership.
func (c *Client) GetCurrentMembership(ctx context.Context) (domain.Identity, string, error) {
	var payload membershipsResponse
	if err := c.getPlatform(ctx, "/User/GetMembershipsForCurrentUser/", nil, true, &payload); err != nil {
		return domain.Identity{}, "", err
	}

	membership, ok := primaryMembership(payload)
	if !ok {
		return domain.Identity{}, "", fmt.Errorf("current user has no destiny membership: %w", domain.ErrUnresolvableIdentity)
	}

	identity := domain.Identity{
		Platform:     domain.Platform(membership.MembershipType),
		MembershipID: membership.MembershipID,
	}
	if !identity.Valid() {
		return domain.Identity{}, "", fmt.Errorf("membership %s: unsupported platform %d: %w", membership.MembershipID, membership.MembershipType, domain.ErrMalformedData)
	}

	name := displayName(membership)
	if name == "" {
		name = payload.BungieNetUser.UniqueName
	}
	return identity, name, nil
}

func (c *Client) GetFriends(ctx context.Context) ([]domain.Friend, error) {
	var payload friendsResponse
	if err := c.getPlatform(ctx, "/Social/Friends/", nil, true, &payload); err != nil {
		return nil, err
	}

	friends := make([]domain.Friend, 0, len(payload.Friends))
	for _, entry := range payload.Friends {
		name := ""
		if entry.BungieNetUser != nil {
			name = entry.BungieNetUser.UniqueName
		}
		if name == "" {
			name = globalName(entry.BungieGlobalDisplayName, entry.BungieGlobalDisplayNameCode)
		}
		friends = append(friends, domain.Friend{
			MembershipID: entry.LastSeenAsMembershipID,
			DisplayName:  name,
			Online:       entry.OnlineStatus != 0,
		})
	}
	return domain.SortFriends(friends), nil
}

// mapProfile never fails on a single bad record or character: the entry is
// dropped, or kept without a play date, and the rest of the profile survives.
func mapProfile(ctx context.Context, identity domain.Identity, payload profileResponse) domain.Profile {
	logger := slogx.FromContext(ctx)
	profile := domain.Profile{Identity: identity}

	var order []string
	if data := payload.Profile.Data; data != nil {
		profile.DisplayName = displayName(data.UserInfo)
		order = data.CharacterIDs
	}

	profile.Characters = mapCharacters(logger, order, payload.Characters.Data)

	if data := payload.ProfileRecords.Data; data != nil {
		profile.Records = mapRecords(logger, data.Records)
	}

	if len(payload.CharacterRecords.Data) > 0 {
		profile.CharRecords = make(map[string]map[uint32][]domain.ObjectiveProgress, len(payload.CharacterRecords.Data))
		for characterID, data := range payload.CharacterRecords.Data {
			profile.CharRecords[characterID] = mapRecords(logger, data.Records)
		}
	}

	if len(payload.CharacterActivities.Data) > 0 {
		profile.Activities = make(map[string]uint32, len(payload.CharacterActivities.Data))
		for characterID, activity := range payload.CharacterActivities.Data {
			profile.Activities[characterID] = activity.CurrentActivityHash
		}
	}

	if data := payload.ProfileTransitoryData.Data; data != nil {
		for _, member := range data.PartyMembers {
			profile.PartyMembers = append(profile.PartyMembers, domain.PartyMember{
				MembershipID: member.MembershipID,
				DisplayName:  member.DisplayName,
				Status:       member.Status,
			})
		}
	}

	return profile
}

// mapCharacters keeps the profile's characterIds order and appends any
// character missing from it in id order. An unparseable play date leaves
// LastPlayed zero so the character never wins the active-character pick.
func mapCharacters(logger *slog.Logger, order []string, data map[string]characterData) []domain.Character {
	if len(data) == 0 {
		return nil
	}

	ids := make([]string, 0, len(data))
	seen := make(map[string]struct{}, len(data))
	for _, id := range order {
		if _, ok := data[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	var rest []string
	for id := range data {
		if _, ok := seen[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	ids = append(ids, rest...)

	characters := make([]domain.Character, 0, len(ids))
	for _, id := range ids {
		raw := data[id]
		var lastPlayed time.Time
		if raw.DateLastPlayed != "" {
			parsed, err := time.Parse(time.RFC3339, raw.DateLastPlayed)
			if err != nil {
				logger.Debug("ignoring malformed character play date", "character", id, "value", raw.DateLastPlayed, "error", err)
			} else {
				lastPlayed = parsed
			}
		}
		characters = append(characters, domain.Character{
			ID:                   id,
			ClassType:            raw.ClassType,
			Light:                raw.Light,
			LastPlayed:           lastPlayed,
			EmblemPath:           raw.EmblemPath,
			EmblemBackgroundPath: raw.EmblemBackgroundPath,
		})
	}
	return characters
}

// mapRecords skips records whose key is not a hash; they stay invisible.
func mapRecords(logger *slog.Logger, raw map[string]recordComponent) map[uint32][]domain.ObjectiveProgress {
	records := make(map[uint32][]domain.ObjectiveProgress, len(raw))
	for key, component := range raw {
		hash, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			logger.Debug("skipping record with malformed hash", "key", key)
			continue
		}
		objectives := make([]domain.ObjectiveProgress, 0, len(component.Objectives))
		for _, objective := range component.Objectives {
			objectives = append(objectives, domain.ObjectiveProgress{
				ObjectiveHash:   objective.ObjectiveHash,
				Progress:        objective.Progress,
				CompletionValue: objective.CompletionValue,
				Complete:        objective.Complete,
				Visible:         objective.Visible,
			})
		}
		records[uint32(hash)] = objectives
	}
	return records
}

func primaryMembership(payload membershipsResponse) (userInfo, bool) {
	if len(payload.DestinyMemberships) == 0 {
		return userInfo{}, false
	}
	for _, membership := range payload.DestinyMemberships {
		if membership.MembershipID == payload.PrimaryMembershipID {
			return membership, true
		}
	}
	// Cross-saved accounts point every membership at the active platform.
	for _, membership := range payload.DestinyMemberships {
		if membership.CrossSaveOverride != 0 && membership.CrossSaveOverride == membership.MembershipType {
			return membership, true
		}
	}
	return payload.DestinyMemberships[0], true
}

func displayName(info userInfo) string {
	if name := globalName(info.BungieGlobalDisplayName, info.BungieGlobalDisplayNameCode); name != "" {
		return name
	}
	return info.DisplayName
}

func globalName(name string, code int) string {
	if name == "" {
		return ""
	}
	if code == 0 {
		return name
	}
	return fmt.Sprintf("%s#%04d", name, code)
}
