package bungie

import "encoding/json"

type envelope struct {
	Response        json.RawMessage `json:"Response"`
	ErrorCode       int             `json:"ErrorCode"`
	ErrorStatus     string          `json:"ErrorStatus"`
	Message         string          `json:"Message"`
	ThrottleSeconds int             `json:"ThrottleSeconds"`
}

type userInfo struct {
	MembershipType              int    `json:"membershipType"`
	MembershipID                string `json:"membershipId"`
	DisplayName                 string `json:"displayName"`
	BungieGlobalDisplayName     string `json:"bungieGlobalDisplayName"`
	BungieGlobalDisplayNameCode int    `json:"bungieGlobalDisplayNameCode"`
	CrossSaveOverride           int    `json:"crossSaveOverride"`
}

type profileResponse struct {
	Profile struct {
		Data *struct {
			UserInfo     userInfo `json:"userInfo"`
			CharacterIDs []string `json:"characterIds"`
		} `json:"data"`
	} `json:"profile"`
	Characters struct {
		Data map[string]characterData `json:"data"`
	} `json:"characters"`
	CharacterActivities struct {
		Data map[string]struct {
			CurrentActivityHash uint32 `json:"currentActivityHash"`
		} `json:"data"`
	} `json:"characterActivities"`
	ProfileRecords struct {
		Data *recordsData `json:"data"`
	} `json:"profileRecords"`
	CharacterRecords struct {
		Data map[string]recordsData `json:"data"`
	} `json:"characterRecords"`
	ProfileTransitoryData struct {
		Data *struct {
			PartyMembers []partyMember `json:"partyMembers"`
		} `json:"data"`
	} `json:"profileTransitoryData"`
}

type characterData struct {
	CharacterID          string `json:"characterId"`
	ClassType            int    `json:"classType"`
	Light                int    `json:"light"`
	DateLastPlayed       string `json:"dateLastPlayed"`
	EmblemPath           string `json:"emblemPath"`
	EmblemBackgroundPath string `json:"emblemBackgroundPath"`
}

type recordsData struct {
	Records map[string]recordComponent `json:"records"`
}

type recordComponent struct {
	State      int                 `json:"state"`
	Objectives []objectiveProgress `json:"objectives"`
}

type objectiveProgress struct {
	ObjectiveHash   uint32 `json:"objectiveHash"`
	Progress        int64  `json:"progress"`
	CompletionValue int64  `json:"completionValue"`
	Complete        bool   `json:"complete"`
	Visible         bool   `json:"visible"`
}

type partyMember struct {
	MembershipID string `json:"membershipId"`
	DisplayName  string `json:"displayName"`
	Status       int    `json:"status"`
}

type membershipsResponse struct {
	DestinyMemberships  []userInfo `json:"destinyMemberships"`
	PrimaryMembershipID string     `json:"primaryMembershipId"`
	BungieNetUser       struct {
		UniqueName  string `json:"uniqueName"`
		DisplayName string `json:"displayName"`
	} `json:"bungieNetUser"`
}

type friendsResponse struct {
	Friends []friendEntry `json:"friends"`
}

type friendEntry struct {
	LastSeenAsMembershipID         string `json:"lastSeenAsMembershipId"`
	LastSeenAsBungieMembershipType int    `json:"lastSeenAsBungieMembershipType"`
	BungieGlobalDisplayName        string `json:"bungieGlobalDisplayName"`
	BungieGlobalDisplayNameCode    int    `json:"bungieGlobalDisplayNameCode"`
	OnlineStatus                   int    `json:"onlineStatus"`
	BungieNetUser                  *struct {
		UniqueName string `json:"uniqueName"`
	} `json:"bungieNetUser"`
}

type manifestResponse struct {
	Version                        string                       `json:"version"`
	JSONWorldComponentContentPaths map[string]map[string]string `json:"jsonWorldComponentContentPaths"`
}
