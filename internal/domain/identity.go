package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type Platform int

const (
	PlatformXbox     Platform = 1
	PlatformPSN      Platform = 2
	PlatformSteam    Platform = 3
	PlatformBlizzard Platform = 4
	PlatformStadia   Platform = 5
)

var platformNames = map[Platform]string{
	PlatformXbox:     "xbox",
	PlatformPSN:      "psn",
	PlatformSteam:    "steam",
	PlatformBlizzard: "blizzard",
	PlatformStadia:   "stadia",
}

// ProbeOrder returns the known platforms in ascending id order.
func ProbeOrder() []Platform {
	return []Platform{PlatformXbox, PlatformPSN, PlatformSteam, PlatformBlizzard, PlatformStadia}
}

func (p Platform) Valid() bool {
	_, ok := platformNames[p]
	return ok
}

func (p Platform) String() string {
	if name, ok := platformNames[p]; ok {
		return name
	}
	return strconv.Itoa(int(p))
}

func ParsePlatform(raw string) (Platform, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	for platform, name := range platformNames {
		if name == trimmed {
			return platform, nil
		}
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil || !Platform(n).Valid() {
		return 0, fmt.Errorf("unknown platform %q", raw)
	}

	return Platform(n), nil
}

type Identity struct {
	Platform     Platform
	MembershipID string
}

func (i Identity) Valid() bool {
	return i.Platform.Valid() && strings.TrimSpace(i.MembershipID) != ""
}

func (i Identity) String() string {
	return fmt.Sprintf("%s/%s", i.Platform, i.MembershipID)
}
