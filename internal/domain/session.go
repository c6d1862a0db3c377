package domain

import (
	"fmt"
	"strings"
	"time"
)

type SessionID string

const DefaultSessionID SessionID = "default"

// Session is the signed-in user's metadata. Player progress is never stored.
type Session struct {
	ID          SessionID
	Identity    Identity
	DisplayName string
	Auth        Auth
	UpdatedAt   time.Time
}

func (s Session) Validate() error {
	if strings.TrimSpace(string(s.ID)) == "" {
		return fmt.Errorf("id is required")
	}
	if s.Identity.Platform != 0 && !s.Identity.Platform.Valid() {
		return fmt.Errorf("unsupported platform %d", s.Identity.Platform)
	}
	return nil
}

func (s Session) SignedIn() bool {
	return s.Auth.SecretRef != ""
}
