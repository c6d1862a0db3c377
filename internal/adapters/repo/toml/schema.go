package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Sessions []sessionSchema `toml:"sessions"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported sessions schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	ID           string     `toml:"id"`
	DisplayName  string     `toml:"display_name,omitempty"`
	Platform     int        `toml:"platform,omitempty"`
	MembershipID string     `toml:"membership_id,omitempty"`
	UpdatedAt    string     `toml:"updated_at,omitempty"`
	Auth         authSchema `toml:"auth"`
}

type authSchema struct {
	Method    string `toml:"method,omitempty"`
	SecretRef string `toml:"secret_ref,omitempty"`
}
