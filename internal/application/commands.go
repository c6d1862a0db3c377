package application

import "github.com/bnema/fireteam-cli/internal/domain"

type SignInCommand struct {
	ID          domain.SessionID
	Identity    domain.Identity
	DisplayName string
	Credential  domain.Credential
	// SecretKey overrides the default secret-store key for the session.
	SecretKey string
}
