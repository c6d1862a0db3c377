package application

import (
	"time"

	"github.com/bnema/fireteam-cli/internal/domain"
)

type Status struct {
	Session         domain.Session
	HasCredential   bool
	CanRefresh      bool
	Expired         bool
	ExpiresAt       time.Time
	CredentialError string
}
