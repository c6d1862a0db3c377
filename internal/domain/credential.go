package domain

import "time"

type Credential struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is the zero time when the upstream did not report an expiry.
	ExpiresAt time.Time
	SubjectID string
}

func (c Credential) Established() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}

func (c Credential) CanRefresh() bool {
	return c.RefreshToken != ""
}

// Expired reports whether now has reached ExpiresAt minus skew.
func (c Credential) Expired(now time.Time, skew time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	if skew < 0 {
		skew = 0
	}

	return !now.Before(c.ExpiresAt.Add(-skew))
}
