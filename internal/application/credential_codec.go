package application

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/fireteam-cli/internal/domain"
)

type storedCredential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	MembershipID string `json:"membership_id,omitempty"`
}

func DecodeCredential(secretValue string) (domain.Credential, error) {
	var stored storedCredential
	if err := json.Unmarshal([]byte(secretValue), &stored); err != nil {
		return domain.Credential{}, fmt.Errorf("decode credential: %w", err)
	}
	if strings.TrimSpace(stored.AccessToken) == "" && strings.TrimSpace(stored.RefreshToken) == "" {
		return domain.Credential{}, fmt.Errorf("credential missing access_token and refresh_token")
	}

	cred := domain.Credential{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		SubjectID:    stored.MembershipID,
	}
	if stored.ExpiresAt > 0 {
		cred.ExpiresAt = time.Unix(stored.ExpiresAt, 0).UTC()
	}
	return cred, nil
}

func EncodeCredential(cred domain.Credential) (string, error) {
	stored := storedCredential{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		MembershipID: cred.SubjectID,
	}
	if !cred.ExpiresAt.IsZero() {
		stored.ExpiresAt = cred.ExpiresAt.Unix()
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode credential: %w", err)
	}
	return string(payload), nil
}
