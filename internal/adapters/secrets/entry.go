// Package secrets holds helpers shared by the secret store backends.
package secrets

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// EntryPath turns a secret reference such as bungie://default/oauth_tokens into
// a relative slash path (bungie/default/oauth_tokens) usable as a file or pass
// entry name.
func EntryPath(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("secret key is empty")
	}

	if scheme, rest, ok := strings.Cut(trimmed, "://"); ok {
		if scheme == "" || strings.Contains(scheme, "/") {
			return "", fmt.Errorf("invalid secret key %q", key)
		}
		trimmed = scheme + "/" + rest
	}

	if strings.HasPrefix(trimmed, "/") {
		return "", fmt.Errorf("invalid secret key %q", key)
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == ".." {
			return "", fmt.Errorf("invalid secret key %q", key)
		}
	}

	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("invalid secret key %q", key)
	}
	return cleaned, nil
}
