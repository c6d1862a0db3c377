package domain

type AuthMethod string

const (
	AuthMethodOAuth AuthMethod = "oauth"
)

type Auth struct {
	Method AuthMethod
	// SecretRef points to a secret-store entry, typically in "bungie://<session>/oauth_tokens" form.
	SecretRef string
}
