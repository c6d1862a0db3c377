package domain

import "errors"

var (
	// ErrAuth means no usable credential has ever been established for the session.
	ErrAuth                 = errors.New("not signed in")
	ErrUnresolvableIdentity = errors.New("identity unresolvable on every platform")
	ErrUpstreamUnavailable  = errors.New("upstream unavailable")
	ErrMalformedData        = errors.New("malformed upstream data")
	ErrUnauthorized         = errors.New("upstream rejected credential")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSecretNotFound       = errors.New("secret not found")
	ErrUnknownGroup         = errors.New("unknown group")
	ErrUnknownDefinition    = errors.New("unknown definition table")
)
