package domain

import "strings"

// CredentialKind discriminates the two credential types still in the wild:
// opaque bearer session tokens (canonical) and long-lived legacy API keys
// (deprecated, retained until all role-scoped clients migrate).
type CredentialKind int

const (
	CredentialSessionToken CredentialKind = iota
	CredentialLegacyAPIKey
)

// Credential is a tagged variant over the two credential types, so both
// flow through a single resolution path instead of parallel code.
type Credential struct {
	Kind  CredentialKind
	Value string
}

// CredentialFromHeaders extracts a credential from the Authorization and
// X-API-Key headers. The Authorization value may carry an optional "Bearer "
// prefix. A session token wins when both headers are present.
func CredentialFromHeaders(authorization, apiKey string) (Credential, error) {
	if authorization != "" {
		token := authorization
		if parts := strings.SplitN(authorization, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = parts[1]
		}
		if token != "" {
			return Credential{Kind: CredentialSessionToken, Value: token}, nil
		}
	}
	if apiKey != "" {
		return Credential{Kind: CredentialLegacyAPIKey, Value: apiKey}, nil
	}
	return Credential{}, ErrUnauthorized
}
