package common

// DefaultServerURL is the PDS used when the caller does not name one.
const DefaultServerURL = "https://bsky.social"

// XRPC method identifiers for the two session endpoints.
const (
	CreateSessionNSID  = "com.atproto.server.createSession"
	RefreshSessionNSID = "com.atproto.server.refreshSession"
)

// AuthorizationHeaderName carries the bearer refresh token on refresh calls.
const AuthorizationHeaderName = "Authorization"
