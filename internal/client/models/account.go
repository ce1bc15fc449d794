// Package models defines the account, token and snapshot records kept in the
// local credential store.
package models

import "time"

// Account is a signed-in identity on a PDS.
type Account struct {
	// ID is a locally generated, globally unique identifier (UUID).
	ID string `json:"id"`

	// DID is the protocol identity, e.g. "did:plc:xyz123".
	DID string `json:"did"`

	// Handle is the human readable alias, e.g. "user.bsky.social".
	Handle string `json:"handle"`

	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`

	// ServerURL is the normalized https URL of the PDS.
	ServerURL string `json:"serverUrl"`

	CreatedAt  time.Time `json:"createdAt"`
	LastUsedAt time.Time `json:"lastUsedAt"`

	// IsActive is cleared when the refresh token is rejected and the user
	// must sign in again.
	IsActive bool `json:"isActive"`
}
