package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAccessTTL is the assumed lifetime of an access JWT.
	DefaultAccessTTL = 90 * time.Minute

	// DefaultRefreshTTL is the assumed lifetime of a refresh JWT.
	DefaultRefreshTTL = 60 * 24 * time.Hour
)

// AuthToken holds the credentials of one Account. There is exactly one token
// per account; a refresh replaces it wholesale.
type AuthToken struct {
	AccountID        string    `json:"accountId"`
	AccessJwt        string    `json:"accessJwt"`
	RefreshJwt       string    `json:"refreshJwt"`
	IssuedAt         time.Time `json:"issuedAt"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
	SessionString    string    `json:"sessionString,omitempty"`
}

// NewAuthToken builds the token for accountID from a session response issued
// at now. Expiries come from the JWT exp claims when they can be read, and
// fall back to DefaultAccessTTL / DefaultRefreshTTL otherwise.
func NewAuthToken(accountID string, s SessionTokens, now time.Time) AuthToken {
	return AuthToken{
		AccountID:        accountID,
		AccessJwt:        s.AccessJwt,
		RefreshJwt:       s.RefreshJwt,
		IssuedAt:         now,
		AccessExpiresAt:  expiryOf(s.AccessJwt, now, DefaultAccessTTL),
		RefreshExpiresAt: expiryOf(s.RefreshJwt, now, DefaultRefreshTTL),
	}
}

// AccessExpired reports whether the access token is expired at now, allowing
// for skew.
func (t AuthToken) AccessExpired(now time.Time, skew time.Duration) bool {
	return !now.Add(skew).Before(t.AccessExpiresAt)
}

// RefreshExpired reports whether the refresh token is known to be expired.
// A zero expiry is treated as unknown.
func (t AuthToken) RefreshExpired(now time.Time) bool {
	if t.RefreshExpiresAt.IsZero() {
		return false
	}
	return !now.Before(t.RefreshExpiresAt)
}

// expiryOf reads the exp claim of token without verifying its signature;
// the PDS is the only party that verifies these tokens. Opaque tokens and
// claims that lie in the past relative to now yield now+fallback.
func expiryOf(token string, now time.Time, fallback time.Duration) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return now.Add(fallback)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(now) {
		return now.Add(fallback)
	}
	return claims.ExpiresAt.UTC()
}
