package client

import (
	"context"

	"github.com/dmitrijs2005/skykeeper/internal/client/models"
)

// SessionClient talks to the session endpoints of one PDS.
type SessionClient interface {
	CreateSession(ctx context.Context, identifier string, password []byte) (models.SessionTokens, error)
	RefreshSession(ctx context.Context, refreshJwt string) (models.SessionTokens, error)

	CreateSessionWithRetry(ctx context.Context, identifier string, password []byte) (models.SessionTokens, error)
	RefreshSessionWithRetry(ctx context.Context, refreshJwt string) (models.SessionTokens, error)

	ServerURL() string
}
