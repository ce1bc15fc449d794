// Package services contains application services for the skykeeper client.
// This file defines the session orchestrator: login, logout, refresh and
// restore, composed from a credentials.Repository and a session client.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skykeeper/internal/client/client"
	"github.com/dmitrijs2005/skykeeper/internal/client/models"
	"github.com/dmitrijs2005/skykeeper/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/skykeeper/internal/common"
	"github.com/dmitrijs2005/skykeeper/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshSkew is how early ValidToken refreshes an access token
// before it expires.
const DefaultRefreshSkew = 60 * time.Second

// AuthService defines the session operations exposed to the CLI.
//
// Contract:
//   - Login: create a session on a PDS and store the account and its token.
//   - Logout: forget the token and the account.
//   - RefreshSession: exchange the stored refresh token for a new pair.
//   - RestoreSessions: list every stored account.
//   - ValidToken: return a token whose access JWT is not about to expire.
//
// Errors keep their common kind and are prefixed with the operation name.
// They never contain passwords or tokens.
type AuthService interface {
	Login(ctx context.Context, identifier string, password []byte, serverURL string) (models.Account, error)
	Logout(ctx context.Context, accountID string) error
	RefreshSession(ctx context.Context, accountID string) (models.AuthToken, error)
	RestoreSessions(ctx context.Context) ([]models.Account, error)
	ValidToken(ctx context.Context, accountID string) (models.AuthToken, error)
}

// ClientFactory returns a session client for a normalized server URL.
type ClientFactory func(serverURL string) (client.SessionClient, error)

// XRPCClientFactory builds XRPC clients sharing opts.
func XRPCClientFactory(opts ...client.Option) ClientFactory {
	return func(serverURL string) (client.SessionClient, error) {
		return client.NewXRPCClient(serverURL, opts...)
	}
}

type authService struct {
	repo      credentials.Repository
	newClient ClientFactory
	now       func() time.Time
	newID     func() string
	skew      time.Duration
	log       logging.Logger

	refreshes singleflight.Group
}

type AuthOption func(*authService)

func WithClock(now func() time.Time) AuthOption {
	return func(a *authService) { a.now = now }
}

func WithIDGenerator(newID func() string) AuthOption {
	return func(a *authService) { a.newID = newID }
}

func WithRefreshSkew(d time.Duration) AuthOption {
	return func(a *authService) { a.skew = d }
}

func WithLogger(l logging.Logger) AuthOption {
	return func(a *authService) { a.log = l }
}

// NewAuthService constructs an AuthService over repo. Session clients are
// obtained from newClient per call, so each account talks to its own PDS.
func NewAuthService(repo credentials.Repository, newClient ClientFactory, opts ...AuthOption) AuthService {
	a := &authService{
		repo:      repo,
		newClient: newClient,
		now:       time.Now,
		newID:     uuid.NewString,
		skew:      DefaultRefreshSkew,
		log:       logging.Nop(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Login creates a session and stores the account first, then its token. A
// DID already stored for the same server keeps its account id and creation
// time. If the token cannot be stored, a newly created account is removed
// again and a re-used one is put back as it was, so a failed login leaves
// the store unchanged. password is not retained; wiping it is up to the
// caller.
func (a *authService) Login(ctx context.Context, identifier string, password []byte, serverURL string) (models.Account, error) {
	u, err := client.NormalizeServerURL(serverURL)
	if err != nil {
		return models.Account{}, fmt.Errorf("login failed: %w", err)
	}

	c, err := a.newClient(u)
	if err != nil {
		return models.Account{}, fmt.Errorf("login failed: %w", err)
	}

	session, err := c.CreateSessionWithRetry(ctx, identifier, password)
	if err != nil {
		return models.Account{}, fmt.Errorf("login failed: %w", err)
	}

	now := a.now().UTC()
	account := models.Account{
		ID:          a.newID(),
		DID:         session.DID,
		Handle:      session.Handle,
		Email:       session.Email,
		DisplayName: session.DisplayName,
		Avatar:      session.Avatar,
		ServerURL:   u,
		CreatedAt:   now,
		LastUsedAt:  now,
		IsActive:    true,
	}

	existing, found, err := a.findAccount(ctx, session.DID, u)
	if err != nil {
		return models.Account{}, fmt.Errorf("login failed: %w", err)
	}
	if found {
		account.ID = existing.ID
		account.CreatedAt = existing.CreatedAt
	}

	if err := a.repo.SaveAccount(ctx, account); err != nil {
		return models.Account{}, fmt.Errorf("login failed: %w", err)
	}

	token := models.NewAuthToken(account.ID, session, now)
	if err := a.repo.SaveToken(ctx, token); err != nil {
		a.rollbackAccount(ctx, account.ID, existing, found)
		return models.Account{}, fmt.Errorf("login failed: %w", err)
	}

	a.log.Info(ctx, "logged in", "account", account.ID, "handle", account.Handle, "server", u)
	return account, nil
}

func (a *authService) rollbackAccount(ctx context.Context, id string, previous models.Account, existed bool) {
	var err error
	if existed {
		err = a.repo.SaveAccount(ctx, previous)
	} else {
		err = a.repo.DeleteAccount(ctx, id)
	}
	if err != nil {
		a.log.Error(ctx, "rollback of account failed", "account", id, "error", err)
	}
}

func (a *authService) findAccount(ctx context.Context, did, serverURL string) (models.Account, bool, error) {
	accounts, err := a.repo.ListAccounts(ctx)
	if err != nil {
		return models.Account{}, false, err
	}
	for _, acc := range accounts {
		if acc.DID == did && acc.ServerURL == serverURL {
			return acc, true, nil
		}
	}
	return models.Account{}, false, nil
}

// Logout deletes the token before the account, so a failure in between
// never leaves a token without its account.
func (a *authService) Logout(ctx context.Context, accountID string) error {
	if err := a.repo.DeleteToken(ctx, accountID); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	if err := a.repo.DeleteAccount(ctx, accountID); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	a.log.Info(ctx, "logged out", "account", accountID)
	return nil
}

// RefreshSession replaces the stored token of accountID. When the refresh
// token is rejected, or already known to be expired, the account is marked
// inactive, the stored token is kept and common.ErrTokenExpired is returned.
// Concurrent refreshes of one account share a single request. That request
// is detached from the callers' cancellation: each caller stops waiting when
// its own ctx ends, while the request runs on and stores the rotated token.
func (a *authService) RefreshSession(ctx context.Context, accountID string) (models.AuthToken, error) {
	if err := ctx.Err(); err != nil {
		return models.AuthToken{}, fmt.Errorf("refresh failed: %w", cancelled(err))
	}

	ch := a.refreshes.DoChan(accountID, func() (any, error) {
		return a.refresh(context.WithoutCancel(ctx), accountID)
	})

	select {
	case <-ctx.Done():
		return models.AuthToken{}, fmt.Errorf("refresh failed: %w", cancelled(ctx.Err()))
	case res := <-ch:
		if res.Err != nil {
			return models.AuthToken{}, fmt.Errorf("refresh failed: %w", res.Err)
		}
		return res.Val.(models.AuthToken), nil
	}
}

func cancelled(err error) error {
	return common.NewError(common.ErrNetwork, "request cancelled", err)
}

func (a *authService) refresh(ctx context.Context, accountID string) (models.AuthToken, error) {
	old, err := a.repo.GetToken(ctx, accountID)
	if err != nil {
		return models.AuthToken{}, err
	}
	account, err := a.repo.GetAccount(ctx, accountID)
	if err != nil {
		return models.AuthToken{}, err
	}

	now := a.now().UTC()
	if old.RefreshExpired(now) {
		a.markInactive(ctx, account)
		return models.AuthToken{}, common.NewError(common.ErrTokenExpired, "refresh token expired locally", nil)
	}

	c, err := a.newClient(account.ServerURL)
	if err != nil {
		return models.AuthToken{}, err
	}

	session, err := c.RefreshSessionWithRetry(ctx, old.RefreshJwt)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			a.markInactive(ctx, account)
		}
		return models.AuthToken{}, err
	}

	token := models.NewAuthToken(accountID, session, now)
	if err := a.repo.SaveToken(ctx, token); err != nil {
		return models.AuthToken{}, err
	}

	account.LastUsedAt = now
	account.IsActive = true
	if err := a.repo.SaveAccount(ctx, account); err != nil {
		a.log.Warn(ctx, "could not update account after refresh", "account", accountID, "error", err)
	}

	a.log.Debug(ctx, "session refreshed", "account", accountID, "access_expires", token.AccessExpiresAt)
	return token, nil
}

func (a *authService) markInactive(ctx context.Context, account models.Account) {
	a.log.Warn(ctx, "refresh token expired, re-login required", "account", account.ID, "handle", account.Handle)
	if !account.IsActive {
		return
	}
	account.IsActive = false
	if err := a.repo.SaveAccount(ctx, account); err != nil {
		a.log.Warn(ctx, "could not mark account inactive", "account", account.ID, "error", err)
	}
}

// RestoreSessions returns every stored account, most recently used first.
func (a *authService) RestoreSessions(ctx context.Context) ([]models.Account, error) {
	accounts, err := a.repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore sessions failed: %w", err)
	}
	return accounts, nil
}

// ValidToken returns the stored token of accountID, refreshing it first
// when the access JWT expires within the configured skew.
func (a *authService) ValidToken(ctx context.Context, accountID string) (models.AuthToken, error) {
	token, err := a.repo.GetToken(ctx, accountID)
	if err != nil {
		return models.AuthToken{}, fmt.Errorf("token lookup failed: %w", err)
	}
	if !token.AccessExpired(a.now(), a.skew) {
		return token, nil
	}
	return a.RefreshSession(ctx, accountID)
}
