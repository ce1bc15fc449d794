package credentials

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/skykeeper/internal/client/models"
	"github.com/dmitrijs2005/skykeeper/internal/common"
	"github.com/dmitrijs2005/skykeeper/internal/logging"
	"github.com/dmitrijs2005/skykeeper/internal/metrics"
)

type FileRepository struct {
	store   Persister
	log     logging.Logger
	metrics *metrics.Metrics

	writeMu sync.Mutex

	mu   sync.RWMutex
	snap *models.Snapshot
}

type Option func(*FileRepository)

func WithLogger(l logging.Logger) Option {
	return func(r *FileRepository) { r.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *FileRepository) { r.metrics = m }
}

// NewFileRepository loads the current snapshot from store. A store that
// cannot be decrypted or parsed is an error; it is never treated as empty.
func NewFileRepository(store Persister, opts ...Option) (*FileRepository, error) {
	r := &FileRepository{store: store, log: logging.Nop()}
	for _, o := range opts {
		o(r)
	}

	snap, err := store.Load()
	if err != nil {
		return nil, asStorageError("load credentials", err)
	}
	r.snap = snap
	return r, nil
}

// mutate applies fn to a copy of the snapshot, persists the copy and only
// then makes it visible.
func (r *FileRepository) mutate(ctx context.Context, op string, fn func(s *models.Snapshot)) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.RLock()
	next := r.snap.Clone()
	r.mu.RUnlock()

	fn(next)

	err := r.store.Save(next)
	r.metrics.ObserveFlush(err, len(next.Accounts))
	if err != nil {
		r.log.Error(ctx, "credential flush failed", "op", op, "error", err)
		return asStorageError(op, err)
	}

	r.mu.Lock()
	r.snap = next
	r.mu.Unlock()

	r.log.Debug(ctx, "credentials flushed", "op", op, "accounts", len(next.Accounts), "tokens", len(next.Tokens))
	return nil
}

func (r *FileRepository) SaveAccount(ctx context.Context, account models.Account) error {
	return r.mutate(ctx, "save account", func(s *models.Snapshot) {
		s.Accounts[account.ID] = account
	})
}

func (r *FileRepository) GetAccount(ctx context.Context, id string) (models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.snap.Accounts[id]
	if !ok {
		return models.Account{}, common.AccountNotFound(id)
	}
	return a, nil
}

func (r *FileRepository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedAccounts(r.snap.Accounts), nil
}

func (r *FileRepository) DeleteAccount(ctx context.Context, id string) error {
	return r.mutate(ctx, "delete account", func(s *models.Snapshot) {
		delete(s.Accounts, id)
	})
}

func (r *FileRepository) SaveToken(ctx context.Context, token models.AuthToken) error {
	return r.mutate(ctx, "save token", func(s *models.Snapshot) {
		s.Tokens[token.AccountID] = token
	})
}

func (r *FileRepository) GetToken(ctx context.Context, accountID string) (models.AuthToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.snap.Tokens[accountID]
	if !ok {
		return models.AuthToken{}, common.AccountNotFound(accountID)
	}
	return t, nil
}

func (r *FileRepository) DeleteToken(ctx context.Context, accountID string) error {
	return r.mutate(ctx, "delete token", func(s *models.Snapshot) {
		delete(s.Tokens, accountID)
	})
}

// ClearAll drops every account and token and removes the files on disk.
func (r *FileRepository) ClearAll(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.store.Clear(); err != nil {
		r.metrics.ObserveFlush(err, 0)
		return asStorageError("clear credentials", err)
	}
	r.metrics.ObserveFlush(nil, 0)

	r.mu.Lock()
	r.snap = models.NewSnapshot()
	r.mu.Unlock()

	r.log.Info(ctx, "credential store cleared")
	return nil
}

func asStorageError(op string, err error) error {
	if errors.Is(err, common.ErrStorage) {
		return err
	}
	return common.StorageError(op, err)
}
