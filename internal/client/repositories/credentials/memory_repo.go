package credentials

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/skykeeper/internal/client/models"
	"github.com/dmitrijs2005/skykeeper/internal/common"
)

// MemoryRepository keeps credentials for the lifetime of the process only.
type MemoryRepository struct {
	mu   sync.RWMutex
	snap *models.Snapshot
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snap: models.NewSnapshot()}
}

func (r *MemoryRepository) SaveAccount(_ context.Context, account models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Accounts[account.ID] = account
	return nil
}

func (r *MemoryRepository) GetAccount(_ context.Context, id string) (models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.snap.Accounts[id]
	if !ok {
		return models.Account{}, common.AccountNotFound(id)
	}
	return a, nil
}

func (r *MemoryRepository) ListAccounts(_ context.Context) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedAccounts(r.snap.Accounts), nil
}

func (r *MemoryRepository) DeleteAccount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snap.Accounts, id)
	return nil
}

func (r *MemoryRepository) SaveToken(_ context.Context, token models.AuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Tokens[token.AccountID] = token
	return nil
}

func (r *MemoryRepository) GetToken(_ context.Context, accountID string) (models.AuthToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.snap.Tokens[accountID]
	if !ok {
		return models.AuthToken{}, common.AccountNotFound(accountID)
	}
	return t, nil
}

func (r *MemoryRepository) DeleteToken(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snap.Tokens, accountID)
	return nil
}

func (r *MemoryRepository) ClearAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = models.NewSnapshot()
	return nil
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*FileRepository)(nil)
)
