package credentials

import (
	"context"

	"github.com/dmitrijs2005/skykeeper/internal/client/models"
)

// Repository is the credential cache contract. Callers depend only on it,
// never on the backend that is active.
type Repository interface {
	SaveAccount(ctx context.Context, account models.Account) error
	GetAccount(ctx context.Context, id string) (models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	SaveToken(ctx context.Context, token models.AuthToken) error
	GetToken(ctx context.Context, accountID string) (models.AuthToken, error)
	DeleteToken(ctx context.Context, accountID string) error

	ClearAll(ctx context.Context) error
}

// Persister is the durable side of FileRepository; *persistence.Store
// satisfies it.
type Persister interface {
	Load() (*models.Snapshot, error)
	Save(snap *models.Snapshot) error
	Clear() error
}
