package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/skykeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.SaveAccount(ctx, account("a", "alice.test", time.Now())))
	require.NoError(t, repo.SaveToken(ctx, token("a")))

	acc, err := repo.GetAccount(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alice.test", acc.Handle)

	require.NoError(t, repo.DeleteToken(ctx, "a"))
	_, err = repo.GetToken(ctx, "a")
	require.ErrorIs(t, err, common.ErrAccountNotFound)

	require.NoError(t, repo.DeleteAccount(ctx, "missing"))

	require.NoError(t, repo.ClearAll(ctx))
	list, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
