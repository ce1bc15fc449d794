package credentials

import (
	"sort"

	"github.com/dmitrijs2005/skykeeper/internal/client/models"
)

// sortedAccounts returns the accounts most recently used first, ties broken
// by handle.
func sortedAccounts(m map[string]models.Account) []models.Account {
	out := make([]models.Account, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastUsedAt.Equal(out[j].LastUsedAt) {
			return out[i].LastUsedAt.After(out[j].LastUsedAt)
		}
		return out[i].Handle < out[j].Handle
	})
	return out
}
