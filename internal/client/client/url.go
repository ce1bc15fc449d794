package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/skykeeper/internal/common"
)

// NormalizeServerURL turns user input into the base URL of a PDS. An empty
// value selects common.DefaultServerURL and a bare host gets https://.
// Anything that is not an https URL with a host is rejected with
// common.ErrInvalidServerURL.
func NormalizeServerURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return common.DefaultServerURL, nil
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", common.NewError(common.ErrInvalidServerURL, fmt.Sprintf("cannot parse %q", raw), err)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return "", common.NewError(common.ErrInvalidServerURL, "server URL must use HTTPS protocol", nil)
	}
	if u.Host == "" {
		return "", common.NewError(common.ErrInvalidServerURL, fmt.Sprintf("no host in %q", raw), nil)
	}

	u.Scheme = "https"
	return strings.TrimRight(u.String(), "/"), nil
}
