package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/skykeeper/internal/client/models"
	"github.com/dmitrijs2005/skykeeper/internal/common"
	"github.com/dmitrijs2005/skykeeper/internal/cryptox"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var errNoAccount = errors.New("no account selected; log in or pass a handle")

// Login prompts for identifier, server and password and creates a session.
// The new account becomes the current one.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Handle or email", a.out)
	if err != nil {
		return err
	}
	server, err := getSimpleText(a.reader, fmt.Sprintf("Server [%s]", a.config.ServerURL), a.out)
	if err != nil {
		return err
	}
	if server == "" {
		server = a.config.ServerURL
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	account, err := a.authService.Login(ctx, identifier, password, server)
	if err != nil {
		return err
	}

	a.setCurrent(account.ID, account.Handle)
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", account.Handle, account.DID)
	return nil
}

// Logout removes the given account, or the current one.
func (a *App) Logout(ctx context.Context, args []string) error {
	account, err := a.resolve(ctx, args)
	if err != nil {
		return err
	}
	if err := a.authService.Logout(ctx, account.ID); err != nil {
		return err
	}
	if account.ID == a.current {
		a.setCurrent("", "")
	}
	fmt.Fprintf(a.out, "Logged out %s\n", account.Handle)
	return nil
}

// Refresh exchanges the refresh token of the given or current account.
func (a *App) Refresh(ctx context.Context, args []string) error {
	account, err := a.resolve(ctx, args)
	if err != nil {
		return err
	}
	token, err := a.authService.RefreshSession(ctx, account.ID)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			fmt.Fprintf(a.out, "Session of %s has expired, please log in again.\n", account.Handle)
		}
		return err
	}
	fmt.Fprintf(a.out, "Session refreshed, access token valid until %s\n", token.AccessExpiresAt.Local().Format(time.RFC1123))
	return nil
}

// Accounts lists every stored account, marking the current one.
func (a *App) Accounts(ctx context.Context) error {
	accounts, err := a.authService.RestoreSessions(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(a.out, "No accounts.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tHANDLE\tDID\tSERVER\tLAST USED\tSTATUS")
	for _, acc := range accounts {
		marker := ""
		if acc.ID == a.current {
			marker = "*"
		}
		status := "active"
		if !acc.IsActive {
			status = "re-login required"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			marker, acc.Handle, acc.DID, acc.ServerURL, acc.LastUsedAt.Local().Format(time.DateTime), status)
	}
	return tw.Flush()
}

// Use makes the named account the current one.
func (a *App) Use(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: use <handle|id>")
	}
	account, err := a.resolve(ctx, args)
	if err != nil {
		return err
	}
	a.setCurrent(account.ID, account.Handle)
	return nil
}

// Token shows the validity of the token of the given or current account,
// refreshing it first when it is about to expire. The JWTs themselves are
// only shown masked.
func (a *App) Token(ctx context.Context, args []string) error {
	account, err := a.resolve(ctx, args)
	if err != nil {
		return err
	}
	token, err := a.authService.ValidToken(ctx, account.ID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "account\t%s\n", account.Handle)
	fmt.Fprintf(tw, "access token\t%s\n", mask(token.AccessJwt))
	fmt.Fprintf(tw, "issued\t%s\n", token.IssuedAt.Local().Format(time.DateTime))
	fmt.Fprintf(tw, "access expires\t%s\n", token.AccessExpiresAt.Local().Format(time.DateTime))
	fmt.Fprintf(tw, "refresh expires\t%s\n", token.RefreshExpiresAt.Local().Format(time.DateTime))
	return tw.Flush()
}

// Stats prints the counters collected since start.
func (a *App) Stats(ctx context.Context) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			value := m.GetCounter().GetValue()
			if g := m.GetGauge(); g != nil {
				value = g.GetValue()
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%s %g", name, value))
		}
	}
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "No activity yet.")
		return nil
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(a.out, l)
	}
	return nil
}

// resolve finds the account named by args[0], matching id or handle, or
// the current account when args is empty.
func (a *App) resolve(ctx context.Context, args []string) (models.Account, error) {
	key := a.current
	if len(args) > 0 {
		key = args[0]
	}
	if key == "" {
		return models.Account{}, errNoAccount
	}

	accounts, err := a.authService.RestoreSessions(ctx)
	if err != nil {
		return models.Account{}, err
	}
	for _, acc := range accounts {
		if acc.ID == key || strings.EqualFold(acc.Handle, strings.TrimPrefix(key, "@")) {
			return acc, nil
		}
	}
	return models.Account{}, common.AccountNotFound(key)
}

func mask(s string) string {
	if len(s) <= 12 {
		return strings.Repeat("*", len(s))
	}
	return s[:6] + "..." + s[len(s)-4:]
}
