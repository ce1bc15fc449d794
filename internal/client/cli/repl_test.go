package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	err   error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return f.err
}

func (f *fakeExec) Login(ctx context.Context) error { return f.record("login", nil) }
func (f *fakeExec) Logout(ctx context.Context, args []string) error {
	return f.record("logout", args)
}
func (f *fakeExec) Refresh(ctx context.Context, args []string) error {
	return f.record("refresh", args)
}
func (f *fakeExec) Accounts(ctx context.Context) error { return f.record("accounts", nil) }
func (f *fakeExec) Use(ctx context.Context, args []string) error {
	return f.record("use", args)
}
func (f *fakeExec) Token(ctx context.Context, args []string) error {
	return f.record("token", args)
}
func (f *fakeExec) Stats(ctx context.Context) error { return f.record("stats", nil) }

func capturePrintln(t *testing.T) *strings.Builder {
	t.Helper()
	var sb strings.Builder
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(&sb, a...) }
	t.Cleanup(func() { printlnFn = orig })
	return &sb
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"login",
		"",
		"accounts",
		"use alice.test",
		"refresh",
		"token @alice.test",
		"logout acc-1",
		"stats",
		"foobar",
		"exit",
		"login",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(alice.test)" }, rdr(input))

	assert.Equal(t, []string{
		"login",
		"accounts",
		"use alice.test",
		"refresh",
		"token @alice.test",
		"logout acc-1",
		"stats",
	}, exec.calls)
	assert.Contains(t, out.String(), "Available commands:")
	assert.Contains(t, out.String(), "Unknown command: foobar")
	assert.Contains(t, out.String(), "sk(alice.test)> ")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_ReportsErrorsAndContinues(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{err: errors.New("login failed: network error: Request timeout")}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("login\naccounts\n"))

	assert.Equal(t, []string{"login", "accounts"}, exec.calls)
	assert.Contains(t, out.String(), "Error: login failed: network error: Request timeout")
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	capturePrintln(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, rdr("login\n"))
	assert.Empty(t, exec.calls)
}
