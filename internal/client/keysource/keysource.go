// Package keysource supplies the passphrase that unlocks the credential
// store. Where it comes from (environment, terminal prompt, a fixed value in
// tests) is decided by the caller, never hardcoded.
package keysource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNoPassphrase is returned when a source has nothing to offer.
var ErrNoPassphrase = errors.New("no passphrase available")

// Source yields the store passphrase. Callers should wipe the returned slice
// once the key has been derived.
type Source interface {
	Passphrase(ctx context.Context) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]byte, error)

func (f SourceFunc) Passphrase(ctx context.Context) ([]byte, error) { return f(ctx) }

// Static always returns a copy of p.
func Static(p []byte) Source {
	return SourceFunc(func(context.Context) ([]byte, error) {
		if len(p) == 0 {
			return nil, ErrNoPassphrase
		}
		return append([]byte(nil), p...), nil
	})
}

// Env reads the passphrase from the environment variable name.
func Env(name string) Source {
	return SourceFunc(func(context.Context) ([]byte, error) {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			return nil, fmt.Errorf("%w: %s is not set", ErrNoPassphrase, name)
		}
		return []byte(v), nil
	})
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// Prompt asks for the passphrase on the terminal behind fd without echo,
// writing the prompt to w. It fails with ErrNoPassphrase when fd is not a
// terminal.
func Prompt(fd int, w io.Writer) Source {
	return SourceFunc(func(context.Context) ([]byte, error) {
		if !isTerminal(fd) {
			return nil, fmt.Errorf("%w: stdin is not a terminal", ErrNoPassphrase)
		}
		if _, err := fmt.Fprint(w, "Store passphrase: "); err != nil {
			return nil, err
		}
		p, err := readPassword(fd)
		fmt.Fprintln(w)
		if err != nil {
			return nil, fmt.Errorf("read passphrase: %w", err)
		}
		if len(p) == 0 {
			return nil, ErrNoPassphrase
		}
		return p, nil
	})
}

// First tries sources in order and returns the first passphrase found.
// Errors other than ErrNoPassphrase stop the search.
func First(sources ...Source) Source {
	return SourceFunc(func(ctx context.Context) ([]byte, error) {
		for _, s := range sources {
			p, err := s.Passphrase(ctx)
			if err == nil {
				return p, nil
			}
			if !errors.Is(err, ErrNoPassphrase) {
				return nil, err
			}
		}
		return nil, ErrNoPassphrase
	})
}
