// Package cli provides the interactive skykeeper command-line client.
//
// It wires configuration, the encrypted credential store, the session client
// and the auth service, then serves a small REPL. On start every saved
// account is restored and the most recently used one becomes current.
//
// Key features:
//   - Login / Logout of any number of accounts on any PDS
//   - Refresh sessions and inspect token validity
//   - List accounts and switch between them
//   - Request and storage counters (stats)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
