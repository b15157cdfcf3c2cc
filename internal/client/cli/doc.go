// Package cli provides the interactive farmclub command-line client.
//
// It wires configuration, the local database, the chosen credential store
// (local or remote) and the session controller, then runs a REPL. Pages are
// opened with "open <path>" and go through the route guard: protected pages
// redirect to login and are reopened once the user signs in.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
