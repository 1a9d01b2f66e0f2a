// Package cli provides the interactive geoforensics terminal client.
//
// It wires configuration, the local database, the HTTP gateway and the
// session and job stores, then runs a REPL until the user exits. On start
// the persisted session is restored; the login prompt only appears when
// that fails. Every command except help, login and exit needs a session.
//
// Start it with App.Run(ctx). See runREPL for the command set.
package cli
