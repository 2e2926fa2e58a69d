// Package cli provides the gophauth command-line client.
//
// Every server operation is a cobra subcommand: signup, login, me, forgot,
// reset, logout and health. Passwords are read without echo. A successful
// login is stored in the per-user session database so that later "me" calls
// can present the bearer token. Commands talk to the HTTP API unless a gRPC
// address is configured.
package cli
