// Package admincli implements the operator command line: bootstrapping an
// admin account with a password read from the terminal, and applying
// database migrations without starting the server.
package admincli
