// Package cli is the command-line front end of the storefront. It plays the
// role of the UI: every command calls into the session, cart and checkout
// services and prints the outcome.
//
// Commands can be run one at a time (storefront cart add 3 2) or inside the
// interactive shell (storefront shell), which accepts the same verbs.
// Failures are printed inline; they never end the shell.
package cli
