// Package services implements the storefront state layer: the account
// directory with its session, the cart, and checkout.
//
// Every operation reads what it needs through a Store, applies the change
// and writes the result back before returning. Nothing is cached between
// calls, so the persisted records are always the source of truth and a
// restarted process resumes the previous session and cart.
//
// The services are meant for a single caller. They are not safe for
// concurrent use and add no locking across processes that share a backing
// store: the later write wins.
package services
