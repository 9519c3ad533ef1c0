// Package logging is the structured logger used by the services and the CLI.
package logging

import "context"

// Logger is a context-aware structured logger. args are alternating keys
// and values:
//
//	log.Info(ctx, "account registered", "id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
