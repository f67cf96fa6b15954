package utils

import "context"

// ResetContextOnError returns a fresh background context if the given one
// is already done, and the given one otherwise. Used where telemetry must
// still be recorded after the operation's context got canceled.
func ResetContextOnError(ctx context.Context) context.Context {
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	return ctx
}
