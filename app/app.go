package app

import (
	"context"
	"io"
	"time"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/internal/hal"
)

var LogApp = base.NewLogCategory("App")

// WithCommandEnv prepares the host before running scope, errors are logged before being returned.
func WithCommandEnv(ctx context.Context, stdout io.Writer, scope func(context.Context, io.Writer) error) error {
	startedAt := time.Now()
	defer base.FlushLog()

	hal.InitHAL()

	err := scope(ctx, stdout)
	if err != nil {
		base.LogForwardln("")
		base.LogError(LogApp, "%v", err)
	} else {
		base.LogVerbose(LogApp, "completed in %v", time.Since(startedAt))
	}
	return err
}
