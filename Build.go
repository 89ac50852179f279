package icebuilder

import (
	"context"
	"io"
	"os"

	"github.com/poppolopoppo/icebuilder/app"
	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/internal/cmd"
)

var LogIceBuilder = base.NewLogCategory("IceBuilder")

/***************************************
 * Launch Command (program entry point)
 ***************************************/

func LaunchCommand(ctx context.Context, args ...string) error {
	return app.WithCommandEnv(ctx, os.Stdout, func(ctx context.Context, stdout io.Writer) error {
		return cmd.Execute(ctx, stdout, args...)
	})
}
