package cmd

import (
	"github.com/spf13/cobra"

	"github.com/poppolopoppo/icebuilder/internal/base"
	internal_io "github.com/poppolopoppo/icebuilder/internal/io"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

func newRestoreCommand(env *CommandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup.zip>",
		Short: "Restore project files saved by upgrade --backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var archive Filename
			if err := archive.Set(args[0]); err != nil {
				return err
			}
			restored, err := internal_io.RestoreBackupArchive(archive, env.Root)
			if err == nil {
				base.LogClaim(LogCommand, "restored %d files from %q", len(restored), archive)
			}
			return err
		},
	}
}
