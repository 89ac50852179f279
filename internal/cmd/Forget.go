package cmd

import (
	"github.com/spf13/cobra"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/slice"
)

func newForgetCommand(env *CommandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <project>...",
		Short: "Drop the generated files baseline of projects, as when they are unloaded",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := slice.LoadGeneratedFileTracker(env.TrackerDatabasePath(),
				base.CompressionOptionFormat(env.Compression))
			if err != nil {
				return err
			}
			defer db.Close()

			for _, it := range args {
				id := env.Root.AbsoluteFile(it).String()
				if !db.ContainsProject(id) {
					base.LogWarning(LogCommand, "%q is not tracked", id)
					continue
				}
				base.LogClaim(LogCommand, "forget %q", id)
				db.Remove(id)
			}
			return db.Save()
		},
	}
}
