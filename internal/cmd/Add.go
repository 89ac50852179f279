package cmd

import (
	"github.com/spf13/cobra"

	"github.com/poppolopoppo/icebuilder/internal/base"
)

func newAddCommand(env *CommandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "add <project> <file.ice>...",
		Short: "Add Slice files to a project, unless their generated files collide with existing files",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(env, args[:1], func(session *Session) error {
				project, err := session.Project(args[0])
				if err != nil {
					return err
				}
				for _, it := range args[1:] {
					sliceFile := env.Root.AbsoluteFile(it)
					base.LogClaim(LogCommand, "add %q to %q", sliceFile, project.Name())
					if err := session.Builder.AddSliceFile(project, sliceFile); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
