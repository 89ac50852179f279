package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/slice"
)

func newSettingsCommand(env *CommandEnv) *cobra.Command {
	var outputDir, additionalOptions string
	var includeDirectories []string

	cmd := &cobra.Command{
		Use:   "settings <project>",
		Short: "Show or update the Slice compile settings of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(env, args, func(session *Session) error {
				project, err := session.Project(args[0])
				if err != nil {
					return err
				}
				if slice.IsIceBuilderEnabled(project) == slice.PROJECT_NONE {
					return fmt.Errorf("%q is not using IceBuilder", project.Name())
				}

				page := slice.NewPropertyPage(session.Builder.SourceControl, &session.Workspace.ProjectChanged)
				if err := page.SetObjects(project); err != nil {
					return err
				}
				defer page.Deactivate()

				flags := cmd.Flags()
				if flags.Changed("output-dir") {
					page.SetOutputDir(outputDir)
				}
				if flags.Changed("include-dirs") {
					page.SetIncludeDirectories(includeDirectories...)
				}
				if flags.Changed("additional-options") {
					page.SetAdditionalOptions(additionalOptions)
				}

				if page.IsPageDirty() {
					base.LogClaim(LogCommand, "update %q of %q", page.GetPageInfo().Title, project.Name())
					if err := page.Apply(); err != nil {
						return err
					}
					// output directories may have changed
					if err := session.Builder.SetupGenerated(project); err != nil {
						return err
					}
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%v)\n", project.Name(), slice.IsIceBuilderEnabled(project))
				fmt.Fprintf(out, "  OutputDir:          %s\n", page.OutputDir)
				fmt.Fprintf(out, "  IncludeDirectories: %s\n", page.IncludeDirectories.Join(";"))
				fmt.Fprintf(out, "  AdditionalOptions:  %s\n", page.AdditionalOptions)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&outputDir, "output-dir", "", "set the output directory of generated files")
	flags.StringSliceVar(&includeDirectories, "include-dirs", nil, "set the Slice include directories")
	flags.StringVar(&additionalOptions, "additional-options", "", "set additional Slice compiler options")
	return cmd
}
