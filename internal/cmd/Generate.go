package cmd

import (
	"github.com/spf13/cobra"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/slice"
)

func newGenerateCommand(env *CommandEnv) *cobra.Command {
	var build bool
	cmd := &cobra.Command{
		Use:   "generate [paths...]",
		Short: "Reconcile generated files of every IceBuilder project in solutions, projects or directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := slice.LoadOptions(env.Options)
			if err != nil {
				return err
			}
			build = build || options.AutoBuilding.Get()

			var compiler *slice.Compiler
			if build {
				if !slice.IsValidIceHome(options.IceHome) {
					return slice.ErrInvalidIceHome
				}
				compiler = slice.NewCompiler(options.IceHome)
			}

			return withSession(env, args, func(session *Session) error {
				var errs []error
				for _, p := range session.Workspace.SliceProjects() {
					if slice.IsIceBuilderEnabled(p) == slice.PROJECT_NONE {
						base.LogVerbose(LogCommand, "skip %q, IceBuilder is not enabled", p.Name())
						continue
					}

					base.LogClaim(LogCommand, "generate %q", p.Name())
					if compiler == nil {
						errs = append(errs, session.Builder.SetupGenerated(p))
						continue
					}

					compiled, err := session.Builder.Build(cmd.Context(), p, compiler)
					if err == nil {
						base.LogInfo(LogCommand, "%s: compiled %d Slice files", p.Name(), compiled)
					}
					errs = append(errs, err)
				}
				return base.AnyError(errs...)
			})
		},
	}
	cmd.Flags().BoolVar(&build, "build", false, "compile out-of-date Slice files, implied by the auto building option")
	return cmd
}
