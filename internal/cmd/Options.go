package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/slice"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

func newOptionsCommand(env *CommandEnv) *cobra.Command {
	var iceHome Directory
	var autoBuilding bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show or update the global IceBuilder options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page := slice.NewOptionsPage(env.Options)
			if err := page.Activate(); err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("ice-home") || flags.Changed("auto-build") {
				if flags.Changed("ice-home") {
					page.IceHome = iceHome
				}
				if flags.Changed("auto-build") {
					page.AutoBuilding = autoBuilding
				}
				base.LogClaim(LogCommand, "save options in %q", env.Options)
				// an invalid Ice home found on the host only fails when it was given explicitly
				if err := page.Apply(); err != nil && (flags.Changed("ice-home") || !errors.Is(err, slice.ErrInvalidIceHome)) {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "IceHome:      %s\n", page.IceHome)
			fmt.Fprintf(out, "AutoBuilding: %v\n", page.AutoBuilding)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Var(&iceHome, "ice-home", "set the Ice installation directory")
	flags.BoolVar(&autoBuilding, "auto-build", false, "compile Slice files when generating")
	return cmd
}
