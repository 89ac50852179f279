package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/poppolopoppo/icebuilder/internal/base"
	internal_io "github.com/poppolopoppo/icebuilder/internal/io"
	"github.com/poppolopoppo/icebuilder/msbuild"
	"github.com/poppolopoppo/icebuilder/slice"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

type upgradeProgress struct {
	out      io.Writer
	total    int
	finished bool
}

func (x *upgradeProgress) ReportProgress(project string, index int) {
	fmt.Fprintf(x.out, "[%d/%d] upgrading %s\n", index, x.total, project)
}
func (x *upgradeProgress) Finished() {
	x.finished = true
}

// backupFiles lists every file the upgrade may rewrite.
func backupFiles(projects map[string]slice.UpgradableProject) (files FileSet) {
	for _, p := range projects {
		files.AppendUniq(p.Path())
		if project, ok := p.(*msbuild.ProjectFile); ok {
			files.AppendUniq(project.FiltersPath())
		}
		files.AppendUniq(p.Dir().File(msbuild.PACKAGES_CONFIG))
	}
	files.Sort()
	return
}

func RunUpgrade(ctx context.Context, env *CommandEnv, out io.Writer, backup, restore bool, paths ...string) (int, error) {
	ws := msbuild.NewWorkspace()
	if err := ws.Open(env.resolvePaths(paths)...); err != nil {
		return 0, err
	}

	projects := slice.TryUpgrade(ws.SliceProjects())
	if len(projects) == 0 {
		base.LogInfo(LogCommand, "no IceBuilder project to upgrade")
		return 0, nil
	}

	if backup {
		dst := internal_io.MakeBackupFilename(UFS.Saved.Folder("backups"), time.Now())
		if _, err := internal_io.CreateBackupArchive(dst, env.Root, backupFiles(projects)...); err != nil {
			return 0, fmt.Errorf("backup before upgrade: %w", err)
		}
		base.LogClaim(LogCommand, "saved backup of %d projects in %q", len(projects), dst)
	}

	nuget := msbuild.NewNuGetPackageManager(GetSourceControlProvider(env.Root))
	nuget.RunRestore = restore

	progress := &upgradeProgress{out: out, total: len(projects)}
	dispatcher := slice.NewChannelDispatcher()

	future := slice.Upgrade(ctx, projects, nuget, progress, dispatcher)
	dispatcher.Pump(future.Done())

	upgraded, err := future.Join().Get()
	if errors.Is(err, context.Canceled) {
		base.LogWarning(LogCommand, "upgrade interrupted, %d projects were upgraded", upgraded)
		err = nil
	}
	return upgraded, err
}

func newUpgradeCommand(env *CommandEnv) *cobra.Command {
	var backup, restore bool
	cmd := &cobra.Command{
		Use:   "upgrade [paths...]",
		Short: "Upgrade projects using a legacy IceBuilder to the NuGet package, Ctrl-C stops between projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			upgraded, err := RunUpgrade(ctx, env, cmd.OutOrStdout(), backup, restore, args...)
			if err == nil {
				base.LogClaim(LogCommand, "upgraded %d projects", upgraded)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&backup, "backup", false, "archive project files before upgrading them")
	cmd.Flags().BoolVar(&restore, "restore", false, "restore NuGet packages with nuget or dotnet")
	return cmd
}
