package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/msbuild"
	"github.com/poppolopoppo/icebuilder/slice"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

var LogCommand = base.NewLogCategory("Command")

const TRACKER_DATABASE = "generated.db"

/***************************************
 * Command environment
 ***************************************/

// CommandEnv holds the global flags shared by every command.
type CommandEnv struct {
	Root        Directory
	Options     Filename
	Verbose     bool
	Quiet       bool
	Compression base.CompressionFormat

	stopProfiling func()
}

func NewCommandEnv() *CommandEnv {
	return &CommandEnv{
		Root:        UFS.Root,
		Compression: base.COMPRESSION_FORMAT_LZ4,
	}
}

func (env *CommandEnv) apply() error {
	switch {
	case env.Verbose && env.Quiet:
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	case env.Verbose:
		base.SetLogVisibleLevel(base.LOG_VERBOSE)
	case env.Quiet:
		base.SetLogVisibleLevel(base.LOG_WARNING)
	}

	if !env.Root.Equals(UFS.Root) {
		if !env.Root.Exists() {
			return fmt.Errorf("root directory %q does not exist", env.Root)
		}
		if err := UFS.MountRootDirectory(env.Root); err != nil {
			return err
		}
	}
	if !env.Options.Valid() {
		env.Options = slice.GetOptionsFile()
	}
	if PROFILING_ENABLED {
		env.stopProfiling = StartProfiling()
	}
	return nil
}

func (env *CommandEnv) Close() {
	if env.stopProfiling != nil {
		env.stopProfiling()
		env.stopProfiling = nil
	}
}

func (env *CommandEnv) TrackerDatabasePath() Filename {
	return UFS.Saved.File(TRACKER_DATABASE)
}

// resolvePaths defaults to the root directory when no path was given.
func (env *CommandEnv) resolvePaths(args []string) []string {
	if len(args) == 0 {
		return []string{env.Root.String()}
	}
	result := make([]string, len(args))
	for i, it := range args {
		result[i] = env.Root.AbsoluteFolder(it).String()
	}
	return result
}

/***************************************
 * Session: workspace, tracker and builder opened for one command
 ***************************************/

type Session struct {
	Env       *CommandEnv
	Workspace *msbuild.Workspace
	Database  *slice.GeneratedFileTrackerDatabase
	Builder   *slice.Builder
}

// OpenSession locks the tracker database then loads every project found in paths.
func OpenSession(env *CommandEnv, paths ...string) (*Session, error) {
	db, err := slice.LoadGeneratedFileTracker(env.TrackerDatabasePath(),
		base.CompressionOptionFormat(env.Compression))
	if err != nil {
		return nil, fmt.Errorf("load tracker database: %w", err)
	}

	session := &Session{
		Env:       env,
		Workspace: msbuild.NewWorkspace(),
		Database:  db,
		Builder:   slice.NewBuilder(db.GeneratedFileTracker, GetSourceControlProvider(env.Root)),
	}

	if err := session.Workspace.Open(env.resolvePaths(paths)...); err != nil {
		session.Close()
		return nil, err
	}

	// only projects unknown to the database get a new baseline, others keep the one from the previous run
	for _, p := range session.Workspace.SliceProjects() {
		if db.ContainsProject(slice.ProjectId(p)) {
			continue
		}
		if err := session.Builder.ProjectLoaded(p); err != nil {
			session.Close()
			return nil, err
		}
	}
	return session, nil
}

// Project returns the single project opened from path.
func (x *Session) Project(path string) (*msbuild.ProjectFile, error) {
	file := x.Env.Root.AbsoluteFile(path)
	if !msbuild.IsProjectFile(file) {
		return nil, fmt.Errorf("%q is not a project file", file)
	}
	return x.Workspace.LoadProject(file)
}

func (x *Session) Save() error {
	return base.AnyError(x.Workspace.SaveAll(), x.Database.Save())
}

func (x *Session) Close() error {
	return x.Database.Close()
}

func withSession(env *CommandEnv, paths []string, scope func(*Session) error) error {
	session, err := OpenSession(env, paths...)
	if err != nil {
		return err
	}
	defer session.Close()

	// projects reconciled before a failure already changed files on disk, their edits are saved anyway
	err = scope(session)
	return errors.Join(err, session.Save())
}

/***************************************
 * Root command
 ***************************************/

func NewRootCommand(env *CommandEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "icebuilder",
		Short:         "Keep Slice generated files in sync with MSBuild projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return env.apply()
		},
	}

	flags := cmd.PersistentFlags()
	flags.Var(&env.Root, "root", "set the root directory")
	flags.Var(&env.Options, "options", "set the global options file")
	flags.BoolVarP(&env.Verbose, "verbose", "v", false, "print verbose logs")
	flags.BoolVarP(&env.Quiet, "quiet", "q", false, "only print warnings and errors")
	flags.Var(&env.Compression, "compression", "set tracker database compression (LZ4, ZSTD)")
	GetProfilingFlags().Flags(flags)

	cmd.AddCommand(newGenerateCommand(env))
	cmd.AddCommand(newAddCommand(env))
	cmd.AddCommand(newSettingsCommand(env))
	cmd.AddCommand(newStatusCommand(env))
	cmd.AddCommand(newUpgradeCommand(env))
	cmd.AddCommand(newRestoreCommand(env))
	cmd.AddCommand(newOptionsCommand(env))
	cmd.AddCommand(newForgetCommand(env))
	return cmd
}

// Execute runs the command line with args, output is written to stdout.
func Execute(ctx context.Context, stdout io.Writer, args ...string) error {
	env := NewCommandEnv()
	defer env.Close()

	cmd := NewRootCommand(env)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	return cmd.ExecuteContext(ctx)
}
