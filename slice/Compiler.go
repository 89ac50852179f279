package slice

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"
	internal_io "github.com/poppolopoppo/icebuilder/internal/io"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

var LogCompiler = base.NewLogCategory("Compiler")

/***************************************
 * Compile job
 ***************************************/

type CompileJob struct {
	Project       string
	Type          ProjectType
	Configuration Configuration
	WorkingDir    Directory

	Input   Filename
	Outputs FileSet

	OutputDir          Directory
	HeaderOutputDir    Directory
	SourceExt          string
	HeaderExt          string
	IncludeDirectories []Directory
	AdditionalOptions  []string
}

// OutOfDate is true when any output is missing or older than the Slice input.
func (x CompileJob) OutOfDate() (bool, error) {
	inputTime, err := GetModificationTime(x.Input)
	if err != nil {
		return false, fmt.Errorf("slice input %q: %w", x.Input, err)
	}
	for _, output := range x.Outputs {
		if !output.Exists() {
			base.LogTrace(LogCompiler, "%q is missing", output)
			return true, nil
		}
		outputTime, err := GetModificationTime(output)
		if err != nil {
			return false, err
		}
		if outputTime.Before(inputTime) {
			base.LogTrace(LogCompiler, "%q is older than %q", output, x.Input)
			return true, nil
		}
	}
	return false, nil
}

// PrepareCompileJobs returns one job per Slice input, for the active configuration.
func PrepareCompileJobs(p Project) (jobs []CompileJob, err error) {
	items, err := p.SliceItems()
	if err != nil || len(items) == 0 {
		return
	}

	cfg := p.ActiveConfiguration()
	prototype := CompileJob{
		Project:       p.Name(),
		Type:          p.Type(),
		Configuration: cfg,
		WorkingDir:    p.Dir(),
	}

	includeDirectories, err := getEvaluatedProperty(p, cfg, PROPERTY_INCLUDE_DIRECTORIES, "")
	if err != nil {
		return
	}
	for _, it := range base.SplitList(includeDirectories) {
		prototype.IncludeDirectories = append(prototype.IncludeDirectories, p.Dir().AbsoluteFolder(it))
	}

	additionalOptions, err := getEvaluatedProperty(p, cfg, PROPERTY_ADDITIONAL_OPTIONS, "")
	if err != nil {
		return
	}
	if prototype.AdditionalOptions, err = base.SplitCommandLine(additionalOptions); err != nil {
		return nil, fmt.Errorf("%s: invalid additional options: %w", p.Name(), err)
	}

	switch prototype.Type {
	case PROJECT_CPP:
		dirs, err := GetCppOutputDirs(p, cfg)
		if err != nil {
			return nil, err
		}
		prototype.OutputDir = dirs.OutputDir
		prototype.HeaderOutputDir = dirs.HeaderOutputDir
		if prototype.SourceExt, err = getEvaluatedProperty(p, cfg, PROPERTY_SOURCE_EXT, DEFAULT_CPP_SOURCE_EXT); err != nil {
			return nil, err
		}
		if prototype.HeaderExt, err = getEvaluatedProperty(p, cfg, PROPERTY_HEADER_EXT, DEFAULT_CPP_HEADER_EXT); err != nil {
			return nil, err
		}
	case PROJECT_CSHARP:
		if prototype.OutputDir, err = GetCSharpOutputDir(p); err != nil {
			return nil, err
		}
		prototype.SourceExt = CSHARP_EXT
	default:
		return nil, fmt.Errorf("project %q of type %v can't compile Slice files", p.Name(), prototype.Type)
	}

	jobs = make([]CompileJob, len(items))
	for i, item := range items {
		job := prototype
		job.Input = p.Dir().AbsoluteFile(item)
		job.Outputs = NewFileSet(job.OutputDir.AbsoluteFile(generatedItemPath(item, job.SourceExt)))
		if job.Type == PROJECT_CPP {
			job.Outputs.Append(job.HeaderOutputDir.AbsoluteFile(generatedItemPath(item, job.HeaderExt)))
		}
		jobs[i] = job
	}
	return
}

/***************************************
 * Compiler
 ***************************************/

// Compiler invokes slice2cpp or slice2cs from an Ice installation.
type Compiler struct {
	IceHome Directory
}

func NewCompiler(iceHome Directory) *Compiler {
	return &Compiler{IceHome: iceHome}
}

func getSliceCompilerName(t ProjectType) string {
	name := "slice2cpp"
	if t == PROJECT_CSHARP {
		name = "slice2cs"
	}
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

func (x *Compiler) Executable(t ProjectType) Filename {
	return x.IceHome.Folder("bin").File(getSliceCompilerName(t))
}

func (x *Compiler) CommandLine(job CompileJob) []string {
	args := []string{x.Executable(job.Type).String(), "--output-dir", job.OutputDir.String()}
	if job.Type == PROJECT_CPP {
		if job.HeaderOutputDir.Valid() && !job.HeaderOutputDir.Equals(job.OutputDir) {
			args = append(args, "--header-output-dir", job.HeaderOutputDir.String())
		}
		if job.SourceExt != DEFAULT_CPP_SOURCE_EXT {
			args = append(args, "--source-ext", strings.TrimPrefix(job.SourceExt, "."))
		}
		if job.HeaderExt != DEFAULT_CPP_HEADER_EXT {
			args = append(args, "--header-ext", strings.TrimPrefix(job.HeaderExt, "."))
		}
	}
	if sliceDir := x.IceHome.Folder("slice"); sliceDir.Exists() {
		args = append(args, "-I"+sliceDir.String())
	}
	for _, it := range job.IncludeDirectories {
		args = append(args, "-I"+it.String())
	}
	args = append(args, job.AdditionalOptions...)
	return append(args, job.Input.String())
}

func (x *Compiler) Compile(ctx context.Context, job CompileJob) error {
	args := x.CommandLine(job)
	base.LogInfo(LogCompiler, "%s: compiling %q", job.Project, job.Input.Basename)
	base.LogVerbose(LogCompiler, "%s", strings.Join(args, " "))

	if err := UFS.MkdirEx(job.OutputDir); err != nil {
		return err
	}
	if job.HeaderOutputDir.Valid() {
		if err := UFS.MkdirEx(job.HeaderOutputDir); err != nil {
			return err
		}
	}

	var exitCode int32
	err := internal_io.RunProcess(ctx, MakeFilename(args[0]), args[1:],
		internal_io.OptionProcessWorkingDir(job.WorkingDir),
		internal_io.OptionProcessExport("ICE_HOME", x.IceHome.String()),
		internal_io.OptionProcessExitCode(&exitCode),
		internal_io.OptionProcessCaptureOutput,
		internal_io.OptionProcessOutput(func(line string) error {
			// slice compilers only print diagnostics
			base.LogWarning(LogCompiler, "%s: %s", job.Input.Basename, line)
			return nil
		}))
	if err != nil {
		if exitCode != 0 {
			return fmt.Errorf("%s: failed to compile %q (exit code %d): %w", job.Project, job.Input, exitCode, err)
		}
		return fmt.Errorf("%s: failed to compile %q: %w", job.Project, job.Input, err)
	}
	return nil
}
