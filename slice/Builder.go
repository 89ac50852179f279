package slice

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/poppolopoppo/icebuilder/internal/base"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

// Builder reconciles generated files with the project file lists.
type Builder struct {
	Tracker       *GeneratedFileTracker
	SourceControl SourceControlProvider
}

func NewBuilder(tracker *GeneratedFileTracker, sourceControl SourceControlProvider) *Builder {
	if base.IsNil(sourceControl) {
		sourceControl = DummySourceControl{}
	}
	return &Builder{
		Tracker:       tracker,
		SourceControl: sourceControl,
	}
}

// ProjectLoaded records the current generated files as the baseline, nothing is deleted.
func (x *Builder) ProjectLoaded(p Project) error {
	if IsIceBuilderEnabled(p) == PROJECT_NONE {
		return nil
	}
	generated, err := ResolveGeneratedFiles(p)
	if err != nil {
		return err
	}
	x.Tracker.Add(ProjectId(p), generated)
	return nil
}

func (x *Builder) ProjectUnloaded(p Project) {
	x.Tracker.Remove(ProjectId(p))
}

// AddSliceFile adds a Slice input to a project, unless its generated files would overwrite existing files.
func (x *Builder) AddSliceFile(p Project, sliceFile Filename) error {
	if err := CheckGeneratedFileIsValid(p, sliceFile); err != nil {
		return err
	}
	if err := EnsureFileIsCheckedOut(x.SourceControl, p.Path()); err != nil {
		return err
	}
	if err := p.AddSliceItem(sliceFile); err != nil {
		return fmt.Errorf("add %q to %q: %w", sliceFile, p.Name(), err)
	}
	return x.SetupGenerated(p)
}

// SetupGenerated makes sure every generated file is referenced by the project, then reaps stale ones.
func (x *Builder) SetupGenerated(p Project) error {
	switch t := IsIceBuilderEnabled(p); t {
	case PROJECT_CPP:
		return x.setupCppGenerated(p)
	case PROJECT_CSHARP:
		return x.setupCSharpGenerated(p)
	default:
		base.LogVerbose(LogSlice, "%s: project is not using IceBuilder", p.Name())
		return nil
	}
}

func (x *Builder) setupCppGenerated(p Project) error {
	// property reads must not use a cached evaluation
	if err := p.Reload(); err != nil {
		return fmt.Errorf("reload %q: %w", p.Name(), err)
	}

	generated, err := ResolveCppGeneratedFiles(p)
	if err != nil {
		return err
	}

	configurations := generated.Configurations()
	for _, fileset := range generated.FileSets {
		if err := x.setupCppFiles(p, fileset.Configuration, GENERATED_SOURCE, fileset.Sources, generated.Partitioned, configurations); err != nil {
			return err
		}
		if err := x.setupCppFiles(p, fileset.Configuration, GENERATED_HEADER, fileset.Headers, generated.Partitioned, configurations); err != nil {
			return err
		}
	}

	x.Tracker.Reap(ProjectId(p), generated.Flatten(), p)
	return nil
}

func (x *Builder) setupCppFiles(p Project, cfg Configuration, kind GeneratedItemKind, files FileSet, perConfiguration bool, configurations []Configuration) error {
	var missing FileSet
	for _, file := range files {
		if err := UFS.MkdirEx(file.Dirname); err != nil {
			return err
		}
		if !p.HasItem(file) {
			missing.Append(file)
		}
	}

	for _, file := range missing {
		base.LogVerbose(LogSlice, "%s: add generated %v file %q to %q", p.Name(), cfg, file, kind.Filter())
		if err := p.AddItem(file, kind); err != nil {
			return fmt.Errorf("add %q to %q: %w", file, p.Name(), err)
		}
		if !perConfiguration {
			continue
		}
		// only valid for the configuration matching its output directory
		for _, other := range configurations {
			if other == cfg {
				continue
			}
			if err := p.ExcludeFileInConfiguration(file, other); err != nil {
				return fmt.Errorf("exclude %q from %v: %w", file, other, err)
			}
		}
	}
	return nil
}

func (x *Builder) setupCSharpGenerated(p Project) error {
	generated, err := ResolveCSharpGeneratedFiles(p)
	if err != nil {
		return err
	}

	for _, key := range generated.Keys() {
		for _, file := range generated[key] {
			if err := UFS.MkdirEx(file.Dirname); err != nil {
				return err
			}
			if p.HasItem(file) {
				continue
			}

			created := false
			if !file.Exists() {
				if err := UFS.Create(file, func(io.Writer) error { return nil }); err != nil {
					return err
				}
				created = true
			}

			base.LogVerbose(LogSlice, "%s: add generated file %q", p.Name(), file)
			if err := p.AddItem(file, GENERATED_CSHARP); err != nil {
				return fmt.Errorf("add %q to %q: %w", file, p.Name(), err)
			}

			// otherwise the empty file would be considered up to date
			if created {
				if err := os.Remove(file.String()); err != nil {
					base.LogVerbose(LogSlice, "%s: failed to remove %q: %v", p.Name(), file, err)
				}
			}
		}
	}

	x.Tracker.Reap(ProjectId(p), generated, p)
	return nil
}

/***************************************
 * Build
 ***************************************/

// Build reconciles a project then compiles its out-of-date Slice files.
func (x *Builder) Build(ctx context.Context, p Project, compiler *Compiler) (compiled int, err error) {
	if err = x.SetupGenerated(p); err != nil {
		return
	}

	jobs, err := PrepareCompileJobs(p)
	if err != nil {
		return
	}

	for _, job := range jobs {
		if err = ctx.Err(); err != nil {
			return
		}

		outOfDate, err := job.OutOfDate()
		if err != nil {
			return compiled, err
		}
		if !outOfDate {
			base.LogVeryVerbose(LogSlice, "%s: %q is up to date", p.Name(), job.Input)
			continue
		}

		if err = compiler.Compile(ctx, job); err != nil {
			return compiled, err
		}
		compiled++
	}
	return
}
