package slice

import (
	"context"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

func TestCompilerCommandLine(t *testing.T) {
	iceHome := MakeDirectory(t.TempDir())
	UFS.Mkdir(iceHome.Folder("slice"))

	p := newFakeProject(t, PROJECT_CPP, "Hello.ice")
	p.properties[PROPERTY_OUTPUT_DIR] = "generated"
	p.properties[PROPERTY_HEADER_OUTPUT_DIR] = "include"
	p.properties[PROPERTY_HEADER_EXT] = ".hpp"
	p.properties[PROPERTY_INCLUDE_DIRECTORIES] = "slice;$(Platform)"
	p.properties[PROPERTY_ADDITIONAL_OPTIONS] = `--checksum -DNAME="a b"`

	jobs, err := PrepareCompileJobs(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("PrepareCompileJobs: expected 1 job, got %d", len(jobs))
	}

	compiler := NewCompiler(iceHome)
	args := compiler.CommandLine(jobs[0])
	expected := []string{
		compiler.Executable(PROJECT_CPP).String(),
		"--output-dir", p.dir.Folder("generated").String(),
		"--header-output-dir", p.dir.Folder("include").String(),
		"--header-ext", "hpp",
		"-I" + iceHome.Folder("slice").String(),
		"-I" + p.dir.Folder("slice").String(),
		"-I" + p.dir.Folder("Win32").String(),
		"--checksum",
		"-DNAME=a b",
		p.dir.File("Hello.ice").String(),
	}
	if strings.Join(args, "\n") != strings.Join(expected, "\n") {
		t.Errorf("CommandLine: expected\n%v\ngot\n%v", expected, args)
	}
	if !strings.HasPrefix(compiler.Executable(PROJECT_CSHARP).Basename, "slice2cs") {
		t.Errorf("Executable: unexpected %v", compiler.Executable(PROJECT_CSHARP))
	}
}

func TestCompileJobOutOfDate(t *testing.T) {
	dir := MakeDirectory(t.TempDir())
	job := CompileJob{
		Input:   dir.File("Hello.ice"),
		Outputs: NewFileSet(dir.File("Hello.cs")),
	}

	if _, err := job.OutOfDate(); err == nil {
		t.Errorf("OutOfDate: expected an error without input")
	}

	touchFile(t, job.Input)
	if outOfDate, err := job.OutOfDate(); err != nil || !outOfDate {
		t.Errorf("OutOfDate: expected true with a missing output, got %v (%v)", outOfDate, err)
	}

	touchFile(t, job.Outputs[0])
	now := time.Now()
	if err := UFS.SetMTime(job.Input, now.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := UFS.SetMTime(job.Outputs[0], now); err != nil {
		t.Fatal(err)
	}
	if outOfDate, err := job.OutOfDate(); err != nil || outOfDate {
		t.Errorf("OutOfDate: expected false with a newer output, got %v (%v)", outOfDate, err)
	}

	if err := UFS.SetMTime(job.Input, now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if outOfDate, err := job.OutOfDate(); err != nil || !outOfDate {
		t.Errorf("OutOfDate: expected true with a newer input, got %v (%v)", outOfDate, err)
	}
}

func writeFakeSliceCompiler(t *testing.T, iceHome Directory, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a shell script")
	}
	compiler := NewCompiler(iceHome).Executable(PROJECT_CSHARP)
	UFS.Mkdir(compiler.Dirname)
	if err := os.WriteFile(compiler.String(), []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestBuilderBuild(t *testing.T) {
	iceHome := MakeDirectory(t.TempDir())
	writeFakeSliceCompiler(t, iceHome, `for last; do :; done
touch "$2/$(basename "$last" .ice).cs"
`)

	p := newFakeProject(t, PROJECT_CSHARP, "Hello.ice")
	p.properties[PROPERTY_OUTPUT_DIR] = "generated"
	touchFile(t, p.dir.File("Hello.ice"))

	builder := NewBuilder(NewGeneratedFileTracker(), nil)
	compiler := NewCompiler(iceHome)

	compiled, err := builder.Build(context.Background(), p, compiler)
	if err != nil {
		t.Fatal(err)
	}
	if compiled != 1 {
		t.Errorf("Build: expected 1 compiled file, got %d", compiled)
	}
	if !p.dir.File("generated", "Hello.cs").Exists() {
		t.Errorf("Build: expected generated/Hello.cs to be created")
	}

	compiled, err = builder.Build(context.Background(), p, compiler)
	if err != nil {
		t.Fatal(err)
	}
	if compiled != 0 {
		t.Errorf("Build: expected everything to be up to date, got %d compiled", compiled)
	}
}

func TestBuilderBuildFailure(t *testing.T) {
	iceHome := MakeDirectory(t.TempDir())
	writeFakeSliceCompiler(t, iceHome, "echo syntax error >&2\nexit 1\n")

	p := newFakeProject(t, PROJECT_CSHARP, "Hello.ice")
	touchFile(t, p.dir.File("Hello.ice"))

	builder := NewBuilder(NewGeneratedFileTracker(), nil)
	if _, err := builder.Build(context.Background(), p, NewCompiler(iceHome)); err == nil {
		t.Errorf("Build: expected the compiler failure to be reported")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := builder.Build(ctx, p, NewCompiler(iceHome)); err != context.Canceled {
		t.Errorf("Build: expected %v, got %v", context.Canceled, err)
	}
}

func TestCompilerExportsIceHome(t *testing.T) {
	iceHome := MakeDirectory(t.TempDir())
	writeFakeSliceCompiler(t, iceHome, `echo "$ICE_HOME" > "$2/ice_home.txt"
echo "Hello.ice:1: syntax error"
exit 3
`)

	p := newFakeProject(t, PROJECT_CSHARP, "Hello.ice")
	p.properties[PROPERTY_OUTPUT_DIR] = "generated"
	touchFile(t, p.dir.File("Hello.ice"))

	jobs, err := PrepareCompileJobs(p)
	if err != nil || len(jobs) != 1 {
		t.Fatalf("PrepareCompileJobs: expected 1 job, got %d (%v)", len(jobs), err)
	}

	err = NewCompiler(iceHome).Compile(context.Background(), jobs[0])
	if err == nil || !strings.Contains(err.Error(), "exit code 3") {
		t.Errorf("Compile: expected the exit code to be reported, got %v", err)
	}

	content, err := os.ReadFile(p.dir.File("generated", "ice_home.txt").String())
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(content)); got != iceHome.String() {
		t.Errorf("Compile: expected ICE_HOME=%q, got %q", iceHome, got)
	}
}
