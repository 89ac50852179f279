package io

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"github.com/poppolopoppo/icebuilder/utils"
)

func lookupShell(t *testing.T) utils.Filename {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("process tests run a posix shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip(err)
	}
	return utils.MakeFilename(sh)
}

func TestRunProcessCaptureOutput(t *testing.T) {
	sh := lookupShell(t)
	dir := utils.MakeDirectory(t.TempDir())

	var lines []string
	err := RunProcess(context.Background(), sh, []string{"-c", `echo "$GREETING"; pwd; echo oops >&2`},
		OptionProcessWorkingDir(dir),
		OptionProcessExport("GREETING", "hello"),
		OptionProcessNewProcessGroup,
		OptionProcessCaptureOutput,
		OptionProcessOutput(func(line string) error {
			lines = append(lines, line)
			return nil
		}))
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 || lines[0] != "hello" || lines[2] != "oops" {
		t.Fatalf("RunProcess: unexpected output %q", lines)
	}
	if !strings.HasSuffix(lines[1], dir.Basename()) {
		t.Errorf("RunProcess: expected to run in %q, got %q", dir, lines[1])
	}
}

func TestRunProcessExitCode(t *testing.T) {
	sh := lookupShell(t)

	var exitCode int32
	var output []string
	err := RunProcess(context.Background(), sh, []string{"-c", "echo failed; exit 7"},
		OptionProcessExitCode(&exitCode),
		OptionProcessCaptureOutputIf(false),
		OptionProcessOutput(func(line string) error {
			output = append(output, line)
			return nil
		}))
	if err == nil {
		t.Fatal("RunProcess: expected an error")
	}
	if exitCode != 7 {
		t.Errorf("RunProcess: expected exit code 7, got %d", exitCode)
	}
	// without capture the output is only forwarded when the process failed
	if len(output) != 1 || output[0] != "failed" {
		t.Errorf("RunProcess: expected the failure output, got %q", output)
	}
}

func TestRunProcessCanceled(t *testing.T) {
	sh := lookupShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := RunProcess(ctx, sh, []string{"-c", "sleep 5"}, OptionProcessNewProcessGroup); err != context.Canceled {
		t.Errorf("RunProcess: expected %v, got %v", context.Canceled, err)
	}
}

func TestProcessEnvironment(t *testing.T) {
	env := NewProcessEnvironment()
	env.Append("PATH", "a")
	env.Append("PATH", "b")
	env.Append("EMPTY")

	exported := env.Export()
	if len(exported) != 2 {
		t.Fatalf("Export: expected 2 definitions, got %q", exported)
	}
	if expected := "PATH=a" + string(os.PathListSeparator) + "b"; exported[0] != expected {
		t.Errorf("Export: expected %q, got %q", expected, exported[0])
	}
	if exported[1] != "EMPTY" {
		t.Errorf("Export: expected a bare name, got %q", exported[1])
	}
}
