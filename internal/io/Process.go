package io

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/utils"
)

var LogProcess = base.NewLogCategory("Process")

/***************************************
 * Process Options
 ***************************************/

type ProcessOptions struct {
	Environment     ProcessEnvironment
	OnOutput        base.EventDelegate[string]
	WorkingDir      utils.Directory
	CaptureOutput   bool
	NewProcessGroup bool
	ExitCodeRef     *int32
}

type ProcessOptionFunc func(*ProcessOptions)

func (x *ProcessOptions) Init(options ...ProcessOptionFunc) {
	x.Environment = NewProcessEnvironment()
	for _, it := range options {
		it(x)
	}
}

func OptionProcessExitCode(exitCodeRef *int32) ProcessOptionFunc {
	return func(po *ProcessOptions) {
		po.ExitCodeRef = exitCodeRef
	}
}
func OptionProcessExport(name string, values ...string) ProcessOptionFunc {
	return func(po *ProcessOptions) {
		po.Environment.Append(name, values...)
	}
}
func OptionProcessOutput(onOutput base.EventDelegate[string]) ProcessOptionFunc {
	return func(po *ProcessOptions) {
		po.OnOutput = onOutput
	}
}
func OptionProcessWorkingDir(value utils.Directory) ProcessOptionFunc {
	return func(po *ProcessOptions) {
		po.WorkingDir = value
	}
}
func OptionProcessCaptureOutput(po *ProcessOptions) {
	po.CaptureOutput = true
}
func OptionProcessCaptureOutputIf(enabled bool) ProcessOptionFunc {
	return func(po *ProcessOptions) {
		po.CaptureOutput = enabled
	}
}
func OptionProcessNewProcessGroup(po *ProcessOptions) {
	po.NewProcessGroup = true
}

/***************************************
 * RunProcess
 ***************************************/

// RunProcess waits for the process to exit, output is only forwarded when it failed unless captured.
func RunProcess(ctx context.Context, executable utils.Filename, arguments base.StringSet, userOptions ...ProcessOptionFunc) (err error) {
	var options ProcessOptions
	options.Init(userOptions...)

	defer base.LogBenchmark(LogProcess, "Run(%q, %q)", executable, strings.Join(arguments, `", "`)).Close()

	cmd := exec.CommandContext(ctx, executable.String(), arguments...)
	if len(options.Environment) > 0 {
		cmd.Env = append(os.Environ(), options.Environment.Export()...)
	}
	if options.WorkingDir.Valid() {
		cmd.Dir = options.WorkingDir.String()
	}
	if options.NewProcessGroup {
		// don't pass parent signal to child processes
		cmd.SysProcAttr = newProcessGroupSysProcAttr()
	}

	base.LogTrace(LogProcess, "run %v in %q", cmd, cmd.Dir)

	if options.CaptureOutput {
		var stdout io.ReadCloser
		if stdout, err = cmd.StdoutPipe(); err != nil {
			return err
		}
		defer stdout.Close()

		cmd.Stderr = cmd.Stdout

		if err = cmd.Start(); err != nil {
			return err
		}

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if line := scanner.Text(); len(line) > 0 {
				if options.OnOutput.Bound() {
					if er := options.OnOutput.Invoke(line); er != nil {
						return er
					}
				} else {
					base.LogForwardln(line)
				}
			}
		}

		err = cmd.Wait()

	} else {
		outputForError := base.TransientBuffer.Allocate()
		defer base.TransientBuffer.Release(outputForError)

		cmd.Stderr = outputForError
		cmd.Stdout = outputForError
		if err = cmd.Run(); err != nil && outputForError.Len() > 0 {
			// print output if the command failed
			output := strings.TrimRight(outputForError.String(), "\r\n")
			if options.OnOutput.Bound() {
				if er := options.OnOutput.Invoke(output); er != nil {
					return er
				}
			} else {
				base.LogForwardln(output)
			}
		}
	}

	if exitCodeErr, ok := err.(*exec.ExitError); ok && options.ExitCodeRef != nil {
		*options.ExitCodeRef = int32(exitCodeErr.ExitCode())
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return
}

/***************************************
 * Process Environment
 ***************************************/

type EnvironmentDefinition struct {
	Name   string
	Values base.StringSet
}

func (x EnvironmentDefinition) String() string {
	if len(x.Values) > 0 {
		return x.Name + "=" + strings.Join(x.Values, string(os.PathListSeparator))
	}
	return x.Name
}

type ProcessEnvironment []EnvironmentDefinition

func NewProcessEnvironment() ProcessEnvironment {
	return ProcessEnvironment([]EnvironmentDefinition{})
}

func (x ProcessEnvironment) Export() []string {
	result := make([]string, len(x))
	for i, it := range x {
		result[i] = it.String()
	}
	return result
}
func (x ProcessEnvironment) IndexOf(name string) (int, bool) {
	for i, it := range x {
		if it.Name == name {
			return i, true
		}
	}
	return len(x), false
}
func (x *ProcessEnvironment) Append(name string, values ...string) {
	if i, ok := x.IndexOf(name); ok {
		(*x)[i].Values.Append(values...)
	} else {
		*x = append(*x, EnvironmentDefinition{
			Name:   name,
			Values: values,
		})
	}
}
