//go:build icebuilder_profiling

package utils

import (
	"runtime"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/pflag"

	"github.com/poppolopoppo/icebuilder/internal/base"
)

const PROFILING_ENABLED = true

var LogProfiling = base.NewLogCategory("Profiling")

/***************************************
 * Profiling Mode
 ***************************************/

type ProfilingMode byte

const (
	PROFILING_BLOCK ProfilingMode = iota
	PROFILING_CPU
	PROFILING_MEMORY
	PROFILING_MUTEX
	PROFILING_TRACE
)

func ProfilingModes() []ProfilingMode {
	return []ProfilingMode{
		PROFILING_BLOCK,
		PROFILING_CPU,
		PROFILING_MEMORY,
		PROFILING_MUTEX,
		PROFILING_TRACE,
	}
}
func (x ProfilingMode) Mode() func(*profile.Profile) {
	switch x {
	case PROFILING_BLOCK:
		return profile.BlockProfile
	case PROFILING_CPU:
		return profile.CPUProfile
	case PROFILING_MEMORY:
		return profile.MemProfile
	case PROFILING_MUTEX:
		return profile.MutexProfile
	case PROFILING_TRACE:
		return profile.TraceProfile
	default:
		base.UnexpectedValue(x)
		return nil
	}
}
func (x ProfilingMode) String() string {
	switch x {
	case PROFILING_BLOCK:
		return "BLOCK"
	case PROFILING_CPU:
		return "CPU"
	case PROFILING_MEMORY:
		return "MEM"
	case PROFILING_MUTEX:
		return "MUTEX"
	case PROFILING_TRACE:
		return "TRACE"
	default:
		base.UnexpectedValue(x)
		return ""
	}
}
func (x *ProfilingMode) Set(in string) error {
	for _, it := range ProfilingModes() {
		if it.String() == strings.ToUpper(in) {
			*x = it
			return nil
		}
	}
	return base.MakeUnexpectedValueError(x, in)
}
func (x ProfilingMode) Type() string { return "ProfilingMode" }

/***************************************
 * Profiler
 ***************************************/

type ProfilingFlags struct {
	Profiling ProfilingMode
	Output    Directory
}

var GetProfilingFlags = base.Memoize(func() *ProfilingFlags {
	return &ProfilingFlags{
		Profiling: PROFILING_CPU,
		Output:    UFS.Saved,
	}
})

func (flags *ProfilingFlags) Flags(fs *pflag.FlagSet) {
	fs.Var(&flags.Profiling, "profiling", "set profiling mode (BLOCK, CPU, MEM, MUTEX, TRACE)")
	fs.Var(&flags.Output, "profiling-output", "set profiling output directory")
}

var running_profiler interface {
	Stop()
}

func StartProfiling() func() {
	flags := GetProfilingFlags()
	base.LogWarning(LogProfiling, "use %v profiling mode", flags.Profiling)
	if flags.Profiling == PROFILING_CPU {
		runtime.SetCPUProfileRate(300) // default is 100
	}
	UFS.Mkdir(flags.Output)
	running_profiler = profile.Start(
		flags.Profiling.Mode(),
		profile.NoShutdownHook,
		profile.Quiet,
		profile.ProfilePath(flags.Output.String()))
	return PurgeProfiling
}

func PurgeProfiling() {
	if running_profiler != nil {
		running_profiler.Stop()
		running_profiler = nil
	}
}
