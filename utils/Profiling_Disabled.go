//go:build !icebuilder_profiling

package utils

import "github.com/spf13/pflag"

const PROFILING_ENABLED = false

type ProfilingFlags struct{}

func GetProfilingFlags() *ProfilingFlags           { return &ProfilingFlags{} }
func (flags *ProfilingFlags) Flags(*pflag.FlagSet) {}

func StartProfiling() func() { return PurgeProfiling }
func PurgeProfiling()        {}
