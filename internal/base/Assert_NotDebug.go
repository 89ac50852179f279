//go:build !icebuilder_debug
// +build !icebuilder_debug

package base

const DEBUG_ENABLED = false

var LogAssert = NewLogCategory("Assert")

var enableDiagnostics bool = false

func EnableDiagnostics() bool {
	return enableDiagnostics
}
func SetEnableDiagnostics(enabled bool) {
	enableDiagnostics = enabled
}

func AssertErr(pred func() error)                                     {}
func Assert(pred func() bool)                                         {}
func AssertMessage(pred func() bool, msg string, args ...interface{}) {}
func AssertIn[T comparable](T, ...T)                                  {}

func NotImplemented(string, ...interface{}) { LogPanic(LogAssert, "not implemented") }
func UnreachableCode()                      { LogPanic(LogAssert, "unreachable code") }
func UnexpectedValue(interface{})           { LogPanic(LogAssert, "unexpected value") }
