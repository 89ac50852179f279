//go:build icebuilder_debug
// +build icebuilder_debug

package base

import (
	"fmt"
)

const DEBUG_ENABLED = true

var enableDiagnostics bool = true

func EnableDiagnostics() bool {
	return enableDiagnostics
}
func SetEnableDiagnostics(enabled bool) {
	enableDiagnostics = enabled
}

/***************************************
 * Assertions
 ***************************************/

var LogAssert = NewLogCategory("Assert")

func AssertErr(pred func() error) {
	if err := pred(); err != nil {
		Panic(err)
	}
}

func Assert(pred func() bool) {
	if success := pred(); !success {
		Panicf("failed assertion")
	}
}

func AssertMessage(pred func() bool, msg string, args ...interface{}) {
	if !pred() {
		Panicf(msg, args...)
	}
}

func AssertIn[T comparable](elt T, values ...T) {
	for _, x := range values {
		if x == elt {
			return
		}
	}
	Panicf("element <%v> is not in the slice", elt)
}

func NotImplemented(msg string, args ...interface{}) {
	LogPanic(LogAssert, "not implemented: %v", fmt.Sprintf(msg, args...))
}
func UnreachableCode() {
	LogPanic(LogAssert, "unreachable code")
}
func UnexpectedValue(x interface{}) {
	LogPanic(LogAssert, "unexpected value: <%T> %#v", x, x)
}
