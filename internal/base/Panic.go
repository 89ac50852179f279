package base

import "fmt"

func Panicf(msg string, args ...interface{}) {
	Panic(fmt.Errorf(msg, args...))
}

// Panic aborts with a colored error, it is reserved to programming errors.
func Panic(err error) {
	panic(fmt.Errorf("%v[PANIC]%v %v", ANSI_FG1_RED, ANSI_RESET, err))
}
