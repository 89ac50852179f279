package base

import (
	"fmt"
	"io"
	"reflect"
	"time"
)

var LogBase = NewLogCategory("Base")

var StartedAt = Memoize[time.Time](func() time.Time {
	return time.Now()
})

func Elapsed() time.Duration {
	return time.Since(StartedAt())
}

func Recover(scope func() error) (result error) {
	if !DEBUG_ENABLED {
		defer func() {
			if err := recover(); err != nil {
				var ok bool
				if result, ok = err.(error); !ok {
					result = fmt.Errorf("%v", err)
				}
			}
		}()
	}
	result = scope()
	return
}

/***************************************
 * https://mangatmodi.medium.com/go-check-nil-interface-the-right-way-d142776edef1
 ***************************************/

func IsNil(v interface{}) bool {
	if v == nil {
		return true
	}
	val := reflect.ValueOf(v)
	switch val.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Pointer, reflect.UnsafePointer, reflect.Interface, reflect.Slice:
		return val.IsNil()
	}
	return false
}

func AnyError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

type Closable interface {
	Close() error
}

type Flushable interface {
	Flush() error
}

func FlushWriterIFP(w io.Writer) (err error) {
	if flush, ok := w.(Flushable); ok {
		err = flush.Flush()
	}
	return
}

type Equatable[T any] interface {
	Equals(other T) bool
}

type Comparable[T any] interface {
	Compare(other T) int
}
