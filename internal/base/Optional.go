package base

import "errors"

/***************************************
 * Optional[T] holds either a value or the reason why there is none
 ***************************************/

var ErrEmptyOptional = errors.New("empty optional")

type Optional[T any] struct {
	value T
	err   error
}

func NewOption[T any](value T) Optional[T] {
	return Optional[T]{value: value}
}
func NoneOption[T any]() Optional[T] {
	return UnexpectedOption[T](ErrEmptyOptional)
}
func UnexpectedOption[T any](err error) Optional[T] {
	Assert(func() bool { return err != nil })
	return Optional[T]{err: err}
}

func (x Optional[T]) Valid() bool { return x.err == nil }
func (x Optional[T]) Err() error  { return x.err }
func (x Optional[T]) Get() (T, error) {
	return x.value, x.err
}
func (x Optional[T]) GetOrElse(orElse T) T {
	if x.err == nil {
		return x.value
	}
	return orElse
}

// OrElse evaluates the fallback only when x holds no value.
func (x Optional[T]) OrElse(fallback func() Optional[T]) Optional[T] {
	if x.err == nil {
		return x
	}
	return fallback()
}
