package base

import (
	"fmt"
)

var LogFuture = NewLogCategory("Future")

type Future[T any] interface {
	Done() chan struct{}
	Join() Result[T]
}

/***************************************
 * Result[T]
 ***************************************/

type Result[S any] interface {
	Success() S
	Failure() error
	Get() (S, error)
}

type result[S any] struct {
	success S
	failure error
}

func (r result[S]) Get() (S, error) {
	return r.success, r.failure
}
func (r result[S]) Success() S {
	LogPanicIfFailed(LogFuture, r.failure)
	return r.success
}
func (r result[S]) Failure() error {
	return r.failure
}
func (r result[S]) String() string {
	if r.failure == nil {
		return fmt.Sprint(r.success)
	} else {
		return r.failure.Error()
	}
}

/***************************************
 * Async Future
 ***************************************/

type async_future[T any] struct {
	result result[T]
	done   chan struct{}
}

func MakeAsyncFuture[T any](f func() (T, error)) Future[T] {
	future := &async_future[T]{done: make(chan struct{})}
	go future.invoke(f)
	return future
}

func (future *async_future[T]) invoke(f func() (T, error)) {
	defer close(future.done)
	future.result.failure = Recover(func() (err error) {
		future.result.success, err = f()
		return
	})
}
func (future *async_future[T]) Done() chan struct{} {
	return future.done
}
func (future *async_future[T]) Join() Result[T] {
	<-future.done
	return future.result
}

/***************************************
 * Future Literal
 ***************************************/

type future_literal[T any] struct {
	immediate result[T]
}

func (x future_literal[T]) Done() chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}
func (x future_literal[T]) Join() Result[T] {
	return x.immediate
}

func MakeFutureLiteral[T any](value T) Future[T] {
	return future_literal[T]{
		immediate: result[T]{success: value},
	}
}
