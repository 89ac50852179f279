package base

import "sync"

/***************************************
 * Event
 ***************************************/

type DelegateHandle = int32

type EventDelegate[T any] func(T) error

func (x EventDelegate[T]) Bound() bool { return x != nil }
func (x EventDelegate[T]) Invoke(arg T) error {
	if x != nil {
		return x(arg)
	}
	return nil
}

type Event[T any] interface {
	Bound() bool
	Invoke(T) error
}

type MutableEvent[T any] interface {
	Add(EventDelegate[T]) DelegateHandle
	Remove(DelegateHandle) bool
	Clear()
	Event[T]
}

/***************************************
 * PublicEvent
 ***************************************/

type PublicEvent[T any] struct {
	delegates []struct {
		Handle   DelegateHandle
		Delegate EventDelegate[T]
	}
	nextHandle DelegateHandle
}

func (x *PublicEvent[T]) Bound() bool {
	return len(x.delegates) > 0
}
func (x *PublicEvent[T]) Add(e EventDelegate[T]) DelegateHandle {
	x.nextHandle++
	x.delegates = append(x.delegates, struct {
		Handle   DelegateHandle
		Delegate EventDelegate[T]
	}{
		Handle:   x.nextHandle,
		Delegate: e,
	})
	return x.nextHandle
}
func (x *PublicEvent[T]) Remove(handle DelegateHandle) bool {
	for i, it := range x.delegates {
		if it.Handle == handle {
			x.delegates = append(x.delegates[:i], x.delegates[i+1:]...)
			return true
		}
	}
	return false
}
func (x *PublicEvent[T]) Invoke(arg T) error {
	for _, it := range x.delegates {
		if err := it.Delegate.Invoke(arg); err != nil {
			return err
		}
	}
	return nil
}
func (x *PublicEvent[T]) Clear() {
	*x = PublicEvent[T]{}
}

/***************************************
 * ConcurrentEvent
 ***************************************/

type ConcurrentEvent[T any] struct {
	PublicEvent[T]
	barrier sync.RWMutex
}

func (x *ConcurrentEvent[T]) Bound() bool {
	x.barrier.RLock()
	defer x.barrier.RUnlock()
	return x.PublicEvent.Bound()
}
func (x *ConcurrentEvent[T]) Add(e EventDelegate[T]) DelegateHandle {
	x.barrier.Lock()
	defer x.barrier.Unlock()
	return x.PublicEvent.Add(e)
}
func (x *ConcurrentEvent[T]) Remove(h DelegateHandle) bool {
	x.barrier.Lock()
	defer x.barrier.Unlock()
	return x.PublicEvent.Remove(h)
}
func (x *ConcurrentEvent[T]) Clear() {
	x.barrier.Lock()
	defer x.barrier.Unlock()
	x.PublicEvent.Clear()
}

// Invoke runs a snapshot of the delegates outside of the lock, so a delegate may remove itself.
func (x *ConcurrentEvent[T]) Invoke(arg T) error {
	x.barrier.RLock()
	delegates := make([]EventDelegate[T], len(x.delegates))
	for i, it := range x.delegates {
		delegates[i] = it.Delegate
	}
	x.barrier.RUnlock()

	for _, it := range delegates {
		if err := it.Invoke(arg); err != nil {
			return err
		}
	}
	return nil
}
