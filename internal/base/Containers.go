package base

import (
	"sort"
	"sync"
)

/***************************************
 * Container helpers
 ***************************************/

func CopySlice[T any](in ...T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func CopyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func IndexOf[T comparable](match T, values ...T) (int, bool) {
	for i, x := range values {
		if x == match {
			return i, true
		}
	}
	return -1, false
}

func IndexIf[T any](pred func(T) bool, values ...T) (int, bool) {
	for i, x := range values {
		if pred(x) {
			return i, true
		}
	}
	return -1, false
}

func Contains[T comparable](arr []T, values ...T) bool {
	for _, x := range values {
		if _, ok := IndexOf(x, arr...); !ok {
			return false
		}
	}
	return true
}

func AppendUniq[T comparable](src []T, elts ...T) (result []T) {
	result = src
	for _, x := range elts {
		if _, ok := IndexOf(x, result...); !ok {
			result = append(result, x)
		}
	}
	return result
}

func Delete[T any](src []T, index int) []T {
	return append(src[:index], src[index+1:]...)
}

func RemoveUnless[T any](pred func(T) bool, src ...T) (result []T) {
	result = src[:0]
	for _, it := range src {
		if pred(it) {
			result = append(result, it)
		}
	}
	return
}

func Keys[K comparable, V any](elts ...map[K]V) []K {
	n := 0
	for _, it := range elts {
		n += len(it)
	}
	result := make([]K, 0, n)
	for _, it := range elts {
		for key := range it {
			result = append(result, key)
		}
	}
	return result
}

/***************************************
 * Set (slice with unique items)
 ***************************************/

type SetT[T comparable] []T

func NewSet[T comparable](x ...T) (result SetT[T]) {
	result = make(SetT[T], 0, len(x))
	result.AppendUniq(x...)
	return
}

func (set SetT[T]) Empty() bool {
	return len(set) == 0
}
func (set SetT[T]) Len() int {
	return len(set)
}
func (set SetT[T]) At(i int) T {
	return set[i]
}
func (set SetT[T]) Slice() []T {
	return set
}
func (set SetT[T]) IndexOf(it T) (int, bool) {
	for i, x := range set {
		if x == it {
			return i, true
		}
	}
	return len(set), false
}
func (set SetT[T]) Contains(it ...T) bool {
	for _, x := range it {
		if _, ok := set.IndexOf(x); !ok {
			return false
		}
	}
	return true
}
func (set *SetT[T]) AppendUniq(it ...T) (modified bool) {
	for _, x := range it {
		if !set.Contains(x) {
			*set = append(*set, x)
			modified = true
		}
	}
	return
}
func (set *SetT[T]) RemoveAll(it ...T) *SetT[T] {
	for _, x := range it {
		if i, ok := set.IndexOf(x); ok {
			*set = Delete(*set, i)
		}
	}
	return set
}
func (set *SetT[T]) Clear() *SetT[T] {
	*set = []T{}
	return set
}
func (set SetT[T]) Sort(less func(a, b T) bool) {
	sort.Slice(set, func(i, j int) bool {
		return less(set[i], set[j])
	})
}

// SymmetricDifference returns the items present in exactly one of both sets.
func (set SetT[T]) SymmetricDifference(other SetT[T]) (result SetT[T]) {
	for _, x := range set {
		if !other.Contains(x) {
			result = append(result, x)
		}
	}
	for _, x := range other {
		if !set.Contains(x) {
			result = append(result, x)
		}
	}
	return
}

/***************************************
 * Shared map
 ***************************************/

type SharedMapT[K comparable, V any] struct {
	intern sync.Map
}

func NewSharedMapT[K comparable, V any]() *SharedMapT[K, V] {
	return &SharedMapT[K, V]{sync.Map{}}
}
func (shared *SharedMapT[K, V]) Len() (count int) {
	shared.intern.Range(func(_, _ any) bool {
		count++
		return true
	})
	return
}
func (shared *SharedMapT[K, V]) Keys() (result []K) {
	shared.intern.Range(func(k, _ any) bool {
		result = append(result, k.(K))
		return true
	})
	return
}
func (shared *SharedMapT[K, V]) Add(key K, value V) V {
	shared.intern.Store(key, value)
	return value
}
func (shared *SharedMapT[K, V]) FindOrAdd(key K, value V) (V, bool) {
	actual, loaded := shared.intern.LoadOrStore(key, value)
	return actual.(V), loaded
}
func (shared *SharedMapT[K, V]) Get(key K) (result V, ok bool) {
	if value, found := shared.intern.Load(key); found {
		return value.(V), true
	}
	return
}
func (shared *SharedMapT[K, V]) Delete(key K) {
	shared.intern.Delete(key)
}
