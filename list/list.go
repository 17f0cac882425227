// Package list implements a persistent singly linked list.
package list

import "github.com/gopds/persist/hash"

// List is a persistent list of values of type T. A nil *List is a valid
// empty list. Being a persistent variant of the data structure, it is
// immutable: Cons shares the existing spine instead of mutating it, which
// makes concurrent access to the same list always safe.
type List[T any] struct {
	first T
	rest  *List[T]
	count int
}

// Empty returns an empty list, which is just the nil pointer. It exists so
// that call sites can spell out the element type where inference has nothing
// to work with.
func Empty[T any]() *List[T] {
	return nil
}

// Len returns the number of values in the list.
func (l *List[T]) Len() int {
	if l == nil {
		return 0
	}
	return l.count
}

// Cons returns a new list with an additional value in the front. The
// receiver is shared as the tail of the new list, never copied; this is safe
// because lists are never written to after construction.
func (l *List[T]) Cons(val T) *List[T] {
	return &List[T]{val, l, l.Len() + 1}
}

// First returns the first value in the list, if it exists. The second return
// value indicates whether the list is non-empty.
func (l *List[T]) First() (T, bool) {
	if l == nil {
		var zero T
		return zero, false
	}
	return l.first, true
}

// Rest returns the list after the first value. The rest of an empty list is
// the empty list.
func (l *List[T]) Rest() *List[T] {
	if l == nil {
		return nil
	}
	return l.rest
}

// Clone returns a list with identical contents whose spine shares no node
// with the receiver. Values are copied by assignment; if T itself needs deep
// duplication, use CloneFunc.
func (l *List[T]) Clone() *List[T] {
	return l.CloneFunc(func(v T) T { return v })
}

// CloneFunc is like Clone, but copies each value with clone. The walk is
// iterative, so very long lists do not cost stack.
func (l *List[T]) CloneFunc(clone func(T) T) *List[T] {
	if l == nil {
		return nil
	}
	head := &List[T]{first: clone(l.first), count: l.count}
	dst := head
	for src := l.rest; src != nil; src = src.rest {
		dst.rest = &List[T]{first: clone(src.first), count: src.count}
		dst = dst.rest
	}
	return head
}

// Slice returns the values of the list in a new slice, in list order.
func (l *List[T]) Slice() []T {
	if l == nil {
		return nil
	}
	vals := make([]T, 0, l.count)
	for ; l != nil; l = l.rest {
		vals = append(vals, l.first)
	}
	return vals
}

// FromSlice returns a list containing the values of the slice, in the same
// order. The slice is not retained.
func FromSlice[T any](vals []T) *List[T] {
	var l *List[T]
	for i := len(vals) - 1; i >= 0; i-- {
		l = l.Cons(vals[i])
	}
	return l
}

// Equal returns whether two lists contain equal values in the same order.
// Lists of different lengths are never equal; the comparison stops at the
// first mismatch.
func Equal[T comparable](a, b *List[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}

// EqualFunc is like Equal, but compares values with eq, allowing the two
// lists to have different element types.
func EqualFunc[T1, T2 any](a *List[T1], b *List[T2], eq func(T1, T2) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	for a != nil {
		if !eq(a.first, b.first) {
			return false
		}
		a, b = a.rest, b.rest
	}
	return true
}

// Map returns a new list built by applying f to each value of the list, in
// list order.
func Map[T1, T2 any](l *List[T1], f func(T1) T2) *List[T2] {
	if l == nil {
		return nil
	}
	head := &List[T2]{first: f(l.first), count: l.count}
	dst := head
	for src := l.rest; src != nil; src = src.rest {
		dst.rest = &List[T2]{first: f(src.first), count: src.count}
		dst = dst.rest
	}
	return head
}

// Hash computes a hash code of the list by combining the hash codes of its
// values, computed with hashFn. Two lists that are Equal (with a matching
// notion of value equality) have the same hash code.
func Hash[T any](l *List[T], hashFn func(T) uint32) uint32 {
	h := hash.DJBInit
	for ; l != nil; l = l.rest {
		h = hash.DJBCombine(h, hashFn(l.first))
	}
	return h
}
