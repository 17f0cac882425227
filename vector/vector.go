// Package vector implements persistent vector.
//
// This is a Go clone of Clojure's PersistentVector type
// (https://github.com/clojure/clojure/blob/master/src/jvm/clojure/lang/PersistentVector.java).
// For an introduction to the internals, see
// https://hypirion.com/musings/understanding-persistent-vector-pt-1.
package vector

import "github.com/gopds/persist/hash"

const (
	chunkBits  = 5
	nodeSize   = 1 << chunkBits
	tailMaxLen = nodeSize
	chunkMask  = nodeSize - 1
)

// Vector is a persistent sequential container for values of type T. It
// supports O(1) lookup by index, modification by index, and insertion and
// removal operations at the end. Being a persistent variant of the data
// structure, it is immutable, and provides O(1) operations to create modified
// versions of the vector that share the underlying data structure, making it
// suitable for concurrent access.
type Vector[T any] interface {
	// Len returns the length of the vector.
	Len() int
	// Index returns the i-th element of the vector, if it exists. The second
	// return value indicates whether the element exists.
	Index(i int) (T, bool)
	// Assoc returns an almost identical Vector, with the i-th element
	// replaced. If the index is smaller than 0 or greater than the length of
	// the vector, it returns nil. If the index is equal to the size of the
	// vector, it is equivalent to Conj.
	Assoc(i int, val T) Vector[T]
	// Conj returns an almost identical Vector, with an additional element
	// appended to the end.
	Conj(val T) Vector[T]
	// Pop returns an almost identical Vector, with the last element removed.
	// It returns nil if the vector is already empty.
	Pop() Vector[T]
	// SubVector returns a subvector containing the elements from i up to but
	// not including j.
	SubVector(i, j int) Vector[T]
	// Iterator returns an iterator over the vector.
	Iterator() Iterator[T]
}

// Iterator is an iterator over vector elements. It can be used like this:
//
//	for it := v.Iterator(); it.HasElem(); it.Next() {
//	    elem := it.Elem()
//	    // do something with elem...
//	}
type Iterator[T any] interface {
	// Elem returns the element at the current position.
	Elem() T
	// HasElem returns whether the iterator is pointing to an element.
	HasElem() bool
	// Next moves the iterator to the next position.
	Next()
}

type vector[T any] struct {
	count int
	// height of the tree structure, defined to be 0 when root is a leaf.
	height uint
	root   *node[T]
	tail   []T
}

// Empty returns an empty Vector.
func Empty[T any]() Vector[T] {
	return &vector[T]{}
}

// node is a node in the vector tree. A node at a positive height is interior
// and only uses children; a node at height 0 is a leaf and only uses values.
type node[T any] struct {
	children *[nodeSize]*node[T]
	values   *[nodeSize]T
}

func newInterior[T any]() *node[T] {
	return &node[T]{children: &[nodeSize]*node[T]{}}
}

func leafFromSlice[T any](s []T) *node[T] {
	var values [nodeSize]T
	copy(values[:], s)
	return &node[T]{values: &values}
}

func (n *node[T]) clone() *node[T] {
	if n.children != nil {
		children := *n.children
		return &node[T]{children: &children}
	}
	values := *n.values
	return &node[T]{values: &values}
}

func (v *vector[T]) Len() int {
	return v.count
}

// treeSize returns the number of elements stored in the tree (as opposed to
// the tail).
func (v *vector[T]) treeSize() int {
	if v.count < tailMaxLen {
		return 0
	}
	return ((v.count - 1) >> chunkBits) << chunkBits
}

func (v *vector[T]) Index(i int) (T, bool) {
	if i < 0 || i >= v.count {
		var zero T
		return zero, false
	}

	// The following is very similar to sliceFor, but is implemented
	// separately to avoid unnecessary copying.
	if i >= v.treeSize() {
		return v.tail[i&chunkMask], true
	}
	n := v.root
	for shift := v.height * chunkBits; shift > 0; shift -= chunkBits {
		n = n.children[(i>>shift)&chunkMask]
	}
	return n.values[i&chunkMask], true
}

// sliceFor returns the slice where the i-th element is stored. The index must
// be in bound.
func (v *vector[T]) sliceFor(i int) []T {
	if i >= v.treeSize() {
		return v.tail
	}
	n := v.root
	for shift := v.height * chunkBits; shift > 0; shift -= chunkBits {
		n = n.children[(i>>shift)&chunkMask]
	}
	return n.values[:]
}

func (v *vector[T]) Assoc(i int, val T) Vector[T] {
	if i < 0 || i > v.count {
		return nil
	} else if i == v.count {
		return v.Conj(val)
	}
	if i >= v.treeSize() {
		newTail := append([]T(nil), v.tail...)
		newTail[i&chunkMask] = val
		return &vector[T]{v.count, v.height, v.root, newTail}
	}
	return &vector[T]{v.count, v.height, doAssoc(v.height, v.root, i, val), v.tail}
}

// doAssoc returns an almost identical tree, with the i-th element replaced by
// val.
func doAssoc[T any](height uint, n *node[T], i int, val T) *node[T] {
	m := n.clone()
	if height == 0 {
		m.values[i&chunkMask] = val
	} else {
		sub := (i >> (height * chunkBits)) & chunkMask
		m.children[sub] = doAssoc(height-1, m.children[sub], i, val)
	}
	return m
}

func (v *vector[T]) Conj(val T) Vector[T] {
	// Room in tail?
	if v.count-v.treeSize() < tailMaxLen {
		newTail := make([]T, len(v.tail)+1)
		copy(newTail, v.tail)
		newTail[len(v.tail)] = val
		return &vector[T]{v.count + 1, v.height, v.root, newTail}
	}
	// Full tail; push into tree.
	tailNode := leafFromSlice(v.tail)
	newHeight := v.height
	var newRoot *node[T]
	// Overflow root?
	if (v.count >> chunkBits) > (1 << (v.height * chunkBits)) {
		newRoot = newInterior[T]()
		newRoot.children[0] = v.root
		newRoot.children[1] = newPath(v.height, tailNode)
		newHeight++
	} else {
		newRoot = v.pushTail(v.height, v.root, tailNode)
	}
	return &vector[T]{v.count + 1, newHeight, newRoot, []T{val}}
}

// pushTail returns a tree with tail appended.
func (v *vector[T]) pushTail(height uint, n, tail *node[T]) *node[T] {
	if height == 0 {
		return tail
	}
	idx := ((v.count - 1) >> (height * chunkBits)) & chunkMask
	m := n.clone()
	child := n.children[idx]
	if child == nil {
		m.children[idx] = newPath(height-1, tail)
	} else {
		m.children[idx] = v.pushTail(height-1, child, tail)
	}
	return m
}

// newPath creates a left-branching tree of specified height and leaf.
func newPath[T any](height uint, leaf *node[T]) *node[T] {
	if height == 0 {
		return leaf
	}
	ret := newInterior[T]()
	ret.children[0] = newPath(height-1, leaf)
	return ret
}

func (v *vector[T]) Pop() Vector[T] {
	switch v.count {
	case 0:
		return nil
	case 1:
		return Empty[T]()
	}
	if v.count-v.treeSize() > 1 {
		newTail := make([]T, len(v.tail)-1)
		copy(newTail, v.tail)
		return &vector[T]{v.count - 1, v.height, v.root, newTail}
	}
	newTail := v.sliceFor(v.count - 2)
	newRoot := v.popTail(v.height, v.root)
	newHeight := v.height
	if v.height > 0 && newRoot.children[1] == nil {
		newRoot = newRoot.children[0]
		newHeight--
	}
	return &vector[T]{v.count - 1, newHeight, newRoot, newTail}
}

// popTail returns a new tree with the last leaf removed.
func (v *vector[T]) popTail(level uint, n *node[T]) *node[T] {
	idx := ((v.count - 2) >> (level * chunkBits)) & chunkMask
	if level > 1 {
		newChild := v.popTail(level-1, n.children[idx])
		if newChild == nil && idx == 0 {
			return nil
		}
		m := n.clone()
		m.children[idx] = newChild
		return m
	} else if idx == 0 {
		return nil
	}
	m := n.clone()
	if level == 0 {
		var zero T
		m.values[idx] = zero
	} else {
		m.children[idx] = nil
	}
	return m
}

func (v *vector[T]) SubVector(begin, end int) Vector[T] {
	if begin < 0 || begin > end || end > v.count {
		return nil
	}
	return &subVector[T]{v, begin, end}
}

func (v *vector[T]) Iterator() Iterator[T] {
	return newIterator(v)
}

type subVector[T any] struct {
	v     *vector[T]
	begin int
	end   int
}

func (s *subVector[T]) Len() int {
	return s.end - s.begin
}

func (s *subVector[T]) Index(i int) (T, bool) {
	if i < 0 || s.begin+i >= s.end {
		var zero T
		return zero, false
	}
	return s.v.Index(s.begin + i)
}

func (s *subVector[T]) Assoc(i int, val T) Vector[T] {
	if i < 0 || s.begin+i > s.end {
		return nil
	} else if s.begin+i == s.end {
		return s.Conj(val)
	}
	return s.v.Assoc(s.begin+i, val).SubVector(s.begin, s.end)
}

func (s *subVector[T]) Conj(val T) Vector[T] {
	return s.v.Assoc(s.end, val).SubVector(s.begin, s.end+1)
}

func (s *subVector[T]) Pop() Vector[T] {
	switch s.Len() {
	case 0:
		return nil
	case 1:
		return Empty[T]()
	default:
		return s.v.SubVector(s.begin, s.end-1)
	}
}

func (s *subVector[T]) SubVector(i, j int) Vector[T] {
	return s.v.SubVector(s.begin+i, s.begin+j)
}

func (s *subVector[T]) Iterator() Iterator[T] {
	return newIteratorWithRange(s.v, s.begin, s.end)
}

type iterator[T any] struct {
	v        *vector[T]
	treeSize int
	index    int
	end      int
	path     []pathEntry[T]
}

type pathEntry[T any] struct {
	node  *node[T]
	index int
}

func newIterator[T any](v *vector[T]) *iterator[T] {
	return newIteratorWithRange(v, 0, v.Len())
}

func newIteratorWithRange[T any](v *vector[T], begin, end int) *iterator[T] {
	it := &iterator[T]{v, v.treeSize(), begin, end, nil}
	if it.index >= it.treeSize {
		return it
	}
	// Find the node for begin, remembering all nodes along the path.
	n := v.root
	for shift := v.height * chunkBits; shift > 0; shift -= chunkBits {
		idx := (begin >> shift) & chunkMask
		it.path = append(it.path, pathEntry[T]{n, idx})
		n = n.children[idx]
	}
	it.path = append(it.path, pathEntry[T]{n, begin & chunkMask})
	return it
}

func (it *iterator[T]) Elem() T {
	if it.index >= it.treeSize {
		return it.v.tail[it.index-it.treeSize]
	}
	leaf := it.path[len(it.path)-1]
	return leaf.node.values[leaf.index]
}

func (it *iterator[T]) HasElem() bool {
	return it.index < it.end
}

func (it *iterator[T]) Next() {
	if it.index+1 >= it.treeSize {
		// Next element is in tail. Just increment the index.
		it.index++
		return
	}
	// Find the deepest level that can be advanced.
	var i int
	for i = len(it.path) - 1; i >= 0; i-- {
		if it.path[i].index+1 < nodeSize {
			break
		}
	}
	if i == -1 {
		panic("cannot advance; vector iterator bug")
	}
	// Advance on this node, and re-populate all deeper levels.
	it.path[i].index++
	for i++; i < len(it.path); i++ {
		parent := it.path[i-1]
		it.path[i] = pathEntry[T]{parent.node.children[parent.index], 0}
	}
	it.index++
}

// FromSlice returns a vector containing the values of the slice, in the same
// order.
func FromSlice[T any](vals []T) Vector[T] {
	v := Empty[T]()
	for _, val := range vals {
		v = v.Conj(val)
	}
	return v
}

// Equal returns whether two vectors contain equal values in the same order.
// Vectors of different lengths are never equal; the comparison stops at the
// first mismatch.
func Equal[T comparable](a, b Vector[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}

// EqualFunc is like Equal, but compares values with eq, allowing the two
// vectors to have different element types.
func EqualFunc[T1, T2 any](a Vector[T1], b Vector[T2], eq func(T1, T2) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	ia, ib := a.Iterator(), b.Iterator()
	for ia.HasElem() {
		if !eq(ia.Elem(), ib.Elem()) {
			return false
		}
		ia.Next()
		ib.Next()
	}
	return true
}

// Hash computes a hash code of the vector by combining the hash codes of its
// values, computed with hashFn. Two vectors that are Equal (with a matching
// notion of value equality) have the same hash code.
func Hash[T any](v Vector[T], hashFn func(T) uint32) uint32 {
	h := hash.DJBInit
	for it := v.Iterator(); it.HasElem(); it.Next() {
		h = hash.DJBCombine(h, hashFn(it.Elem()))
	}
	return h
}
