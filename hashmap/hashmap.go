// Package hashmap implements persistent hash map.
package hashmap

import (
	"math/bits"

	"github.com/gopds/persist/hash"
)

const (
	chunkBits = 5
	nodeCap   = 1 << chunkBits
	chunkMask = nodeCap - 1
)

// Map is a persistent associative data structure mapping keys to values. It
// is immutable, and supports near-O(1) operations to create modified versions
// of the map that share the underlying data structure. Because it is
// immutable, all of its methods are safe for concurrent use.
type Map[K, V any] interface {
	// Len returns the length of the map.
	Len() int
	// Index returns whether there is a value associated with the given key,
	// and that value or the zero value.
	Index(k K) (V, bool)
	// Assoc returns an almost identical map, with the given key associated
	// with the given value.
	Assoc(k K, v V) Map[K, V]
	// Dissoc returns an almost identical map, with the given key associated
	// with no value.
	Dissoc(k K) Map[K, V]
	// Iterator returns an iterator over the map.
	Iterator() Iterator[K, V]
}

// Iterator is an iterator over map elements. It can be used like this:
//
//	for it := m.Iterator(); it.HasElem(); it.Next() {
//	    key, value := it.Elem()
//	    // do something with elem...
//	}
type Iterator[K, V any] interface {
	// Elem returns the current key-value pair.
	Elem() (K, V)
	// HasElem returns whether the iterator is pointing to an element.
	HasElem() bool
	// Next moves the iterator to the next position.
	Next()
}

// New takes an equality function and a hash function for keys, and returns an
// empty Map that uses them. Two keys that are equal must have the same hash
// code.
func New[K, V any](equal func(k1, k2 K) bool, hashFn func(k K) uint32) Map[K, V] {
	return &hashMap[K, V]{0, &bitmapNode[K, V]{}, &keyOps[K]{equal, hashFn}}
}

// HasKey reports whether a Map has the given key.
func HasKey[K, V any](m Map[K, V], k K) bool {
	_, ok := m.Index(k)
	return ok
}

// keyOps bundles the key capability functions; all maps derived from the same
// New call share one instance.
type keyOps[K any] struct {
	equal func(K, K) bool
	hash  func(K) uint32
}

type hashMap[K, V any] struct {
	count int
	root  node[K, V]
	ops   *keyOps[K]
}

func (m *hashMap[K, V]) Len() int {
	return m.count
}

func (m *hashMap[K, V]) Index(k K) (V, bool) {
	return m.root.find(m.ops, 0, m.ops.hash(k), k)
}

func (m *hashMap[K, V]) Assoc(k K, v V) Map[K, V] {
	newRoot, added := m.root.assoc(m.ops, 0, m.ops.hash(k), k, v)
	newCount := m.count
	if added {
		newCount++
	}
	return &hashMap[K, V]{newCount, newRoot, m.ops}
}

func (m *hashMap[K, V]) Dissoc(k K) Map[K, V] {
	newRoot, deleted := m.root.without(m.ops, 0, m.ops.hash(k), k)
	newCount := m.count
	if deleted {
		newCount--
	}
	return &hashMap[K, V]{newCount, newRoot, m.ops}
}

func (m *hashMap[K, V]) Iterator() Iterator[K, V] {
	return m.root.iterator()
}

// Equal returns whether two maps contain the same keys associated with equal
// values. Maps of different lengths are never equal.
func Equal[K any, V comparable](m1, m2 Map[K, V]) bool {
	return EqualFunc(m1, m2, func(v1, v2 V) bool { return v1 == v2 })
}

// EqualFunc is like Equal, but compares values with eq, allowing the two maps
// to have different value types. Keys are compared with m2's key equality
// function.
func EqualFunc[K, V1, V2 any](m1 Map[K, V1], m2 Map[K, V2], eq func(V1, V2) bool) bool {
	if m1.Len() != m2.Len() {
		return false
	}
	for it := m1.Iterator(); it.HasElem(); it.Next() {
		k, v1 := it.Elem()
		v2, ok := m2.Index(k)
		if !ok || !eq(v1, v2) {
			return false
		}
	}
	return true
}

// Hash computes a hash code of the map from the hash codes of its keys and
// values. The iteration order of maps only depends on the hash of the keys,
// with one exception: when two keys have the same hash, they are produced in
// insertion order. Two maps that should be considered equal can therefore
// produce entries in different orders, so the per-entry hashes are combined
// by summing instead of hash.DJBCombine.
func Hash[K, V any](m Map[K, V], hashKey func(K) uint32, hashValue func(V) uint32) uint32 {
	var h uint32
	for it := m.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		h += hash.DJB(hashKey(k), hashValue(v))
	}
	return h
}

// node is an interface for all nodes in the hash map tree.
type node[K, V any] interface {
	// assoc adds a new pair of key and value. It returns the new node, and
	// whether the key did not exist before (i.e. a new pair has been added,
	// instead of replaced).
	assoc(ops *keyOps[K], shift, hash uint32, k K, v V) (node[K, V], bool)
	// without removes a key. It returns the new node and whether the key did
	// exist before (i.e. a key was indeed removed).
	without(ops *keyOps[K], shift, hash uint32, k K) (node[K, V], bool)
	// find finds the value for a key. It returns the found value (if any) and
	// whether such a pair exists.
	find(ops *keyOps[K], shift, hash uint32, k K) (V, bool)
	// iterator returns an iterator.
	iterator() Iterator[K, V]
}

// emptyNode reports whether n is nil or a bitmapNode with no entries. A
// collision node returns nil from without when its last entry is removed.
func emptyNode[K, V any](n node[K, V]) bool {
	if n == nil {
		return true
	}
	bn, ok := n.(*bitmapNode[K, V])
	return ok && bn.bitmap == 0 && len(bn.entries) == 0
}

// arrayNode stores all of its children in an array. The array is always at
// least 1/4 full, otherwise it will be packed into a bitmapNode.
type arrayNode[K, V any] struct {
	nChildren int
	children  [nodeCap]node[K, V]
}

func (n *arrayNode[K, V]) withNewChild(i uint32, newChild node[K, V], d int) *arrayNode[K, V] {
	newChildren := n.children
	newChildren[i] = newChild
	return &arrayNode[K, V]{n.nChildren + d, newChildren}
}

func (n *arrayNode[K, V]) assoc(ops *keyOps[K], shift, hash uint32, k K, v V) (node[K, V], bool) {
	idx := chunk(shift, hash)
	child := n.children[idx]
	if child == nil {
		newChild, _ := (&bitmapNode[K, V]{}).assoc(ops, shift+chunkBits, hash, k, v)
		return n.withNewChild(idx, newChild, 1), true
	}
	newChild, added := child.assoc(ops, shift+chunkBits, hash, k, v)
	return n.withNewChild(idx, newChild, 0), added
}

func (n *arrayNode[K, V]) without(ops *keyOps[K], shift, hash uint32, k K) (node[K, V], bool) {
	idx := chunk(shift, hash)
	child := n.children[idx]
	if child == nil {
		return n, false
	}
	newChild, _ := child.without(ops, shift+chunkBits, hash, k)
	if newChild == child {
		return n, false
	}
	if emptyNode(newChild) {
		if n.nChildren <= nodeCap/4 {
			// less than 1/4 full; shrink
			return n.pack(int(idx)), true
		}
		return n.withNewChild(idx, nil, -1), true
	}
	return n.withNewChild(idx, newChild, 0), true
}

func (n *arrayNode[K, V]) pack(skip int) *bitmapNode[K, V] {
	newNode := bitmapNode[K, V]{0, make([]mapEntry[K, V], n.nChildren-1)}
	j := 0
	for i, child := range n.children {
		if i != skip && child != nil {
			newNode.bitmap |= 1 << uint(i)
			newNode.entries[j] = mapEntry[K, V]{child: child}
			j++
		}
	}
	return &newNode
}

func (n *arrayNode[K, V]) find(ops *keyOps[K], shift, hash uint32, k K) (V, bool) {
	idx := chunk(shift, hash)
	child := n.children[idx]
	if child == nil {
		var zero V
		return zero, false
	}
	return child.find(ops, shift+chunkBits, hash, k)
}

func (n *arrayNode[K, V]) iterator() Iterator[K, V] {
	it := &arrayNodeIterator[K, V]{n, 0, nil}
	it.fixCurrent()
	return it
}

type arrayNodeIterator[K, V any] struct {
	n       *arrayNode[K, V]
	index   int
	current Iterator[K, V]
}

func (it *arrayNodeIterator[K, V]) fixCurrent() {
	for ; it.index < nodeCap && it.n.children[it.index] == nil; it.index++ {
	}
	if it.index < nodeCap {
		it.current = it.n.children[it.index].iterator()
	} else {
		it.current = nil
	}
}

func (it *arrayNodeIterator[K, V]) Elem() (K, V) {
	return it.current.Elem()
}

func (it *arrayNodeIterator[K, V]) HasElem() bool {
	return it.current != nil
}

func (it *arrayNodeIterator[K, V]) Next() {
	it.current.Next()
	if !it.current.HasElem() {
		it.index++
		it.fixCurrent()
	}
}

type bitmapNode[K, V any] struct {
	bitmap  uint32
	entries []mapEntry[K, V]
}

// mapEntry is an entry in a bitmapNode or a collisionNode. In a bitmapNode, an
// entry with a non-nil child points to a subtree; otherwise it is a key-value
// leaf. Entries in a collisionNode are always leaves.
type mapEntry[K, V any] struct {
	key   K
	value V
	child node[K, V]
}

func chunk(shift, hash uint32) uint32 {
	return (hash >> shift) & chunkMask
}

func bitpos(shift, hash uint32) uint32 {
	return 1 << chunk(shift, hash)
}

func index(bitmap, bit uint32) uint32 {
	return uint32(bits.OnesCount32(bitmap & (bit - 1)))
}

func createNode[K, V any](ops *keyOps[K], shift uint32, k1 K, v1 V, h2 uint32, k2 K, v2 V) node[K, V] {
	h1 := ops.hash(k1)
	if h1 == h2 {
		return &collisionNode[K, V]{h1, []mapEntry[K, V]{
			{key: k1, value: v1}, {key: k2, value: v2}}}
	}
	n, _ := (&bitmapNode[K, V]{}).assoc(ops, shift, h1, k1, v1)
	n, _ = n.assoc(ops, shift, h2, k2, v2)
	return n
}

func (n *bitmapNode[K, V]) unpack(ops *keyOps[K], shift, idx uint32, newChild node[K, V]) *arrayNode[K, V] {
	var newNode arrayNode[K, V]
	newNode.nChildren = len(n.entries) + 1
	newNode.children[idx] = newChild
	j := 0
	for i := uint(0); i < nodeCap; i++ {
		if (n.bitmap>>i)&1 != 0 {
			entry := n.entries[j]
			j++
			if entry.child != nil {
				newNode.children[i] = entry.child
			} else {
				newNode.children[i], _ = (&bitmapNode[K, V]{}).assoc(
					ops, shift+chunkBits, ops.hash(entry.key), entry.key, entry.value)
			}
		}
	}
	return &newNode
}

func (n *bitmapNode[K, V]) withoutEntry(bit, idx uint32) *bitmapNode[K, V] {
	return &bitmapNode[K, V]{n.bitmap ^ bit, withoutEntry(n.entries, idx)}
}

func withoutEntry[K, V any](entries []mapEntry[K, V], idx uint32) []mapEntry[K, V] {
	newEntries := make([]mapEntry[K, V], len(entries)-1)
	copy(newEntries[:idx], entries[:idx])
	copy(newEntries[idx:], entries[idx+1:])
	return newEntries
}

func (n *bitmapNode[K, V]) withReplacedEntry(i uint32, entry mapEntry[K, V]) *bitmapNode[K, V] {
	return &bitmapNode[K, V]{n.bitmap, replaceEntry(n.entries, i, entry)}
}

func replaceEntry[K, V any](entries []mapEntry[K, V], i uint32, entry mapEntry[K, V]) []mapEntry[K, V] {
	newEntries := append([]mapEntry[K, V](nil), entries...)
	newEntries[i] = entry
	return newEntries
}

func (n *bitmapNode[K, V]) assoc(ops *keyOps[K], shift, hash uint32, k K, v V) (node[K, V], bool) {
	bit := bitpos(shift, hash)
	idx := index(n.bitmap, bit)
	if n.bitmap&bit == 0 {
		// Entry does not exist yet
		nEntries := len(n.entries)
		if nEntries >= nodeCap/2 {
			// Unpack into an arrayNode
			newNode, _ := (&bitmapNode[K, V]{}).assoc(ops, shift+chunkBits, hash, k, v)
			return n.unpack(ops, shift, chunk(shift, hash), newNode), true
		}
		// Add a new entry
		newEntries := make([]mapEntry[K, V], nEntries+1)
		copy(newEntries[:idx], n.entries[:idx])
		newEntries[idx] = mapEntry[K, V]{key: k, value: v}
		copy(newEntries[idx+1:], n.entries[idx:])
		return &bitmapNode[K, V]{n.bitmap | bit, newEntries}, true
	}
	// Entry exists
	entry := n.entries[idx]
	if entry.child != nil {
		// Non-leaf child
		newChild, added := entry.child.assoc(ops, shift+chunkBits, hash, k, v)
		return n.withReplacedEntry(idx, mapEntry[K, V]{child: newChild}), added
	}
	// Leaf
	if ops.equal(k, entry.key) {
		// Identical key, replace
		return n.withReplacedEntry(idx, mapEntry[K, V]{key: k, value: v}), false
	}
	// Create and insert new inner node
	newNode := createNode(ops, shift+chunkBits, entry.key, entry.value, hash, k, v)
	return n.withReplacedEntry(idx, mapEntry[K, V]{child: newNode}), true
}

func (n *bitmapNode[K, V]) without(ops *keyOps[K], shift, hash uint32, k K) (node[K, V], bool) {
	bit := bitpos(shift, hash)
	if n.bitmap&bit == 0 {
		return n, false
	}
	idx := index(n.bitmap, bit)
	entry := n.entries[idx]
	if entry.child != nil {
		// Non-leaf child
		newChild, deleted := entry.child.without(ops, shift+chunkBits, hash, k)
		if newChild == entry.child {
			return n, false
		}
		if newChild == nil {
			// Sole element in subtree deleted
			if n.bitmap == bit {
				return &bitmapNode[K, V]{}, true
			}
			return n.withoutEntry(bit, idx), true
		}
		return n.withReplacedEntry(idx, mapEntry[K, V]{child: newChild}), deleted
	} else if ops.equal(entry.key, k) {
		// Leaf, and this is the entry to delete.
		return n.withoutEntry(bit, idx), true
	}
	// Nothing to delete.
	return n, false
}

func (n *bitmapNode[K, V]) find(ops *keyOps[K], shift, hash uint32, k K) (V, bool) {
	bit := bitpos(shift, hash)
	if n.bitmap&bit == 0 {
		var zero V
		return zero, false
	}
	idx := index(n.bitmap, bit)
	entry := n.entries[idx]
	if entry.child != nil {
		return entry.child.find(ops, shift+chunkBits, hash, k)
	} else if ops.equal(entry.key, k) {
		return entry.value, true
	}
	var zero V
	return zero, false
}

func (n *bitmapNode[K, V]) iterator() Iterator[K, V] {
	it := &bitmapNodeIterator[K, V]{n, 0, nil}
	it.fixCurrent()
	return it
}

type bitmapNodeIterator[K, V any] struct {
	n       *bitmapNode[K, V]
	index   int
	current Iterator[K, V]
}

func (it *bitmapNodeIterator[K, V]) fixCurrent() {
	if it.index < len(it.n.entries) && it.n.entries[it.index].child != nil {
		it.current = it.n.entries[it.index].child.iterator()
	} else {
		it.current = nil
	}
}

func (it *bitmapNodeIterator[K, V]) Elem() (K, V) {
	if it.current != nil {
		return it.current.Elem()
	}
	entry := it.n.entries[it.index]
	return entry.key, entry.value
}

func (it *bitmapNodeIterator[K, V]) HasElem() bool {
	return it.index < len(it.n.entries)
}

func (it *bitmapNodeIterator[K, V]) Next() {
	if it.current != nil {
		it.current.Next()
	}
	if it.current == nil || !it.current.HasElem() {
		it.index++
		it.fixCurrent()
	}
}

type collisionNode[K, V any] struct {
	hash    uint32
	entries []mapEntry[K, V]
}

func (n *collisionNode[K, V]) assoc(ops *keyOps[K], shift, hash uint32, k K, v V) (node[K, V], bool) {
	if hash == n.hash {
		idx := n.findIndex(ops, k)
		if idx != -1 {
			return &collisionNode[K, V]{n.hash, replaceEntry(
				n.entries, uint32(idx), mapEntry[K, V]{key: k, value: v})}, false
		}
		newEntries := make([]mapEntry[K, V], len(n.entries)+1)
		copy(newEntries[:len(n.entries)], n.entries[:])
		newEntries[len(n.entries)] = mapEntry[K, V]{key: k, value: v}
		return &collisionNode[K, V]{n.hash, newEntries}, true
	}
	// Wrap in a bitmapNode and add the entry
	wrap := bitmapNode[K, V]{bitpos(shift, n.hash), []mapEntry[K, V]{{child: n}}}
	return wrap.assoc(ops, shift, hash, k, v)
}

func (n *collisionNode[K, V]) without(ops *keyOps[K], shift, hash uint32, k K) (node[K, V], bool) {
	idx := n.findIndex(ops, k)
	if idx == -1 {
		return n, false
	}
	if len(n.entries) == 1 {
		return nil, true
	}
	return &collisionNode[K, V]{n.hash, withoutEntry(n.entries, uint32(idx))}, true
}

func (n *collisionNode[K, V]) find(ops *keyOps[K], shift, hash uint32, k K) (V, bool) {
	idx := n.findIndex(ops, k)
	if idx == -1 {
		var zero V
		return zero, false
	}
	return n.entries[idx].value, true
}

func (n *collisionNode[K, V]) findIndex(ops *keyOps[K], k K) int {
	for i, entry := range n.entries {
		if ops.equal(k, entry.key) {
			return i
		}
	}
	return -1
}

func (n *collisionNode[K, V]) iterator() Iterator[K, V] {
	return &collisionNodeIterator[K, V]{n, 0}
}

type collisionNodeIterator[K, V any] struct {
	n     *collisionNode[K, V]
	index int
}

func (it *collisionNodeIterator[K, V]) Elem() (K, V) {
	entry := it.n.entries[it.index]
	return entry.key, entry.value
}

func (it *collisionNodeIterator[K, V]) HasElem() bool {
	return it.index < len(it.n.entries)
}

func (it *collisionNodeIterator[K, V]) Next() {
	it.index++
}
