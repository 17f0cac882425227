package list

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gopds/persist/hash"
	"github.com/gopds/persist/tt"
)

// TestList builds a list with Cons and verifies Len, First and Rest at each
// step.
func TestList(t *testing.T) {
	const n = 1024
	l := Empty[int]()
	for i := 0; i < n; i++ {
		oldl := l
		l = l.Cons(i)

		if count := oldl.Len(); count != i {
			t.Errorf("oldl.Len() == %v, want %v", count, i)
		}
		if count := l.Len(); count != i+1 {
			t.Errorf("l.Len() == %v, want %v", count, i+1)
		}
		if first, ok := l.First(); !ok || first != i {
			t.Errorf("l.First() == %v, %v, want %v, true", first, ok, i)
		}
		if rest := l.Rest(); rest != oldl {
			t.Errorf("l.Rest() did not return the old list")
		}
	}
}

func TestEmpty(t *testing.T) {
	l := Empty[string]()
	if count := l.Len(); count != 0 {
		t.Errorf("Empty().Len() == %v, want 0", count)
	}
	if first, ok := l.First(); ok {
		t.Errorf("Empty().First() == %v, true, want _, false", first)
	}
	if rest := l.Rest(); rest != nil {
		t.Errorf("Empty().Rest() == %v, want nil", rest)
	}
	// The zero value must behave identically to Empty.
	var zero *List[string]
	if !Equal(zero, l) {
		t.Errorf("zero value list is not equal to Empty()")
	}
}

func TestEqual(t *testing.T) {
	tt.Test(t, tt.Fn("Equal", Equal[int]), tt.Table{
		tt.Args(Empty[int](), Empty[int]()).Rets(true),
		tt.Args(Empty[int](), FromSlice([]int{1})).Rets(false),
		tt.Args(FromSlice([]int{1}), Empty[int]()).Rets(false),
		tt.Args(FromSlice([]int{1, 2, 3}), FromSlice([]int{1, 2, 3})).Rets(true),
		tt.Args(FromSlice([]int{1, 2, 3}), FromSlice([]int{1, 2, 4})).Rets(false),
		// Prepend order matters.
		tt.Args(FromSlice([]int{2, 1}), FromSlice([]int{1, 2})).Rets(false),
		// A shared prefix is not enough.
		tt.Args(FromSlice([]int{1, 2}), FromSlice([]int{1, 2, 3})).Rets(false),
		tt.Args(FromSlice([]int{1, 2, 3}), FromSlice([]int{1, 2})).Rets(false),
	})
}

// TestEqualAfterCons builds two lists independently with Cons and verifies
// that they are structurally equal, and stop being so after changing one
// value.
func TestEqualAfterCons(t *testing.T) {
	xs := Empty[int]().Cons(3).Cons(2).Cons(1)
	if diff := cmp.Diff([]int{1, 2, 3}, xs.Slice()); diff != "" {
		t.Errorf("list built by Cons (-want +got):\n%s", diff)
	}

	ys := Empty[int]().Cons(3).Cons(2).Cons(1)
	if !Equal(xs, ys) {
		t.Errorf("Equal(xs, ys) == false for identically built lists")
	}

	zs := Empty[int]().Cons(4).Cons(2).Cons(1)
	if Equal(xs, zs) {
		t.Errorf("Equal(xs, zs) == true for lists differing in the last value")
	}
}

func TestEqualFunc(t *testing.T) {
	a := FromSlice([]int{1, 2, 3})
	b := FromSlice([]string{"1", "2", "3"})
	eq := func(x int, y string) bool { return strconv.Itoa(x) == y }
	if !EqualFunc(a, b, eq) {
		t.Errorf("EqualFunc == false, want true")
	}
	if EqualFunc(a.Cons(0), b, eq) {
		t.Errorf("EqualFunc == true for lists of different lengths")
	}
}

func TestClone(t *testing.T) {
	l := FromSlice([]int{1, 2, 3})
	c := l.Clone()
	if !Equal(l, c) {
		t.Errorf("Equal(l, l.Clone()) == false")
	}
	// The clone must not share any node with the original.
	for a, b := l, c; a != nil; a, b = a.rest, b.rest {
		if a == b {
			t.Errorf("Clone() shares a spine node with the original")
		}
	}
	// Growing one list must not be observable through the other.
	c2 := c.Cons(0)
	if !Equal(l, c) {
		t.Errorf("Cons on a clone changed the original")
	}
	if c2.Len() != c.Len()+1 {
		t.Errorf("c2.Len() == %v, want %v", c2.Len(), c.Len()+1)
	}

	if Empty[int]().Clone() != nil {
		t.Errorf("Empty().Clone() != nil")
	}
}

func TestCloneFunc(t *testing.T) {
	newInt := func(i int) *int { return &i }
	l := FromSlice([]*int{newInt(1), newInt(2)})
	c := l.CloneFunc(func(p *int) *int { v := *p; return &v })

	eq := func(x, y *int) bool { return *x == *y }
	if !EqualFunc(l, c, eq) {
		t.Errorf("EqualFunc(l, c) == false after CloneFunc")
	}
	pl, _ := l.First()
	pc, _ := c.First()
	if pl == pc {
		t.Errorf("CloneFunc shares element pointers with the original")
	}
}

func TestFromSlice(t *testing.T) {
	if FromSlice[int](nil) != nil {
		t.Errorf("FromSlice(nil) != nil")
	}
	vals := []string{"foo", "bar", "lorem", "ipsum"}
	l := FromSlice(vals)
	if diff := cmp.Diff(vals, l.Slice()); diff != "" {
		t.Errorf("FromSlice then Slice did not round-trip (-want +got):\n%s", diff)
	}
	if got := Empty[string]().Slice(); got != nil {
		t.Errorf("Empty().Slice() == %v, want nil", got)
	}
}

func TestMap(t *testing.T) {
	l := FromSlice([]int{1, 2, 3})
	m := Map(l, strconv.Itoa)
	if diff := cmp.Diff([]string{"1", "2", "3"}, m.Slice()); diff != "" {
		t.Errorf("Map result (-want +got):\n%s", diff)
	}
	if m.Len() != l.Len() {
		t.Errorf("m.Len() == %v, want %v", m.Len(), l.Len())
	}
	if Map(Empty[int](), strconv.Itoa) != nil {
		t.Errorf("Map over empty list != nil")
	}
}

func TestHash(t *testing.T) {
	hashInt := func(i int) uint32 { return hash.UInt32(uint32(i)) }
	a := FromSlice([]int{1, 2, 3})
	b := FromSlice([]int{1, 2, 3})
	if Hash(a, hashInt) != Hash(b, hashInt) {
		t.Errorf("equal lists have different hashes")
	}
	if Hash(Empty[int](), hashInt) != hash.DJBInit {
		t.Errorf("Hash of empty list != DJBInit")
	}
	if Hash(FromSlice([]int{1}), hashInt) == Hash(FromSlice([]int{2}), hashInt) {
		t.Errorf("lists [1] and [2] have the same hash")
	}
}
