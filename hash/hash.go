// Package hash contains some common hash functions suitable for use as the
// element hash of the collection packages.
package hash

// DJBInit is the initial accumulator value of the DJB hash.
const DJBInit uint32 = 5381

// DJBCombine combines the accumulated hash with the hash of one more value.
func DJBCombine(acc, h uint32) uint32 {
	return mul33(acc) + h
}

// DJB combines the given hashes with DJBCombine, starting from DJBInit.
func DJB(hs ...uint32) uint32 {
	acc := DJBInit
	for _, h := range hs {
		acc = DJBCombine(acc, h)
	}
	return acc
}

func UInt32(u uint32) uint32 {
	return u
}

func UInt64(u uint64) uint32 {
	return mul33(uint32(u>>32)) + uint32(u&0xffffffff)
}

func String(s string) uint32 {
	h := DJBInit
	for i := 0; i < len(s); i++ {
		h = DJBCombine(h, uint32(s[i]))
	}
	return h
}

func mul33(u uint32) uint32 {
	return u<<5 + u
}
