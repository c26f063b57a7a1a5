package dict

import (
	"encoding/binary"
	"fmt"
)

// terminatorByte marks the end of a key inside the trie. 0x00 never
// appears inside a valid UTF-8 encoded reading, so it is safe to reuse
// as a private end-of-key transition alongside real byte transitions.
const terminatorByte = 0x00

// doubleArray is a base/check double-array trie over byte-string keys,
// arena-indexed so lookups never allocate. State 0 is reserved; the
// root lives at state 1. Positive base values address a transition
// table; a negative base marks a leaf holding an encoded payload value
// (value = -base-1). Construction is insert-only and happens once at
// build time — the array is immutable once returned from build.
type doubleArray struct {
	base  []int32
	check []int32
}

// daTrieNode is the temporary, pointer-based trie built from the sorted
// key/value pairs before compaction into the double array.
type daTrieNode struct {
	children map[byte]*daTrieNode
	hasValue bool
	value    int32
}

func newDaTrieNode() *daTrieNode {
	return &daTrieNode{children: make(map[byte]*daTrieNode)}
}

// buildDoubleArray compacts keys (assumed already sorted and
// deduplicated by the caller) into a double-array trie. Each key's
// value must fit in a non-negative int32.
func buildDoubleArray(keys [][]byte, values []int32) (*doubleArray, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("dict: keys/values length mismatch")
	}

	root := newDaTrieNode()
	for i, k := range keys {
		node := root
		for _, b := range k {
			child, ok := node.children[b]
			if !ok {
				child = newDaTrieNode()
				node.children[b] = child
			}
			node = child
		}
		node.hasValue = true
		node.value = values[i]
	}

	const initialSize = 256
	da := &doubleArray{
		base:  make([]int32, initialSize),
		check: make([]int32, initialSize),
	}
	allocated := make([]bool, initialSize)

	const rootState = int32(1)
	da.ensure(int(rootState), &allocated)
	allocated[rootState] = true

	if err := da.assign(root, rootState, &allocated); err != nil {
		return nil, err
	}
	return da, nil
}

func (da *doubleArray) ensure(n int, allocated *[]bool) {
	if n < len(da.base) {
		return
	}
	newLen := len(da.base)
	for newLen <= n {
		newLen *= 2
	}
	nb := make([]int32, newLen)
	copy(nb, da.base)
	da.base = nb

	nc := make([]int32, newLen)
	copy(nc, da.check)
	da.check = nc

	na := make([]bool, newLen)
	copy(na, *allocated)
	*allocated = na
}

type daEdge struct {
	b     byte
	child *daTrieNode // nil for the synthetic terminator edge
	value int32
}

func (da *doubleArray) assign(node *daTrieNode, state int32, allocated *[]bool) error {
	var edges []daEdge
	if node.hasValue {
		edges = append(edges, daEdge{b: terminatorByte, value: node.value})
	}
	for b, child := range node.children {
		edges = append(edges, daEdge{b: b, child: child})
	}
	if len(edges) == 0 {
		return nil
	}

	base := da.findBase(edges, allocated)
	da.base[state] = base

	for _, e := range edges {
		t := base + int32(e.b)
		da.ensure(int(t), allocated)
		(*allocated)[t] = true
		da.check[t] = state

		if e.child == nil {
			da.base[t] = -(e.value + 1)
		}
	}
	for _, e := range edges {
		if e.child == nil {
			continue
		}
		t := base + int32(e.b)
		if err := da.assign(e.child, t, allocated); err != nil {
			return err
		}
	}
	return nil
}

// findBase returns the smallest base >= 1 such that every edge target
// base+b is a free array slot. Construction is one-shot at load/build
// time, so a straightforward forward scan is preferred over the
// free-list bookkeeping a mutable double array would need.
func (da *doubleArray) findBase(edges []daEdge, allocated *[]bool) int32 {
	for base := int32(1); ; base++ {
		ok := true
		for _, e := range edges {
			t := int(base) + int(e.b)
			if t < len(*allocated) && (*allocated)[t] {
				ok = false
				break
			}
		}
		if ok {
			for _, e := range edges {
				da.ensure(int(base)+int(e.b), allocated)
			}
			return base
		}
	}
}

// exactMatch returns the value stored for key, if any.
func (da *doubleArray) exactMatch(key []byte) (int32, bool) {
	s := int32(1)
	for _, b := range key {
		t, ok := da.step(s, b)
		if !ok {
			return 0, false
		}
		s = t
	}
	t, ok := da.step(s, terminatorByte)
	if !ok {
		return 0, false
	}
	return -da.base[t] - 1, true
}

// commonPrefixValues returns the values stored at every prefix of key
// that is itself a key in the trie, shortest prefix first.
func (da *doubleArray) commonPrefixValues(key []byte) []int32 {
	var results []int32
	s := int32(1)
	if t, ok := da.step(s, terminatorByte); ok {
		results = append(results, -da.base[t]-1)
	}
	for _, b := range key {
		t, ok := da.step(s, b)
		if !ok {
			return results
		}
		s = t
		if u, ok := da.step(s, terminatorByte); ok {
			results = append(results, -da.base[u]-1)
		}
	}
	return results
}

func (da *doubleArray) step(s int32, b byte) (int32, bool) {
	if int(s) >= len(da.base) {
		return 0, false
	}
	base := da.base[s]
	if base < 0 {
		return 0, false // s is a leaf, has no outgoing transitions
	}
	t := base + int32(b)
	if t < 0 || int(t) >= len(da.check) || da.check[t] != s {
		return 0, false
	}
	return t, true
}

// marshalBinary encodes the array as a length-prefixed pair of
// little-endian int32 slices: [4B count][count*4B base][count*4B check].
func (da *doubleArray) marshalBinary() []byte {
	n := len(da.base)
	buf := make([]byte, 4+8*n)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	off := 4
	for _, v := range da.base {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(v))
		off += 4
	}
	for _, v := range da.check {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(v))
		off += 4
	}
	return buf
}

func unmarshalDoubleArray(buf []byte) (*doubleArray, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("dict: trie blob too short")
	}
	n := int(binary.LittleEndian.Uint32(buf[0:4]))
	want := 4 + 8*n
	if len(buf) != want {
		return nil, fmt.Errorf("dict: trie blob size mismatch: got %d want %d", len(buf), want)
	}
	base := make([]int32, n)
	check := make([]int32, n)
	off := 4
	for i := 0; i < n; i++ {
		base[i] = int32(binary.LittleEndian.Uint32(buf[off : off+4]))
		off += 4
	}
	for i := 0; i < n; i++ {
		check[i] = int32(binary.LittleEndian.Uint32(buf[off : off+4]))
		off += 4
	}
	return &doubleArray{base: base, check: check}, nil
}
