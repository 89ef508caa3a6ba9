// Package census builds and serves the anonymous voter census: a dense
// Poseidon merkle tree over shuffled voter key hashes. The tree layout
// matches the credential circuit bit for bit, so an authentication path
// generated here satisfies the in-circuit membership check.
package census

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/vocdoni/anoncred/crypto/hash/poseidon"
	"github.com/vocdoni/anoncred/types"
)

var (
	// ErrCensusOverflow is returned when a leaf set does not fit in the
	// requested tree depth. Nothing is built or published in that case.
	ErrCensusOverflow = errors.New("census overflow: too many leaves for tree depth")
	// ErrIndexOutOfRange is returned when a proof is requested for a leaf
	// index outside the tree capacity.
	ErrIndexOutOfRange = errors.New("leaf index out of range")
)

// Tree is a dense binary Poseidon merkle tree of fixed depth. Level 0 holds
// the 2^depth leaves, padded with zero leaves past the provided set, and each
// level above hashes sibling pairs until the single root. A Tree is immutable
// once built.
type Tree struct {
	depth  int
	size   int
	levels [][]*big.Int
}

// NewTree builds the tree for the given leaves. The leaf slice may be
// shorter than the 2^depth capacity, the remainder is padded with the zero
// leaf. Returns ErrCensusOverflow when the leaves do not fit.
func NewTree(depth int, leaves []*big.Int) (*Tree, error) {
	if depth < 0 || depth > types.MaxCensusDepth {
		return nil, fmt.Errorf("invalid tree depth %d (max %d)", depth, types.MaxCensusDepth)
	}
	capacity := 1 << depth
	if len(leaves) > capacity {
		return nil, fmt.Errorf("%w: %d leaves, capacity %d", ErrCensusOverflow, len(leaves), capacity)
	}
	level := make([]*big.Int, capacity)
	for i := range level {
		if i < len(leaves) {
			if leaves[i] == nil {
				return nil, fmt.Errorf("nil leaf at index %d", i)
			}
			level[i] = new(big.Int).Set(leaves[i])
		} else {
			level[i] = big.NewInt(0)
		}
	}
	levels := make([][]*big.Int, 0, depth+1)
	levels = append(levels, level)
	for d := 0; d < depth; d++ {
		current := levels[d]
		next := make([]*big.Int, len(current)/2)
		for i := range next {
			h, err := poseidon.Hash(current[2*i], current[2*i+1])
			if err != nil {
				return nil, fmt.Errorf("hash pair %d at level %d: %w", i, d, err)
			}
			next[i] = h
		}
		levels = append(levels, next)
	}
	return &Tree{depth: depth, size: len(leaves), levels: levels}, nil
}

// Root returns the tree root. For a depth zero tree the root is the single
// leaf itself.
func (t *Tree) Root() *big.Int {
	top := t.levels[t.depth]
	return new(big.Int).Set(top[0])
}

// Depth returns the number of tree levels above the leaves.
func (t *Tree) Depth() int {
	return t.depth
}

// Size returns the number of non padding leaves the tree was built with.
func (t *Tree) Size() int {
	return t.size
}

// Capacity returns the maximum number of leaves the tree can hold.
func (t *Tree) Capacity() int {
	return 1 << t.depth
}

// Leaf returns the leaf value stored at the given index, padding included.
func (t *Tree) Leaf(index int) (*big.Int, error) {
	if index < 0 || index >= t.Capacity() {
		return nil, fmt.Errorf("%w: index %d, capacity %d", ErrIndexOutOfRange, index, t.Capacity())
	}
	return new(big.Int).Set(t.levels[0][index]), nil
}

// GenProof generates the authentication path for the leaf at the given
// index: one sibling per level plus the matching direction bit, where 1
// means the current node is the right child. Returns ErrIndexOutOfRange for
// indexes outside [0, 2^depth).
func (t *Tree) GenProof(index int) (*types.CensusProof, error) {
	if index < 0 || index >= t.Capacity() {
		return nil, fmt.Errorf("%w: index %d, capacity %d", ErrIndexOutOfRange, index, t.Capacity())
	}
	siblings := make([]types.HexBytes, t.depth)
	directions := make([]uint8, t.depth)
	idx := index
	for d := 0; d < t.depth; d++ {
		sibling := idx + 1
		if idx%2 == 1 {
			directions[d] = 1
			sibling = idx - 1
		}
		siblings[d] = fieldToBytes(t.levels[d][sibling])
		idx /= 2
	}
	return &types.CensusProof{
		Root:       fieldToBytes(t.Root()),
		Leaf:       fieldToBytes(t.levels[0][index]),
		Index:      uint64(index),
		Siblings:   siblings,
		Directions: directions,
	}, nil
}

// fieldToBytes serializes a field element as fixed width big endian bytes,
// the encoding used on the wire and inside proofs.
func fieldToBytes(v *big.Int) types.HexBytes {
	b := make([]byte, types.FieldSize)
	v.FillBytes(b)
	return b
}
