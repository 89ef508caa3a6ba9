package census

import (
	"fmt"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/anoncred/crypto/hash/poseidon"
	"github.com/vocdoni/anoncred/types"
	"github.com/vocdoni/anoncred/util"
)

func testParticipants(n int) []Participant {
	participants := make([]Participant, n)
	for i := range participants {
		participants[i] = Participant{
			VoterID: fmt.Sprintf("voter-%04d", i),
			Secret:  fmt.Sprintf("CITIZENSHIP_%04d", i),
		}
	}
	return participants
}

func TestTreeRoundTrip(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	for _, depth := range []int{1, 2, 3, 5} {
		capacity := 1 << depth
		for _, size := range []int{0, 1, capacity / 2, capacity} {
			leaves := make([]*big.Int, size)
			for i := range leaves {
				leaves[i] = big.NewInt(int64(i + 100))
			}
			tree, err := NewTree(depth, leaves)
			c.Assert(err, qt.IsNil)
			c.Assert(tree.Capacity(), qt.Equals, capacity)
			c.Assert(tree.Size(), qt.Equals, size)

			// Every index, padding included, must round trip
			for i := 0; i < capacity; i++ {
				proof, err := tree.GenProof(i)
				c.Assert(err, qt.IsNil)
				c.Assert(proof.Index, qt.Equals, uint64(i))
				c.Assert(proof.Siblings, qt.HasLen, depth)

				leaf, err := tree.Leaf(i)
				c.Assert(err, qt.IsNil)
				c.Assert(VerifyProof(leaf, proof, tree.Root()), qt.IsTrue)
				c.Assert(CheckProof(proof), qt.IsTrue)
			}
		}
	}
}

func TestTreeDepthZero(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	leaf := big.NewInt(7)
	tree, err := NewTree(0, []*big.Int{leaf})
	c.Assert(err, qt.IsNil)

	// Degenerate tree: the root is the leaf itself
	c.Assert(tree.Root().Cmp(leaf), qt.Equals, 0)

	proof, err := tree.GenProof(0)
	c.Assert(err, qt.IsNil)
	c.Assert(proof.Siblings, qt.HasLen, 0)
	c.Assert(VerifyProof(leaf, proof, tree.Root()), qt.IsTrue)

	_, err = tree.GenProof(1)
	c.Assert(err, qt.ErrorIs, ErrIndexOutOfRange)
}

func TestTreeDepthTwoScenario(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	// Capacity 4 tree with three leaves and one zero padding slot. The
	// node values are recomputed by hand to pin the exact tree layout.
	a, b, d := big.NewInt(11), big.NewInt(22), big.NewInt(33)
	tree, err := NewTree(2, []*big.Int{a, b, d})
	c.Assert(err, qt.IsNil)

	left, err := poseidon.Hash(a, b)
	c.Assert(err, qt.IsNil)
	right, err := poseidon.Hash(d, big.NewInt(0))
	c.Assert(err, qt.IsNil)
	root, err := poseidon.Hash(left, right)
	c.Assert(err, qt.IsNil)
	c.Assert(tree.Root().Cmp(root), qt.Equals, 0)

	// Proof for index 1: sibling a with direction right, then sibling
	// right with direction left
	proof, err := tree.GenProof(1)
	c.Assert(err, qt.IsNil)
	c.Assert(proof.Siblings[0].BigInt().Cmp(a), qt.Equals, 0)
	c.Assert(proof.Directions[0], qt.Equals, uint8(1))
	c.Assert(proof.Siblings[1].BigInt().Cmp(right), qt.Equals, 0)
	c.Assert(proof.Directions[1], qt.Equals, uint8(0))
	c.Assert(VerifyProof(b, proof, root), qt.IsTrue)

	// The padding slot proves membership of the zero leaf
	proof, err = tree.GenProof(3)
	c.Assert(err, qt.IsNil)
	c.Assert(VerifyProof(big.NewInt(0), proof, root), qt.IsTrue)
}

func TestProofTamperDetection(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	leaves := make([]*big.Int, 8)
	for i := range leaves {
		leaves[i] = big.NewInt(int64(i + 1))
	}
	tree, err := NewTree(3, leaves)
	c.Assert(err, qt.IsNil)
	root := tree.Root()

	for index := 0; index < len(leaves); index++ {
		proof, err := tree.GenProof(index)
		c.Assert(err, qt.IsNil)
		leaf := leaves[index]

		// Mutating any single sibling breaks verification
		for level := range proof.Siblings {
			tampered, err := tree.GenProof(index)
			c.Assert(err, qt.IsNil)
			mutated := new(big.Int).Add(tampered.Siblings[level].BigInt(), big.NewInt(1))
			tampered.Siblings[level] = fieldToBytes(mutated)
			c.Assert(VerifyProof(leaf, tampered, root), qt.IsFalse)
		}

		// Flipping any single direction bit breaks verification
		for level := range proof.Directions {
			tampered, err := tree.GenProof(index)
			c.Assert(err, qt.IsNil)
			tampered.Directions[level] ^= 1
			c.Assert(VerifyProof(leaf, tampered, root), qt.IsFalse)
		}

		// Wrong leaf and wrong root also fail
		c.Assert(VerifyProof(new(big.Int).Add(leaf, big.NewInt(1)), proof, root), qt.IsFalse)
		c.Assert(VerifyProof(leaf, proof, new(big.Int).Add(root, big.NewInt(1))), qt.IsFalse)
	}
}

func TestVerifyProofMalformed(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	tree, err := NewTree(2, []*big.Int{big.NewInt(1)})
	c.Assert(err, qt.IsNil)
	proof, err := tree.GenProof(0)
	c.Assert(err, qt.IsNil)

	c.Assert(VerifyProof(nil, proof, tree.Root()), qt.IsFalse)
	c.Assert(VerifyProof(big.NewInt(1), nil, tree.Root()), qt.IsFalse)
	c.Assert(VerifyProof(big.NewInt(1), proof, nil), qt.IsFalse)

	// Sibling and direction lengths must match
	short := *proof
	short.Directions = short.Directions[:1]
	c.Assert(VerifyProof(big.NewInt(1), &short, tree.Root()), qt.IsFalse)

	// Direction values other than 0 and 1 are rejected
	bad, err := tree.GenProof(0)
	c.Assert(err, qt.IsNil)
	bad.Directions[0] = 2
	c.Assert(VerifyProof(big.NewInt(1), bad, tree.Root()), qt.IsFalse)
}

func TestTreeCapacityBoundary(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	full := make([]*big.Int, 4)
	for i := range full {
		full[i] = big.NewInt(int64(i))
	}
	_, err := NewTree(2, full)
	c.Assert(err, qt.IsNil)

	_, err = NewTree(2, append(full, big.NewInt(4)))
	c.Assert(err, qt.ErrorIs, ErrCensusOverflow)
}

func TestBuildCensus(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	participants := testParticipants(10)
	censusA, err := BuildCensus(participants, 4)
	c.Assert(err, qt.IsNil)
	c.Assert(censusA.Size(), qt.Equals, 10)
	c.Assert(censusA.Depth(), qt.Equals, 4)
	c.Assert(censusA.Seed(), qt.HasLen, types.CensusSeedSize)
	c.Assert(censusA.Commitments(), qt.HasLen, 10)

	// Every participant's leaf must be present and provable
	for i, p := range participants {
		voterKey := util.TextToField(p.VoterID)
		leaf, err := poseidon.Hash(voterKey)
		c.Assert(err, qt.IsNil)

		index, ok := censusA.LeafIndex(leaf)
		c.Assert(ok, qt.IsTrue)
		c.Assert(index, qt.Equals, censusA.Order()[i])

		proof, err := censusA.ProofForLeaf(leaf)
		c.Assert(err, qt.IsNil)
		c.Assert(proof.Index, qt.Equals, uint64(index))
		c.Assert(VerifyProof(leaf, proof, censusA.Root()), qt.IsTrue)
	}

	// Commitments bind secret and voter id but are not tree leaves
	for i, p := range participants {
		voterKey := util.TextToField(p.VoterID)
		secret := util.TextToField(p.Secret)
		commitment, err := poseidon.Hash(secret, voterKey)
		c.Assert(err, qt.IsNil)
		c.Assert(censusA.Commitments()[i].Cmp(commitment), qt.Equals, 0)
		_, ok := censusA.LeafIndex(commitment)
		c.Assert(ok, qt.IsFalse)
	}

	// Unknown leaves have no proof
	_, err = censusA.ProofForLeaf(big.NewInt(424242))
	c.Assert(err, qt.ErrorIs, ErrLeafNotFound)
}

func TestBuildCensusShuffleDeterminism(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	participants := testParticipants(32)
	seed := util.RandomBytes(types.CensusSeedSize)

	censusA, err := BuildCensusWithSeed(participants, 6, seed)
	c.Assert(err, qt.IsNil)
	censusB, err := BuildCensusWithSeed(participants, 6, seed)
	c.Assert(err, qt.IsNil)

	// Same participants and seed reproduce the exact census
	c.Assert(censusA.Root().Cmp(censusB.Root()), qt.Equals, 0)
	c.Assert(censusA.Order(), qt.DeepEquals, censusB.Order())

	fpA, err := censusA.Fingerprint()
	c.Assert(err, qt.IsNil)
	fpB, err := censusB.Fingerprint()
	c.Assert(err, qt.IsNil)
	c.Assert(fpA.Cmp(fpB), qt.Equals, 0)

	// A different seed permutes the same leaf set into a different order
	otherSeed := util.RandomBytes(types.CensusSeedSize)
	censusC, err := BuildCensusWithSeed(participants, 6, otherSeed)
	c.Assert(err, qt.IsNil)
	c.Assert(censusA.Order(), qt.Not(qt.DeepEquals), censusC.Order())
}

func TestBuildCensusValidation(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	// Capacity boundary: exactly 2^depth participants fit, one more does not
	_, err := BuildCensus(testParticipants(4), 2)
	c.Assert(err, qt.IsNil)
	_, err = BuildCensus(testParticipants(5), 2)
	c.Assert(err, qt.ErrorIs, ErrCensusOverflow)

	// Bad shuffle seed size
	_, err = BuildCensusWithSeed(testParticipants(2), 2, []byte{1, 2, 3})
	c.Assert(err, qt.IsNotNil)

	// Empty identity material
	_, err = BuildCensus([]Participant{{VoterID: "", Secret: "s"}}, 2)
	c.Assert(err, qt.IsNotNil)
	_, err = BuildCensus([]Participant{{VoterID: "v", Secret: ""}}, 2)
	c.Assert(err, qt.IsNotNil)

	// Duplicate voter ids
	_, err = BuildCensus([]Participant{
		{VoterID: "v1", Secret: "s1"},
		{VoterID: "v1", Secret: "s2"},
	}, 2)
	c.Assert(err, qt.IsNotNil)
}

func TestCensusData(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	built, err := BuildCensus(testParticipants(7), 3)
	c.Assert(err, qt.IsNil)

	data, err := built.Data()
	c.Assert(err, qt.IsNil)
	c.Assert(data.Root.BigInt().Cmp(built.Root()), qt.Equals, 0)
	c.Assert(data.Seed, qt.DeepEquals, built.Seed())
	c.Assert(data.Depth, qt.Equals, 3)
	c.Assert(data.Size, qt.Equals, 7)
	c.Assert(data.Leaves, qt.HasLen, 7)

	leaves := built.Leaves()
	for i, leaf := range data.Leaves {
		c.Assert(leaf.BigInt().Cmp(leaves[i]), qt.Equals, 0)
	}

	fingerprint, err := built.Fingerprint()
	c.Assert(err, qt.IsNil)
	c.Assert(data.Fingerprint.BigInt().Cmp(fingerprint), qt.Equals, 0)
}

func TestValidateData(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	built, err := BuildCensus(testParticipants(5), 3)
	c.Assert(err, qt.IsNil)
	data, err := built.Data()
	c.Assert(err, qt.IsNil)

	c.Assert(ValidateData(data), qt.IsNil)
	c.Assert(ValidateData(nil), qt.IsNotNil)

	// a root that does not commit to the leaves
	bogusRoot := *data
	bogusRoot.Root = types.HexBytes{0x01}
	c.Assert(ValidateData(&bogusRoot), qt.IsNotNil)

	// size out of sync with the leaf list
	wrongSize := *data
	wrongSize.Size++
	c.Assert(ValidateData(&wrongSize), qt.IsNotNil)

	// reordering the leaves changes the root
	swapped := *data
	swapped.Leaves = append([]types.HexBytes{}, data.Leaves...)
	swapped.Leaves[0], swapped.Leaves[1] = swapped.Leaves[1], swapped.Leaves[0]
	c.Assert(ValidateData(&swapped), qt.IsNotNil)

	// fingerprint mismatch and fingerprint without a seed
	badFingerprint := *data
	badFingerprint.Fingerprint = types.HexBytes{0x01}
	c.Assert(ValidateData(&badFingerprint), qt.IsNotNil)
	noSeed := *data
	noSeed.Seed = nil
	c.Assert(ValidateData(&noSeed), qt.IsNotNil)

	// a truncated seed cannot reproduce the fingerprint
	badSeed := *data
	badSeed.Seed = types.HexBytes{0x01}
	c.Assert(ValidateData(&badSeed), qt.IsNotNil)

	// more leaves than the depth can hold
	overflow := *data
	overflow.Depth = 1
	c.Assert(ValidateData(&overflow), qt.IsNotNil)
}
