package census

import (
	"errors"
	"fmt"
	"math/big"
	mrand "math/rand/v2"

	"github.com/vocdoni/anoncred/crypto/hash/poseidon"
	"github.com/vocdoni/anoncred/types"
	"github.com/vocdoni/anoncred/util"
)

// ErrLeafNotFound is returned when a proof is requested for a voter key hash
// that is not part of the census.
var ErrLeafNotFound = errors.New("leaf not found in census")

// Participant is a registry entry: the external voter identifier plus the
// voter private secret. Participants are consumed at build time and never
// persisted, the census publishes only the derived leaf set.
type Participant struct {
	VoterID string
	Secret  string
}

// Census is a built voter census: the merkle tree over the shuffled voter
// key hashes together with the shuffle metadata needed to publish and audit
// it. A Census is immutable, rebuilding with a larger depth produces a new
// root that supersedes the old one.
type Census struct {
	tree        *Tree
	seed        types.HexBytes
	order       []int
	commitments []*big.Int
	index       map[string]int
}

// BuildCensus derives the leaf set from the participants, shuffles it with a
// fresh random seed and builds the census tree of the given depth.
func BuildCensus(participants []Participant, depth int) (*Census, error) {
	return BuildCensusWithSeed(participants, depth, util.RandomBytes(types.CensusSeedSize))
}

// BuildCensusWithSeed is BuildCensus with an explicit shuffle seed, so a
// published census can be rebuilt and audited from its participant list.
// The capacity check runs first, an oversized participant list aborts the
// build before any hashing and nothing is published.
func BuildCensusWithSeed(participants []Participant, depth int, seed []byte) (*Census, error) {
	if len(seed) != types.CensusSeedSize {
		return nil, fmt.Errorf("shuffle seed must be %d bytes, got %d", types.CensusSeedSize, len(seed))
	}
	if depth < 0 || depth > types.MaxCensusDepth {
		return nil, fmt.Errorf("invalid tree depth %d (max %d)", depth, types.MaxCensusDepth)
	}
	if capacity := 1 << depth; len(participants) > capacity {
		return nil, fmt.Errorf("%w: %d participants, capacity %d", ErrCensusOverflow, len(participants), capacity)
	}
	leaves := make([]*big.Int, len(participants))
	commitments := make([]*big.Int, len(participants))
	seen := make(map[string]struct{}, len(participants))
	for i, p := range participants {
		if p.VoterID == "" {
			return nil, fmt.Errorf("participant %d has an empty voter id", i)
		}
		if p.Secret == "" {
			return nil, fmt.Errorf("participant %d has an empty secret", i)
		}
		if _, ok := seen[p.VoterID]; ok {
			return nil, fmt.Errorf("duplicate voter id %q", p.VoterID)
		}
		seen[p.VoterID] = struct{}{}
		voterKey := util.TextToField(p.VoterID)
		secret := util.TextToField(p.Secret)
		leaf, err := poseidon.Hash(voterKey)
		if err != nil {
			return nil, fmt.Errorf("hash voter key of participant %d: %w", i, err)
		}
		// The commitment binds the voter to the secret but is never part
		// of the tree, membership is proven over the voter key hash alone.
		commitment, err := poseidon.Hash(secret, voterKey)
		if err != nil {
			return nil, fmt.Errorf("hash commitment of participant %d: %w", i, err)
		}
		leaves[i] = leaf
		commitments[i] = commitment
	}
	shuffled, order := shuffleLeaves(leaves, seed)
	tree, err := NewTree(depth, shuffled)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(shuffled))
	for i, leaf := range shuffled {
		index[leaf.String()] = i
	}
	return &Census{
		tree:        tree,
		seed:        append(types.HexBytes{}, seed...),
		order:       order,
		commitments: commitments,
		index:       index,
	}, nil
}

// shuffleLeaves applies the seed-keyed pseudorandom permutation that breaks
// the link between registration order and tree position. The permutation is
// deterministic for a given seed, so publishing the seed lets auditors
// reproduce the exact tree. Returns the permuted leaf list and the order
// mapping from registration index to leaf index.
func shuffleLeaves(leaves []*big.Int, seed []byte) ([]*big.Int, []int) {
	shuffled := make([]*big.Int, len(leaves))
	copy(shuffled, leaves)
	source := make([]int, len(leaves))
	for i := range source {
		source[i] = i
	}
	rng := mrand.New(mrand.NewChaCha8([types.CensusSeedSize]byte(seed)))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		source[i], source[j] = source[j], source[i]
	})
	order := make([]int, len(leaves))
	for position, registration := range source {
		order[registration] = position
	}
	return shuffled, order
}

// Root returns the census merkle root, the only value external verifiers
// ever trust.
func (c *Census) Root() *big.Int {
	return c.tree.Root()
}

// Depth returns the census tree depth.
func (c *Census) Depth() int {
	return c.tree.Depth()
}

// Size returns the number of registered voters in the census.
func (c *Census) Size() int {
	return c.tree.Size()
}

// Seed returns a copy of the shuffle seed.
func (c *Census) Seed() types.HexBytes {
	return append(types.HexBytes{}, c.seed...)
}

// Leaves returns a copy of the shuffled voter key hashes, padding excluded.
func (c *Census) Leaves() []*big.Int {
	leaves := make([]*big.Int, c.Size())
	for i := range leaves {
		leaf, err := c.tree.Leaf(i)
		if err != nil {
			panic(err)
		}
		leaves[i] = leaf
	}
	return leaves
}

// Order returns a copy of the registration index to leaf index mapping. It
// lets the census publisher answer per voter index lookups without handing
// out the full tree, and must be discarded together with the participant
// list once the census is published.
func (c *Census) Order() []int {
	return append([]int{}, c.order...)
}

// Commitments returns copies of the per participant identity commitments in
// registration order. Commitments are reference material for the publisher,
// they never enter the tree.
func (c *Census) Commitments() []*big.Int {
	commitments := make([]*big.Int, len(c.commitments))
	for i, commitment := range c.commitments {
		commitments[i] = new(big.Int).Set(commitment)
	}
	return commitments
}

// LeafIndex returns the position of the given voter key hash in the
// shuffled leaf list.
func (c *Census) LeafIndex(leaf *big.Int) (int, bool) {
	if leaf == nil {
		return 0, false
	}
	index, ok := c.index[leaf.String()]
	return index, ok
}

// GenProof generates the authentication path for the leaf at the given
// index.
func (c *Census) GenProof(index int) (*types.CensusProof, error) {
	return c.tree.GenProof(index)
}

// ProofForLeaf looks up the given voter key hash and generates its
// authentication path. Returns ErrLeafNotFound when the hash is not part of
// the census.
func (c *Census) ProofForLeaf(leaf *big.Int) (*types.CensusProof, error) {
	index, ok := c.LeafIndex(leaf)
	if !ok {
		return nil, ErrLeafNotFound
	}
	return c.tree.GenProof(index)
}

// Fingerprint returns a single field element committing to the published
// census: the root, the shuffle seed split in two field elements and the
// tree shape. The root already commits to the full leaf ordering.
func (c *Census) Fingerprint() (*big.Int, error) {
	return fingerprint(c.Root(), c.seed, c.Depth(), c.Size())
}

func fingerprint(root *big.Int, seed types.HexBytes, depth, size int) (*big.Int, error) {
	seedHead := new(big.Int).SetBytes(seed[:types.CensusSeedSize/2])
	seedTail := new(big.Int).SetBytes(seed[types.CensusSeedSize/2:])
	return poseidon.MultiPoseidon(
		root,
		seedHead,
		seedTail,
		big.NewInt(int64(depth)),
		big.NewInt(int64(size)),
	)
}

// ValidateData checks an externally built census description against its own
// leaves: the tree rebuilt from the leaf list must reproduce the claimed
// root, the size must match the leaf count and, when a seed is present, the
// fingerprint must match the recomputed one. Publishers run it before
// attesting a census they did not build themselves.
func ValidateData(data *types.CensusData) error {
	if data == nil {
		return errors.New("nil census data")
	}
	if data.Size != len(data.Leaves) {
		return fmt.Errorf("census size %d does not match %d leaves", data.Size, len(data.Leaves))
	}
	leaves := make([]*big.Int, len(data.Leaves))
	for i, leaf := range data.Leaves {
		leaves[i] = leaf.BigInt()
	}
	tree, err := NewTree(data.Depth, leaves)
	if err != nil {
		return fmt.Errorf("rebuild census tree: %w", err)
	}
	if tree.Root().Cmp(data.Root.BigInt()) != 0 {
		return errors.New("census root does not match its leaves")
	}
	if len(data.Seed) > 0 {
		if len(data.Seed) != types.CensusSeedSize {
			return fmt.Errorf("shuffle seed must be %d bytes, got %d", types.CensusSeedSize, len(data.Seed))
		}
		fp, err := fingerprint(tree.Root(), data.Seed, data.Depth, data.Size)
		if err != nil {
			return fmt.Errorf("census fingerprint: %w", err)
		}
		if len(data.Fingerprint) > 0 && fp.Cmp(data.Fingerprint.BigInt()) != 0 {
			return errors.New("census fingerprint does not match")
		}
	} else if len(data.Fingerprint) > 0 {
		return errors.New("census fingerprint requires the shuffle seed")
	}
	return nil
}

// Data assembles the publishable census description. The caller stamps the
// publication time and attestation.
func (c *Census) Data() (*types.CensusData, error) {
	fingerprint, err := c.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("census fingerprint: %w", err)
	}
	leaves := make([]types.HexBytes, c.Size())
	for i := range leaves {
		leaf, err := c.tree.Leaf(i)
		if err != nil {
			return nil, err
		}
		leaves[i] = fieldToBytes(leaf)
	}
	return &types.CensusData{
		Root:        fieldToBytes(c.Root()),
		Seed:        c.Seed(),
		Depth:       c.Depth(),
		Size:        c.Size(),
		Fingerprint: fieldToBytes(fingerprint),
		Leaves:      leaves,
	}, nil
}
