package types

import "time"

// CensusProof is an authentication path for a leaf of the census merkle tree.
// Siblings holds one sibling hash per level, leaf level first. Directions
// holds the matching direction bits, where 1 means the current node is the
// right child at that level. Recomputing the root from Leaf with Siblings and
// Directions must reproduce Root.
type CensusProof struct {
	Root       HexBytes   `json:"root"`
	Leaf       HexBytes   `json:"leaf"`
	Index      uint64     `json:"index"`
	Siblings   []HexBytes `json:"siblings"`
	Directions []uint8    `json:"directions"`
}

// CensusData is the public description of a published census: the merkle
// root, the shuffle seed, the tree depth, the number of registered voters and
// the shuffled leaf list. Signature is the publisher attestation over the
// census digest and Signer its address.
type CensusData struct {
	Root        HexBytes   `json:"root"`
	Seed        HexBytes   `json:"seed"`
	Depth       int        `json:"depth"`
	Size        int        `json:"size"`
	Fingerprint HexBytes   `json:"fingerprint"`
	PublishedAt time.Time  `json:"publishedAt"`
	Signature   HexBytes   `json:"signature,omitempty"`
	Signer      string     `json:"signer,omitempty"`
	Leaves      []HexBytes `json:"leaves,omitempty"`
}
