// Package credential contains the zkSNARK circuit that turns a census
// authentication path and a voter's private identity material into an
// anonymous credential. The circuit proves that Poseidon(voterKey) is a leaf
// of the published census tree and derives the nullifier that makes a second
// registration with the same identity detectable, without revealing the
// voter key, the secret or the leaf position.
package credential

import (
	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/anoncred/circuits"
	"github.com/vocdoni/gnark-crypto-primitives/poseidon"
)

// Circuit is the credential constraint system. The public witness order is
// fixed so the native public vector matches the snarkjs publicSignals layout
// [nullifier, voterKeyHash, commitment, censusRoot].
//
// Constraints enforced by Define:
//  1. VoterKeyHash == Poseidon(VoterKey)
//  2. walking up from VoterKeyHash through Siblings, picking the pair order
//     with each PathBit, reproduces CensusRoot
//  3. Nullifier == Poseidon(VoterKey, Secret)
//  4. Commitment == Poseidon(VoterKeyHash, Nullifier)
type Circuit struct {
	// public signals
	Nullifier    frontend.Variable `gnark:",public"`
	VoterKeyHash frontend.Variable `gnark:",public"`
	Commitment   frontend.Variable `gnark:",public"`
	CensusRoot   frontend.Variable `gnark:",public"`
	// private witness, one sibling and one direction bit per tree level
	VoterKey frontend.Variable
	Secret   frontend.Variable
	Siblings []frontend.Variable
	PathBits []frontend.Variable
}

// NewCircuit returns an empty circuit placeholder for the given census tree
// depth, sizing the authentication path slices for compilation.
func NewCircuit(depth int) *Circuit {
	return &Circuit{
		Siblings: make([]frontend.Variable, depth),
		PathBits: make([]frontend.Variable, depth),
	}
}

// Define declares the credential constraints.
func (c *Circuit) Define(api frontend.API) error {
	if len(c.Siblings) != len(c.PathBits) {
		// depth mismatch is a caller bug caught at compile time
		circuits.FrontendError(api, "siblings and path bits length mismatch", nil)
		return nil
	}
	// 1. the census leaf is the hash of the voter key
	leaf, err := poseidon.Hash(api, c.VoterKey)
	if err != nil {
		return err
	}
	api.AssertIsEqual(leaf, c.VoterKeyHash)
	// 2. recompute the authentication path as an equality chain, the circuit
	// never looks anything up, it only checks that the chain lands on the
	// public root
	current := leaf
	for i := range c.Siblings {
		api.AssertIsBoolean(c.PathBits[i])
		// bit 0: current is the left child, bit 1: current is the right one
		left := api.Select(c.PathBits[i], c.Siblings[i], current)
		right := api.Select(c.PathBits[i], current, c.Siblings[i])
		if current, err = poseidon.Hash(api, left, right); err != nil {
			return err
		}
	}
	api.AssertIsEqual(current, c.CensusRoot)
	// 3. the nullifier is deterministic for a (voterKey, secret) pair, which
	// is what makes double registration detectable
	nullifier, err := poseidon.Hash(api, c.VoterKey, c.Secret)
	if err != nil {
		return err
	}
	api.AssertIsEqual(nullifier, c.Nullifier)
	// 4. the commitment binds the revealed outputs together
	commitment, err := poseidon.Hash(api, leaf, nullifier)
	if err != nil {
		return err
	}
	api.AssertIsEqual(commitment, c.Commitment)
	return nil
}
