// Package poseidon wraps the iden3 Poseidon permutation over the BN254
// scalar field. Every hash performed outside the circuit goes through this
// package so that native results are bit-for-bit identical to what the
// in-circuit gadget computes.
package poseidon

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// maxArity is the widest Poseidon instance the credential system uses
// natively: unary for leaves, binary for tree nodes, nullifiers and
// commitments. Wider inputs go through MultiPoseidon.
const maxArity = 2

// q is the BN254 scalar field modulus.
var q, _ = new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// Hash computes Poseidon over one or two field elements. Inputs that are
// nil, negative or not reduced below the field modulus are rejected, since
// hashing them would silently diverge from the circuit.
func Hash(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	if len(inputs) > maxArity {
		return nil, fmt.Errorf("too many inputs: %d > %d", len(inputs), maxArity)
	}
	for i, input := range inputs {
		if input == nil {
			return nil, fmt.Errorf("nil input at position %d", i)
		}
		if input.Sign() < 0 || input.Cmp(q) >= 0 {
			return nil, fmt.Errorf("input %d out of field range", i)
		}
	}
	return poseidon.Hash(inputs)
}

// MultiPoseidon hashes an arbitrary list of up to 256 field elements by
// chunking it into 16-ary Poseidon hashes and hashing the chunk digests
// together. Used for the census fingerprint, which commits to the whole
// shuffled leaf list in a single field element.
func MultiPoseidon(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) > 256 {
		return nil, fmt.Errorf("too many inputs")
	} else if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	// calculate chunk hashes
	hashes := []*big.Int{}
	chunk := []*big.Int{}
	for _, input := range inputs {
		if len(chunk) == 16 {
			hash, err := poseidon.Hash(chunk)
			if err != nil {
				return nil, err
			}
			hashes = append(hashes, hash)
			chunk = []*big.Int{}
		}
		chunk = append(chunk, input)
	}
	// if the final chunk is not empty, hash it to get the last chunk hash
	if len(chunk) > 0 {
		hash, err := poseidon.Hash(chunk)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}
	// if there is only one chunk hash, return it
	if len(hashes) == 1 {
		return hashes[0], nil
	}
	// return the hash of all chunk hashes
	return poseidon.Hash(hashes)
}
