package census

import (
	"crypto/subtle"
	"math/big"

	"github.com/vocdoni/anoncred/crypto/hash/poseidon"
	"github.com/vocdoni/anoncred/types"
)

// VerifyProof recomputes the merkle root from the given leaf and
// authentication path and compares it against the claimed root. At each
// level the pair ordering follows the direction bit: 0 hashes
// (current, sibling), 1 hashes (sibling, current). The final comparison is
// constant time over the fixed width encodings. The same check is enforced
// as algebraic constraints inside the credential circuit.
func VerifyProof(leaf *big.Int, proof *types.CensusProof, root *big.Int) bool {
	if leaf == nil || proof == nil || root == nil {
		return false
	}
	if len(proof.Siblings) != len(proof.Directions) {
		return false
	}
	current := new(big.Int).Set(leaf)
	for i, siblingBytes := range proof.Siblings {
		sibling := siblingBytes.BigInt()
		var next *big.Int
		var err error
		switch proof.Directions[i] {
		case 0:
			next, err = poseidon.Hash(current, sibling)
		case 1:
			next, err = poseidon.Hash(sibling, current)
		default:
			return false
		}
		if err != nil {
			return false
		}
		current = next
	}
	return equalField(current, root)
}

// CheckProof verifies that a proof is internally consistent, recomputing its
// own claimed root from its own leaf. Clients use it to self check a fetched
// proof before spending prover time on it.
func CheckProof(proof *types.CensusProof) bool {
	if proof == nil {
		return false
	}
	return VerifyProof(proof.Leaf.BigInt(), proof, proof.Root.BigInt())
}

// equalField compares two field elements in constant time over their fixed
// width big endian encodings. Values that cannot be field elements compare
// unequal.
func equalField(a, b *big.Int) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Sign() < 0 || b.Sign() < 0 || a.BitLen() > types.FieldSize*8 || b.BitLen() > types.FieldSize*8 {
		return false
	}
	var ab, bb [types.FieldSize]byte
	a.FillBytes(ab[:])
	b.FillBytes(bb[:])
	return subtle.ConstantTimeCompare(ab[:], bb[:]) == 1
}
