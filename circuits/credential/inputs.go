package credential

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/anoncred/census"
	"github.com/vocdoni/anoncred/crypto/hash/poseidon"
	"github.com/vocdoni/anoncred/types"
	"github.com/vocdoni/anoncred/util"
)

// PubSignals holds the four public signals of the credential circuit in
// their canonical order: nullifier, voter key hash, commitment and census
// root. The same order is used by the native gnark witness and by the
// snarkjs publicSignals array.
type PubSignals struct {
	Nullifier    *big.Int
	VoterKeyHash *big.Int
	Commitment   *big.Int
	CensusRoot   *big.Int
}

// Vector returns the signals as an ordered slice.
func (ps *PubSignals) Vector() []*big.Int {
	return []*big.Int{ps.Nullifier, ps.VoterKeyHash, ps.Commitment, ps.CensusRoot}
}

// Strings returns the signals as decimal strings, the snarkjs wire format.
func (ps *PubSignals) Strings() []string {
	vector := ps.Vector()
	strs := make([]string, len(vector))
	for i, v := range vector {
		strs[i] = v.String()
	}
	return strs
}

// PubSignalsFromStrings parses a snarkjs publicSignals array. Each signal
// must be a decimal field element.
func PubSignalsFromStrings(signals []string) (*PubSignals, error) {
	if len(signals) != NumPubSignals {
		return nil, fmt.Errorf("expected %d public signals, got %d", NumPubSignals, len(signals))
	}
	vector := make([]*big.Int, len(signals))
	for i, s := range signals {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("public signal %d is not a decimal number: %q", i, s)
		}
		if v.Sign() < 0 || util.BigToFF(v).Cmp(v) != 0 {
			return nil, fmt.Errorf("public signal %d is not a reduced field element", i)
		}
		vector[i] = v
	}
	return &PubSignals{
		Nullifier:    vector[0],
		VoterKeyHash: vector[1],
		Commitment:   vector[2],
		CensusRoot:   vector[3],
	}, nil
}

// DerivePubSignals computes, off circuit, the public signals a circuit run
// with the given identity material and census root will output. Used by
// clients to predict their nullifier and by tests to cross check the circuit
// against the native hasher.
func DerivePubSignals(voterID, secret string, censusRoot *big.Int) (*PubSignals, error) {
	voterKey := util.TextToField(voterID)
	secretField := util.TextToField(secret)
	voterKeyHash, err := poseidon.Hash(voterKey)
	if err != nil {
		return nil, fmt.Errorf("hash voter key: %w", err)
	}
	nullifier, err := poseidon.Hash(voterKey, secretField)
	if err != nil {
		return nil, fmt.Errorf("hash nullifier: %w", err)
	}
	commitment, err := poseidon.Hash(voterKeyHash, nullifier)
	if err != nil {
		return nil, fmt.Errorf("hash commitment: %w", err)
	}
	return &PubSignals{
		Nullifier:    nullifier,
		VoterKeyHash: voterKeyHash,
		Commitment:   commitment,
		CensusRoot:   new(big.Int).Set(censusRoot),
	}, nil
}

// NewAssignment assembles a full circuit witness from the voter identity
// material and the authentication path fetched from the census service. It
// self checks the proof first, a mismatched or stale path produces a clear
// error here instead of an opaque constraint failure at proving time.
func NewAssignment(voterID, secret string, proof *types.CensusProof) (*Circuit, error) {
	if proof == nil {
		return nil, fmt.Errorf("nil census proof")
	}
	if len(proof.Siblings) != len(proof.Directions) {
		return nil, fmt.Errorf("census proof has %d siblings but %d direction bits",
			len(proof.Siblings), len(proof.Directions))
	}
	voterKey := util.TextToField(voterID)
	voterKeyHash, err := poseidon.Hash(voterKey)
	if err != nil {
		return nil, fmt.Errorf("hash voter key: %w", err)
	}
	if voterKeyHash.Cmp(proof.Leaf.BigInt()) != 0 {
		return nil, fmt.Errorf("census proof leaf does not match the voter key hash")
	}
	if !census.CheckProof(proof) {
		return nil, fmt.Errorf("census proof does not verify against its own root")
	}
	signals, err := DerivePubSignals(voterID, secret, proof.Root.BigInt())
	if err != nil {
		return nil, err
	}
	assignment := NewCircuit(len(proof.Siblings))
	assignment.Nullifier = signals.Nullifier
	assignment.VoterKeyHash = signals.VoterKeyHash
	assignment.Commitment = signals.Commitment
	assignment.CensusRoot = signals.CensusRoot
	assignment.VoterKey = voterKey
	assignment.Secret = util.TextToField(secret)
	for i := range proof.Siblings {
		assignment.Siblings[i] = frontend.Variable(proof.Siblings[i].BigInt())
		assignment.PathBits[i] = frontend.Variable(int(proof.Directions[i]))
	}
	return assignment, nil
}
