package credential

import (
	"bytes"
	"context"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/vocdoni/anoncred/circuits"
)

// NumPubSignals is the number of public signals of the credential circuit.
const NumPubSignals = circuits.CredentialNPubInputs

// Compile compiles the credential circuit constraint system for the given
// census tree depth.
func Compile(depth int) (constraint.ConstraintSystem, error) {
	if depth < 0 {
		return nil, fmt.Errorf("invalid census depth %d", depth)
	}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, NewCircuit(depth))
	if err != nil {
		return nil, fmt.Errorf("compile credential circuit: %w", err)
	}
	return ccs, nil
}

// Setup runs the groth16 setup over a compiled credential circuit. Intended
// for tests and local tooling, published deployments use the artifact keys
// produced by the trusted setup ceremony.
func Setup(ccs constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("credential circuit setup: %w", err)
	}
	return pk, vk, nil
}

// Prove generates a groth16 proof for the given full assignment.
func Prove(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, assignment *Circuit) (groth16.Proof, error) {
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		return nil, fmt.Errorf("generate credential proof: %w", err)
	}
	return proof, nil
}

// ProveWithArtifacts generates a proof using the published circuit artifacts,
// downloading them into the local cache if missing. The assignment depth must
// match the depth the artifacts were compiled with.
func ProveWithArtifacts(ctx context.Context, assignment *Circuit) (groth16.Proof, error) {
	if err := Artifacts.LoadAll(ctx); err != nil {
		return nil, fmt.Errorf("load credential artifacts: %w", err)
	}
	ccs := groth16.NewCS(ecc.BN254)
	if _, err := ccs.ReadFrom(bytes.NewReader(Artifacts.CircuitDefinition())); err != nil {
		return nil, fmt.Errorf("read credential circuit definition: %w", err)
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(bytes.NewReader(Artifacts.ProvingKey())); err != nil {
		return nil, fmt.Errorf("read credential proving key: %w", err)
	}
	return Prove(ccs, pk, assignment)
}

// VerifyProof verifies a groth16 credential proof against the verification
// key and the expected public signals. Any failure, from a malformed witness
// to an unsatisfied constraint, collapses into a single opaque error so the
// caller cannot tell which check failed.
func VerifyProof(proof groth16.Proof, signals *PubSignals, vk groth16.VerifyingKey) error {
	pubWitness, err := PublicWitness(signals)
	if err != nil {
		return err
	}
	if err := groth16.Verify(proof, vk, pubWitness); err != nil {
		return fmt.Errorf("credential proof verification failed")
	}
	return nil
}

// PublicWitness builds the gnark public witness from the ordered public
// signals.
func PublicWitness(signals *PubSignals) (witness.Witness, error) {
	if signals == nil {
		return nil, fmt.Errorf("nil public signals")
	}
	for _, v := range signals.Vector() {
		if v == nil {
			return nil, fmt.Errorf("nil public signal")
		}
	}
	assignment := &Circuit{
		Nullifier:    signals.Nullifier,
		VoterKeyHash: signals.VoterKeyHash,
		Commitment:   signals.Commitment,
		CensusRoot:   signals.CensusRoot,
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return nil, fmt.Errorf("create public witness: %w", err)
	}
	return w, nil
}

// ProofToBytes serializes a groth16 proof to its wire format.
func ProofToBytes(proof groth16.Proof) ([]byte, error) {
	buf := bytes.Buffer{}
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize credential proof: %w", err)
	}
	return buf.Bytes(), nil
}

// ProofFromBytes deserializes a groth16 proof from its wire format.
func ProofFromBytes(data []byte) (groth16.Proof, error) {
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("deserialize credential proof: %w", err)
	}
	return proof, nil
}

// VerifyingKeyToBytes serializes a groth16 verification key.
func VerifyingKeyToBytes(vk groth16.VerifyingKey) ([]byte, error) {
	buf := bytes.Buffer{}
	if _, err := vk.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize verification key: %w", err)
	}
	return buf.Bytes(), nil
}

// VerifyingKeyFromBytes deserializes a groth16 verification key.
func VerifyingKeyFromBytes(data []byte) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("deserialize verification key: %w", err)
	}
	return vk, nil
}
