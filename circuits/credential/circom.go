package credential

import (
	"encoding/json"
	"fmt"

	"github.com/iden3/go-rapidsnark/prover"
	"github.com/iden3/go-rapidsnark/witness"
	"github.com/vocdoni/anoncred/circuits"
	"github.com/vocdoni/anoncred/types"
	"github.com/vocdoni/anoncred/util"
)

// CircomInputs is the input JSON of the circom build of the credential
// circuit. Field elements are decimal strings, as the snarkjs witness
// calculator expects them.
type CircomInputs struct {
	VoterKey     string   `json:"voterKey"`
	Secret       string   `json:"secret"`
	PathElements []string `json:"pathElements"`
	PathIndices  []string `json:"pathIndices"`
	CensusRoot   string   `json:"censusRoot"`
}

// BuildCircomInputs assembles the circom input JSON from the voter identity
// material and a census authentication path. The same checks as
// NewAssignment apply, an inconsistent path is rejected before the witness
// calculator runs.
func BuildCircomInputs(voterID, secret string, proof *types.CensusProof) ([]byte, error) {
	if _, err := NewAssignment(voterID, secret, proof); err != nil {
		return nil, err
	}
	inputs := CircomInputs{
		VoterKey:     util.TextToField(voterID).String(),
		Secret:       util.TextToField(secret).String(),
		PathElements: make([]string, len(proof.Siblings)),
		PathIndices:  make([]string, len(proof.Directions)),
		CensusRoot:   proof.Root.BigInt().String(),
	}
	for i := range proof.Siblings {
		inputs.PathElements[i] = proof.Siblings[i].BigInt().String()
		inputs.PathIndices[i] = fmt.Sprintf("%d", proof.Directions[i])
	}
	return json.Marshal(inputs)
}

// ProveWithCircom computes a witness with the circom wasm calculator and
// generates a groth16 proof with the zkey through rapidsnark. It returns the
// proof and the public signals in the snarkjs JSON encodings, ready to be
// submitted to the registrar or checked with VerifyCircom.
func ProveWithCircom(wasm, zkey, inputsJSON []byte) (string, string, error) {
	parsedInputs, err := witness.ParseInputs(inputsJSON)
	if err != nil {
		return "", "", fmt.Errorf("parse circom inputs: %w", err)
	}
	calc, err := witness.NewCircom2WitnessCalculator(wasm, true)
	if err != nil {
		return "", "", fmt.Errorf("instance witness calculator: %w", err)
	}
	w, err := calc.CalculateWTNSBin(parsedInputs, true)
	if err != nil {
		return "", "", fmt.Errorf("calculate witness: %w", err)
	}
	return prover.Groth16ProverRaw(zkey, w)
}

// VerifyCircom verifies a snarkjs credential proof against the circom
// verification key, converting both to the gnark format first.
func VerifyCircom(vkey []byte, proofJSON, pubSignalsJSON string) error {
	return circuits.VerifyCircomProof(vkey, proofJSON, pubSignalsJSON)
}
