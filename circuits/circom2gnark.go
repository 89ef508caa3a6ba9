package circuits

import (
	"fmt"

	"github.com/vocdoni/circom2gnark/parser"
)

// CredentialNPubInputs is the number of public signals of the credential
// circom circuit: nullifier, voter key hash, commitment and census root.
const CredentialNPubInputs = 4

// Circom2GnarkProof function is a wrapper to convert a circom proof to a gnark
// proof, it receives the circom proof and the public signals as strings, as
// snarkjs returns them. Then, it parses the inputs to the gnark format. It
// returns a parser.CircomProof and a list of public signals or an error.
func Circom2GnarkProof(circomProof, pubSignals string) (*parser.CircomProof, []string, error) {
	// transform to gnark format
	proofData, err := parser.UnmarshalCircomProofJSON([]byte(circomProof))
	if err != nil {
		return nil, nil, err
	}
	pubSignalsData, err := parser.UnmarshalCircomPublicSignalsJSON([]byte(pubSignals))
	if err != nil {
		return nil, nil, err
	}
	return proofData, pubSignalsData, nil
}

// VerifyCircomProof verifies a snarkjs proof against a circom verification
// key, both in the JSON encodings snarkjs emits. The proof and public
// signals are converted to the gnark format and checked with the gnark
// verifier. It returns an error describing the failure or nil when the proof
// is valid.
func VerifyCircomProof(vkey []byte, circomProof, pubSignals string) error {
	proofData, pubSignalsData, err := Circom2GnarkProof(circomProof, pubSignals)
	if err != nil {
		return fmt.Errorf("could not parse circom proof: %w", err)
	}
	return VerifyParsedCircomProof(vkey, proofData, pubSignalsData)
}

// VerifyParsedCircomProof verifies an already parsed circom proof and public
// signals against a circom verification key.
func VerifyParsedCircomProof(vkey []byte, proof *parser.CircomProof, pubSignals []string) error {
	vkeyData, err := parser.UnmarshalCircomVerificationKeyJSON(vkey)
	if err != nil {
		return fmt.Errorf("could not parse verification key: %w", err)
	}
	gnarkProof, err := parser.ConvertCircomToGnark(proof, vkeyData, pubSignals)
	if err != nil {
		return fmt.Errorf("could not convert circom proof to gnark format: %w", err)
	}
	ok, err := parser.VerifyProof(gnarkProof)
	if err != nil {
		return fmt.Errorf("proof verification failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("proof verification failed")
	}
	return nil
}
