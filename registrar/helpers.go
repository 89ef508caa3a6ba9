package registrar

import (
	"encoding/json"
	"math/big"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/vocdoni/anoncred/crypto/ethereum"
	"github.com/vocdoni/anoncred/types"
)

type groth16VerifyingKey = groth16.VerifyingKey

// fieldBytes serializes a field element as fixed width big endian bytes, the
// wire encoding of public values.
func fieldBytes(v *big.Int) types.HexBytes {
	b := make([]byte, types.FieldSize)
	v.FillBytes(b)
	return b
}

// signalsJSON re-encodes the public signals as the snarkjs publicSignals
// JSON array.
func signalsJSON(signals []string) (string, error) {
	data, err := json.Marshal(signals)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// credentialDigest computes the attested digest of a credential: the keccak
// hash of its stable fields. The token and signature are excluded, the
// digest covers what the proof established plus the issuance time.
func credentialDigest(cred *types.Credential) []byte {
	payload := make([]byte, 0, 4*types.FieldSize)
	payload = append(payload, cred.Nullifier...)
	payload = append(payload, cred.VoterKeyHash...)
	payload = append(payload, cred.Commitment...)
	payload = append(payload, cred.Root...)
	payload = append(payload, []byte(cred.IssuedAt.UTC().Format("2006-01-02T15:04:05Z"))...)
	return ethereum.HashRaw(payload)
}

// VerifyCredentialSignature checks a credential receipt against the expected
// registrar address. Exposed for clients that verify receipts offline.
func VerifyCredentialSignature(cred *types.Credential, address string) bool {
	if cred == nil || len(cred.Signature) == 0 {
		return false
	}
	recovered, err := ethereum.AddrFromSignature(credentialDigest(cred), cred.Signature)
	if err != nil {
		return false
	}
	return recovered.String() == address
}

// censusDigest computes the attested digest of a census publication: the
// keccak hash of the root, the shuffle seed, the fingerprint and the
// publication time.
func censusDigest(data *types.CensusData) []byte {
	payload := make([]byte, 0, 3*types.FieldSize)
	payload = append(payload, data.Root...)
	payload = append(payload, data.Seed...)
	payload = append(payload, data.Fingerprint...)
	payload = append(payload, []byte(data.PublishedAt.UTC().Format("2006-01-02T15:04:05Z"))...)
	return ethereum.HashRaw(payload)
}

// VerifyCensusSignature checks a census publication attestation against the
// expected registrar address.
func VerifyCensusSignature(data *types.CensusData, address string) bool {
	if data == nil || len(data.Signature) == 0 {
		return false
	}
	recovered, err := ethereum.AddrFromSignature(censusDigest(data), data.Signature)
	if err != nil {
		return false
	}
	return recovered.String() == address
}
