// Package registrar turns submitted membership proofs into anonymous
// credentials. It is the single authoritative entry point of the hot path:
// it checks the proof against the published census root, claims the revealed
// nullifier exactly once and issues a signed credential receipt.
//
// Proof verification is stateless and runs concurrently across requests,
// the nullifier claim is the only serialization point.
package registrar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/anoncred/circuits/credential"
	"github.com/vocdoni/anoncred/crypto/ethereum"
	"github.com/vocdoni/anoncred/log"
	"github.com/vocdoni/anoncred/storage"
	"github.com/vocdoni/anoncred/types"
)

var (
	// ErrMalformedRequest is returned when the submission does not match
	// the circuit interface, before any cryptography runs.
	ErrMalformedRequest = errors.New("malformed credential request")
	// ErrStaleRoot is returned when the proof was generated against a root
	// that is not the currently published one. Recoverable: the client
	// refetches the root and regenerates the proof.
	ErrStaleRoot = errors.New("proof bound to a stale or unknown census root")
	// ErrInvalidProof is returned on any cryptographic verification
	// failure. Deliberately opaque about which constraint failed.
	ErrInvalidProof = errors.New("invalid credential proof")
	// ErrNullifierAlreadyUsed is returned when the revealed nullifier has
	// already been claimed, which is how a replay or a double registration
	// surfaces.
	ErrNullifierAlreadyUsed = errors.New("nullifier already used")
)

// Request is a credential submission: the public signals in the canonical
// order plus exactly one proof encoding, either a snarkjs JSON proof from a
// circom prover or a serialized gnark proof.
type Request struct {
	// PubSignals are decimal field elements in the order
	// [nullifier, voterKeyHash, commitment, censusRoot].
	PubSignals []string `json:"publicSignals"`
	// Proof is the snarkjs proof JSON, when the client proved with circom.
	Proof string `json:"proof,omitempty"`
	// ProofData is the gnark serialized proof, when the client proved
	// natively.
	ProofData types.HexBytes `json:"proofData,omitempty"`
}

// Registrar verifies credential proofs and claims nullifiers. Safe for
// concurrent use.
type Registrar struct {
	stg    *storage.Storage
	signer *ethereum.SignKeys
	// gnarkVK verifies native proofs, circomVKey verifies snarkjs proofs.
	// Both are fixed at construction, a verification key swap means a new
	// Registrar.
	gnarkVK   groth16VerifyingKey
	circomVK  []byte
	// raw serialized keys kept for distribution to provers
	gnarkVKRaw []byte
	hasGnark   bool
	hasCircom  bool
}

// New creates a Registrar over the given storage and signer. At least one of
// the verification keys must be provided: gnarkVK (serialized groth16
// verification key) enables native proofs, circomVK (snarkjs JSON) enables
// circom proofs.
func New(stg *storage.Storage, signer *ethereum.SignKeys, gnarkVK, circomVK []byte) (*Registrar, error) {
	if stg == nil {
		return nil, fmt.Errorf("nil storage")
	}
	if signer == nil {
		return nil, fmt.Errorf("nil signer")
	}
	if len(gnarkVK) == 0 && len(circomVK) == 0 {
		return nil, fmt.Errorf("no verification key provided")
	}
	r := &Registrar{stg: stg, signer: signer}
	if len(gnarkVK) != 0 {
		vk, err := credential.VerifyingKeyFromBytes(gnarkVK)
		if err != nil {
			return nil, fmt.Errorf("parse gnark verification key: %w", err)
		}
		r.gnarkVK = vk
		r.gnarkVKRaw = gnarkVK
		r.hasGnark = true
	}
	if len(circomVK) != 0 {
		r.circomVK = circomVK
		r.hasCircom = true
	}
	return r, nil
}

// VerifyAndRegister validates a credential submission end to end: structural
// checks, root freshness, cryptographic verification and the atomic
// nullifier claim. On success it persists the credential record and returns
// the signed credential. Every failure is terminal for the request.
func (r *Registrar) VerifyAndRegister(ctx context.Context, req *Request) (*types.Credential, error) {
	// 1. structural validation before any crypto
	signals, err := r.validate(req)
	if err != nil {
		return nil, err
	}
	// 2. the proof must be bound to the currently published root
	currentRoot, err := r.stg.CurrentRoot()
	if err != nil {
		if errors.Is(err, storage.ErrNoCensusPublished) {
			return nil, ErrStaleRoot
		}
		return nil, fmt.Errorf("load current root: %w", err)
	}
	if signals.CensusRoot.Cmp(currentRoot.BigInt()) != 0 {
		return nil, ErrStaleRoot
	}
	// 3. cryptographic verification, stateless and parallel
	if err := r.verifyProof(req, signals); err != nil {
		return nil, err
	}
	// 4. atomic nullifier claim, the single serialization point: of two
	// concurrent submissions revealing the same nullifier exactly one
	// reaches the credential issuance below
	nullifier := fieldBytes(signals.Nullifier)
	if err := r.stg.ClaimNullifier(nullifier); err != nil {
		if errors.Is(err, storage.ErrNullifierAlreadyClaimed) {
			return nil, ErrNullifierAlreadyUsed
		}
		return nil, fmt.Errorf("claim nullifier: %w", err)
	}
	// 5. issue the credential and persist its record
	cred := &types.Credential{
		Nullifier:    nullifier,
		VoterKeyHash: fieldBytes(signals.VoterKeyHash),
		Commitment:   fieldBytes(signals.Commitment),
		Root:         currentRoot,
		Token:        uuid.New(),
		IssuedAt:     time.Now().UTC(),
	}
	signature, err := r.signCredential(cred)
	if err != nil {
		return nil, fmt.Errorf("sign credential: %w", err)
	}
	cred.Signature = signature
	if err := r.stg.SetCredential(&storage.CredentialRecord{
		Nullifier: cred.Nullifier,
		Token:     cred.Token,
		Root:      cred.Root,
		IssuedAt:  cred.IssuedAt,
		Signature: cred.Signature,
	}); err != nil {
		// the nullifier claim already happened and must not be rolled
		// back, a missing record is recoverable from the registry itself
		log.Warnw("credential record not persisted", "error", err)
	}
	log.Infow("credential issued", "nullifier", cred.Nullifier.String(), "token", cred.Token.String())
	return cred, nil
}

// CredentialStatus reports whether a nullifier has been used and, if a
// credential record exists for it, returns the record.
func (r *Registrar) CredentialStatus(nullifier types.HexBytes) (bool, *storage.CredentialRecord, error) {
	used, err := r.stg.HasNullifier(nullifier)
	if err != nil {
		return false, nil, err
	}
	if !used {
		return false, nil, nil
	}
	record, err := r.stg.Credential(nullifier)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return true, nil, nil
		}
		return true, nil, err
	}
	return true, record, nil
}

// validate performs the structural checks of step 1 and parses the public
// signals.
func (r *Registrar) validate(req *Request) (*credential.PubSignals, error) {
	if req == nil {
		return nil, ErrMalformedRequest
	}
	hasCircomProof := req.Proof != ""
	hasGnarkProof := len(req.ProofData) != 0
	if hasCircomProof == hasGnarkProof {
		return nil, fmt.Errorf("%w: exactly one proof encoding must be provided", ErrMalformedRequest)
	}
	if hasCircomProof && !r.hasCircom {
		return nil, fmt.Errorf("%w: circom proofs not accepted", ErrMalformedRequest)
	}
	if hasGnarkProof && !r.hasGnark {
		return nil, fmt.Errorf("%w: native proofs not accepted", ErrMalformedRequest)
	}
	signals, err := credential.PubSignalsFromStrings(req.PubSignals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return signals, nil
}

// verifyProof runs the cryptographic verification of step 3. Failures
// collapse into ErrInvalidProof without detail.
func (r *Registrar) verifyProof(req *Request, signals *credential.PubSignals) error {
	if len(req.ProofData) != 0 {
		proof, err := credential.ProofFromBytes(req.ProofData)
		if err != nil {
			return ErrInvalidProof
		}
		if err := credential.VerifyProof(proof, signals, r.gnarkVK); err != nil {
			return ErrInvalidProof
		}
		return nil
	}
	pubSignalsJSON, err := signalsJSON(req.PubSignals)
	if err != nil {
		return ErrInvalidProof
	}
	if err := credential.VerifyCircom(r.circomVK, req.Proof, pubSignalsJSON); err != nil {
		return ErrInvalidProof
	}
	return nil
}

// signCredential produces the registrar attestation over the credential
// digest. The signature lets third parties check a receipt against the
// registrar address without talking to the service.
func (r *Registrar) signCredential(cred *types.Credential) (types.HexBytes, error) {
	return r.signer.SignEthereum(credentialDigest(cred))
}

// Signer returns the registrar attestation address.
func (r *Registrar) Signer() string {
	return r.signer.AddressString()
}

// VerificationKeys returns the serialized verification keys accepted by this
// registrar, so provers can fetch them from the service. Either may be nil.
func (r *Registrar) VerificationKeys() (gnarkVK, circomVK []byte) {
	return r.gnarkVKRaw, r.circomVK
}

// AttestCensus signs a census publication with the registrar key, filling the
// Signature and Signer fields. The digest covers the root, the shuffle seed,
// the fingerprint and the publication time.
func (r *Registrar) AttestCensus(data *types.CensusData) error {
	if data == nil {
		return fmt.Errorf("nil census data")
	}
	signature, err := r.signer.SignEthereum(censusDigest(data))
	if err != nil {
		return fmt.Errorf("sign census: %w", err)
	}
	data.Signature = signature
	data.Signer = r.signer.AddressString()
	return nil
}
