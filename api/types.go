package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/anoncred/types"
)

// CensusParticipant is a voter enrollment used when the service builds the
// census itself. Never stored, only hashed.
type CensusParticipant struct {
	VoterID string `json:"voterId"`
	Secret  string `json:"secret"`
}

// PublishCensusRequest publishes a census. Either Participants is set and the
// service builds the tree, or Census carries an externally built one.
type PublishCensusRequest struct {
	Participants []CensusParticipant `json:"participants,omitempty"`
	Depth        int                 `json:"depth,omitempty"`
	Census       *types.CensusData   `json:"census,omitempty"`
}

// CensusRoot is the response to a census root request.
type CensusRoot struct {
	Root        types.HexBytes `json:"root"`
	Signer      string         `json:"signer,omitempty"`
	PublishedAt time.Time      `json:"publishedAt,omitempty"`
}

// CensusSize is the response to a census size request.
type CensusSize struct {
	Size int `json:"size"`
}

// CredentialStatus is the response to a nullifier status request. Credential
// is only set when the nullifier has been used and its record survived.
type CredentialStatus struct {
	Used       bool           `json:"used"`
	Nullifier  types.HexBytes `json:"nullifier"`
	Credential *IssuedRecord  `json:"credential,omitempty"`
}

// IssuedRecord is the public view of a stored credential record. It carries
// no voter identifier, only the nullifier and the issuance metadata.
type IssuedRecord struct {
	Token     uuid.UUID      `json:"token"`
	Root      types.HexBytes `json:"root"`
	IssuedAt  time.Time      `json:"issuedAt"`
	Signature types.HexBytes `json:"signature"`
}

// RegistrarKey is the response with the registrar attestation address and the
// verification keys accepted for credential proofs, each with its sha256.
type RegistrarKey struct {
	Address        string          `json:"address"`
	GnarkVKey      types.HexBytes  `json:"gnarkVKey,omitempty"`
	GnarkVKeyHash  types.HexBytes  `json:"gnarkVKeyHash,omitempty"`
	CircomVKey     json.RawMessage `json:"circomVKey,omitempty"`
	CircomVKeyHash types.HexBytes  `json:"circomVKeyHash,omitempty"`
}
