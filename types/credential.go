package types

import (
	"time"

	"github.com/google/uuid"
)

// Credential is the anonymous credential issued after a successful proof
// verification. It carries the circuit's public outputs, the census root the
// proof was verified against, a fresh random token and the registrar's
// attestation signature. It contains no voter-identifying data.
type Credential struct {
	Nullifier    HexBytes  `json:"nullifier"`
	VoterKeyHash HexBytes  `json:"voterKeyHash"`
	Commitment   HexBytes  `json:"commitment"`
	Root         HexBytes  `json:"root"`
	Token        uuid.UUID `json:"token"`
	IssuedAt     time.Time `json:"issuedAt"`
	Signature    HexBytes  `json:"signature,omitempty"`
}
