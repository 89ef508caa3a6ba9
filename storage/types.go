package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/anoncred/types"
)

// CredentialRecord is the durable trace of an issued credential, keyed by
// nullifier. It deliberately carries no voter identifying field: the only
// link it holds is to the census root the proof was verified against.
type CredentialRecord struct {
	Nullifier types.HexBytes `json:"nullifier"`
	Token     uuid.UUID      `json:"token"`
	Root      types.HexBytes `json:"root"`
	IssuedAt  time.Time      `json:"issuedAt"`
	Signature types.HexBytes `json:"signature"`
}
