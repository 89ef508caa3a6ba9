package storage

import (
	"fmt"

	"github.com/vocdoni/anoncred/types"
)

// SetCredential stores the record of an issued credential, keyed by the
// fixed width form of its nullifier so lookups are independent of the wire
// encoding.
func (s *Storage) SetCredential(record *CredentialRecord) error {
	if record == nil {
		return fmt.Errorf("nil credential record")
	}
	key, err := nullifierKey(record.Nullifier)
	if err != nil {
		return fmt.Errorf("credential record: %w", err)
	}
	return s.setArtifact(credentialPrefix, key, record)
}

// Credential loads the credential record issued for the given nullifier.
// Returns ErrNotFound if no credential was issued for it.
func (s *Storage) Credential(nullifier types.HexBytes) (*CredentialRecord, error) {
	key, err := nullifierKey(nullifier)
	if err != nil {
		return nil, err
	}
	record := &CredentialRecord{}
	if err := s.getArtifact(credentialPrefix, key, record); err != nil {
		return nil, err
	}
	return record, nil
}
