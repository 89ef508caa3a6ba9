package storage

import (
	"errors"
	"fmt"

	"github.com/vocdoni/anoncred/types"
	"github.com/vocdoni/arbo"
)

// ClaimNullifier appends a nullifier to the registry. The registry is an
// append-only set: if the nullifier is already present the claim fails with
// ErrNullifierAlreadyClaimed and nothing is modified. The write lock makes
// the check-and-insert atomic, so concurrent identical claims resolve to
// exactly one winner.
func (s *Storage) ClaimNullifier(nullifier types.HexBytes) error {
	key, err := nullifierKey(nullifier)
	if err != nil {
		return err
	}
	s.nullifierLock.Lock()
	defer s.nullifierLock.Unlock()
	if err := s.nullifiers.Add(key, []byte{1}); err != nil {
		if errors.Is(err, arbo.ErrKeyAlreadyExists) {
			return ErrNullifierAlreadyClaimed
		}
		return fmt.Errorf("claim nullifier: %w", err)
	}
	return nil
}

// HasNullifier reports whether a nullifier is already part of the registry.
func (s *Storage) HasNullifier(nullifier types.HexBytes) (bool, error) {
	key, err := nullifierKey(nullifier)
	if err != nil {
		return false, err
	}
	s.nullifierLock.Lock()
	defer s.nullifierLock.Unlock()
	_, _, err = s.nullifiers.Get(key)
	if err != nil {
		if errors.Is(err, arbo.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NullifierRoot returns the merkle root of the nullifier registry, an
// auditable commitment to the full set of claimed nullifiers.
func (s *Storage) NullifierRoot() (types.HexBytes, error) {
	s.nullifierLock.Lock()
	defer s.nullifierLock.Unlock()
	root, err := s.nullifiers.Root()
	if err != nil {
		return nil, fmt.Errorf("nullifier registry root: %w", err)
	}
	return root, nil
}

// nullifierKey validates a wire nullifier and returns its fixed width tree
// key.
func nullifierKey(nullifier types.HexBytes) ([]byte, error) {
	if len(nullifier) == 0 {
		return nil, fmt.Errorf("empty nullifier")
	}
	if len(nullifier) > types.FieldSize {
		return nil, fmt.Errorf("nullifier exceeds %d bytes", types.FieldSize)
	}
	key := make([]byte, types.FieldSize)
	nullifier.BigInt().FillBytes(key)
	return key, nil
}
