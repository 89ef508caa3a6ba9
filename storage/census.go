package storage

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/vocdoni/anoncred/census"
	"github.com/vocdoni/anoncred/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// PublishCensus stores a published census keyed by its root and points the
// current-root pointer at it. Publishing is single writer by contract (the
// census builder runs offline), the new root supersedes the previous one
// atomically from the point of view of readers.
func (s *Storage) PublishCensus(data *types.CensusData) error {
	if data == nil {
		return fmt.Errorf("nil census data")
	}
	if len(data.Root) == 0 {
		return fmt.Errorf("census data has no root")
	}
	val, err := encodeArtifact(data)
	if err != nil {
		return err
	}
	// store the census and flip the pointer in a single transaction, a
	// half published census must never become visible
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), censusPrefix)
	if err := wTx.Set(data.Root, val); err != nil {
		wTx.Discard()
		return err
	}
	if err := wTx.Set(currentRootKey, data.Root); err != nil {
		wTx.Discard()
		return err
	}
	if err := wTx.Commit(); err != nil {
		return err
	}
	// drop any cached ref for this root, the stored data is authoritative
	s.censusMu.Lock()
	delete(s.censuses, data.Root.String())
	s.censusMu.Unlock()
	return nil
}

// Census loads a published census by root. Returns ErrNotFound for unknown
// roots.
func (s *Storage) Census(root types.HexBytes) (*types.CensusData, error) {
	data := &types.CensusData{}
	if err := s.getArtifact(censusPrefix, root, data); err != nil {
		return nil, err
	}
	return data, nil
}

// CurrentRoot returns the root of the currently accepted census. Returns
// ErrNoCensusPublished when nothing has been published yet.
func (s *Storage) CurrentRoot() (types.HexBytes, error) {
	rTx := prefixeddb.NewPrefixedReader(s.db, censusPrefix)
	root, err := rTx.Get(currentRootKey)
	if err != nil {
		if err == db.ErrKeyNotFound {
			return nil, ErrNoCensusPublished
		}
		return nil, err
	}
	return root, nil
}

// CurrentCensus loads the currently accepted census.
func (s *Storage) CurrentCensus() (*types.CensusData, error) {
	root, err := s.CurrentRoot()
	if err != nil {
		return nil, err
	}
	return s.Census(root)
}

// CensusProof generates the authentication path for the given leaf key (a
// voter key hash) in the census published under root. Returns ErrNotFound
// for unknown roots and census.ErrLeafNotFound for keys outside the census.
func (s *Storage) CensusProof(root, leafKey types.HexBytes) (*types.CensusProof, error) {
	ref, err := s.censusRef(root)
	if err != nil {
		return nil, err
	}
	index, ok := ref.index[leafKey.BigInt().String()]
	if !ok {
		return nil, census.ErrLeafNotFound
	}
	return ref.tree.GenProof(index)
}

// CensusSize returns the number of registered voters in the census published
// under root.
func (s *Storage) CensusSize(root types.HexBytes) (int, error) {
	data, err := s.Census(root)
	if err != nil {
		return 0, err
	}
	return data.Size, nil
}

// censusRef returns the cached rebuilt tree for a published census, building
// and caching it on first use.
func (s *Storage) censusRef(root types.HexBytes) (*censusRef, error) {
	key := root.String()
	s.censusMu.RLock()
	ref, ok := s.censuses[key]
	s.censusMu.RUnlock()
	if ok {
		return ref, nil
	}

	data, err := s.Census(root)
	if err != nil {
		return nil, err
	}
	leaves := make([]*big.Int, len(data.Leaves))
	index := make(map[string]int, len(data.Leaves))
	for i, leaf := range data.Leaves {
		leaves[i] = leaf.BigInt()
		index[leaves[i].String()] = i
	}
	tree, err := census.NewTree(data.Depth, leaves)
	if err != nil {
		return nil, fmt.Errorf("rebuild census tree: %w", err)
	}
	// the rebuilt root must match the stored one, otherwise the stored
	// leaves have been corrupted
	rebuiltRoot := tree.Root()
	if rebuiltRoot.Cmp(root.BigInt()) != 0 {
		return nil, errors.New("stored census leaves do not match the census root")
	}

	ref = &censusRef{data: data, tree: tree, index: index}
	s.censusMu.Lock()
	s.censuses[key] = ref
	s.censusMu.Unlock()
	return ref, nil
}
