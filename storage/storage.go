// storage package persists the durable state of the credential service over
// a prefixed key-value store. Three key spaces exist:
//   - 'c/' for published censuses (and the current-root pointer)
//   - 'n/' for the nullifier registry, an arbo merkle tree whose
//     insert-if-absent semantics provide the atomic nullifier claim
//   - 'r/' for issued credential records, keyed by nullifier
//
// No key space holds voter identifiers or secrets: the census stores only
// derived leaf hashes, and credential records link to nothing but their
// nullifier.
package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vocdoni/anoncred/census"
	"github.com/vocdoni/anoncred/types"
	"github.com/vocdoni/arbo"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	censusPrefix     = []byte("c/")
	nullifierPrefix  = []byte("n/")
	credentialPrefix = []byte("r/")

	// currentRootKey points at the root of the census the verification path
	// currently accepts, inside the census prefix.
	currentRootKey = []byte("current")
)

var (
	// ErrNotFound is returned when the requested artifact does not exist.
	ErrNotFound = errors.New("artifact not found")
	// ErrNullifierAlreadyClaimed is returned by ClaimNullifier when the
	// nullifier is already part of the registry.
	ErrNullifierAlreadyClaimed = errors.New("nullifier already claimed")
	// ErrNoCensusPublished is returned when no census has been published yet.
	ErrNoCensusPublished = errors.New("no census published")
)

// Storage wraps the database with the census, nullifier and credential
// operations of the credential service.
type Storage struct {
	db db.Database

	// nullifierLock serializes writes to the nullifier tree so that of two
	// concurrent claims of the same nullifier exactly one wins.
	nullifierLock sync.Mutex
	nullifiers    *arbo.Tree

	// censusMu guards the cache of rebuilt census trees.
	censusMu sync.RWMutex
	censuses map[string]*censusRef
}

// censusRef caches a published census rebuilt from its stored leaves, so
// proof requests do not rebuild the tree on every call.
type censusRef struct {
	data  *types.CensusData
	tree  *census.Tree
	index map[string]int
}

// New creates a Storage instance over the given database, opening (or
// creating) the nullifier registry tree.
func New(database db.Database) (*Storage, error) {
	nullifiers, err := arbo.NewTree(arbo.Config{
		Database:     prefixeddb.NewPrefixedDatabase(database, nullifierPrefix),
		MaxLevels:    types.NullifierTreeMaxLevels,
		HashFunction: arbo.HashFunctionPoseidon,
	})
	if err != nil {
		return nil, fmt.Errorf("open nullifier tree: %w", err)
	}
	return &Storage{
		db:         database,
		nullifiers: nullifiers,
		censuses:   make(map[string]*censusRef),
	}, nil
}

// Close closes the underlying database.
func (s *Storage) Close() {
	s.db.Close()
}
