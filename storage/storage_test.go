package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/vocdoni/anoncred/census"
	"github.com/vocdoni/anoncred/types"
	"github.com/vocdoni/anoncred/util"
	"go.vocdoni.io/dvote/db/metadb"
)

func newStorage(t *testing.T) *Storage {
	stg, err := New(metadb.NewTest(t))
	qt.Assert(t, err, qt.IsNil)
	return stg
}

func testCensusData(t *testing.T, n, depth int) *types.CensusData {
	participants := make([]census.Participant, n)
	for i := range participants {
		participants[i] = census.Participant{
			VoterID: fmt.Sprintf("voter-%03d", i),
			Secret:  fmt.Sprintf("secret-%03d", i),
		}
	}
	c, err := census.BuildCensus(participants, depth)
	qt.Assert(t, err, qt.IsNil)
	data, err := c.Data()
	qt.Assert(t, err, qt.IsNil)
	data.PublishedAt = time.Now()
	return data
}

func TestPublishAndLoadCensus(t *testing.T) {
	c := qt.New(t)
	stg := newStorage(t)

	_, err := stg.CurrentCensus()
	c.Assert(err, qt.Equals, ErrNoCensusPublished)

	data := testCensusData(t, 6, 3)
	c.Assert(stg.PublishCensus(data), qt.IsNil)

	loaded, err := stg.Census(data.Root)
	c.Assert(err, qt.IsNil)
	c.Assert(loaded.Root.Equal(data.Root), qt.IsTrue)
	c.Assert(loaded.Size, qt.Equals, 6)
	c.Assert(loaded.Depth, qt.Equals, 3)
	c.Assert(loaded.Leaves, qt.HasLen, 6)

	current, err := stg.CurrentCensus()
	c.Assert(err, qt.IsNil)
	c.Assert(current.Root.Equal(data.Root), qt.IsTrue)

	_, err = stg.Census(types.HexBytes{0xde, 0xad})
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestCensusProofServing(t *testing.T) {
	c := qt.New(t)
	stg := newStorage(t)

	data := testCensusData(t, 5, 3)
	c.Assert(stg.PublishCensus(data), qt.IsNil)

	// every stored leaf must be servable and verify against the root
	for _, leaf := range data.Leaves {
		proof, err := stg.CensusProof(data.Root, leaf)
		c.Assert(err, qt.IsNil)
		c.Assert(proof.Leaf.Equal(leaf), qt.IsTrue)
		c.Assert(census.VerifyProof(leaf.BigInt(), proof, data.Root.BigInt()), qt.IsTrue)
	}

	// an unknown leaf key is rejected
	unknown := types.HexBytes(util.RandomBytes(31))
	_, err := stg.CensusProof(data.Root, unknown)
	c.Assert(err, qt.Equals, census.ErrLeafNotFound)
}

func TestRootRotation(t *testing.T) {
	c := qt.New(t)
	stg := newStorage(t)

	first := testCensusData(t, 3, 2)
	c.Assert(stg.PublishCensus(first), qt.IsNil)
	second := testCensusData(t, 4, 3)
	c.Assert(stg.PublishCensus(second), qt.IsNil)

	current, err := stg.CurrentRoot()
	c.Assert(err, qt.IsNil)
	c.Assert(current.Equal(second.Root), qt.IsTrue)

	// the superseded census stays readable for audits
	loaded, err := stg.Census(first.Root)
	c.Assert(err, qt.IsNil)
	c.Assert(loaded.Size, qt.Equals, 3)
}

func TestClaimNullifier(t *testing.T) {
	c := qt.New(t)
	stg := newStorage(t)

	nullifier := types.HexBytes(util.RandomBytes(31))
	has, err := stg.HasNullifier(nullifier)
	c.Assert(err, qt.IsNil)
	c.Assert(has, qt.IsFalse)

	c.Assert(stg.ClaimNullifier(nullifier), qt.IsNil)
	has, err = stg.HasNullifier(nullifier)
	c.Assert(err, qt.IsNil)
	c.Assert(has, qt.IsTrue)

	// a second claim must fail, never overwrite
	c.Assert(stg.ClaimNullifier(nullifier), qt.Equals, ErrNullifierAlreadyClaimed)

	root, err := stg.NullifierRoot()
	c.Assert(err, qt.IsNil)
	c.Assert(root, qt.Not(qt.HasLen), 0)
}

func TestConcurrentClaims(t *testing.T) {
	c := qt.New(t)
	stg := newStorage(t)

	nullifier := types.HexBytes(util.RandomBytes(31))
	const claimants = 16
	var wg sync.WaitGroup
	errs := make([]error, claimants)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = stg.ClaimNullifier(nullifier)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			c.Assert(err, qt.Equals, ErrNullifierAlreadyClaimed)
		}
	}
	c.Assert(winners, qt.Equals, 1)
}

func TestCredentialRecords(t *testing.T) {
	c := qt.New(t)
	stg := newStorage(t)

	record := &CredentialRecord{
		Nullifier: util.RandomBytes(31),
		Token:     uuid.New(),
		Root:      util.RandomBytes(32),
		IssuedAt:  time.Now().UTC().Truncate(time.Second),
		Signature: util.RandomBytes(65),
	}
	c.Assert(stg.SetCredential(record), qt.IsNil)

	loaded, err := stg.Credential(record.Nullifier)
	c.Assert(err, qt.IsNil)
	c.Assert(loaded.Token, qt.Equals, record.Token)
	c.Assert(loaded.Root.Equal(record.Root), qt.IsTrue)
	c.Assert(loaded.IssuedAt.Equal(record.IssuedAt), qt.IsTrue)

	_, err = stg.Credential(types.HexBytes{0x01})
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestCredentialKeyEncodings(t *testing.T) {
	c := qt.New(t)
	stg := newStorage(t)

	// the same nullifier in its short wire form and zero padded to the full
	// field width must resolve to the same record
	short := types.HexBytes{0x0a, 0x0b, 0x0c}
	padded := make(types.HexBytes, types.FieldSize)
	short.BigInt().FillBytes(padded)

	record := &CredentialRecord{
		Nullifier: padded,
		Token:     uuid.New(),
		Root:      util.RandomBytes(32),
		IssuedAt:  time.Now().UTC().Truncate(time.Second),
		Signature: util.RandomBytes(65),
	}
	c.Assert(stg.ClaimNullifier(padded), qt.IsNil)
	c.Assert(stg.SetCredential(record), qt.IsNil)

	has, err := stg.HasNullifier(short)
	c.Assert(err, qt.IsNil)
	c.Assert(has, qt.IsTrue)

	loaded, err := stg.Credential(short)
	c.Assert(err, qt.IsNil)
	c.Assert(loaded.Token, qt.Equals, record.Token)
}
