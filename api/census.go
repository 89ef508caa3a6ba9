package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vocdoni/anoncred/census"
	"github.com/vocdoni/anoncred/storage"
	"github.com/vocdoni/anoncred/types"
)

// publishCensus publishes a census and makes its root the currently accepted
// one. The request either carries the participants for the service to build
// the tree, or an externally built census. The publication is attested with
// the registrar key.
// POST /censuses
func (a *API) publishCensus(w http.ResponseWriter, r *http.Request) {
	req := &PublishCensusRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	var data *types.CensusData
	switch {
	case len(req.Participants) > 0:
		depth := req.Depth
		if depth == 0 {
			depth = types.DefaultCensusDepth
		}
		if depth < 0 || depth > types.MaxCensusDepth {
			ErrMalformedBody.Withf("census depth out of range: %d", depth).Write(w)
			return
		}
		participants := make([]census.Participant, len(req.Participants))
		for i, p := range req.Participants {
			participants[i] = census.Participant{VoterID: p.VoterID, Secret: p.Secret}
		}
		cns, err := census.BuildCensus(participants, depth)
		if err != nil {
			if errors.Is(err, census.ErrCensusOverflow) {
				ErrMalformedBody.WithErr(err).Write(w)
				return
			}
			ErrGenericInternalServerError.WithErr(err).Write(w)
			return
		}
		if data, err = cns.Data(); err != nil {
			ErrGenericInternalServerError.WithErr(err).Write(w)
			return
		}
	case req.Census != nil:
		data = req.Census
		if len(data.Root) == 0 || len(data.Leaves) == 0 {
			ErrMalformedBody.WithErr(fmt.Errorf("census root and leaves are required")).Write(w)
			return
		}
		if data.Depth <= 0 || data.Depth > types.MaxCensusDepth {
			ErrMalformedBody.Withf("census depth out of range: %d", data.Depth).Write(w)
			return
		}
		if data.Size == 0 {
			data.Size = len(data.Leaves)
		}
		// an externally built census only gets the attestation if its root
		// actually commits to the leaves it ships with
		if err := census.ValidateData(data); err != nil {
			ErrMalformedBody.WithErr(err).Write(w)
			return
		}
	default:
		ErrMalformedBody.WithErr(fmt.Errorf("either participants or a built census is required")).Write(w)
		return
	}
	if data.PublishedAt.IsZero() {
		data.PublishedAt = time.Now().UTC()
	}
	if err := a.registrar.AttestCensus(data); err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	if err := a.storage.PublishCensus(data); err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, data)
}

// censusData returns the currently published census, or the one for the root
// given as query parameter
// GET /censuses
func (a *API) censusData(w http.ResponseWriter, r *http.Request) {
	var data *types.CensusData
	var err error
	if rootHex := r.URL.Query().Get("root"); rootHex != "" {
		var root types.HexBytes
		root, err = parseHexParam(rootHex)
		if err != nil {
			ErrMalformedCensusRoot.WithErr(err).Write(w)
			return
		}
		data, err = a.storage.Census(root)
	} else {
		data, err = a.storage.CurrentCensus()
	}
	if err != nil {
		writeCensusError(w, err)
		return
	}
	httpWriteJSON(w, data)
}

// censusRoot returns the currently accepted census root with its publication
// metadata
// GET /censuses/root
func (a *API) censusRoot(w http.ResponseWriter, r *http.Request) {
	data, err := a.storage.CurrentCensus()
	if err != nil {
		writeCensusError(w, err)
		return
	}
	httpWriteJSON(w, &CensusRoot{
		Root:        data.Root,
		Signer:      data.Signer,
		PublishedAt: data.PublishedAt,
	})
}

// censusProof returns the membership proof for a voter key hash in the census
// published under the given root
// GET /censuses/proof?root=<hex>&key=<hex>
func (a *API) censusProof(w http.ResponseWriter, r *http.Request) {
	root, err := parseHexParam(r.URL.Query().Get("root"))
	if err != nil {
		ErrMalformedCensusRoot.WithErr(err).Write(w)
		return
	}
	key, err := parseHexParam(r.URL.Query().Get("key"))
	if err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	proof, err := a.storage.CensusProof(root, key)
	if err != nil {
		writeCensusError(w, err)
		return
	}
	httpWriteJSON(w, proof)
}

// censusSize returns the number of voters in the census published under the
// given root, defaulting to the current one
// GET /censuses/size?root=<hex>
func (a *API) censusSize(w http.ResponseWriter, r *http.Request) {
	var root types.HexBytes
	var err error
	if rootHex := r.URL.Query().Get("root"); rootHex != "" {
		root, err = parseHexParam(rootHex)
		if err != nil {
			ErrMalformedCensusRoot.WithErr(err).Write(w)
			return
		}
	} else if root, err = a.storage.CurrentRoot(); err != nil {
		writeCensusError(w, err)
		return
	}
	size, err := a.storage.CensusSize(root)
	if err != nil {
		writeCensusError(w, err)
		return
	}
	httpWriteJSON(w, &CensusSize{Size: size})
}

// writeCensusError maps storage and census lookup errors to API errors.
func writeCensusError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNoCensusPublished):
		ErrNoCensusPublished.Write(w)
	case errors.Is(err, storage.ErrNotFound):
		ErrCensusNotFound.Write(w)
	case errors.Is(err, census.ErrLeafNotFound):
		ErrKeyNotInCensus.Write(w)
	default:
		ErrGenericInternalServerError.WithErr(err).Write(w)
	}
}
