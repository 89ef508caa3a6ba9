package api

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/anoncred/registrar"
)

// newCredential verifies a credential proof and, if the nullifier is fresh,
// issues the signed credential
// POST /credentials
func (a *API) newCredential(w http.ResponseWriter, r *http.Request) {
	req := &registrar.Request{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	cred, err := a.registrar.VerifyAndRegister(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, registrar.ErrMalformedRequest):
			ErrMalformedBody.WithErr(err).Write(w)
		case errors.Is(err, registrar.ErrStaleRoot):
			ErrStaleCensusRoot.Write(w)
		case errors.Is(err, registrar.ErrInvalidProof):
			ErrInvalidProof.Write(w)
		case errors.Is(err, registrar.ErrNullifierAlreadyUsed):
			ErrNullifierAlreadyUsed.Write(w)
		default:
			ErrGenericInternalServerError.WithErr(err).Write(w)
		}
		return
	}
	httpWriteJSON(w, cred)
}

// credentialStatus reports whether a nullifier has been used and returns the
// issuance record when one exists
// GET /credentials/{nullifier}
func (a *API) credentialStatus(w http.ResponseWriter, r *http.Request) {
	nullifier, err := parseHexParam(chi.URLParam(r, NullifierURLParam))
	if err != nil {
		ErrMalformedNullifier.WithErr(err).Write(w)
		return
	}
	used, record, err := a.registrar.CredentialStatus(nullifier)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	status := &CredentialStatus{Used: used, Nullifier: nullifier}
	if record != nil {
		status.Credential = &IssuedRecord{
			Token:     record.Token,
			Root:      record.Root,
			IssuedAt:  record.IssuedAt,
			Signature: record.Signature,
		}
	}
	httpWriteJSON(w, status)
}

// registrarKey returns the registrar attestation address and the proof
// verification keys, so provers can fetch and pin them
// GET /credentials/key
func (a *API) registrarKey(w http.ResponseWriter, r *http.Request) {
	resp := &RegistrarKey{Address: a.registrar.Signer()}
	gnarkVK, circomVK := a.registrar.VerificationKeys()
	if len(gnarkVK) > 0 {
		hash := sha256.Sum256(gnarkVK)
		resp.GnarkVKey = gnarkVK
		resp.GnarkVKeyHash = hash[:]
	}
	if len(circomVK) > 0 {
		hash := sha256.Sum256(circomVK)
		resp.CircomVKey = json.RawMessage(circomVK)
		resp.CircomVKeyHash = hash[:]
	}
	httpWriteJSON(w, resp)
}
