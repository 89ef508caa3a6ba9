package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vocdoni/anoncred/api"
	"github.com/vocdoni/anoncred/registrar"
	"github.com/vocdoni/anoncred/types"
)

// PublishCensus uploads a built census and makes its root the accepted one.
// Returns the attested census data as published.
func (c *HTTPclient) PublishCensus(data *types.CensusData) (*types.CensusData, error) {
	return c.publishCensus(&api.PublishCensusRequest{Census: data})
}

// BuildCensus has the service build and publish a census from the given
// participants.
func (c *HTTPclient) BuildCensus(participants []api.CensusParticipant, depth int) (*types.CensusData, error) {
	return c.publishCensus(&api.PublishCensusRequest{Participants: participants, Depth: depth})
}

func (c *HTTPclient) publishCensus(req *api.PublishCensusRequest) (*types.CensusData, error) {
	body, status, err := c.Request(HTTPPOST, req, nil, api.CensusesEndpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, body)
	}
	published := &types.CensusData{}
	if err := json.Unmarshal(body, published); err != nil {
		return nil, err
	}
	return published, nil
}

// Census fetches the published census for the given root.
func (c *HTTPclient) Census(root types.HexBytes) (*types.CensusData, error) {
	body, status, err := c.Request(HTTPGET, nil,
		[]string{"root", root.String()}, api.CensusesEndpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, body)
	}
	data := &types.CensusData{}
	if err := json.Unmarshal(body, data); err != nil {
		return nil, err
	}
	return data, nil
}

// CensusRoot fetches the currently accepted census root.
func (c *HTTPclient) CensusRoot() (types.HexBytes, error) {
	body, status, err := c.Request(HTTPGET, nil, nil, api.CensusRootEndpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, body)
	}
	resp := &api.CensusRoot{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, err
	}
	return resp.Root, nil
}

// CensusProof fetches the membership proof for a voter key hash in the census
// published under root.
func (c *HTTPclient) CensusProof(root, key types.HexBytes) (*types.CensusProof, error) {
	body, status, err := c.Request(HTTPGET, nil,
		[]string{"root", root.String(), "key", key.String()}, api.CensusProofEndpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, body)
	}
	proof := &types.CensusProof{}
	if err := json.Unmarshal(body, proof); err != nil {
		return nil, err
	}
	return proof, nil
}

// RegisterCredential submits a credential proof and returns the issued
// credential.
func (c *HTTPclient) RegisterCredential(req *registrar.Request) (*types.Credential, int, error) {
	body, status, err := c.Request(HTTPPOST, req, nil, api.CredentialsEndpoint)
	if err != nil {
		return nil, status, err
	}
	if status != http.StatusOK {
		return nil, status, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, body)
	}
	cred := &types.Credential{}
	if err := json.Unmarshal(body, cred); err != nil {
		return nil, status, err
	}
	return cred, status, nil
}

// CredentialStatus checks whether a nullifier has been used.
func (c *HTTPclient) CredentialStatus(nullifier types.HexBytes) (*api.CredentialStatus, error) {
	body, status, err := c.Request(HTTPGET, nil, nil, api.CredentialsEndpoint, nullifier.String())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, body)
	}
	resp := &api.CredentialStatus{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
