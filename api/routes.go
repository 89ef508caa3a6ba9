package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// CensusesEndpoint is the endpoint for publishing a census (POST) and
	// retrieving the currently published one (GET)
	CensusesEndpoint = "/censuses"
	// CensusRootEndpoint is the endpoint to get the currently accepted
	// census root
	CensusRootEndpoint = "/censuses/root"
	// CensusProofEndpoint is the endpoint to get a membership proof, it
	// takes the census root and the leaf key as query parameters
	CensusProofEndpoint = "/censuses/proof"
	// CensusSizeEndpoint is the endpoint to get the number of voters in a
	// published census
	CensusSizeEndpoint = "/censuses/size"
	// CredentialsEndpoint is the endpoint for submitting a credential proof
	CredentialsEndpoint = "/credentials"
	// CredentialEndpoint is the endpoint to check a nullifier status
	NullifierURLParam  = "nullifier"
	CredentialEndpoint = "/credentials/{" + NullifierURLParam + "}"
	// RegistrarKeyEndpoint is the endpoint to get the registrar attestation
	// address
	RegistrarKeyEndpoint = "/credentials/key"
)
