package config

const (
	// Credential circuit artifacts compiled with gnark. The constraint
	// system and keys are depth 15, matching circuits.DefaultCensusDepth.
	CredentialCircuitURL          = "https://circuits.ams3.cdn.digitaloceanspaces.com/anoncred/dev/credential.ccs"
	CredentialCircuitHash         = "5f6f14dc62d910a8b9bb2813a7036657ac05815d41d22dde85aae920c8c19505"
	CredentialProvingKeyURL       = "https://circuits.ams3.cdn.digitaloceanspaces.com/anoncred/dev/credential.pk"
	CredentialProvingKeyHash      = "0ab2d3349e20ecca4a964210e571a6a6744aa5eeb1d160b05a833a7d0daad95d"
	CredentialVerificationKeyURL  = "https://circuits.ams3.cdn.digitaloceanspaces.com/anoncred/dev/credential.vk"
	CredentialVerificationKeyHash = "226d912264357042966a32dbd73415edaf3253f9b0dbff3247731f9c6be185d6"
	// Circom build of the same credential circuit, for clients proving with
	// snarkjs. The wasm is the witness calculator, the zkey the proving key
	// and the verification key is the snarkjs JSON format.
	CredentialCircomCircuitURL          = "https://circuits.ams3.cdn.digitaloceanspaces.com/anoncred/dev/credential.wasm"
	CredentialCircomCircuitHash         = "1dd264d8abd1932ebdc495eca6ebe2ac4a1fac980b8573d2f3173dc4ebe63a31"
	CredentialCircomProvingKeyURL       = "https://circuits.ams3.cdn.digitaloceanspaces.com/anoncred/dev/credential_pkey.zkey"
	CredentialCircomProvingKeyHash      = "2b5fcfa9025c5def2f710d02f2bac5a8ea8e11d2328161a0da2c8d1225409393"
	CredentialCircomVerificationKeyURL  = "https://circuits.ams3.cdn.digitaloceanspaces.com/anoncred/dev/credential_vkey.json"
	CredentialCircomVerificationKeyHash = "c022c37cda1d398e7e436d8f3ee890240cf00920b4e88bc7945b9e30b72bb710"
)
