package credential

import (
	"github.com/vocdoni/anoncred/circuits"
	"github.com/vocdoni/anoncred/config"
	"github.com/vocdoni/anoncred/types"
)

// Artifacts contains the gnark build of the credential circuit: the compiled
// constraint system, the proving key and the verification key. The registrar
// only needs the verification key, provers need all three.
var Artifacts = circuits.NewCircuitArtifacts(
	&circuits.Artifact{
		RemoteURL: config.CredentialCircuitURL,
		Hash:      types.HexStringToHexBytes(config.CredentialCircuitHash),
	},
	&circuits.Artifact{
		RemoteURL: config.CredentialProvingKeyURL,
		Hash:      types.HexStringToHexBytes(config.CredentialProvingKeyHash),
	},
	&circuits.Artifact{
		RemoteURL: config.CredentialVerificationKeyURL,
		Hash:      types.HexStringToHexBytes(config.CredentialVerificationKeyHash),
	})

// CircomArtifacts contains the circom build of the same circuit: the witness
// calculator wasm, the proving zkey and the snarkjs verification key JSON.
// Clients proving with snarkjs use the first two, the registrar uses the
// verification key to check snarkjs proofs.
var CircomArtifacts = circuits.NewCircuitArtifacts(
	&circuits.Artifact{
		RemoteURL: config.CredentialCircomCircuitURL,
		Hash:      types.HexStringToHexBytes(config.CredentialCircomCircuitHash),
	},
	&circuits.Artifact{
		RemoteURL: config.CredentialCircomProvingKeyURL,
		Hash:      types.HexStringToHexBytes(config.CredentialCircomProvingKeyHash),
	},
	&circuits.Artifact{
		RemoteURL: config.CredentialCircomVerificationKeyURL,
		Hash:      types.HexStringToHexBytes(config.CredentialCircomVerificationKeyHash),
	})
