package credential_test

import (
	"encoding/json"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/anoncred/circuits"
	"github.com/vocdoni/anoncred/circuits/credential"
	"github.com/vocdoni/anoncred/types"
	"github.com/vocdoni/anoncred/util"
)

// foreignCircomProof is a real snarkjs groth16 proof taken from another
// circuit. It parses and converts cleanly but must never verify as a
// credential proof.
const foreignCircomProof = `{"pi_a":["21158713212294548026677000563764167209272759671976866712664167798559051202646","6034092600241427382393284530371885277965501508874433381064419215945014132128","1"],"pi_b":[["3266693092133849765080082495146214118776772951994743649670105567788500990913","11438329347684113431829025805514334037171052060709551105891698682784042838602"],["15407735792470062236368054442309427192794290489751614407182885978595493069014","19275403188498582245192654060074828094221466750742514931847112746396601405846"],["1","0"]],"pi_c":["2509932769569282676285537767124587450934534958560941562700329085891096418979","12539123792181279555744538589401927950609420421690526254651926376926051596539","1"],"protocol":"groth16","curve":"bn128"}`

// placeholderCircomVKey is a structurally valid snarkjs verification key for
// four public signals, built over the bn128 generator points. It exercises
// the key parsing and conversion path, no proof can verify against it.
const placeholderCircomVKey = `{"protocol":"groth16","curve":"bn128","nPublic":4,` +
	`"vk_alpha_1":["1","2","1"],` +
	`"vk_beta_2":[["10857046999023057135944570762232829481370756359578518086990519993285655852781","11559732032986387107991004021392285783925812861821192530917403151452391805634"],["8495653923123431417604973247489272438418190587263600148770280649306958101930","4082367875863433681332203403145435568316851327593401208105741076214120093531"],["1","0"]],` +
	`"vk_gamma_2":[["10857046999023057135944570762232829481370756359578518086990519993285655852781","11559732032986387107991004021392285783925812861821192530917403151452391805634"],["8495653923123431417604973247489272438418190587263600148770280649306958101930","4082367875863433681332203403145435568316851327593401208105741076214120093531"],["1","0"]],` +
	`"vk_delta_2":[["10857046999023057135944570762232829481370756359578518086990519993285655852781","11559732032986387107991004021392285783925812861821192530917403151452391805634"],["8495653923123431417604973247489272438418190587263600148770280649306958101930","4082367875863433681332203403145435568316851327593401208105741076214120093531"],["1","0"]],` +
	`"IC":[["1","2","1"],["1","2","1"],["1","2","1"],["1","2","1"],["1","2","1"]]}`

func TestBuildCircomInputs(t *testing.T) {
	c := qt.New(t)
	cns, participants := testCensus(t, 4)
	p := participants[0]
	proof := proofFor(t, cns, p)

	raw, err := credential.BuildCircomInputs(p.VoterID, p.Secret, proof)
	c.Assert(err, qt.IsNil)

	inputs := credential.CircomInputs{}
	c.Assert(json.Unmarshal(raw, &inputs), qt.IsNil)
	c.Assert(inputs.VoterKey, qt.Equals, util.TextToField(p.VoterID).String())
	c.Assert(inputs.Secret, qt.Equals, util.TextToField(p.Secret).String())
	c.Assert(inputs.CensusRoot, qt.Equals, cns.Root().String())
	c.Assert(inputs.PathElements, qt.HasLen, testDepth)
	c.Assert(inputs.PathIndices, qt.HasLen, testDepth)
	for i := range proof.Siblings {
		c.Assert(inputs.PathElements[i], qt.Equals, proof.Siblings[i].BigInt().String())
		c.Assert(inputs.PathIndices[i], qt.Equals, fmt.Sprintf("%d", proof.Directions[i]))
	}

	// an inconsistent path is rejected before the witness calculator runs
	tampered := *proof
	tampered.Leaf = types.HexBytes{0x01}
	_, err = credential.BuildCircomInputs(p.VoterID, p.Secret, &tampered)
	c.Assert(err, qt.IsNotNil)
}

func TestCircomProofConversion(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	pubSignals := `["1","2","3","4"]`
	proofData, signals, err := circuits.Circom2GnarkProof(foreignCircomProof, pubSignals)
	c.Assert(err, qt.IsNil)
	c.Assert(proofData, qt.IsNotNil)
	c.Assert(signals, qt.HasLen, circuits.CredentialNPubInputs)

	_, _, err = circuits.Circom2GnarkProof(`{"pi_a":"nope"}`, pubSignals)
	c.Assert(err, qt.IsNotNil)
	_, _, err = circuits.Circom2GnarkProof(foreignCircomProof, `not json`)
	c.Assert(err, qt.IsNotNil)
}

func TestVerifyCircomRejections(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	// a proof from another circuit never verifies, whichever conversion or
	// pairing stage reports it
	err := credential.VerifyCircom([]byte(placeholderCircomVKey), foreignCircomProof, `["1","2","3","4"]`)
	c.Assert(err, qt.IsNotNil)

	// malformed key and malformed proof are both errors
	err = credential.VerifyCircom([]byte(`{`), foreignCircomProof, `["1","2","3","4"]`)
	c.Assert(err, qt.IsNotNil)
	err = credential.VerifyCircom([]byte(placeholderCircomVKey), `{`, `["1","2","3","4"]`)
	c.Assert(err, qt.IsNotNil)
}
