// Command anoncred-demo runs the full credential flow against a local
// in-process service: it builds a census, publishes it, proves membership for
// one of the voters and registers the credential, then shows the replay being
// rejected.
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/vocdoni/anoncred/api/client"
	"github.com/vocdoni/anoncred/census"
	"github.com/vocdoni/anoncred/circuits/credential"
	"github.com/vocdoni/anoncred/crypto/ethereum"
	"github.com/vocdoni/anoncred/log"
	"github.com/vocdoni/anoncred/registrar"
	"github.com/vocdoni/anoncred/service"
	"github.com/vocdoni/anoncred/storage"
	"github.com/vocdoni/anoncred/types"
	"go.vocdoni.io/dvote/db/metadb"
)

func main() {
	depth := flag.Int("depth", 4, "census tree depth")
	nVoters := flag.Int("voters", 10, "number of voters in the census")
	port := flag.Int("port", 9091, "API port")
	flag.Parse()
	log.Init("debug", "stdout", nil)

	start := time.Now()
	ccs, err := credential.Compile(*depth)
	if err != nil {
		log.Fatalf("compile circuit: %v", err)
	}
	pk, vk, err := credential.Setup(ccs)
	if err != nil {
		log.Fatalf("setup circuit: %v", err)
	}
	log.Infow("circuit ready", "depth", *depth, "took", time.Since(start).String())

	// build the census offline
	participants := make([]census.Participant, *nVoters)
	for i := range participants {
		participants[i] = census.Participant{
			VoterID: fmt.Sprintf("voter-%d", i),
			Secret:  fmt.Sprintf("secret-%d", i),
		}
	}
	cns, err := census.BuildCensus(participants, *depth)
	if err != nil {
		log.Fatalf("build census: %v", err)
	}
	log.Infow("census built", "root", cns.Root().String(), "size", cns.Size())

	// start the service
	database, err := metadb.New("pebble", fmt.Sprintf("%s/anoncred-demo", "/tmp"))
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	stg, err := storage.New(database)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	signer := ethereum.NewSignKeys()
	if err := signer.Generate(); err != nil {
		log.Fatalf("generate signer: %v", err)
	}
	vkBytes, err := credential.VerifyingKeyToBytes(vk)
	if err != nil {
		log.Fatalf("serialize verification key: %v", err)
	}
	reg, err := registrar.New(stg, signer, vkBytes, nil)
	if err != nil {
		log.Fatalf("create registrar: %v", err)
	}
	apiService := service.NewAPI(stg, reg, "127.0.0.1", *port)
	if err := apiService.Start(context.Background()); err != nil {
		log.Fatalf("start API: %v", err)
	}
	defer apiService.Stop()
	time.Sleep(time.Second)

	cli, err := client.New(fmt.Sprintf("http://127.0.0.1:%d", *port))
	if err != nil {
		log.Fatalf("create client: %v", err)
	}

	// publish the census
	data, err := cns.Data()
	if err != nil {
		log.Fatalf("export census: %v", err)
	}
	data.PublishedAt = time.Now()
	published, err := cli.PublishCensus(data)
	if err != nil {
		log.Fatalf("publish census: %v", err)
	}
	root := published.Root
	log.Infow("census published", "root", root.String(), "signer", published.Signer)

	// prove membership for the first voter
	voter := participants[0]
	signals, err := credential.DerivePubSignals(voter.VoterID, voter.Secret, cns.Root())
	if err != nil {
		log.Fatalf("derive signals: %v", err)
	}
	var keyBuf [types.FieldSize]byte
	signals.VoterKeyHash.FillBytes(keyBuf[:])
	proof, err := cli.CensusProof(root, keyBuf[:])
	if err != nil {
		log.Fatalf("fetch census proof: %v", err)
	}
	assignment, err := credential.NewAssignment(voter.VoterID, voter.Secret, proof)
	if err != nil {
		log.Fatalf("build assignment: %v", err)
	}
	start = time.Now()
	zkProof, err := credential.Prove(ccs, pk, assignment)
	if err != nil {
		log.Fatalf("prove: %v", err)
	}
	log.Infow("proof generated", "took", time.Since(start).String())

	proofData, err := credential.ProofToBytes(zkProof)
	if err != nil {
		log.Fatalf("serialize proof: %v", err)
	}
	req := &registrar.Request{
		PubSignals: signals.Strings(),
		ProofData:  proofData,
	}
	cred, _, err := cli.RegisterCredential(req)
	if err != nil {
		log.Fatalf("register credential: %v", err)
	}
	log.Infow("credential issued",
		"nullifier", cred.Nullifier.String(),
		"token", cred.Token.String(),
		"signature", cred.Signature.String())

	// the replay must be rejected
	_, status, err := cli.RegisterCredential(req)
	if err == nil {
		log.Fatal("replay was accepted, this is a bug")
	}
	if status != http.StatusConflict {
		log.Fatalf("unexpected replay status: %d", status)
	}
	log.Infow("replay rejected", "status", status)
}
