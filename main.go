package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/vocdoni/anoncred/circuits"
	"github.com/vocdoni/anoncred/circuits/credential"
	"github.com/vocdoni/anoncred/crypto/ethereum"
	"github.com/vocdoni/anoncred/log"
	"github.com/vocdoni/anoncred/registrar"
	"github.com/vocdoni/anoncred/service"
	"github.com/vocdoni/anoncred/storage"
	"go.vocdoni.io/dvote/db/metadb"
)

func main() {
	host := flag.String("host", "0.0.0.0", "API host to bind")
	port := flag.Int("port", 9090, "API port")
	dataDir := flag.String("dataDir", "anoncred-data", "data directory for the key value store")
	logLevel := flag.String("logLevel", "info", "log level (debug, info, warn, error)")
	privKey := flag.String("privKey", "", "hex private key for the registrar attestation signature, "+
		"a new one is generated when empty")
	artifactsDir := flag.String("artifactsDir", "", "directory for the circuit artifacts cache")
	downloadTimeout := flag.Duration("downloadTimeout", 5*time.Minute, "timeout for the circuit artifacts download")
	flag.Parse()
	log.Init(*logLevel, "stdout", nil)

	if *artifactsDir != "" {
		circuits.BaseDir = *artifactsDir
	}
	log.Info("downloading circuit artifacts...")
	if err := service.DownloadArtifacts(*downloadTimeout); err != nil {
		log.Fatalf("failed to download circuit artifacts: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := credential.Artifacts.LoadAll(ctx); err != nil {
		cancel()
		log.Fatalf("failed to load circuit artifacts: %v", err)
	}
	if err := credential.CircomArtifacts.LoadAll(ctx); err != nil {
		cancel()
		log.Fatalf("failed to load circom artifacts: %v", err)
	}
	cancel()

	database, err := metadb.New("pebble", *dataDir)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	stg, err := storage.New(database)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}

	signer := ethereum.NewSignKeys()
	if *privKey != "" {
		if err := signer.AddHexKey(*privKey); err != nil {
			log.Fatalf("invalid private key: %v", err)
		}
	} else if err := signer.Generate(); err != nil {
		log.Fatalf("failed to generate signing key: %v", err)
	}
	log.Infow("registrar signer ready", "address", signer.AddressString())

	reg, err := registrar.New(stg, signer,
		credential.Artifacts.VerifyingKey(),
		credential.CircomArtifacts.VerifyingKey())
	if err != nil {
		log.Fatalf("failed to create registrar: %v", err)
	}

	apiService := service.NewAPI(stg, reg, *host, *port)
	if err := apiService.Start(context.Background()); err != nil {
		log.Fatalf("failed to start API service: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
	apiService.Stop()
}
