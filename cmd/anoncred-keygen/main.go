// Command anoncred-keygen compiles the credential circuit at a given census
// depth, runs the groth16 setup and writes the constraint system, proving key
// and verification key to disk, printing the sha256 of each output so the
// artifact hashes can be pinned in the config package before publishing.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/vocdoni/anoncred/circuits"
	"github.com/vocdoni/anoncred/circuits/credential"
	"github.com/vocdoni/anoncred/log"
)

func main() {
	depth := flag.Int("depth", circuits.DefaultCensusDepth, "census tree depth")
	outDir := flag.String("out", ".", "output directory for the artifacts")
	flag.Parse()
	log.Init("info", "stdout", nil)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	start := time.Now()
	ccs, err := credential.Compile(*depth)
	if err != nil {
		log.Fatalf("compile circuit: %v", err)
	}
	log.Infow("circuit compiled", "depth", *depth,
		"constraints", ccs.GetNbConstraints(), "took", time.Since(start).String())

	start = time.Now()
	pk, vk, err := credential.Setup(ccs)
	if err != nil {
		log.Fatalf("setup circuit: %v", err)
	}
	log.Infow("setup done", "took", time.Since(start).String())

	ccsPath := filepath.Join(*outDir, "credential.ccs")
	if err := circuits.StoreConstraintSystem(ccs, ccsPath); err != nil {
		log.Fatalf("store constraint system: %v", err)
	}
	pkPath := filepath.Join(*outDir, "credential.pk")
	if err := circuits.StoreProvingKey(pk, pkPath); err != nil {
		log.Fatalf("store proving key: %v", err)
	}
	vkPath := filepath.Join(*outDir, "credential.vk")
	if err := circuits.StoreVerificationKey(vk, vkPath); err != nil {
		log.Fatalf("store verification key: %v", err)
	}

	for _, path := range []string{ccsPath, pkPath, vkPath} {
		hash, err := fileHash(path)
		if err != nil {
			log.Fatalf("hash %s: %v", path, err)
		}
		fmt.Printf("%s  %s\n", hash, path)
	}
}

func fileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
