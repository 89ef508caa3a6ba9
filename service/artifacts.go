package service

import (
	"context"
	"time"

	"github.com/vocdoni/anoncred/circuits/credential"
	"golang.org/x/sync/errgroup"
)

// DownloadArtifacts downloads all the circuit artifacts concurrently.
func DownloadArtifacts(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return credential.Artifacts.DownloadAll(ctx)
	})
	g.Go(func() error {
		return credential.CircomArtifacts.DownloadAll(ctx)
	})
	return g.Wait()
}
