// Package fetch downloads the GeoNames input tables into a local data
// directory, skipping files that are already present.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iiab/staticsearch"
)

// Fetcher downloads data sources into DataDir.
type Fetcher struct {
	DataDir string
	Client  *http.Client
	Log     zerolog.Logger
	// Refresh downloads files even when a local copy exists.
	Refresh bool
}

// New returns a Fetcher with a client suited to the multi-megabyte dumps.
func New(dataDir string, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		DataDir: dataDir,
		Client:  &http.Client{Timeout: 5 * time.Minute},
		Log:     log,
	}
}

// Path returns the local path of a data source.
func (f *Fetcher) Path(src staticsearch.DataSource) string {
	return filepath.Join(f.DataDir, src.File)
}

// Fetch downloads all sources concurrently and returns once every file is
// on disk. The first failure cancels the remaining downloads.
func (f *Fetcher) Fetch(ctx context.Context, sources []staticsearch.DataSource) error {
	if err := os.MkdirAll(f.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		g.Go(func() error {
			path := f.Path(src)
			if !f.Refresh {
				if _, err := os.Stat(path); err == nil {
					f.Log.Debug().Str("source", string(src.ID)).Str("path", path).Msg("using cached file")
					return nil
				}
			}
			start := time.Now()
			if err := f.downloadFile(ctx, src.URL, path); err != nil {
				return fmt.Errorf("downloading %s: %w", src.ID, err)
			}
			f.Log.Info().
				Str("source", string(src.ID)).
				Str("path", path).
				Dur("took", time.Since(start)).
				Msg("downloaded")
			return nil
		})
	}
	return g.Wait()
}

func (f *Fetcher) downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP GET %s: status %d", url, resp.StatusCode)
	}

	// Write next to the target and rename, so an interrupted download
	// never looks like a cached file.
	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", tmp, err)
	}

	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(tmp)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("writing file %s: %w", tmp, err)
	}
	// Explicitly close to catch flush errors.
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	success = true
	return nil
}
