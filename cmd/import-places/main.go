// Command import-places builds the static city search index.
//
// Usage:
//
//	go run ./cmd/import-places [--config config.yaml]
//
// It downloads admin1CodesASCII.txt and cities1000.zip from GeoNames into
// the data directory (skipped when already present), writes one compressed
// JSON shard per token prefix into the output directory and packs them into
// static-search.<date>.pop-1k-cities.tar.gz. Settings come from config.yaml,
// .env and STATICSEARCH_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/iiab/staticsearch"
	"github.com/iiab/staticsearch/internal/config"
	"github.com/iiab/staticsearch/internal/fetch"
	"github.com/iiab/staticsearch/internal/logger"
	"github.com/iiab/staticsearch/internal/publish"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	pflag.Parse()

	_ = godotenv.Load(".env")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log, time.Now().UTC()); err != nil {
		log.Error().Err(err).Msg("import failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, now time.Time) error {
	sources := cfg.DataSources()
	f := fetch.New(cfg.DataDir, log)
	f.Refresh = cfg.Refresh
	if err := f.Fetch(ctx, sources); err != nil {
		return err
	}

	var regionsPath, citiesPath string
	for _, src := range sources {
		switch src.ID {
		case staticsearch.DataSourceGeonamesAdmin1:
			regionsPath = f.Path(src)
		case staticsearch.DataSourceGeonamesCities:
			citiesPath = f.Path(src)
		}
	}

	idx, err := staticsearch.BuildFromFiles(regionsPath, citiesPath,
		staticsearch.WithLogger(log),
		staticsearch.WithTokenLength(cfg.TokenLength),
		staticsearch.WithDeniedCountries(cfg.DeniedCountries...),
	)
	if err != nil {
		return err
	}
	files, err := idx.Files()
	if err != nil {
		return err
	}

	compression, err := publish.ParseCompression(cfg.Compression)
	if err != nil {
		return err
	}
	dir, err := publish.NewDirSink(cfg.OutputDir, compression)
	if err != nil {
		return err
	}
	name := cfg.ArchiveName
	if name == "" {
		name = publish.ArchiveName(now)
	}
	archive, err := publish.NewArchiveSink(filepath.Join(cfg.ArchiveDir, name), filepath.Base(cfg.OutputDir), compression, now)
	if err != nil {
		return err
	}

	if err := publish.Publish(ctx, files, dir, archive); err != nil {
		archive.Close()
		return err
	}
	if err := archive.Close(); err != nil {
		return err
	}
	log.Info().
		Int("files", len(files)).
		Str("output_dir", cfg.OutputDir).
		Str("archive", archive.Path()).
		Msg("index written")

	if !cfg.Publish.Enabled {
		return nil
	}
	bucket, err := publish.NewBucketSink(cfg.Publish.BucketConfig(), compression)
	if err != nil {
		return err
	}
	key, err := bucket.PutFile(ctx, archive.Path())
	if err != nil {
		return err
	}
	log.Info().Str("bucket", cfg.Publish.Bucket).Str("key", key).Msg("archive uploaded")
	return nil
}
