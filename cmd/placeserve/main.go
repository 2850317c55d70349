/*
Package main implements the placeserve city suggestion server.

Placeserve answers autocomplete queries over a static city dataset: given a
partial, possibly misspelled, possibly non-Latin-script name fragment and an
optional caller location, it returns ranked matches with a confidence score
and coordinates. Matching is unicode-aware and typo tolerant; when the
caller sends coordinates, same-named places closer to the caller rank
first.

# Usage

Start the server with default settings:

	placeserve

Use a custom dataset and listen address, with debug logging:

	placeserve -data /path/to/cities_canada-usa.tsv -addr :8080 -d

Convert a TSV dump into a binary snapshot for faster startups:

	placeserve -data cities_canada-usa.tsv -compile cities.bin

The dataset is the GeoNames tab-separated dump of CA/US cities. Snapshots
(.bin) are msgpack-encoded and carry the precomputed normalized keys, so
the server skips parsing and normalization when loading one.

# Configuration

Runtime configuration lives in a TOML file that is created with defaults on
first run:

	[server]
	addr = ":2345"
	max_results = 5

	[match]
	min_similarity = 0.4

	[geo]
	decay_km = 1000.0
	floor = 0.3

	[rate]
	budget = 5
	window_seconds = 1

Similarity cutoff, proximity decay, session TTL and the rate budget are
tunables, not contracts; adjust them per deployment.

# HTTP API

	GET /suggestions?q=montr&latitude=40.69&longitude=-74.12

Returns {"suggestions": [...]} ranked by score, 404 with an empty list when
nothing clears the similarity cutoff, 304 when a session repeats its
previous query, and 429 with Retry-After once a client exceeds its request
budget for the current window.
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/placeserve/placeserve/pkg/config"
	"github.com/placeserve/placeserve/pkg/geodata"
	"github.com/placeserve/placeserve/pkg/server"
	"github.com/placeserve/placeserve/pkg/suggest"
)

func main() {
	configPath := flag.String("config", "", "Path to config.toml (default: user config dir)")
	dataPath := flag.String("data", "", "Path to the place dataset (.tsv or .bin snapshot)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	compilePath := flag.String("compile", "", "Write a binary snapshot of the dataset to this path and exit")
	debug := flag.Bool("d", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Loading config: %v", err)
	}
	log.Debugf("Active config: %s", config.GetActiveConfigPath(activePath))

	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	records, err := geodata.Load(cfg.Data.Path, cfg.Data.MinPopulation, suggest.Normalize)
	if err != nil {
		log.Fatalf("Loading dataset: %v", err)
	}
	log.Infof("Loaded %d places from %s", len(records), cfg.Data.Path)

	if *compilePath != "" {
		if err := geodata.SaveSnapshot(*compilePath, records); err != nil {
			log.Fatalf("Writing snapshot: %v", err)
		}
		log.Infof("Snapshot written to %s", *compilePath)
		return
	}

	svc := suggest.NewService(geodata.NewIndex(records), cfg)
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(svc, cfg)
	if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
