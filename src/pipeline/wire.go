package pipeline

import (
	"fmt"

	"kiln-agent/src/broker"
	"kiln-agent/src/cache"
	"kiln-agent/src/forge"
	"kiln-agent/src/logger"
	"kiln-agent/src/store"
)

// Components holds the mode-dependent collaborators of a pipeline process.
type Components struct {
	Mode     Mode
	Broker   broker.Broker
	Runs     store.RunStore
	Blobs    cache.BlobStore
	Reporter forge.StatusReporter
}

// Wire builds the broker, run store, cache store, and status reporter for
// the detected mode. Local mode keeps everything in-process; distributed
// mode connects to Redpanda and Postgres.
func Wire(cfg *Config, log logger.Logger) (*Components, error) {
	c := &Components{Mode: DetectMode(cfg)}

	switch c.Mode {
	case DistributedMode:
		brk, err := broker.NewRedpandaBroker(cfg.Brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to create broker: %w", err)
		}
		c.Broker = brk

		runs, err := store.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			brk.Close()
			return nil, fmt.Errorf("failed to create run store: %w", err)
		}
		c.Runs = runs

	default:
		c.Broker = broker.NewInMemoryBroker()
		c.Runs = store.NewMemoryStore()
	}

	if cfg.CacheDir != "" {
		blobs, err := cache.NewDiskBlobStore(cfg.CacheDir)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create cache store: %w", err)
		}
		c.Blobs = blobs
	} else {
		c.Blobs = cache.NewMemoryBlobStore()
		if c.Mode == DistributedMode {
			log.Info("[Pipeline] KILN_CACHE_DIR not set, cache entries will not survive restarts")
		}
	}

	if cfg.ForgeToken != "" {
		c.Reporter = forge.NewClient(cfg.ForgeToken, cfg.ForgeURL)
	} else {
		c.Reporter = forge.NopReporter{}
	}

	return c, nil
}

// Close releases the component connections.
func (c *Components) Close() {
	if c.Broker != nil {
		c.Broker.Close()
	}
	if c.Runs != nil {
		c.Runs.Close()
	}
	if c.Blobs != nil {
		c.Blobs.Close()
	}
}
