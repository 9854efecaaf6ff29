// Package config provides configuration management for the Kiln agent.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultWatchedBranch = "master"
	DefaultToolchain     = "stable"
	DefaultBuildDir      = "target"
	DefaultListenAddr    = ":8080"
)

// Config holds the agent configuration.
type Config struct {
	// WatchedBranch is the only branch that schedules pipeline runs.
	// Exact string match, no patterns.
	WatchedBranch string

	// Toolchain is the toolchain channel to provision (e.g. "stable").
	Toolchain string

	// WorkDir is the repository checkout the steps run in. Empty means
	// the current directory.
	WorkDir string

	// BuildDir is the build-output directory the cache snapshots,
	// relative to WorkDir.
	BuildDir string

	// CacheDir is where the disk cache store keeps its entries. Empty
	// disables the disk store in favor of the in-memory one.
	CacheDir string

	// Brokers is the Redpanda/Kafka seed broker list. Empty means local
	// mode with the in-memory broker.
	Brokers []string

	// PostgresDSN is the run store DSN for distributed mode.
	PostgresDSN string

	// ForgeToken authenticates commit status reporting. Empty disables
	// status reporting.
	ForgeToken string

	// ForgeURL is the forge API base URL. Empty uses the public default.
	ForgeURL string

	// ListenAddr is the webhook listener address for `kiln serve`.
	ListenAddr string

	// Color controls terminal color output during steps and logging.
	// Cosmetic only, no behavioral effect.
	Color bool
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		WatchedBranch: envOr("KILN_WATCHED_BRANCH", DefaultWatchedBranch),
		Toolchain:     envOr("KILN_TOOLCHAIN", DefaultToolchain),
		WorkDir:       os.Getenv("KILN_WORKDIR"),
		BuildDir:      envOr("KILN_BUILD_DIR", DefaultBuildDir),
		CacheDir:      os.Getenv("KILN_CACHE_DIR"),
		PostgresDSN:   os.Getenv("KILN_POSTGRES_DSN"),
		ForgeToken:    os.Getenv("KILN_FORGE_TOKEN"),
		ForgeURL:      os.Getenv("KILN_FORGE_URL"),
		ListenAddr:    envOr("KILN_LISTEN", DefaultListenAddr),
		Color:         parseColor(os.Getenv("KILN_TERM_COLOR")),
	}

	if brokers := os.Getenv("KILN_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Brokers = append(cfg.Brokers, b)
			}
		}
	}

	if len(cfg.Brokers) > 0 && cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("KILN_POSTGRES_DSN is required when KILN_BROKERS is set")
	}

	return cfg, nil
}

// MustLoadFromEnv loads configuration from environment variables and panics
// on error. Useful for initialization in main() where configuration errors
// should be fatal.
func MustLoadFromEnv() *Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseColor interprets KILN_TERM_COLOR. "never" disables color, anything
// else (including unset and "always") leaves it on.
func parseColor(v string) bool {
	return v != "never"
}
