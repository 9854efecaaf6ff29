// Package pipeline wires the trigger, toolchain, cache, runner, and
// reporting components into complete pipeline runs. It supports two modes:
// local (in-memory broker and store, everything in one process) and
// distributed (Redpanda + Postgres, separate serve and run-agent
// processes).
package pipeline

// Mode identifies how the pipeline components are wired.
type Mode int

const (
	// LocalMode runs everything in-process with the in-memory broker
	// and store.
	LocalMode Mode = iota
	// DistributedMode uses Redpanda + Postgres across processes.
	DistributedMode
)

func (m Mode) String() string {
	if m == DistributedMode {
		return "distributed"
	}
	return "local"
}

// Config holds the pipeline wiring configuration.
type Config struct {
	// Brokers is the Redpanda/Kafka seed list; empty selects LocalMode.
	Brokers []string
	// PostgresDSN for the distributed run store.
	PostgresDSN string

	// WatchedBranch gates the trigger evaluator.
	WatchedBranch string
	// Toolchain channel to provision.
	Toolchain string
	// WorkDir the steps run in.
	WorkDir string
	// BuildDir the cache snapshots, relative to WorkDir.
	BuildDir string
	// CacheDir for the disk blob store; empty keeps cache entries in
	// memory.
	CacheDir string

	// ForgeToken and ForgeURL configure commit status reporting. An
	// empty token disables reporting.
	ForgeToken string
	ForgeURL   string
}

// DetectMode selects the wiring mode from the configuration.
// Distributed mode requires at least one broker address.
func DetectMode(cfg *Config) Mode {
	if len(cfg.Brokers) > 0 {
		return DistributedMode
	}
	return LocalMode
}
