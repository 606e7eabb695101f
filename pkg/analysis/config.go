package analysis

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls which metrics to compute and their timeouts.
type Config struct {
	// Betweenness centrality (expensive: O(V*E))
	ComputeBetweenness    bool
	BetweennessTimeout    time.Duration
	BetweennessSkipReason string

	// PageRank
	ComputePageRank    bool
	PageRankTimeout    time.Duration
	PageRankSkipReason string

	// Cheap structural signals
	ComputeKCore        bool
	ComputeArticulation bool

	// Top limits how many entries ranking lists keep.
	Top int
}

const (
	// EnvSkipCentrality disables betweenness and PageRank.
	EnvSkipCentrality = "COOC_SKIP_CENTRALITY"
	// EnvCentralityTimeoutSeconds overrides centrality timeouts when set (>0).
	EnvCentralityTimeoutSeconds = "COOC_CENTRALITY_TIMEOUT_S"
)

// DefaultConfig enables every metric with standard timeouts.
func DefaultConfig() Config {
	cfg := Config{
		ComputeBetweenness: true,
		BetweennessTimeout: 500 * time.Millisecond,

		ComputePageRank: true,
		PageRankTimeout: 500 * time.Millisecond,

		ComputeKCore:        true,
		ComputeArticulation: true,

		Top: 10,
	}
	return ApplyEnvOverrides(cfg)
}

// ConfigForSize returns a configuration suited to the graph size. Large
// graphs skip exact betweenness.
func ConfigForSize(nodeCount, linkCount int) Config {
	cfg := DefaultConfig()
	switch {
	case nodeCount < 500:
		cfg.BetweennessTimeout = 2 * time.Second
		cfg.PageRankTimeout = 2 * time.Second
	case nodeCount < 5000:
		cfg.BetweennessTimeout = time.Second
	default:
		cfg.ComputeBetweenness = false
		cfg.BetweennessSkipReason = "graph too large (" + strconv.Itoa(nodeCount) + " nodes, " + strconv.Itoa(linkCount) + " links)"
	}
	return ApplyEnvOverrides(cfg)
}

// ApplyEnvOverrides applies COOC_* environment overrides to cfg.
func ApplyEnvOverrides(cfg Config) Config {
	if envBool(EnvSkipCentrality) {
		cfg.ComputeBetweenness = false
		cfg.BetweennessSkipReason = EnvSkipCentrality + " set"
		cfg.ComputePageRank = false
		cfg.PageRankSkipReason = EnvSkipCentrality + " set"
	}

	if seconds, ok := envPositiveInt(EnvCentralityTimeoutSeconds); ok {
		timeout := time.Duration(seconds) * time.Second
		if cfg.ComputeBetweenness {
			cfg.BetweennessTimeout = timeout
		}
		if cfg.ComputePageRank {
			cfg.PageRankTimeout = timeout
		}
	}
	return cfg
}

func envPositiveInt(name string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func envBool(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
