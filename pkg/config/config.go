// Package config loads the handful of tunables the graph core's import
// sizing and concurrency model need from the environment (spec §4.7,
// §5), the same NORNICDB_-prefixed, LoadFromEnv-then-Validate idiom the
// teacher's config package uses for its own (much larger) settings
// surface — trimmed here to thread count, pages-per-thread, and the
// page-size clamp bounds. Of these, only the thread count is passed on to
// the core (by pkg/graphstore's Builder); the others are loaded and
// validated only.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/orneryd/graphcore/pkg/sizing"
)

// Env var names, matching the teacher's NORNICDB_<SECTION>_<FIELD>
// convention.
const (
	envThreads        = "NORNICDB_IMPORT_THREADS"
	envPagesPerThread = "NORNICDB_IMPORT_PAGES_PER_THREAD"
	envMinPageSize    = "NORNICDB_IMPORT_MIN_PAGE_SIZE"
	envMaxPageSize    = "NORNICDB_IMPORT_MAX_PAGE_SIZE"
)

// Defaults, used whenever the corresponding env var is unset.
const (
	DefaultPagesPerThread = 4
	DefaultMinPageSize    = sizing.MinPageSize
	DefaultMaxPageSize    = sizing.MaxPageSize
)

// Config is the graph core's runtime configuration (spec §4.7's sizing
// inputs plus the concurrency hint spec §5 leaves up to the caller).
type Config struct {
	// Threads is the degree of parallelism to use for id-map/label-info
	// build and adjacency compression. Defaults to runtime.GOMAXPROCS(0).
	Threads int
	// PagesPerThread is loaded and validated but not passed on: the id-map
	// build calls pkg/sizing with pkg/idmap's own fixed pages-per-thread.
	PagesPerThread int
	// MinPageSize and MaxPageSize are loaded and validated but not passed
	// on: pkg/sizing clamps to its own MinPageSize/MaxPageSize constants.
	MinPageSize int64
	MaxPageSize int64
}

// LoadFromEnv builds a Config from NORNICDB_IMPORT_* environment
// variables, falling back to runtime.GOMAXPROCS(0) and the package
// defaults for anything unset.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Threads:        runtime.GOMAXPROCS(0),
		PagesPerThread: DefaultPagesPerThread,
		MinPageSize:    DefaultMinPageSize,
		MaxPageSize:    DefaultMaxPageSize,
	}

	if v, ok := os.LookupEnv(envThreads); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", envThreads, err)
		}
		cfg.Threads = n
	}
	if v, ok := os.LookupEnv(envPagesPerThread); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", envPagesPerThread, err)
		}
		cfg.PagesPerThread = n
	}
	if v, ok := os.LookupEnv(envMinPageSize); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", envMinPageSize, err)
		}
		cfg.MinPageSize = n
	}
	if v, ok := os.LookupEnv(envMaxPageSize); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", envMaxPageSize, err)
		}
		cfg.MaxPageSize = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports whether cfg's fields form a usable configuration.
func (c *Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("config: threads must be >= 1, got %d", c.Threads)
	}
	if c.PagesPerThread < 1 {
		return fmt.Errorf("config: pages per thread must be >= 1, got %d", c.PagesPerThread)
	}
	if c.MinPageSize < 1 {
		return fmt.Errorf("config: min page size must be >= 1, got %d", c.MinPageSize)
	}
	if c.MaxPageSize < c.MinPageSize {
		return fmt.Errorf("config: max page size (%d) must be >= min page size (%d)", c.MaxPageSize, c.MinPageSize)
	}
	return nil
}
