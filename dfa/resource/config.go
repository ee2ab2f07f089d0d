package resource

// Config configures the transition cache of a resource automaton.
//
// The cache only trades memory for lookup speed; no setting here can change
// which transitions exist.
type Config struct {
	// DisableCache makes every lookup scan the state's table row.
	// Used to verify that cached and uncached automata agree.
	//
	// Default: false
	DisableCache bool

	// MaxCacheEntries is the maximum number of (state, input) pairs to keep.
	// When a row scan would exceed it, the cache is cleared (keeping its
	// memory) and the row is loaded into the empty cache.
	//
	// Default: 4,096 entries
	//
	// Tuning guidelines:
	//   - 2-4 unit targets: a few hundred entries cover the whole table
	//   - Wide targets (8+ units): 16,384 or more
	MaxCacheEntries uint32
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DisableCache:    false,
		MaxCacheEntries: 4_096,
	}
}

// Validate checks if the configuration is valid.
// Returns an error if any parameter is out of acceptable range.
func (c *Config) Validate() error {
	if !c.DisableCache && c.MaxCacheEntries == 0 {
		return &Error{
			Kind:    InvalidConfig,
			Message: "MaxCacheEntries must be > 0 when the cache is enabled",
		}
	}
	return nil
}

// WithCache returns a new config with the transition cache enabled/disabled
func (c Config) WithCache(enabled bool) Config {
	c.DisableCache = !enabled
	return c
}

// WithMaxCacheEntries returns a new config with the specified cache capacity
func (c Config) WithMaxCacheEntries(n uint32) Config {
	c.MaxCacheEntries = n
	return c
}
