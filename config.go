package spatiolite

import (
	"os"
	"strconv"
	"time"
)

// SyncPolicy governs when buffered AOF writes are committed to stable
// storage via fsync. It never affects the buffered write itself, only
// when that buffer is flushed to disk durably.
type SyncPolicy int

const (
	// SyncNever lets the OS flush at its own leisure.
	SyncNever SyncPolicy = iota
	// SyncEverySecond fsyncs from a background driver roughly once a second.
	SyncEverySecond
	// SyncAlways fsyncs after every committed write or batch.
	SyncAlways
)

func (p SyncPolicy) String() string {
	switch p {
	case SyncNever:
		return "never"
	case SyncAlways:
		return "always"
	default:
		return "every_second"
	}
}

// Config holds every tunable of a store, assembled through NewConfig.
// The sync policy, geohash precision, default TTL and auto-rewrite
// fields can be overridden by SPATIOLITE_* environment variables,
// falling back to the documented default; SweepInterval and the
// logging hooks are set only through options.
type Config struct {
	SyncPolicy SyncPolicy

	// GeohashPrecision is the default precision (1-12) used by
	// InsertPointWithGeohash-style helpers that don't specify one.
	GeohashPrecision int

	// DefaultTTL is applied to Put calls that don't specify their own
	// expiration. Zero means "never expires".
	DefaultTTL time.Duration

	// AutoRewriteSizeBytes is the AOF size threshold that arms a rewrite.
	AutoRewriteSizeBytes int64

	// AutoRewriteMinGrowthPct is the percentage the log must have grown
	// since the last rewrite before a new one is triggered, on top of
	// crossing AutoRewriteSizeBytes.
	AutoRewriteMinGrowthPct int

	// AutoRewriteDisabled turns off size-triggered compaction entirely.
	AutoRewriteDisabled bool

	// SweepInterval is how often the background expiration sweeper wakes.
	SweepInterval time.Duration

	// LogInfo/LogWarning/LogError are overridable logging hooks. Nil
	// means "use the package default" (a thin wrapper around the
	// standard log package); see WithQuietLogging to silence them.
	LogInfo    LogFunc
	LogWarning LogFunc
	LogError   LogFunc
}

// Option mutates a Config being built by NewConfig.
type Option func(*Config)

// WithSyncPolicy overrides the sync policy.
func WithSyncPolicy(p SyncPolicy) Option {
	return func(c *Config) { c.SyncPolicy = p }
}

// WithGeohashPrecision overrides the default geohash precision.
func WithGeohashPrecision(p int) Option {
	return func(c *Config) { c.GeohashPrecision = p }
}

// WithDefaultTTL overrides the default TTL applied when a put specifies none.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *Config) { c.DefaultTTL = d }
}

// WithAutoRewriteSizeBytes overrides the rewrite-size threshold.
func WithAutoRewriteSizeBytes(n int64) Option {
	return func(c *Config) { c.AutoRewriteSizeBytes = n }
}

// WithAutoRewriteMinGrowthPct overrides the minimum growth percentage
// required, in addition to the size threshold, before a rewrite fires.
func WithAutoRewriteMinGrowthPct(pct int) Option {
	return func(c *Config) { c.AutoRewriteMinGrowthPct = pct }
}

// WithAutoRewriteDisabled disables size-triggered compaction entirely.
func WithAutoRewriteDisabled(disabled bool) Option {
	return func(c *Config) { c.AutoRewriteDisabled = disabled }
}

// WithSweepInterval overrides the background sweeper's wake interval.
func WithSweepInterval(d time.Duration) Option {
	return func(c *Config) { c.SweepInterval = d }
}

// WithLogFuncs overrides all three logging hooks at once.
func WithLogFuncs(info, warning, errorFn LogFunc) Option {
	return func(c *Config) {
		c.LogInfo = info
		c.LogWarning = warning
		c.LogError = errorFn
	}
}

// WithQuietLogging silences every logging hook -- useful for tests and
// for embedders that bridge spatiolite's logging into their own.
func WithQuietLogging() Option {
	return func(c *Config) {
		c.LogInfo = noopLogFunc
		c.LogWarning = noopLogFunc
		c.LogError = noopLogFunc
	}
}

const envPrefixDefault = "SPATIOLITE_"

// NewConfig builds a Config from documented defaults, environment
// variable overrides under SPATIOLITE_*, and finally the supplied
// functional options, in that order of precedence (options win).
func NewConfig(opts ...Option) Config {
	c := Config{
		SyncPolicy:              SyncEverySecond,
		GeohashPrecision:        8,
		DefaultTTL:              0,
		AutoRewriteSizeBytes:    64 * 1024 * 1024,
		AutoRewriteMinGrowthPct: 100,
		AutoRewriteDisabled:     false,
		SweepInterval:           time.Second,
	}

	if v := os.Getenv(envPrefixDefault + "SYNC_POLICY"); v != "" {
		switch v {
		case "never":
			c.SyncPolicy = SyncNever
		case "always":
			c.SyncPolicy = SyncAlways
		case "every_second":
			c.SyncPolicy = SyncEverySecond
		}
	}
	if v := os.Getenv(envPrefixDefault + "GEOHASH_PRECISION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.GeohashPrecision = n
		}
	}
	if v := os.Getenv(envPrefixDefault + "DEFAULT_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DefaultTTL = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv(envPrefixDefault + "AUTO_REWRITE_SIZE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.AutoRewriteSizeBytes = n
		}
	}
	if v := os.Getenv(envPrefixDefault + "AUTO_REWRITE_MIN_GROWTH_PCT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AutoRewriteMinGrowthPct = n
		}
	}
	if v := os.Getenv(envPrefixDefault + "AUTO_REWRITE_DISABLED"); v != "" {
		c.AutoRewriteDisabled = v == "1" || v == "true"
	}

	for _, opt := range opts {
		opt(&c)
	}
	return c
}
