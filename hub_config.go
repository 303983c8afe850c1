package server

import (
	"time"

	"tidepool/server/catalog"
	"tidepool/server/internal/crates"
	"tidepool/server/internal/production"
	"tidepool/server/internal/random"
	"tidepool/server/internal/telemetry"
)

const (
	defaultGridSize     = 5
	defaultStartingCash = 50_000
	// legacyGemValue prices gems that were stored without a value, as in
	// saves from before gem values were tracked.
	legacyGemValue = 100
)

// HubConfig captures the tunables of a Hub. Non-positive sizes and intervals
// fall back to the defaults from DefaultHubConfig.
type HubConfig struct {
	GridWidth    int
	GridHeight   int
	StartingCash int64
	TickInterval time.Duration
	OfflineCap   time.Duration
	AutoMerge    bool
	Seed         string

	Catalog *catalog.Catalog
	Logger  telemetry.Logger
	Metrics telemetry.Metrics
	// Now, Random and IDs are injection points for tests.
	Now    func() time.Time
	Random random.Source
	IDs    crates.IDFunc
}

// DefaultHubConfig returns the baseline configuration used by the server.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		GridWidth:    defaultGridSize,
		GridHeight:   defaultGridSize,
		StartingCash: defaultStartingCash,
		TickInterval: time.Second,
		OfflineCap:   production.DefaultOfflineCap,
		AutoMerge:    true,
		Seed:         random.DefaultSeed,
	}
}

func (cfg HubConfig) normalized() HubConfig {
	defaults := DefaultHubConfig()
	if cfg.GridWidth <= 0 {
		cfg.GridWidth = defaults.GridWidth
	}
	if cfg.GridHeight <= 0 {
		cfg.GridHeight = defaults.GridHeight
	}
	if cfg.StartingCash < 0 {
		cfg.StartingCash = 0
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaults.TickInterval
	}
	if cfg.OfflineCap < 0 {
		cfg.OfflineCap = 0
	}
	if cfg.Seed == "" {
		cfg.Seed = defaults.Seed
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = telemetry.NopMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(nil)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg
}
