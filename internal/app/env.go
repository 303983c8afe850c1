package app

import (
	"errors"
	"strconv"
	"strings"
	"time"

	server "tidepool/server"
	"tidepool/server/internal/observability"
	"tidepool/server/internal/telemetry"
	"tidepool/server/logging"
)

const defaultAddr = ":8080"

type settings struct {
	addr             string
	hub              server.HubConfig
	logging          logging.Config
	observability    observability.Config
	catalogOverrides string
}

// loadSettings reads the environment on top of the defaults. Invalid values
// are logged and ignored.
func loadSettings(getenv func(string) string, logger telemetry.Logger) settings {
	s := settings{
		addr:    defaultAddr,
		hub:     server.DefaultHubConfig(),
		logging: logging.DefaultConfig(),
	}

	if raw := strings.TrimSpace(getenv("TIDEPOOL_ADDR")); raw != "" {
		s.addr = raw
	}
	if raw := getenv("TIDEPOOL_TICK_INTERVAL"); raw != "" {
		if value, err := time.ParseDuration(raw); err == nil && value > 0 {
			s.hub.TickInterval = value
		} else {
			logger.Printf("invalid TIDEPOOL_TICK_INTERVAL=%q: %v", raw, orNonPositive(err))
		}
	}
	if raw := getenv("TIDEPOOL_GRID_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			s.hub.GridWidth = value
			s.hub.GridHeight = value
		} else {
			logger.Printf("invalid TIDEPOOL_GRID_SIZE=%q: %v", raw, orNonPositive(err))
		}
	}
	if raw := getenv("TIDEPOOL_STARTING_CASH"); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil && value >= 0 {
			s.hub.StartingCash = value
		} else {
			logger.Printf("invalid TIDEPOOL_STARTING_CASH=%q: %v", raw, orNonPositive(err))
		}
	}
	if raw := getenv("TIDEPOOL_SEED"); raw != "" {
		s.hub.Seed = raw
	}
	if raw := getenv("TIDEPOOL_AUTO_MERGE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			s.hub.AutoMerge = value
		} else {
			logger.Printf("invalid TIDEPOOL_AUTO_MERGE=%q: %v", raw, err)
		}
	}
	if raw := getenv("TIDEPOOL_OFFLINE_CAP"); raw != "" {
		if value, err := time.ParseDuration(raw); err == nil && value >= 0 {
			s.hub.OfflineCap = value
		} else {
			logger.Printf("invalid TIDEPOOL_OFFLINE_CAP=%q: %v", raw, orNonPositive(err))
		}
	}
	s.catalogOverrides = strings.TrimSpace(getenv("TIDEPOOL_CATALOG_OVERRIDES"))

	if raw := getenv("TIDEPOOL_LOG_LEVEL"); raw != "" {
		if value, err := logging.ParseSeverity(raw); err == nil {
			s.logging.MinimumSeverity = value
		} else {
			logger.Printf("invalid TIDEPOOL_LOG_LEVEL=%q: %v", raw, err)
		}
	}
	if raw := getenv("TIDEPOOL_LOG_SINKS"); raw != "" {
		s.logging.EnabledSinks = logging.ParseSinks(raw)
	}
	if raw := strings.TrimSpace(getenv("TIDEPOOL_LOG_JSON")); raw != "" {
		s.logging.JSON.FilePath = raw
		if !s.logging.HasSink(logging.SinkJSON) {
			s.logging.EnabledSinks = append(s.logging.EnabledSinks, logging.SinkJSON)
		}
	}

	if raw := getenv("ENABLE_PPROF_TRACE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			s.observability.EnablePprofTrace = value
		} else {
			logger.Printf("invalid ENABLE_PPROF_TRACE=%q: %v", raw, err)
		}
	}
	return s
}

var errOutOfRange = errors.New("value out of range")

func orNonPositive(err error) error {
	if err != nil {
		return err
	}
	return errOutOfRange
}
