package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModePoller runs the background status reconciliation loop.
	ServiceModePoller ServiceMode = "poller"
	// ServiceModeReaper runs the stale-job reaper.
	ServiceModeReaper ServiceMode = "reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModePoller, ServiceModeReaper}
}

// ParseServices parses a comma-delimited string of service names and returns
// the enabled services. It validates that all service names are valid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModePoller, ServiceModeReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, poller, reaper)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// PollerConfig contains background poller configuration.
type PollerConfig struct {
	// Interval is how often the poller sweeps non-terminal jobs.
	Interval time.Duration `env:"POLLER_INTERVAL" envDefault:"30s"`

	// BatchSize caps how many active jobs one sweep reconciles.
	BatchSize int `env:"POLLER_BATCH_SIZE" envDefault:"100"`
}

// Sanitize applies guardrails to poller configuration values.
func (p *PollerConfig) Sanitize() {
	if p.Interval < time.Second {
		p.Interval = time.Second
	}
	if p.BatchSize < 1 {
		p.BatchSize = 1
	}
}

// ReaperConfig contains stale-job reaper configuration.
type ReaperConfig struct {
	// Interval is how often the reaper sweeps for stale jobs.
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"5m"`

	// MaxJobAge is how long a job may stay non-terminal before it is failed.
	MaxJobAge time.Duration `env:"REAPER_MAX_JOB_AGE" envDefault:"2h"`

	// BatchSize caps how many jobs one sweep fails.
	BatchSize int `env:"REAPER_BATCH_SIZE" envDefault:"100"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	if r.Interval < time.Second {
		r.Interval = time.Second
	}
	if r.MaxJobAge < time.Minute {
		r.MaxJobAge = time.Minute
	}
	if r.BatchSize < 1 {
		r.BatchSize = 1
	}
}
