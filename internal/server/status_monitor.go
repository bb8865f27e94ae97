package server

import (
	"github.com/rs/zerolog"
)

// MemoryPressurePercent is the memory usage above which the monitor reports pressure
const MemoryPressurePercent = 90.0

// StatusMonitor samples system status on a schedule, publishes it as gauges and
// logs when memory pressure starts or ends. It runs as a scheduler job.
type StatusMonitor struct {
	systemHandlers *SystemHandlers
	log            zerolog.Logger

	// Track previous state
	underPressure bool
}

// NewStatusMonitor creates a new status monitor
func NewStatusMonitor(systemHandlers *SystemHandlers, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		systemHandlers: systemHandlers,
		log:            log.With().Str("component", "status_monitor").Logger(),
	}
}

// Name returns the job name
func (m *StatusMonitor) Name() string {
	return "status_heartbeat"
}

// Run samples the current status once
func (m *StatusMonitor) Run() error {
	status := m.systemHandlers.GetSystemStatusSnapshot()

	hostCPUPercent.Set(status.CPUUsage)
	hostMemoryPercent.Set(status.MemoryUsage)
	commentaryCacheEntries.Set(float64(status.CacheEntries))

	counts := status.Counts
	referenceRows.WithLabelValues("price_table").Set(float64(counts.PriceTable))
	referenceRows.WithLabelValues("quotes").Set(float64(counts.Quotes))
	referenceRows.WithLabelValues("orders").Set(float64(counts.Orders))
	referenceRows.WithLabelValues("bc_orders").Set(float64(counts.BCOrders))
	referenceRows.WithLabelValues("material_valve_map").Set(float64(counts.MaterialValveMap))
	referenceRows.WithLabelValues("lme").Set(float64(counts.LME))

	pressure := status.MemoryUsage >= MemoryPressurePercent
	if pressure != m.underPressure {
		if pressure {
			m.log.Warn().Float64("memory_usage", status.MemoryUsage).Msg("Memory pressure detected")
		} else {
			m.log.Info().Float64("memory_usage", status.MemoryUsage).Msg("Memory pressure cleared")
		}
		m.underPressure = pressure
	}

	m.log.Debug().
		Float64("cpu_usage", status.CPUUsage).
		Float64("memory_usage", status.MemoryUsage).
		Int("cache_entries", status.CacheEntries).
		Msg("Status heartbeat")

	return nil
}
