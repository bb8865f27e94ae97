package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/valveprice/internal/config"
	"github.com/aristath/valveprice/internal/di"
	"github.com/aristath/valveprice/internal/refdata"
	"github.com/aristath/valveprice/internal/scheduler"
	"github.com/aristath/valveprice/internal/utils"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers handles system status requests
type SystemHandlers struct {
	log       zerolog.Logger
	cfg       *config.Config
	container *di.Container
	startedAt time.Time

	// sampleStats reads cpu and memory percentages; replaced in tests
	sampleStats func() (float64, float64)
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, cfg *config.Config, container *di.Container) *SystemHandlers {
	h := &SystemHandlers{
		log:       log.With().Str("component", "system_handlers").Logger(),
		cfg:       cfg,
		container: container,
		startedAt: time.Now(),
	}
	h.sampleStats = h.getSystemStats
	return h
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status            string                `json:"status"`
	CPUUsage          float64               `json:"cpu_usage"`
	MemoryUsage       float64               `json:"memory_usage"`
	HostUptimeSeconds uint64                `json:"host_uptime_seconds"`
	StartedAt         string                `json:"started_at"`
	Uptime            string                `json:"uptime"` // Human-readable, e.g. "3 hours ago"
	Goroutines        int                   `json:"goroutines"`
	DataSource        string                `json:"data_source"`
	DataLoadedAt      string                `json:"data_loaded_at"`
	Counts            refdata.Counts        `json:"counts"`
	LLMConfigured     bool                  `json:"llm_configured"`
	CacheEntries      int                   `json:"cache_entries"`
	Jobs              []scheduler.JobStatus `json:"jobs"`
	LastUpdated       string                `json:"last_updated"`
}

// JobsStatusResponse lists registered background jobs
type JobsStatusResponse struct {
	Jobs        []scheduler.JobStatus `json:"jobs"`
	Total       int                   `json:"total"`
	LastUpdated string                `json:"last_updated"`
}

// GetSystemStatusSnapshot returns a snapshot of the current system status
func (h *SystemHandlers) GetSystemStatusSnapshot() SystemStatusResponse {
	cpuUsage, memUsage := h.sampleStats()

	uptime, err := host.Uptime()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get host uptime")
	}

	store := h.container.Store
	return SystemStatusResponse{
		Status:            "healthy",
		CPUUsage:          cpuUsage,
		MemoryUsage:       memUsage,
		HostUptimeSeconds: uptime,
		StartedAt:         h.startedAt.Format(time.RFC3339),
		Uptime:            humanize.Time(h.startedAt),
		Goroutines:        runtime.NumGoroutine(),
		DataSource:        store.Source(),
		DataLoadedAt:      store.LoadedAt().Format(time.RFC3339),
		Counts:            store.Counts(),
		LLMConfigured:     h.cfg.HasLLM(),
		CacheEntries:      h.cacheEntries(),
		Jobs:              h.jobs(),
		LastUpdated:       time.Now().Format(time.RFC3339),
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")
	utils.WriteResponse(w, r, http.StatusOK, h.GetSystemStatusSnapshot())
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobs()
	utils.WriteResponse(w, r, http.StatusOK, JobsStatusResponse{
		Jobs:        jobs,
		Total:       len(jobs),
		LastUpdated: time.Now().Format(time.RFC3339),
	})
}

func (h *SystemHandlers) jobs() []scheduler.JobStatus {
	if h.container.Scheduler == nil {
		return []scheduler.JobStatus{}
	}
	return h.container.Scheduler.Jobs()
}

func (h *SystemHandlers) cacheEntries() int {
	if h.container.CommentaryCache == nil {
		return 0
	}
	return h.container.CommentaryCache.Len()
}

// getSystemStats calculates CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep the API call short.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
