package di

import (
	"fmt"

	"github.com/aristath/valveprice/internal/modules/commentary"
	"github.com/rs/zerolog"
)

// Job schedules (six-field cron, seconds first)
const (
	CommentaryCacheCleanupSchedule = "0 */5 * * * *"
)

// RegisterJobs registers background jobs with the container's scheduler.
// Returns JobInstances for manual triggering.
func RegisterJobs(container *Container, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{}

	cleanup := commentary.NewCleanupJob(container.CommentaryCache, log)
	if err := container.Scheduler.AddJob(CommentaryCacheCleanupSchedule, cleanup); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", cleanup.Name(), err)
	}
	instances.CommentaryCacheCleanup = cleanup

	return instances, nil
}
