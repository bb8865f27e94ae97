package commentary

import "github.com/rs/zerolog"

// CleanupJob purges expired commentary from the cache
type CleanupJob struct {
	cache *Cache
	log   zerolog.Logger
}

// NewCleanupJob creates a new commentary cache cleanup job
func NewCleanupJob(cache *Cache, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		cache: cache,
		log:   log.With().Str("job", "commentary_cache_cleanup").Logger(),
	}
}

// Run removes expired entries
func (j *CleanupJob) Run() error {
	removed := j.cache.Purge()
	if removed > 0 {
		j.log.Info().
			Int("removed", removed).
			Int("remaining", j.cache.Len()).
			Msg("Cleaned up expired commentary")
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *CleanupJob) Name() string {
	return "commentary_cache_cleanup"
}
