package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CleanupStream carries periodic upload-cleanup tasks.
const CleanupStream = "rental:cleanup"

type Scheduler struct {
	cron  *cron.Cron
	queue *redis.Client
	log   zerolog.Logger
}

func NewScheduler(queue *redis.Client, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		queue: queue,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 0 * * *", s.enqueueCleanup); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.CancelFunc {
	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		s.cron.Stop()
		cancel()
	}()
	return cancel
}

func (s *Scheduler) enqueueCleanup() {
	if s.queue == nil {
		return
	}
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: CleanupStream,
		Values: map[string]any{"type": "cleanup"},
	}).Result()
	if err != nil {
		s.log.Error().Err(err).Msg("enqueue cleanup failed")
	}
}
