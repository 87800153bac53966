package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"tropharbour-backend/pkg/logger"
)

// Scheduler enqueues periodic tasks.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redis asynq.RedisClientOpt) *Scheduler {
	scheduler := asynq.NewScheduler(
		redis,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)
	return &Scheduler{scheduler: scheduler}
}

// RegisterJobs registers every periodic job.
func (s *Scheduler) RegisterJobs() error {
	return s.registerExpirePendingBookingsJob()
}

// ================================================
// JOB: Expire unpaid bookings (hourly)
// ================================================
func (s *Scheduler) registerExpirePendingBookingsJob() error {
	task := asynq.NewTask(TypeExpirePendingBookings, nil)

	_, err := s.scheduler.Register(
		"0 * * * *",
		task,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ExpirePendingBookings job", err)
		return err
	}

	logger.Info("✓ Registered ExpirePendingBookings: hourly", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
