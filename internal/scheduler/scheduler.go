// Package scheduler запускает периодические задачи ядра. Само хранилище
// снимков пассивно: автоматические снимки создает задача планировщика.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Schedule представляет частоту выполнения задачи
type Schedule int

// Поддерживаемые расписания
const (
	Hourly Schedule = iota
	Daily           // запуск в 02:00 UTC каждый день
)

// Job represents a scheduled task that can be executed by the scheduler
type Job interface {
	// Name returns a human-readable name for the job
	Name() string

	// Execute runs the job with the given context
	Execute(ctx context.Context) error

	// Schedule returns how often the job should run
	Schedule() Schedule
}

// Scheduler управляет периодическими задачами поверх gocron
type Scheduler struct {
	scheduler *gocron.Scheduler
	logger    *slog.Logger
	cancel    context.CancelFunc
	ctx       context.Context
	started   bool
	mu        sync.Mutex
}

// New creates a new scheduler in UTC timezone
func New(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// AddJob registers a job with the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch job.Schedule() {
	case Hourly:
		_, err = s.scheduler.Every(1).Hour().Do(func() {
			s.executeJob(job)
		})
	case Daily:
		_, err = s.scheduler.Every(1).Day().At("02:00").Do(func() {
			s.executeJob(job)
		})
	default:
		return fmt.Errorf("unknown schedule %d for job %s", job.Schedule(), job.Name())
	}

	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
	}

	s.logger.Info("Registered scheduled job", "job", job.Name())
	return nil
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.scheduler.StartAsync()
	s.started = true
	s.logger.Info("Scheduler started")
}

// Stop останавливает планировщик и отменяет контекст выполняемых задач
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	s.scheduler.Stop()
	s.started = false
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) executeJob(job Job) {
	s.logger.Info("Executing scheduled job", "job", job.Name())
	if err := job.Execute(s.ctx); err != nil {
		s.logger.Error("Job execution failed", "job", job.Name(), "error", err)
		return
	}
	s.logger.Info("Job execution completed", "job", job.Name())
}
