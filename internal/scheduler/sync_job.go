package scheduler

import (
	"context"
	"fmt"

	clientsync "roomkeeper/internal/client/sync"
)

// SyncJob периодически запускает цикл синхронизации с удаленным хранилищем
type SyncJob struct {
	sync     clientsync.Service
	schedule Schedule
}

// NewSyncJob creates a job that triggers a sync cycle on schedule
func NewSyncJob(sync clientsync.Service, schedule Schedule) *SyncJob {
	return &SyncJob{
		sync:     sync,
		schedule: schedule,
	}
}

// Name returns the job name
func (j *SyncJob) Name() string {
	return "periodic-sync"
}

// Schedule returns how often the job should run
func (j *SyncJob) Schedule() Schedule {
	return j.schedule
}

// Execute запускает один цикл синхронизации. Если цикл уже идет,
// запрос склеивается сервисом синхронизации — параллельных циклов нет.
func (j *SyncJob) Execute(ctx context.Context) error {
	if _, err := j.sync.Sync(ctx); err != nil {
		return fmt.Errorf("periodic sync failed: %w", err)
	}
	return nil
}
