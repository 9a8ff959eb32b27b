package scheduler

import (
	"context"
	"time"

	"roomkeeper/internal/backup"
	"roomkeeper/internal/registry"
)

// AutoBackupJob создает автоматический снимок реестра по расписанию
type AutoBackupJob struct {
	registry *registry.Registry
	backups  *backup.Store
	schedule Schedule
}

// NewAutoBackupJob creates a job that snapshots the registry into the backup store
func NewAutoBackupJob(reg *registry.Registry, backups *backup.Store, schedule Schedule) *AutoBackupJob {
	return &AutoBackupJob{
		registry: reg,
		backups:  backups,
		schedule: schedule,
	}
}

// Name returns the job name
func (j *AutoBackupJob) Name() string {
	return "auto-backup"
}

// Schedule returns how often the job should run
func (j *AutoBackupJob) Schedule() Schedule {
	return j.schedule
}

// Execute снимает текущее содержимое реестра в именованный снимок
func (j *AutoBackupJob) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := "auto-" + time.Now().UTC().Format("2006-01-02T15-04")
	j.backups.Create(name, j.registry.Snapshot())
	return nil
}
