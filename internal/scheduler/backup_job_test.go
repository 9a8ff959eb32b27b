package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomkeeper/internal/backup"
	"roomkeeper/internal/models"
	"roomkeeper/internal/registry"
)

func TestAutoBackupJob_Execute(t *testing.T) {
	t.Run("Snapshots the registry into the backup store", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Insert(models.NewRoom("id-1", "212", time.Now())))
		backups := backup.New()

		job := NewAutoBackupJob(reg, backups, Hourly)
		require.NoError(t, job.Execute(context.Background()))

		list := backups.List()
		require.Len(t, list, 1)
		assert.True(t, strings.HasPrefix(list[0].Name, "auto-"))
		require.Len(t, list[0].Rooms, 1)
		assert.Equal(t, "212", list[0].Rooms[0].Number)
	})

	t.Run("Cancelled context skips the snapshot", func(t *testing.T) {
		backups := backup.New()
		job := NewAutoBackupJob(registry.New(), backups, Daily)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := job.Execute(ctx)
		require.Error(t, err)
		assert.Empty(t, backups.List())
	})
}

func TestAutoBackupJob_Metadata(t *testing.T) {
	job := NewAutoBackupJob(registry.New(), backup.New(), Daily)

	assert.Equal(t, "auto-backup", job.Name())
	assert.Equal(t, Daily, job.Schedule())
}
