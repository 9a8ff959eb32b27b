package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomkeeper/internal/history"
	"roomkeeper/internal/models"
	"roomkeeper/internal/registry"
)

func setupService() (Service, *registry.Registry, *history.Ledger) {
	reg := registry.New()
	ledger := history.New(history.DefaultMaxRecords)
	return NewService(reg, ledger), reg, ledger
}

func TestService_AddRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful add writes exactly one history record", func(t *testing.T) {
		svc, reg, ledger := setupService()

		room, err := svc.AddRoom(ctx, "212")
		require.NoError(t, err)
		assert.Equal(t, "212", room.Number)
		assert.Equal(t, models.ColorNone, room.Color)
		assert.NotNil(t, room.NoneAt)
		assert.NotEmpty(t, room.ID)

		assert.Equal(t, 1, reg.Size())

		records := ledger.Records()
		require.Len(t, records, 1)
		assert.Equal(t, models.ActionAdd, records[0].ActionType)
		assert.Equal(t, "212", records[0].RoomNumber)
		assert.Equal(t, "", records[0].OldStatus)
		assert.Equal(t, "none", records[0].NewStatus)
	})

	t.Run("Invalid number length", func(t *testing.T) {
		svc, reg, ledger := setupService()

		_, err := svc.AddRoom(ctx, "21")
		require.Error(t, err)
		assert.Equal(t, 0, reg.Size())
		assert.Equal(t, 0, ledger.Size())
	})

	t.Run("Duplicate number leaves no history record", func(t *testing.T) {
		svc, _, ledger := setupService()

		_, err := svc.AddRoom(ctx, "212")
		require.NoError(t, err)

		_, err = svc.AddRoom(ctx, "212")
		require.ErrorIs(t, err, registry.ErrDuplicateRoomNumber)

		// Отклоненная команда не оставляет следа в журнале
		assert.Equal(t, 1, ledger.Size())
	})
}

func TestService_ChangeColor(t *testing.T) {
	ctx := context.Background()

	t.Run("Color transition records old and new color", func(t *testing.T) {
		svc, reg, ledger := setupService()

		_, err := svc.AddRoom(ctx, "212")
		require.NoError(t, err)

		require.NoError(t, svc.ChangeColor(ctx, "212", models.ColorRed))

		room, err := reg.Get("212")
		require.NoError(t, err)
		assert.Equal(t, models.ColorRed, room.Color)
		require.NotNil(t, room.RedAt)
		// noneAt сохранен как история
		assert.NotNil(t, room.NoneAt)

		records := ledger.Records()
		require.Len(t, records, 2)
		assert.Equal(t, models.ActionChange, records[1].ActionType)
		assert.Equal(t, "none", records[1].OldStatus)
		assert.Equal(t, "red", records[1].NewStatus)
	})

	t.Run("Unknown color", func(t *testing.T) {
		svc, _, _ := setupService()
		err := svc.ChangeColor(ctx, "212", "magenta")
		require.Error(t, err)
	})

	t.Run("Unknown room", func(t *testing.T) {
		svc, _, _ := setupService()
		err := svc.ChangeColor(ctx, "999", models.ColorRed)
		assert.ErrorIs(t, err, registry.ErrRoomNotFound)
	})
}

func TestService_Toggles(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		toggle    func(Service) error
		action    models.ActionType
		onStatus  string
		offStatus string
		flag      func(*models.Room) bool
	}{
		{
			name:      "Mark",
			toggle:    func(s Service) error { return s.ToggleMark(ctx, "212") },
			action:    models.ActionMark,
			onStatus:  statusMarked,
			offStatus: statusUnmarked,
			flag:      func(r *models.Room) bool { return r.IsMarked },
		},
		{
			name:      "Completed",
			toggle:    func(s Service) error { return s.ToggleCompleted(ctx, "212") },
			action:    models.ActionComplete,
			onStatus:  statusCompleted,
			offStatus: statusNotCompleted,
			flag:      func(r *models.Room) bool { return r.IsCompleted },
		},
		{
			name:      "DeepClean",
			toggle:    func(s Service) error { return s.ToggleDeepClean(ctx, "212") },
			action:    models.ActionDeepClean,
			onStatus:  statusDeepCleaned,
			offStatus: statusStandard,
			flag:      func(r *models.Room) bool { return r.IsDeepCleaned },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, reg, ledger := setupService()
			_, err := svc.AddRoom(ctx, "212")
			require.NoError(t, err)

			// Включаем флаг
			require.NoError(t, tt.toggle(svc))
			room, err := reg.Get("212")
			require.NoError(t, err)
			assert.True(t, tt.flag(room))

			records := ledger.Records()
			require.Len(t, records, 2)
			assert.Equal(t, tt.action, records[1].ActionType)
			assert.Equal(t, tt.offStatus, records[1].OldStatus)
			assert.Equal(t, tt.onStatus, records[1].NewStatus)

			// Выключаем обратно
			require.NoError(t, tt.toggle(svc))
			room, err = reg.Get("212")
			require.NoError(t, err)
			assert.False(t, tt.flag(room))

			records = ledger.Records()
			require.Len(t, records, 3)
			assert.Equal(t, tt.onStatus, records[2].OldStatus)
			assert.Equal(t, tt.offStatus, records[2].NewStatus)
		})
	}
}

func TestService_SetAvailableTime(t *testing.T) {
	ctx := context.Background()
	svc, reg, ledger := setupService()

	_, err := svc.AddRoom(ctx, "212")
	require.NoError(t, err)

	require.NoError(t, svc.SetAvailableTime(ctx, "212", "14:30"))

	room, err := reg.Get("212")
	require.NoError(t, err)
	assert.Equal(t, "14:30", room.AvailableTime)

	// Свободный текст не является переходом статуса — записи нет
	assert.Equal(t, 1, ledger.Size())
}

func TestService_DeleteRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Delete records the last color", func(t *testing.T) {
		svc, reg, ledger := setupService()

		_, err := svc.AddRoom(ctx, "212")
		require.NoError(t, err)
		require.NoError(t, svc.ChangeColor(ctx, "212", models.ColorRed))

		require.NoError(t, svc.DeleteRoom(ctx, "212"))
		assert.Equal(t, 0, reg.Size())

		records := ledger.Records()
		require.Len(t, records, 3)
		assert.Equal(t, models.ActionDelete, records[2].ActionType)
		assert.Equal(t, "red", records[2].OldStatus)
		assert.Equal(t, statusDeleted, records[2].NewStatus)
	})

	t.Run("Unknown room", func(t *testing.T) {
		svc, _, _ := setupService()
		err := svc.DeleteRoom(ctx, "999")
		assert.ErrorIs(t, err, registry.ErrRoomNotFound)
	})
}
