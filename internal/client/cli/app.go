// Package cli реализует команды клиента поверх ядра: загрузка состояния
// из локального хранилища, выполнение команды, сохранение состояния.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"roomkeeper/internal/backup"
	httpClient "roomkeeper/internal/client/api"
	"roomkeeper/internal/client/data"
	"roomkeeper/internal/client/storage"
	clientsync "roomkeeper/internal/client/sync"
	"roomkeeper/internal/history"
	"roomkeeper/internal/reconcile"
	"roomkeeper/internal/registry"
)

// App связывает ядро с локальным хранилищем и удаленным API
type App struct {
	storage  storage.StateStorage
	registry *registry.Registry
	ledger   *history.Ledger
	backups  *backup.Store
	data     data.Service
	sync     clientsync.Service
	logger   *slog.Logger
	deviceID string
}

// NewApp загружает сохраненное состояние и собирает сервисы ядра.
// Первый запуск генерирует стабильный device id и пустое состояние.
func NewApp(ctx context.Context, store storage.StateStorage, apiClient httpClient.ClientAPI) (*App, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	deviceID, err := store.LoadDeviceID(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrStateNotFound) {
			return nil, fmt.Errorf("failed to load device id: %w", err)
		}
		// Первый запуск - генерируем стабильную идентичность устройства
		deviceID = uuid.New().String()
		if err := store.SaveDeviceID(ctx, deviceID); err != nil {
			return nil, fmt.Errorf("failed to save device id: %w", err)
		}
	}

	reg := registry.New()
	if rooms, err := store.LoadRooms(ctx); err == nil {
		reg.ReplaceAll(rooms, 0)
	} else if !errors.Is(err, storage.ErrStateNotFound) {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	ledger := history.New(history.DefaultMaxRecords)
	if records, err := store.LoadHistory(ctx); err == nil {
		ledger.Replace(records)
	} else if !errors.Is(err, storage.ErrStateNotFound) {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	backups := backup.New()
	if stored, err := store.LoadBackups(ctx); err == nil {
		backups.Replace(stored)
	} else if !errors.Is(err, storage.ErrStateNotFound) {
		return nil, fmt.Errorf("failed to load backups: %w", err)
	}

	reconciler := reconcile.New(deviceID, logger)

	return &App{
		storage:  store,
		registry: reg,
		ledger:   ledger,
		backups:  backups,
		data:     data.NewService(reg, ledger),
		sync:     clientsync.NewService(apiClient, reg, ledger, reconciler, deviceID, logger),
		logger:   logger,
		deviceID: deviceID,
	}, nil
}

// Save сохраняет реестр, журнал и снимки в локальное хранилище
func (a *App) Save(ctx context.Context) error {
	if err := a.storage.SaveRooms(ctx, a.registry.Snapshot()); err != nil {
		return fmt.Errorf("failed to save rooms: %w", err)
	}
	if err := a.storage.SaveHistory(ctx, a.ledger.Records()); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	if err := a.storage.SaveBackups(ctx, a.backups.List()); err != nil {
		return fmt.Errorf("failed to save backups: %w", err)
	}
	return nil
}
