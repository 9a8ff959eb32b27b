package storage

import (
	"context"

	"roomkeeper/internal/models"
)

//go:generate moq -out statestorage_mock.go . StateStorage

// StateStorage defines the durable persistence contract for the core state.
// Ядро отдает реестр, журнал и снимки как сериализуемые значения; кодировка
// и носитель — забота реализации хранилища, не ядра.
type StateStorage interface {
	// SaveRooms persists the full room registry content
	SaveRooms(ctx context.Context, rooms []*models.Room) error

	// LoadRooms restores the room registry content
	// Returns ErrStateNotFound if nothing was persisted yet
	LoadRooms(ctx context.Context) ([]*models.Room, error)

	// SaveHistory persists the history ledger records in insertion order
	SaveHistory(ctx context.Context, records []models.HistoryRecord) error

	// LoadHistory restores the history ledger records in insertion order
	// Returns ErrStateNotFound if nothing was persisted yet
	LoadHistory(ctx context.Context) ([]models.HistoryRecord, error)

	// SaveBackups persists all stored backups
	SaveBackups(ctx context.Context, backups []*models.Backup) error

	// LoadBackups restores all stored backups
	// Returns ErrStateNotFound if nothing was persisted yet
	LoadBackups(ctx context.Context) ([]*models.Backup, error)

	// SaveDeviceID persists the stable device identity of this node
	SaveDeviceID(ctx context.Context, deviceID string) error

	// LoadDeviceID restores the stable device identity
	// Returns ErrStateNotFound if no identity was generated yet
	LoadDeviceID(ctx context.Context) (string, error)
}
