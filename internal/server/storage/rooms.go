package storage

import (
	"context"

	"roomkeeper/internal/models"
)

// RoomStorage определяет интерфейс серверного хранилища записей комнат.
// Хранилище применяет то же правило LWW, что и клиенты: запись
// сохраняется только если она новее существующей.
type RoomStorage interface {
	// SaveRecord stores a room record using LWW rules
	// Returns true if the record won and was saved, false if the
	// existing record is newer
	SaveRecord(ctx context.Context, record *models.RemoteRoomRecord) (bool, error)

	// GetRecord retrieves a room record by room number
	// Returns ErrRecordNotFound if the record does not exist
	GetRecord(ctx context.Context, number string) (*models.RemoteRoomRecord, error)

	// GetAllRecords returns all records including tombstones,
	// ordered by room number
	GetAllRecords(ctx context.Context) ([]*models.RemoteRoomRecord, error)
}
