package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roomkeeper/internal/models"
	"roomkeeper/internal/server/storage"
)

// SaveRecord creates or updates a room record in the storage.
// Применяется правило LWW: запись сохраняется только если она новее
// существующей (при равных часах побеждает больший device_id).
// Returns true if record was saved, false if existing record is newer.
func (s *Storage) SaveRecord(ctx context.Context, record *models.RemoteRoomRecord) (bool, error) {
	// Проверяем существующую запись
	existing, err := s.GetRecord(ctx, record.Number)
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check existing record: %w", err)
	}

	if existing != nil {
		// Существующая запись новее - не сохраняем
		if !record.WinsOver(existing.LastModified, existing.DeviceID) {
			return false, nil
		}

		query := `
			UPDATE rooms
			SET id = ?, color = ?, none_at = ?, red_at = ?, green_at = ?,
			    blue_at = ?, white_at = ?, available_time = ?, is_marked = ?,
			    is_completed = ?, is_deep_cleaned = ?, is_deleted = ?,
			    device_id = ?, last_modified = ?
			WHERE number = ?
		`

		_, err := s.db.ExecContext(ctx, query,
			record.ID,
			string(record.Color),
			nullableUnixNano(record.NoneAt),
			nullableUnixNano(record.RedAt),
			nullableUnixNano(record.GreenAt),
			nullableUnixNano(record.BlueAt),
			nullableUnixNano(record.WhiteAt),
			record.AvailableTime,
			boolToInt(record.IsMarked),
			boolToInt(record.IsCompleted),
			boolToInt(record.IsDeepCleaned),
			boolToInt(record.IsDeleted),
			record.DeviceID,
			record.LastModified.UnixNano(),
			record.Number,
		)
		if err != nil {
			return false, fmt.Errorf("failed to update record: %w", err)
		}
		return true, nil
	}

	// Создаем новую запись
	query := `
		INSERT INTO rooms (
			number, id, color, none_at, red_at, green_at, blue_at, white_at,
			available_time, is_marked, is_completed, is_deep_cleaned,
			is_deleted, device_id, last_modified
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		record.Number,
		record.ID,
		string(record.Color),
		nullableUnixNano(record.NoneAt),
		nullableUnixNano(record.RedAt),
		nullableUnixNano(record.GreenAt),
		nullableUnixNano(record.BlueAt),
		nullableUnixNano(record.WhiteAt),
		record.AvailableTime,
		boolToInt(record.IsMarked),
		boolToInt(record.IsCompleted),
		boolToInt(record.IsDeepCleaned),
		boolToInt(record.IsDeleted),
		record.DeviceID,
		record.LastModified.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert record: %w", err)
	}
	return true, nil
}

// GetRecord retrieves a room record by room number
func (s *Storage) GetRecord(ctx context.Context, number string) (*models.RemoteRoomRecord, error) {
	query := `
		SELECT number, id, color, none_at, red_at, green_at, blue_at, white_at,
		       available_time, is_marked, is_completed, is_deep_cleaned,
		       is_deleted, device_id, last_modified
		FROM rooms
		WHERE number = ?
	`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// GetAllRecords returns all records including tombstones, ordered by room number
func (s *Storage) GetAllRecords(ctx context.Context) ([]*models.RemoteRoomRecord, error) {
	query := `
		SELECT number, id, color, none_at, red_at, green_at, blue_at, white_at,
		       available_time, is_marked, is_completed, is_deep_cleaned,
		       is_deleted, device_id, last_modified
		FROM rooms
		ORDER BY number
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*models.RemoteRoomRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return records, nil
}

// scanner абстрагирует sql.Row и sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord читает одну строку таблицы rooms
func scanRecord(row scanner) (*models.RemoteRoomRecord, error) {
	var (
		record       models.RemoteRoomRecord
		color        string
		noneAt       sql.NullInt64
		redAt        sql.NullInt64
		greenAt      sql.NullInt64
		blueAt       sql.NullInt64
		whiteAt      sql.NullInt64
		isMarked     int
		isCompleted  int
		isDeepClean  int
		isDeleted    int
		lastModified int64
	)

	err := row.Scan(
		&record.Number,
		&record.ID,
		&color,
		&noneAt,
		&redAt,
		&greenAt,
		&blueAt,
		&whiteAt,
		&record.AvailableTime,
		&isMarked,
		&isCompleted,
		&isDeepClean,
		&isDeleted,
		&record.DeviceID,
		&lastModified,
	)
	if err != nil {
		return nil, err
	}

	record.Color = models.RoomColor(color)
	record.NoneAt = timeFromUnixNano(noneAt)
	record.RedAt = timeFromUnixNano(redAt)
	record.GreenAt = timeFromUnixNano(greenAt)
	record.BlueAt = timeFromUnixNano(blueAt)
	record.WhiteAt = timeFromUnixNano(whiteAt)
	record.IsMarked = isMarked != 0
	record.IsCompleted = isCompleted != 0
	record.IsDeepCleaned = isDeepClean != 0
	record.IsDeleted = isDeleted != 0
	record.LastModified = time.Unix(0, lastModified)

	return &record, nil
}

// nullableUnixNano конвертирует опциональный timestamp в nullable колонку
func nullableUnixNano(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

// timeFromUnixNano конвертирует nullable колонку в опциональный timestamp
func timeFromUnixNano(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(0, v.Int64)
	return &t
}

// boolToInt конвертирует bool в int для SQLite
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
