// Package reconcile реализует слияние локального реестра комнат с пакетом
// записей удаленного хранилища по правилу Last-Write-Wins.
//
// Слияние идемпотентно и коммутативно относительно порядка устройств:
// два устройства, сливающие одни и те же входы, сходятся к одному
// результату. Удаленный вход никогда не мутируется.
package reconcile

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"roomkeeper/internal/models"
)

// Reconciler выполняет слияние локального состояния с удаленным
type Reconciler struct {
	logger   *slog.Logger
	deviceID string
}

// New создает Reconciler. deviceID — идентичность этого устройства,
// используется для детерминированного tie-break при равных часах.
func New(deviceID string, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		deviceID: deviceID,
		logger:   logger,
	}
}

// SkippedRecord описывает одну пропущенную запись пакета
type SkippedRecord struct {
	Err    error
	ID     string
	Number string
}

// Report содержит результат одного цикла слияния: новое содержимое
// реестра плюс записи истории, объясняющие каждое изменение.
type Report struct {
	Rooms   []*models.Room         // слитое содержимое реестра, по номеру
	Records []models.HistoryRecord // записи истории для журнала
	Skipped []SkippedRecord        // пропущенные записи пакета

	AdoptedRooms int // принято новых комнат с сервера
	UpdatedRooms int // локальных комнат обновлено удаленной версией
	DeletedRooms int // локальных комнат удалено по tombstone
	KeptRooms    int // локальных комнат сохранено без изменений
}

// Changed возвращает общее число комнат, фактически затронутых слиянием
func (r *Report) Changed() int {
	return r.AdoptedRooms + r.UpdatedRooms + r.DeletedRooms
}

// Merge сливает локальный снимок local с пакетом удаленных записей batch.
//
// Правила, для каждого номера комнаты, присутствующего с любой стороны:
//   - только локально: комната сохраняется без изменений и без записи
//     истории — обычный случай для еще не отправленной комнаты;
//   - только удаленно, не tombstone: запись принимается как новая
//     локальная комната, в историю добавляется sync-update;
//   - только удаленно, tombstone: no-op, комнаты локально никогда не было;
//   - обе стороны: remote last_modified сравнивается с локальными часами
//     последнего касания; строго более новая удаленная версия принимается
//     целиком, строго более новая локальная сохраняется. Устаревший
//     tombstone никогда не удаляет живую локальную комнату — удаление
//     должно быть явным, безопасность данных важнее скорости сходимости;
//   - удаленный tombstone строго новее локальных часов: комната удаляется,
//     в историю добавляется sync-delete.
//
// Искаженная запись пакета (ErrMalformedRemoteRecord) пропускается и
// попадает в отчет; остальной пакет применяется — комнаты независимы,
// частичный отказ допустим.
func (r *Reconciler) Merge(local []*models.Room, batch []*models.RemoteRoomRecord) *Report {
	report := &Report{}

	merged := make(map[string]*models.Room, len(local))
	for _, room := range local {
		merged[room.Number] = room.Clone()
	}

	now := time.Now()

	for _, record := range batch {
		if err := record.Validate(); err != nil {
			r.logger.Warn("Skipping malformed remote record",
				"record_id", record.ID,
				"room_number", record.Number,
				"error", err)
			report.Skipped = append(report.Skipped, SkippedRecord{
				ID:     record.ID,
				Number: record.Number,
				Err:    err,
			})
			continue
		}

		existing, exists := merged[record.Number]

		if !exists {
			if record.IsDeleted {
				// Tombstone для комнаты, которой локально никогда не было
				continue
			}

			merged[record.Number] = record.ToRoom()
			report.AdoptedRooms++
			report.Records = append(report.Records, models.HistoryRecord{
				ID:         uuid.New().String(),
				Timestamp:  now,
				RoomNumber: record.Number,
				OldStatus:  string(models.ColorNone),
				NewStatus:  string(record.Color),
				ActionType: models.ActionSyncUpdate,
			})
			continue
		}

		if !record.WinsOver(existing.LastTouched(), r.deviceID) {
			// Локальная версия строго новее (или выигрывает tie-break) —
			// сохраняем ее, даже если удаленная запись tombstone
			report.KeptRooms++
			continue
		}

		if record.IsDeleted {
			delete(merged, record.Number)
			report.DeletedRooms++
			report.Records = append(report.Records, models.HistoryRecord{
				ID:         uuid.New().String(),
				Timestamp:  now,
				RoomNumber: record.Number,
				OldStatus:  string(existing.Color),
				NewStatus:  "deleted",
				ActionType: models.ActionSyncDelete,
			})
			continue
		}

		adopted := record.ToRoom()
		if existing.Equal(adopted) {
			// Значения уже сошлись — повторное применение пакета не
			// производит ни изменений, ни записей истории
			report.KeptRooms++
			continue
		}

		merged[record.Number] = adopted
		report.UpdatedRooms++
		report.Records = append(report.Records, models.HistoryRecord{
			ID:         uuid.New().String(),
			Timestamp:  now,
			RoomNumber: record.Number,
			OldStatus:  string(existing.Color),
			NewStatus:  string(record.Color),
			ActionType: models.ActionSyncUpdate,
		})
	}

	report.Rooms = make([]*models.Room, 0, len(merged))
	for _, room := range merged {
		report.Rooms = append(report.Rooms, room)
	}
	sort.Slice(report.Rooms, func(i, j int) bool {
		return report.Rooms[i].Number < report.Rooms[j].Number
	})

	r.logger.Debug("Merge completed",
		"adopted", report.AdoptedRooms,
		"updated", report.UpdatedRooms,
		"deleted", report.DeletedRooms,
		"kept", report.KeptRooms,
		"skipped", len(report.Skipped))

	return report
}
