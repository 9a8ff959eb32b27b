// Package sync реализует цикл синхронизации с удаленным хранилищем:
// выборка пакета записей, слияние через Reconciler, атомарное применение
// результата к реестру и отправка локальных комнат обратно.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"

	httpClient "roomkeeper/internal/client/api"
	"roomkeeper/internal/history"
	"roomkeeper/internal/models"
	"roomkeeper/internal/reconcile"
	"roomkeeper/internal/registry"
	"roomkeeper/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс для sync.Service
type Service interface {
	// Sync выполняет цикл синхронизации с удаленным хранилищем.
	// Если цикл уже выполняется, запрос склеивается в один последующий
	// цикл (Result.Coalesced = true), параллельно циклы не идут.
	Sync(ctx context.Context) (*Result, error)
}

// Result contains sync cycle results
type Result struct {
	FetchedRecords int  // количество записей, полученных с сервера
	AdoptedRooms   int  // принято новых комнат
	UpdatedRooms   int  // локальных комнат обновлено удаленной версией
	DeletedRooms   int  // локальных комнат удалено по tombstone
	SkippedRecords int  // пропущенных записей (искаженная форма)
	PushedRooms    int  // отправлено комнат на сервер
	Coalesced      bool // запрос склеен с уже идущим циклом
}

// service orchestrates synchronization between the local core and the remote store
type service struct {
	apiClient  httpClient.ClientAPI
	registry   *registry.Registry
	ledger     *history.Ledger
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
	deviceID   string

	mu      stdsync.Mutex
	running bool
	pending bool
}

// NewService creates a new sync service
func NewService(
	apiClient httpClient.ClientAPI,
	reg *registry.Registry,
	ledger *history.Ledger,
	reconciler *reconcile.Reconciler,
	deviceID string,
	logger *slog.Logger,
) Service {
	return &service{
		apiClient:  apiClient,
		registry:   reg,
		ledger:     ledger,
		reconciler: reconciler,
		deviceID:   deviceID,
		logger:     logger,
	}
}

// Sync выполняет цикл синхронизации.
// 1. Выбирает пакет записей с сервера
// 2. Сливает его со свежим снимком реестра (Reconciler)
// 3. Атомарно применяет результат и дописывает журнал истории
// 4. Отправляет локальные комнаты на сервер (fire-and-forget)
//
// Одновременно выполняется не более одного цикла: запрос, пришедший во
// время выполнения, помечает follow-up, и текущий цикл повторяется еще
// раз после завершения вместо параллельного запуска.
func (s *service) Sync(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.running {
		s.pending = true
		s.mu.Unlock()
		return &Result{Coalesced: true}, nil
	}
	s.running = true
	s.mu.Unlock()

	for {
		result, err := s.runCycle(ctx)

		s.mu.Lock()
		if s.pending && err == nil && ctx.Err() == nil {
			// Пока цикл шел, пришел новый запрос — выполняем follow-up
			s.pending = false
			s.mu.Unlock()
			continue
		}
		s.running = false
		s.pending = false
		s.mu.Unlock()

		return result, err
	}
}

// runCycle выполняет один цикл синхронизации
func (s *service) runCycle(ctx context.Context) (*Result, error) {
	s.logger.Info("Starting synchronization", "device_id", s.deviceID)

	result := &Result{}

	// Выбираем снимок записей с сервера
	fetchResp, err := s.apiClient.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	result.FetchedRecords = len(fetchResp.Records)

	batch := make([]*models.RemoteRoomRecord, 0, len(fetchResp.Records))
	for i := range fetchResp.Records {
		batch = append(batch, recordFromWire(&fetchResp.Records[i]))
	}

	// Точка отмены: после нее слияние коммитится атомарно,
	// отмена после коммита невозможна
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sync cancelled before commit: %w", err)
	}

	// Снимок реестра читается непосредственно перед вычислением замены:
	// локальная правка, сделанная во время выборки, участвует в слиянии
	// по тому же правилу "новее побеждает" и не может быть затерта более
	// старым удаленным значением
	report := s.reconciler.Merge(s.registry.Snapshot(), batch)

	result.AdoptedRooms = report.AdoptedRooms
	result.UpdatedRooms = report.UpdatedRooms
	result.DeletedRooms = report.DeletedRooms
	result.SkippedRecords = len(report.Skipped)

	if report.Changed() > 0 {
		s.registry.ReplaceAll(report.Rooms, report.Changed())
		s.ledger.AppendAll(report.Records)
	}

	// Отправляем локальные комнаты. Fire-and-forget: неудача push не
	// откатывает примененное слияние, следующий цикл повторит отправку
	if err := s.push(ctx, report.Rooms, result); err != nil {
		s.logger.Warn("Push failed, merged state is kept locally", "error", err)
	}

	s.logger.Info("Synchronization completed",
		"fetched", result.FetchedRecords,
		"adopted", result.AdoptedRooms,
		"updated", result.UpdatedRooms,
		"deleted", result.DeletedRooms,
		"skipped", result.SkippedRecords,
		"pushed", result.PushedRooms)

	return result, nil
}

// push отправляет слитое содержимое реестра на сервер
func (s *service) push(ctx context.Context, rooms []*models.Room, result *Result) error {
	if len(rooms) == 0 {
		return nil
	}

	records := make([]api.RoomRecord, 0, len(rooms))
	for _, room := range rooms {
		remote := models.RemoteFromRoom(room, s.deviceID, room.LastTouched())
		records = append(records, recordToWire(remote))
	}

	pushResp, err := s.apiClient.Push(ctx, api.PushRequest{
		Records:  records,
		DeviceID: s.deviceID,
	})
	if err != nil {
		return err
	}

	result.PushedRooms = pushResp.Accepted
	return nil
}

// recordFromWire конвертирует wire-запись в модель
func recordFromWire(r *api.RoomRecord) *models.RemoteRoomRecord {
	return &models.RemoteRoomRecord{
		ID:            r.ID,
		Number:        r.Number,
		Color:         models.RoomColor(r.Color),
		NoneAt:        r.NoneAt,
		RedAt:         r.RedAt,
		GreenAt:       r.GreenAt,
		BlueAt:        r.BlueAt,
		WhiteAt:       r.WhiteAt,
		AvailableTime: r.AvailableTime,
		IsMarked:      r.IsMarked,
		IsCompleted:   r.IsCompleted,
		IsDeepCleaned: r.IsDeepCleaned,
		IsDeleted:     r.IsDeleted,
		DeviceID:      r.DeviceID,
		LastModified:  r.LastModified,
	}
}

// recordToWire конвертирует модель в wire-запись
func recordToWire(r *models.RemoteRoomRecord) api.RoomRecord {
	return api.RoomRecord{
		ID:            r.ID,
		Number:        r.Number,
		Color:         string(r.Color),
		NoneAt:        r.NoneAt,
		RedAt:         r.RedAt,
		GreenAt:       r.GreenAt,
		BlueAt:        r.BlueAt,
		WhiteAt:       r.WhiteAt,
		AvailableTime: r.AvailableTime,
		IsMarked:      r.IsMarked,
		IsCompleted:   r.IsCompleted,
		IsDeepCleaned: r.IsDeepCleaned,
		IsDeleted:     r.IsDeleted,
		DeviceID:      r.DeviceID,
		LastModified:  r.LastModified,
	}
}
