// Package backup реализует хранилище именованных снимков реестра комнат.
// Хранилище пассивно: автоматические снимки создает внешний планировщик.
package backup

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"roomkeeper/internal/history"
	"roomkeeper/internal/models"
	"roomkeeper/internal/registry"
)

// Ошибки хранилища снимков
var (
	// ErrBackupNotFound indicates that backup with this id does not exist
	ErrBackupNotFound = errors.New("backup not found")

	// ErrRestoreFailed indicates that the backup payload could not be applied;
	// the registry is left untouched
	ErrRestoreFailed = errors.New("restore failed")
)

// Store представляет хранилище резервных копий
type Store struct {
	backups map[string]*models.Backup // map[id]backup
	mu      sync.RWMutex
}

// New создает пустое хранилище снимков
func New() *Store {
	return &Store{
		backups: make(map[string]*models.Backup),
	}
}

// Create сохраняет независимую копию снимка snapshot под именем name
// с текущим timestamp. Возвращает id нового снимка.
func (s *Store) Create(name string, snapshot []*models.Room) string {
	rooms := make([]*models.Room, 0, len(snapshot))
	for _, room := range snapshot {
		rooms = append(rooms, room.Clone())
	}

	b := &models.Backup{
		ID:        uuid.New().String(),
		Name:      name,
		Timestamp: time.Now(),
		Rooms:     rooms,
	}

	s.mu.Lock()
	s.backups[b.ID] = b
	s.mu.Unlock()

	return b.ID
}

// Get возвращает снимок по id.
// Возвращает ErrBackupNotFound, если снимка с таким id нет.
func (s *Store) Get(id string) (*models.Backup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.backups[id]
	if !exists {
		return nil, ErrBackupNotFound
	}
	return b, nil
}

// List возвращает все снимки, упорядоченные от новых к старым
func (s *Store) List() []*models.Backup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	backups := make([]*models.Backup, 0, len(s.backups))
	for _, b := range s.backups {
		backups = append(backups, b)
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups
}

// Delete удаляет снимок по id.
// Возвращает ErrBackupNotFound, если снимка с таким id нет.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.backups[id]; !exists {
		return ErrBackupNotFound
	}
	delete(s.backups, id)
	return nil
}

// Restore восстанавливает снимок id в реестр reg.
//
// Вычисляется разница между текущими комнатами реестра и комнатами снимка
// (по номеру): на каждую измененную или добавляемую комнату в журнал
// добавляется запись sync-update, на каждую комнату, которая есть сейчас,
// но отсутствует в снимке — sync-delete. Затем содержимое реестра атомарно
// заменяется содержимым снимка.
//
// Операция все-или-ничего: если полезная нагрузка снимка не может быть
// применена, реестр не изменяется и возвращается ErrRestoreFailed.
func (s *Store) Restore(id string, reg *registry.Registry, ledger *history.Ledger) error {
	s.mu.RLock()
	b, exists := s.backups[id]
	s.mu.RUnlock()

	if !exists {
		return ErrBackupNotFound
	}

	// Копируем полезную нагрузку до каких-либо изменений реестра
	restored := b.CloneRooms()

	// Поврежденный снимок (дубликаты номеров) применять нельзя
	seen := make(map[string]bool, len(restored))
	for _, room := range restored {
		if seen[room.Number] {
			return fmt.Errorf("%w: duplicate room number %q in backup payload", ErrRestoreFailed, room.Number)
		}
		seen[room.Number] = true
	}

	current := reg.Snapshot()
	currentByNumber := make(map[string]*models.Room, len(current))
	for _, room := range current {
		currentByNumber[room.Number] = room
	}

	now := time.Now()
	var records []models.HistoryRecord

	// Измененные и добавляемые комнаты
	restoredByNumber := make(map[string]*models.Room, len(restored))
	for _, room := range restored {
		restoredByNumber[room.Number] = room

		existing, ok := currentByNumber[room.Number]
		if ok && existing.Equal(room) {
			continue
		}

		oldStatus := string(models.ColorNone)
		if ok {
			oldStatus = string(existing.Color)
		}
		records = append(records, models.HistoryRecord{
			ID:         uuid.New().String(),
			Timestamp:  now,
			RoomNumber: room.Number,
			OldStatus:  oldStatus,
			NewStatus:  string(room.Color),
			ActionType: models.ActionSyncUpdate,
		})
	}

	// Комнаты, которые есть сейчас, но отсутствуют в снимке
	for _, room := range current {
		if _, ok := restoredByNumber[room.Number]; ok {
			continue
		}
		records = append(records, models.HistoryRecord{
			ID:         uuid.New().String(),
			Timestamp:  now,
			RoomNumber: room.Number,
			OldStatus:  string(room.Color),
			NewStatus:  "deleted",
			ActionType: models.ActionSyncDelete,
		})
	}

	ledger.AppendAll(records)
	reg.ReplaceAll(restored, len(records))

	return nil
}

// Replace заменяет содержимое хранилища снимками backups.
// Используется при восстановлении из персистентного хранилища на старте.
func (s *Store) Replace(backups []*models.Backup) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backups = make(map[string]*models.Backup, len(backups))
	for _, b := range backups {
		s.backups[b.ID] = b
	}
}
