// Package registry реализует канонический реестр комнат — keyed коллекцию
// записей Room в памяти. Ключ — номер комнаты, значения уникальны по ID.
//
// Все мутации тотальны: операция либо полностью успешна и реестр остается
// консистентным, либо завершается ошибкой и реестр не изменен.
// Конкурентные читатели видят консистентный снимок (copy-then-swap при
// полной замене, глубокие копии при чтении).
package registry

import (
	"errors"
	"sort"
	"sync"

	"roomkeeper/internal/models"
)

// Ошибки реестра
var (
	// ErrDuplicateRoomNumber indicates that a room with this number already exists
	ErrDuplicateRoomNumber = errors.New("duplicate room number")

	// ErrRoomNotFound indicates that room was not found in the registry
	ErrRoomNotFound = errors.New("room not found")
)

// eventBufferSize размер буфера канала событий. Публикация неблокирующая:
// если подписчик не успевает, событие отбрасывается.
const eventBufferSize = 64

// Registry представляет реестр комнат
type Registry struct {
	byNumber map[string]*models.Room // map[number]room
	byID     map[string]string       // map[id]number
	events   chan models.ChangeEvent
	mu       sync.RWMutex
}

// New создает пустой реестр комнат
func New() *Registry {
	return &Registry{
		byNumber: make(map[string]*models.Room),
		byID:     make(map[string]string),
		events:   make(chan models.ChangeEvent, eventBufferSize),
	}
}

// Events возвращает канал типизированных событий изменения.
// Канал общий для всех подписчиков и никогда не закрывается реестром.
func (r *Registry) Events() <-chan models.ChangeEvent {
	return r.events
}

// Insert добавляет новую комнату. Возвращает ErrDuplicateRoomNumber,
// если комната с таким номером уже существует.
func (r *Registry) Insert(room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byNumber[room.Number]; exists {
		return ErrDuplicateRoomNumber
	}

	clone := room.Clone()
	r.byNumber[clone.Number] = clone
	r.byID[clone.ID] = clone.Number

	r.emit(models.ChangeEvent{Type: models.EventRoomAdded, RoomNumber: clone.Number, Changed: 1})
	return nil
}

// UpdateByID заменяет комнату с заданным ID новым содержимым.
// Возвращает ErrRoomNotFound, если комнаты с таким ID нет, и
// ErrDuplicateRoomNumber, если новый номер занят другой комнатой.
func (r *Registry) UpdateByID(id string, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oldNumber, exists := r.byID[id]
	if !exists {
		return ErrRoomNotFound
	}

	// Смена номера не должна столкнуться с другой комнатой
	if room.Number != oldNumber {
		if _, taken := r.byNumber[room.Number]; taken {
			return ErrDuplicateRoomNumber
		}
	}

	clone := room.Clone()
	clone.ID = id

	delete(r.byNumber, oldNumber)
	r.byNumber[clone.Number] = clone
	r.byID[id] = clone.Number

	r.emit(models.ChangeEvent{Type: models.EventRoomChanged, RoomNumber: clone.Number, Changed: 1})
	return nil
}

// RemoveByID удаляет комнату по ID.
// Возвращает ErrRoomNotFound, если комнаты с таким ID нет.
func (r *Registry) RemoveByID(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	number, exists := r.byID[id]
	if !exists {
		return ErrRoomNotFound
	}

	delete(r.byNumber, number)
	delete(r.byID, id)

	r.emit(models.ChangeEvent{Type: models.EventRoomDeleted, RoomNumber: number, Changed: 1})
	return nil
}

// Get возвращает глубокую копию комнаты по номеру.
// Возвращает ErrRoomNotFound, если комнаты с таким номером нет.
func (r *Registry) Get(number string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.byNumber[number]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return room.Clone(), nil
}

// GetByID возвращает глубокую копию комнаты по ID.
func (r *Registry) GetByID(id string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	number, exists := r.byID[id]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return r.byNumber[number].Clone(), nil
}

// Snapshot возвращает глубокую копию всех комнат, упорядоченную по номеру.
// Порядок детерминирован: производные представления (фильтр этажей,
// снимки резервных копий) сохраняют его.
func (r *Registry) Snapshot() []*models.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*models.Room, 0, len(r.byNumber))
	for _, room := range r.byNumber {
		rooms = append(rooms, room.Clone())
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].Number < rooms[j].Number
	})
	return rooms
}

// Size возвращает количество комнат в реестре
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byNumber)
}

// ReplaceAll атомарно заменяет все содержимое реестра набором rooms.
// Используется при применении результата слияния и при восстановлении
// резервной копии: новые индексы строятся в стороне и подменяются одним
// присваиванием под блокировкой (copy-then-swap), читатель не может
// увидеть частично примененную замену.
//
// changed — число комнат, фактически затронутых заменой; попадает в
// событие EventSyncApplied.
func (r *Registry) ReplaceAll(rooms []*models.Room, changed int) {
	byNumber := make(map[string]*models.Room, len(rooms))
	byID := make(map[string]string, len(rooms))
	for _, room := range rooms {
		clone := room.Clone()
		byNumber[clone.Number] = clone
		byID[clone.ID] = clone.Number
	}

	r.mu.Lock()
	r.byNumber = byNumber
	r.byID = byID
	r.mu.Unlock()

	r.emit(models.ChangeEvent{Type: models.EventSyncApplied, Changed: changed})
}

// emit публикует событие без блокировки.
func (r *Registry) emit(event models.ChangeEvent) {
	select {
	case r.events <- event:
	default:
		// Подписчик не читает — отбрасываем, мутации не ждут UI
	}
}
