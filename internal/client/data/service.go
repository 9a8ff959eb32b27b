// Package data реализует командный слой: применяет команды UI к реестру
// комнат и добавляет ровно одну запись истории на каждую принятую команду.
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roomkeeper/internal/history"
	"roomkeeper/internal/models"
	"roomkeeper/internal/registry"
)

// Статусные метки для записей истории. Это внутренние метки журнала,
// не пользовательский текст: локализация — забота вызывающего (см.
// history.Describe).
const (
	statusMarked       = "marked"
	statusUnmarked     = "unmarked"
	statusCompleted    = "completed"
	statusNotCompleted = "not-completed"
	statusDeepCleaned  = "deep-cleaned"
	statusStandard     = "standard-cleaned"
	statusDeleted      = "deleted"
)

// Service определяет интерфейс командного слоя
type Service interface {
	// AddRoom создает комнату с начальным цветом none
	AddRoom(ctx context.Context, number string) (*models.Room, error)

	// ChangeColor переводит комнату в новый цвет
	ChangeColor(ctx context.Context, number string, color models.RoomColor) error

	// ToggleMark переключает флаг отметки комнаты
	ToggleMark(ctx context.Context, number string) error

	// ToggleCompleted переключает флаг "убрана до контрольного времени"
	ToggleCompleted(ctx context.Context, number string) error

	// ToggleDeepClean переключает флаг генеральной уборки
	ToggleDeepClean(ctx context.Context, number string) error

	// SetAvailableTime устанавливает свободный текст времени доступности
	SetAvailableTime(ctx context.Context, number, availableTime string) error

	// DeleteRoom удаляет комнату из реестра
	DeleteRoom(ctx context.Context, number string) error
}

// service применяет команды к реестру и журналу
type service struct {
	registry *registry.Registry
	ledger   *history.Ledger
}

// NewService creates a new command service
func NewService(reg *registry.Registry, ledger *history.Ledger) Service {
	return &service{
		registry: reg,
		ledger:   ledger,
	}
}

// AddRoom создает комнату с начальным цветом none и noneAt = now
func (s *service) AddRoom(ctx context.Context, number string) (*models.Room, error) {
	if len(number) != 3 {
		return nil, fmt.Errorf("room number %q must be a 3-character floor+index code", number)
	}

	now := time.Now()
	room := models.NewRoom(uuid.New().String(), number, now)

	if err := s.registry.Insert(room); err != nil {
		return nil, fmt.Errorf("failed to add room: %w", err)
	}

	s.appendRecord(number, "", string(models.ColorNone), models.ActionAdd, now)
	return room, nil
}

// ChangeColor переводит комнату в цвет color и обновляет timestamp цвета
func (s *service) ChangeColor(ctx context.Context, number string, color models.RoomColor) error {
	if !color.IsValid() {
		return fmt.Errorf("unknown color %q", color)
	}

	room, err := s.registry.Get(number)
	if err != nil {
		return fmt.Errorf("failed to change color: %w", err)
	}

	oldColor := room.Color
	now := time.Now()
	room.SetColor(color, now)

	if err := s.registry.UpdateByID(room.ID, room); err != nil {
		return fmt.Errorf("failed to change color: %w", err)
	}

	s.appendRecord(number, string(oldColor), string(color), models.ActionChange, now)
	return nil
}

// ToggleMark переключает флаг отметки
func (s *service) ToggleMark(ctx context.Context, number string) error {
	return s.toggle(number, models.ActionMark, func(room *models.Room) (string, string) {
		room.IsMarked = !room.IsMarked
		if room.IsMarked {
			return statusUnmarked, statusMarked
		}
		return statusMarked, statusUnmarked
	})
}

// ToggleCompleted переключает флаг "убрана до контрольного времени"
func (s *service) ToggleCompleted(ctx context.Context, number string) error {
	return s.toggle(number, models.ActionComplete, func(room *models.Room) (string, string) {
		room.IsCompleted = !room.IsCompleted
		if room.IsCompleted {
			return statusNotCompleted, statusCompleted
		}
		return statusCompleted, statusNotCompleted
	})
}

// ToggleDeepClean переключает флаг генеральной уборки
func (s *service) ToggleDeepClean(ctx context.Context, number string) error {
	return s.toggle(number, models.ActionDeepClean, func(room *models.Room) (string, string) {
		room.IsDeepCleaned = !room.IsDeepCleaned
		if room.IsDeepCleaned {
			return statusStandard, statusDeepCleaned
		}
		return statusDeepCleaned, statusStandard
	})
}

// SetAvailableTime устанавливает свободный текст времени доступности.
// Запись истории не добавляется: текст не является переходом статуса.
func (s *service) SetAvailableTime(ctx context.Context, number, availableTime string) error {
	room, err := s.registry.Get(number)
	if err != nil {
		return fmt.Errorf("failed to set available time: %w", err)
	}

	room.AvailableTime = availableTime
	if err := s.registry.UpdateByID(room.ID, room); err != nil {
		return fmt.Errorf("failed to set available time: %w", err)
	}
	return nil
}

// DeleteRoom удаляет комнату из реестра
func (s *service) DeleteRoom(ctx context.Context, number string) error {
	room, err := s.registry.Get(number)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	if err := s.registry.RemoveByID(room.ID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.appendRecord(number, string(room.Color), statusDeleted, models.ActionDelete, time.Now())
	return nil
}

// toggle применяет мутацию флага и записывает переход статуса
func (s *service) toggle(number string, action models.ActionType, mutate func(*models.Room) (string, string)) error {
	room, err := s.registry.Get(number)
	if err != nil {
		return fmt.Errorf("failed to toggle: %w", err)
	}

	oldStatus, newStatus := mutate(room)

	if err := s.registry.UpdateByID(room.ID, room); err != nil {
		return fmt.Errorf("failed to toggle: %w", err)
	}

	s.appendRecord(number, oldStatus, newStatus, action, time.Now())
	return nil
}

func (s *service) appendRecord(number, oldStatus, newStatus string, action models.ActionType, now time.Time) {
	s.ledger.Append(models.HistoryRecord{
		ID:         uuid.New().String(),
		Timestamp:  now,
		RoomNumber: number,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		ActionType: action,
	})
}
