package models

import "time"

// ActionType представляет тип действия в журнале истории
type ActionType string

// Типы действий
const (
	ActionAdd        ActionType = "add"
	ActionChange     ActionType = "change"
	ActionMark       ActionType = "mark"
	ActionComplete   ActionType = "complete"
	ActionDeepClean  ActionType = "deep-clean"
	ActionDelete     ActionType = "delete"
	ActionSyncUpdate ActionType = "sync-update"
	ActionSyncDelete ActionType = "sync-delete"
)

// HistoryRecord представляет одну запись в журнале истории изменений.
// Запись неизменяема после создания: журнал владеет ей эксклюзивно.
//
// OldStatus и NewStatus — свободные текстовые метки статуса, не
// обязательно цвета (например "marked", "deep-cleaned").
type HistoryRecord struct {
	Timestamp  time.Time  `json:"timestamp"`
	ID         string     `json:"id"`
	RoomNumber string     `json:"room_number"`
	OldStatus  string     `json:"old_status"`
	NewStatus  string     `json:"new_status"`
	ActionType ActionType `json:"action_type"`
}

// Day возвращает календарный день записи (timestamp, усеченный до полуночи
// в своей временной зоне). Используется для группировки журнала по дням.
func (h *HistoryRecord) Day() time.Time {
	y, m, d := h.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, h.Timestamp.Location())
}
