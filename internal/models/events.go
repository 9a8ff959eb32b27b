package models

// EventType представляет тип события изменения реестра
type EventType string

// Типы событий изменения
const (
	EventRoomAdded   EventType = "room_added"
	EventRoomChanged EventType = "room_changed"
	EventRoomDeleted EventType = "room_deleted"
	EventSyncApplied EventType = "sync_applied"
)

// ChangeEvent представляет одно типизированное событие изменения реестра.
// Каждая мутирующая операция публикует событие для подписчиков вместо
// неявного широковещательного оповещения.
//
// RoomNumber пуст для EventSyncApplied: это событие описывает применение
// целого результата слияния, Changed содержит число затронутых комнат.
type ChangeEvent struct {
	Type       EventType
	RoomNumber string
	Changed    int
}
