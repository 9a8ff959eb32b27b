// Package view содержит чистые производные представления реестра комнат.
package view

import "roomkeeper/internal/models"

// FloorFilter представляет набор активных этажей.
// Этаж комнаты — первый символ ее номера.
type FloorFilter struct {
	active map[byte]bool
}

// NewFloorFilter создает фильтр с заданным набором активных этажей.
// Пустой набор означает "ни один этаж не активен".
func NewFloorFilter(floors ...byte) *FloorFilter {
	active := make(map[byte]bool, len(floors))
	for _, floor := range floors {
		active[floor] = true
	}
	return &FloorFilter{active: active}
}

// Contains проверяет активен ли этаж
func (f *FloorFilter) Contains(floor byte) bool {
	return f.active[floor]
}

// Apply возвращает подпоследовательность комнат, чей этаж входит в
// активный набор. Порядок rooms сохраняется, вход не мутируется.
func (f *FloorFilter) Apply(rooms []*models.Room) []*models.Room {
	result := make([]*models.Room, 0, len(rooms))
	for _, room := range rooms {
		if f.active[room.Floor()] {
			result = append(result, room)
		}
	}
	return result
}
