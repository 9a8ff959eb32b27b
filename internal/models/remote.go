package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedRemoteRecord indicates that a remote record in a sync batch
// has an invalid shape and must be skipped
var ErrMalformedRemoteRecord = errors.New("malformed remote record")

// RemoteRoomRecord представляет запись комнаты, полученную из удаленного
// хранилища. Те же поля что у Room плюс:
//   - LastModified — авторитетные часы слияния
//   - DeviceID — идентичность устройства для tie-break
//   - IsDeleted — tombstone флаг удаления
//
// Reconciler обращается с этой записью как с read-only входом.
type RemoteRoomRecord struct {
	LastModified  time.Time  `json:"last_modified"`
	NoneAt        *time.Time `json:"none_at,omitempty"`
	RedAt         *time.Time `json:"red_at,omitempty"`
	GreenAt       *time.Time `json:"green_at,omitempty"`
	BlueAt        *time.Time `json:"blue_at,omitempty"`
	WhiteAt       *time.Time `json:"white_at,omitempty"`
	ID            string     `json:"id"`
	Number        string     `json:"number"`
	Color         RoomColor  `json:"color"`
	AvailableTime string     `json:"available_time"`
	DeviceID      string     `json:"device_id"`
	IsMarked      bool       `json:"is_marked"`
	IsCompleted   bool       `json:"is_completed"`
	IsDeepCleaned bool       `json:"is_deep_cleaned"`
	IsDeleted     bool       `json:"is_deleted"`
}

// Validate проверяет форму записи. Возвращает ErrMalformedRemoteRecord
// (обернутый с деталями), если запись нельзя безопасно применить.
func (r *RemoteRoomRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrMalformedRemoteRecord)
	}
	if len(r.Number) != 3 {
		return fmt.Errorf("%w: room number %q must be 3 characters", ErrMalformedRemoteRecord, r.Number)
	}
	if !r.Color.IsValid() {
		return fmt.Errorf("%w: unknown color %q", ErrMalformedRemoteRecord, r.Color)
	}
	if r.LastModified.IsZero() {
		return fmt.Errorf("%w: zero last_modified", ErrMalformedRemoteRecord)
	}
	if r.DeviceID == "" {
		return fmt.Errorf("%w: empty device_id", ErrMalformedRemoteRecord)
	}
	return nil
}

// WinsOver определяет, побеждает ли удаленная запись локальное состояние
// по правилу LWW (Last-Write-Wins):
//  1. Сравниваются часы: remote LastModified против локальных часов
//     "последнего касания" (больший выигрывает)
//  2. При точном равенстве часов сравниваются device id лексикографически —
//     побеждает больший. Это дает детерминированный полный порядок: два
//     устройства, сливающие одни и те же входы, сходятся к одному победителю.
func (r *RemoteRoomRecord) WinsOver(localClock time.Time, localDeviceID string) bool {
	if r.LastModified.After(localClock) {
		return true
	}
	if r.LastModified.Before(localClock) {
		return false
	}
	// Часы равны — детерминированный tie-break по device id
	return r.DeviceID > localDeviceID
}

// ToRoom конвертирует удаленную запись в локальную комнату.
// Цветовые timestamps копируются, чтобы комната не делила память
// с read-only входом.
func (r *RemoteRoomRecord) ToRoom() *Room {
	return &Room{
		ID:            r.ID,
		Number:        r.Number,
		Color:         r.Color,
		NoneAt:        cloneTime(r.NoneAt),
		RedAt:         cloneTime(r.RedAt),
		GreenAt:       cloneTime(r.GreenAt),
		BlueAt:        cloneTime(r.BlueAt),
		WhiteAt:       cloneTime(r.WhiteAt),
		AvailableTime: r.AvailableTime,
		IsMarked:      r.IsMarked,
		IsCompleted:   r.IsCompleted,
		IsDeepCleaned: r.IsDeepCleaned,
	}
}

// RemoteFromRoom строит wire-запись из локальной комнаты для push.
// lastModified задается вызывающим (обычно LastTouched комнаты).
func RemoteFromRoom(room *Room, deviceID string, lastModified time.Time) *RemoteRoomRecord {
	return &RemoteRoomRecord{
		ID:            room.ID,
		Number:        room.Number,
		Color:         room.Color,
		NoneAt:        cloneTime(room.NoneAt),
		RedAt:         cloneTime(room.RedAt),
		GreenAt:       cloneTime(room.GreenAt),
		BlueAt:        cloneTime(room.BlueAt),
		WhiteAt:       cloneTime(room.WhiteAt),
		AvailableTime: room.AvailableTime,
		IsMarked:      room.IsMarked,
		IsCompleted:   room.IsCompleted,
		IsDeepCleaned: room.IsDeepCleaned,
		DeviceID:      deviceID,
		LastModified:  lastModified,
	}
}
