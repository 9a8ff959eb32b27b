package api

import "time"

// RoomRecord представляет одну комнату в wire-формате удаленного хранилища.
// Это JSON форма RemoteRoomRecord: состояние комнаты плюс часы слияния
// (last_modified), идентификатор устройства и tombstone флаг.
type RoomRecord struct {
	LastModified  time.Time  `json:"last_modified"`
	RedAt         *time.Time `json:"red_at,omitempty"`
	GreenAt       *time.Time `json:"green_at,omitempty"`
	BlueAt        *time.Time `json:"blue_at,omitempty"`
	NoneAt        *time.Time `json:"none_at,omitempty"`
	WhiteAt       *time.Time `json:"white_at,omitempty"`
	ID            string     `json:"id"`
	Number        string     `json:"number"`
	Color         string     `json:"color"`
	AvailableTime string     `json:"available_time"`
	DeviceID      string     `json:"device_id"`
	IsMarked      bool       `json:"is_marked"`
	IsCompleted   bool       `json:"is_completed"`
	IsDeepCleaned bool       `json:"is_deep_cleaned"`
	IsDeleted     bool       `json:"is_deleted"`
}

// FetchResponse представляет ответ сервера на запрос выборки
type FetchResponse struct {
	Records          []RoomRecord `json:"records"`           // Записи комнат (снимок запроса, не подписка)
	CurrentTimestamp time.Time    `json:"current_timestamp"` // Часы сервера на момент выборки
}

// PushRequest представляет запрос на отправку локальных комнат
type PushRequest struct {
	Records  []RoomRecord `json:"records"`
	DeviceID string       `json:"device_id"`
}

// PushResponse представляет ответ сервера на push
type PushResponse struct {
	Accepted int `json:"accepted"` // количество принятых записей (победивших по LWW)
	Rejected int `json:"rejected"` // количество отклоненных записей (существующая версия новее)
}

// ErrorResponse представляет ошибку сервера
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
