package models

import "time"

// Backup представляет именованный снимок полного набора комнат.
// Rooms — независимая глубокая копия содержимого реестра на момент
// создания: последующие изменения реестра не затрагивают снимок.
type Backup struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rooms     []*Room   `json:"rooms"`
}

// CloneRooms возвращает глубокую копию комнат снимка.
// Вызывается при восстановлении, чтобы реестр не делил память со снимком.
func (b *Backup) CloneRooms() []*Room {
	rooms := make([]*Room, 0, len(b.Rooms))
	for _, room := range b.Rooms {
		rooms = append(rooms, room.Clone())
	}
	return rooms
}
