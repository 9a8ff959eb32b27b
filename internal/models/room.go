package models

import "time"

// RoomColor представляет цвет статуса уборки комнаты
type RoomColor string

// Цвета статусов уборки
const (
	ColorNone   RoomColor = "none"
	ColorRed    RoomColor = "red"
	ColorGreen  RoomColor = "green"
	ColorPurple RoomColor = "purple"
	ColorBlue   RoomColor = "blue"
	ColorWhite  RoomColor = "white"
)

// IsValid проверяет что цвет является одним из известных значений
func (c RoomColor) IsValid() bool {
	switch c {
	case ColorNone, ColorRed, ColorGreen, ColorPurple, ColorBlue, ColorWhite:
		return true
	}
	return false
}

// Room представляет одну комнату в реестре уборки.
// Идентичность: стабильный ID (UUID, генерируется один раз) плюс
// человеко-читаемый Number — трехсимвольный код этаж+индекс,
// уникальный внутри реестра.
//
// Для каждого цвета хранится опциональный timestamp момента, когда комната
// последний раз перешла в этот цвет. Переход в цвет X обновляет только
// timestamp X; остальные сохраняются как история.
type Room struct {
	NoneAt        *time.Time `json:"none_at,omitempty"`
	RedAt         *time.Time `json:"red_at,omitempty"`
	GreenAt       *time.Time `json:"green_at,omitempty"`
	BlueAt        *time.Time `json:"blue_at,omitempty"`
	WhiteAt       *time.Time `json:"white_at,omitempty"`
	ID            string     `json:"id"`
	Number        string     `json:"number"`
	Color         RoomColor  `json:"color"`
	AvailableTime string     `json:"available_time"`
	IsMarked      bool       `json:"is_marked"`
	IsCompleted   bool       `json:"is_completed"`
	IsDeepCleaned bool       `json:"is_deep_cleaned"`
}

// NewRoom создает новую комнату с начальным цветом none.
// noneAt устанавливается в момент создания.
func NewRoom(id, number string, now time.Time) *Room {
	return &Room{
		ID:     id,
		Number: number,
		Color:  ColorNone,
		NoneAt: &now,
	}
}

// Floor возвращает этаж комнаты — первый символ номера.
// Для пустого номера возвращает 0.
func (r *Room) Floor() byte {
	if r.Number == "" {
		return 0
	}
	return r.Number[0]
}

// SetColor переводит комнату в новый цвет и обновляет timestamp этого
// цвета. Timestamps остальных цветов не очищаются.
// Цвет purple не имеет собственного timestamp поля.
func (r *Room) SetColor(color RoomColor, now time.Time) {
	r.Color = color

	ts := now
	switch color {
	case ColorNone:
		r.NoneAt = &ts
	case ColorRed:
		r.RedAt = &ts
	case ColorGreen:
		r.GreenAt = &ts
	case ColorBlue:
		r.BlueAt = &ts
	case ColorWhite:
		r.WhiteAt = &ts
	case ColorPurple:
		// purple не отслеживается отдельным timestamp
	}
}

// LastTouched возвращает локальные "часы последнего изменения" комнаты —
// максимальный из пяти опциональных цветовых timestamps.
// Используется Reconciler для сравнения с remote last_modified.
// Возвращает нулевое время, если ни один timestamp не установлен.
func (r *Room) LastTouched() time.Time {
	var latest time.Time
	for _, ts := range []*time.Time{r.NoneAt, r.RedAt, r.GreenAt, r.BlueAt, r.WhiteAt} {
		if ts != nil && ts.After(latest) {
			latest = *ts
		}
	}
	return latest
}

// Clone создает глубокую копию комнаты
func (r *Room) Clone() *Room {
	clone := *r
	clone.NoneAt = cloneTime(r.NoneAt)
	clone.RedAt = cloneTime(r.RedAt)
	clone.GreenAt = cloneTime(r.GreenAt)
	clone.BlueAt = cloneTime(r.BlueAt)
	clone.WhiteAt = cloneTime(r.WhiteAt)
	return &clone
}

// Equal сравнивает все поля двух комнат, включая цветовые timestamps
func (r *Room) Equal(other *Room) bool {
	if other == nil {
		return false
	}
	return r.ID == other.ID &&
		r.Number == other.Number &&
		r.Color == other.Color &&
		r.AvailableTime == other.AvailableTime &&
		r.IsMarked == other.IsMarked &&
		r.IsCompleted == other.IsCompleted &&
		r.IsDeepCleaned == other.IsDeepCleaned &&
		timeEqual(r.NoneAt, other.NoneAt) &&
		timeEqual(r.RedAt, other.RedAt) &&
		timeEqual(r.GreenAt, other.GreenAt) &&
		timeEqual(r.BlueAt, other.BlueAt) &&
		timeEqual(r.WhiteAt, other.WhiteAt)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	ts := *t
	return &ts
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
