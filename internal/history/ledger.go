// Package history реализует журнал истории изменений — ограниченный по
// размеру append-only лог переходов состояния комнат.
//
// Журнал никогда не заглядывает в реестр комнат: он хранит только то,
// что ему сообщили вызывающие.
package history

import (
	"iter"
	"sort"
	"sync"
	"time"

	"roomkeeper/internal/models"
)

// DefaultMaxRecords максимальное число хранимых записей по умолчанию
const DefaultMaxRecords = 100

// Ledger представляет журнал истории.
// При превышении максимума вытесняется самая старая запись (FIFO),
// амортизированно O(1). Вытеснение никогда не переупорядочивает
// оставшиеся записи.
type Ledger struct {
	records []models.HistoryRecord
	head    int // индекс самой старой живой записи в records
	max     int
	mu      sync.RWMutex
}

// New создает журнал с заданным максимумом записей.
// max <= 0 заменяется на DefaultMaxRecords.
func New(max int) *Ledger {
	if max <= 0 {
		max = DefaultMaxRecords
	}
	return &Ledger{
		records: make([]models.HistoryRecord, 0, max),
		max:     max,
	}
}

// Append добавляет запись в журнал. Всегда успешен.
// Если размер превысил максимум, самая старая запись вытесняется.
func (l *Ledger) Append(record models.HistoryRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record)

	if len(l.records)-l.head > l.max {
		l.head++
	}

	// Компактим буфер, когда мертвая голова заняла половину емкости
	if l.head > l.max {
		live := make([]models.HistoryRecord, len(l.records)-l.head, l.max+1)
		copy(live, l.records[l.head:])
		l.records = live
		l.head = 0
	}
}

// AppendAll добавляет пакет записей в порядке следования
func (l *Ledger) AppendAll(records []models.HistoryRecord) {
	for _, record := range records {
		l.Append(record)
	}
}

// Records возвращает копию всех живых записей в порядке вставки
func (l *Ledger) Records() []models.HistoryRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]models.HistoryRecord, len(l.records)-l.head)
	copy(result, l.records[l.head:])
	return result
}

// Size возвращает число живых записей
func (l *Ledger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.records) - l.head
}

// RecordsOnDay возвращает ленивую перезапускаемую последовательность
// записей, чей timestamp попадает в календарный день day, от новых к
// старым. Каждый range по последовательности видит согласованный снимок
// журнала на момент вызова RecordsOnDay.
func (l *Ledger) RecordsOnDay(day time.Time) iter.Seq[models.HistoryRecord] {
	snapshot := l.Records()
	y, m, d := day.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, day.Location())

	return func(yield func(models.HistoryRecord) bool) {
		// Свежие записи в конце снимка — идем с конца
		for i := len(snapshot) - 1; i >= 0; i-- {
			if !snapshot[i].Day().Equal(dayStart) {
				continue
			}
			if !yield(snapshot[i]) {
				return
			}
		}
	}
}

// DayGroup представляет записи одного календарного дня
type DayGroup struct {
	Day     time.Time
	Records []models.HistoryRecord
}

// GroupedByDay возвращает записи, сгруппированные по календарным дням:
// дни по убыванию, внутри дня записи по убыванию timestamp.
// Используется для построения поденного представления журнала.
func (l *Ledger) GroupedByDay() []DayGroup {
	snapshot := l.Records()

	byDay := make(map[time.Time][]models.HistoryRecord)
	for _, record := range snapshot {
		day := record.Day()
		byDay[day] = append(byDay[day], record)
	}

	groups := make([]DayGroup, 0, len(byDay))
	for day, records := range byDay {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Timestamp.After(records[j].Timestamp)
		})
		groups = append(groups, DayGroup{Day: day, Records: records})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Day.After(groups[j].Day)
	})
	return groups
}

// Replace заменяет содержимое журнала записями records (порядок вставки
// сохраняется). Используется при восстановлении из персистентного
// хранилища на старте.
func (l *Ledger) Replace(records []models.HistoryRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if len(records) > l.max {
		start = len(records) - l.max
	}

	l.records = make([]models.HistoryRecord, len(records)-start, l.max+1)
	copy(l.records, records[start:])
	l.head = 0
}

// Describe составляет текстовое описание записи через предоставленную
// вызывающим функцию подстановки, ключом служит тип действия.
// Ядро само не форматирует пользовательские строки.
func Describe(record models.HistoryRecord, lookup func(models.ActionType) string) string {
	label := lookup(record.ActionType)
	if label == "" {
		label = string(record.ActionType)
	}
	return record.RoomNumber + ": " + label + " (" + record.OldStatus + " -> " + record.NewStatus + ")"
}
