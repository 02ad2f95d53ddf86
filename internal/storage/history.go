package storage

import (
	"context"
	"errors"
	"time"

	"github.com/annel0/voxel-pathlab/internal/solver"
	"github.com/annel0/voxel-pathlab/internal/vec"
)

// ErrNotReady - хранилище закрыто или не открыто
var ErrNotReady = errors.New("хранилище не готово")

// Run - запись об одном обработанном запросе пути
type Run struct {
	ID        string       `json:"id"`
	Seq       uint64       `json:"seq"`
	Time      time.Time    `json:"time"`
	Scenario  string       `json:"scenario"`
	Algorithm string       `json:"algorithm"`
	Options   string       `json:"options"`
	Start     vec.Vec3     `json:"start"`
	Goal      vec.Vec3     `json:"goal"`
	Status    string       `json:"status"`
	Message   string       `json:"message,omitempty"`
	Stats     solver.Stats `json:"stats"`
}

// HistoryRepo хранит историю запусков. Сохранение мира не входит в задачу:
// пишутся только итоги запросов.
type HistoryRepo interface {
	// Append добавляет запись в конец истории
	Append(ctx context.Context, run Run) error

	// Recent возвращает до limit последних записей, новые первыми; limit <= 0 - все записи
	Recent(ctx context.Context, limit int) ([]Run, error)

	// Count возвращает число записей
	Count(ctx context.Context) (int, error)

	// Close закрывает хранилище
	Close() error
}
