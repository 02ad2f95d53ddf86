package render

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/voxel-pathlab/internal/logging"
)

// Loop с фиксированной частотой собирает кадры из сцены и рассылает их подписчикам.
// Цикл только читает сцену и никогда не ждёт запросов к решателю.
type Loop struct {
	scene    *Scene
	interval time.Duration

	mu     sync.Mutex
	subs   map[int]chan Frame
	nextID int
	last   Frame
	frames uint64
}

// NewLoop создаёт цикл рендера; fps <= 0 означает 30 кадров в секунду
func NewLoop(scene *Scene, fps int) *Loop {
	if fps <= 0 {
		fps = 30
	}
	return &Loop{
		scene:    scene,
		interval: time.Second / time.Duration(fps),
		subs:     make(map[int]chan Frame),
	}
}

// Subscribe регистрирует подписчика. Текущий кадр отправляется сразу.
func (l *Loop) Subscribe(buffer int) (int, <-chan Frame) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Frame, buffer)

	l.mu.Lock()
	first := l.last
	l.mu.Unlock()
	if first.Meshes == nil {
		first = l.scene.Frame()
	}

	// Первый кадр кладётся в пустой канал до регистрации в broadcast
	l.mu.Lock()
	defer l.mu.Unlock()
	ch <- first
	id := l.nextID
	l.nextID++
	l.subs[id] = ch
	return id, ch
}

// Unsubscribe удаляет подписчика и закрывает его канал
func (l *Loop) Unsubscribe(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ch, ok := l.subs[id]; ok {
		delete(l.subs, id)
		close(ch)
	}
}

// Subscribers возвращает количество подписчиков
func (l *Loop) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// Frames возвращает число разосланных кадров
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Run крутит цикл до отмены контекста
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	logging.GetRenderLogger().Info("Цикл рендера запущен, интервал кадра %s", l.interval)

	var lastVersion uint64
	primed := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v := l.scene.Version()
			if primed && v == lastVersion {
				continue
			}
			primed = true
			lastVersion = v
			l.broadcast(l.scene.Frame())
		}
	}
}

// broadcast рассылает кадр; медленные подписчики пропускают кадр
func (l *Loop) broadcast(f Frame) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last = f
	l.frames++
	for _, ch := range l.subs {
		select {
		case ch <- f:
		default:
		}
	}
}
