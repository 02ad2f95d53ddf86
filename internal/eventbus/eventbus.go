package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Типы событий стенда
const (
	EventScenarioLoaded = "ScenarioLoaded"
	EventPathRequested  = "PathRequested"
	EventPathResolved   = "PathResolved"
	EventWorldReset     = "WorldReset"
	EventCompared       = "AlgorithmsCompared"
)

// Envelope описывает универсальный контейнер события.
type Envelope struct {
	ID            string            `json:"id"`             // UUID события
	Timestamp     time.Time         `json:"timestamp"`      // Время создания (UTC)
	Source        string            `json:"source"`         // Имя сервиса-источника
	EventType     string            `json:"event_type"`     // Тип события (PathResolved…)
	Version       int               `json:"version"`        // Версия схемы полезной нагрузки
	CorrelationID string            `json:"correlation_id"` // Связывает запрос и его исход
	Priority      int               `json:"priority"`       // 0=Low … 9=Critical (для backpressure)
	Payload       []byte            `json:"payload"`        // JSON полезной нагрузки
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEnvelope сериализует payload в JSON и заполняет служебные поля
func NewEnvelope(source, eventType string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("eventbus: encode %s: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   1,
		Payload:   data,
	}, nil
}

// Decode разбирает полезную нагрузку в v
func (ev *Envelope) Decode(v any) error {
	return json.Unmarshal(ev.Payload, v)
}

// Filter позволяет подписаться только на нужные события.
type Filter struct {
	Types   []string // Если пусто - все типы.
	Sources []string // Если пусто - все источники.
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Envelope)

// Stats агрегированные метрики шины.
type Stats struct {
	Published uint64 `json:"published"`
	Consumed  uint64 `json:"consumed"`
	Dropped   uint64 `json:"dropped"`
	InFlight  int    `json:"in_flight"`
}

// EventBus определяет абстракцию шины событий.
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}

//================ In-Memory implementation =================//

type memoryBus struct {
	subMu       sync.RWMutex
	subscribers map[int]subscriber
	nextID      int

	statsMu sync.Mutex
	stats   Stats

	// sendMu защищает buffer от закрытия во время отправки
	sendMu sync.RWMutex
	closed bool
	buffer chan *Envelope
	done   chan struct{}
}

type subscriber struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemoryBus создаёт in-memory Bus с указанным буфером.
func NewMemoryBus(capacity int) EventBus {
	mb := &memoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, capacity),
		done:        make(chan struct{}),
	}
	go mb.dispatchLoop()
	return mb
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	mb.sendMu.RLock()
	defer mb.sendMu.RUnlock()
	if mb.closed {
		return fmt.Errorf("eventbus: шина закрыта")
	}

	select {
	case mb.buffer <- ev:
		mb.count(&mb.stats.Published)
		return nil
	default:
		// Буфер заполнен - дропаём низкий приоритет (<5)
		if ev.Priority < 5 {
			mb.count(&mb.stats.Dropped)
			return nil
		}
		// Для High-priority блокируем до освобождения места или отмены контекста
		select {
		case mb.buffer <- ev:
			mb.count(&mb.stats.Published)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (mb *memoryBus) count(field *uint64) {
	mb.statsMu.Lock()
	*field++
	mb.statsMu.Unlock()
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.subMu.Lock()
	id := mb.nextID
	mb.nextID++
	cctx, cancel := context.WithCancel(ctx)
	mb.subscribers[id] = subscriber{filter: f, handler: h, ctx: cctx, cancel: cancel}
	mb.subMu.Unlock()

	return &memSub{bus: mb, id: id}, nil
}

func (mb *memoryBus) Metrics() Stats {
	mb.statsMu.Lock()
	defer mb.statsMu.Unlock()
	s := mb.stats
	s.InFlight = len(mb.buffer)
	return s
}

// Close прекращает приём событий и дожидается рассылки уже принятых
func (mb *memoryBus) Close() error {
	mb.sendMu.Lock()
	if mb.closed {
		mb.sendMu.Unlock()
		return nil
	}
	mb.closed = true
	close(mb.buffer)
	mb.sendMu.Unlock()

	<-mb.done
	return nil
}

// dispatchLoop рассылает события подписчикам по порядку публикации.
func (mb *memoryBus) dispatchLoop() {
	defer close(mb.done)
	for ev := range mb.buffer {
		mb.subMu.RLock()
		subs := make([]subscriber, 0, len(mb.subscribers))
		for _, sub := range mb.subscribers {
			subs = append(subs, sub)
		}
		mb.subMu.RUnlock()

		for _, sub := range subs {
			if !matchFilter(ev, sub.filter) {
				continue
			}
			select {
			case <-sub.ctx.Done():
				continue
			default:
			}
			sub.handler(sub.ctx, ev)
			mb.count(&mb.stats.Consumed)
		}
	}
}

func matchFilter(ev *Envelope, f Filter) bool {
	match := func(val string, arr []string) bool {
		if len(arr) == 0 {
			return true
		}
		for _, v := range arr {
			if v == val {
				return true
			}
		}
		return false
	}
	return match(ev.EventType, f.Types) && match(ev.Source, f.Sources)
}

type memSub struct {
	bus *memoryBus
	id  int
}

func (s *memSub) Unsubscribe() {
	s.bus.subMu.Lock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		sub.cancel()
		delete(s.bus.subscribers, s.id)
	}
	s.bus.subMu.Unlock()
}
