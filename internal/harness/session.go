package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/voxel-pathlab/internal/eventbus"
	"github.com/annel0/voxel-pathlab/internal/fallback"
	"github.com/annel0/voxel-pathlab/internal/logging"
	"github.com/annel0/voxel-pathlab/internal/overlay"
	"github.com/annel0/voxel-pathlab/internal/route"
	"github.com/annel0/voxel-pathlab/internal/scenario"
	"github.com/annel0/voxel-pathlab/internal/solver"
	"github.com/annel0/voxel-pathlab/internal/storage"
	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/annel0/voxel-pathlab/internal/world"
)

// EventSource - имя источника в конвертах событий
const EventSource = "pathlab-harness"

// Config - зависимости сессии. Каталоги неизменяемы и передаются явно.
type Config struct {
	World      *world.World
	Catalog    *scenario.Catalog
	Algorithms *solver.AlgorithmTable
	Solver     solver.Solver

	// Fallback строит запасной путь при сбое транспорта; nil - fallback.Walk
	Fallback func(start, goal vec.Vec3) route.Result

	// Необязательные
	Bus     eventbus.EventBus
	History storage.HistoryRepo

	// DefaultAlgorithm подставляется, если запрос не указал алгоритм
	DefaultAlgorithm string

	// Ёмкость очереди команд
	QueueSize int
}

// Session - цикл стенда. Мир, оверлей и состояние сессии принадлежат
// одной горутине; остальные отправляют ей команды через канал.
type Session struct {
	world      *world.World
	overlay    *overlay.Visualizer
	catalog    *scenario.Catalog
	algorithms *solver.AlgorithmTable
	solver     solver.Solver
	fallback   func(start, goal vec.Vec3) route.Result
	bus        eventbus.EventBus
	history    storage.HistoryRepo
	log        *logging.Logger
	defaultAlg string

	commands chan command
	done     chan struct{}

	ctx        context.Context
	cancelFunc context.CancelFunc
	startOnce  sync.Once
	stopOnce   sync.Once

	// Состояние ниже трогает только горутина цикла
	active    *scenario.Scenario
	seq       uint64
	pending   *pending
	last      *Report
	startedAt time.Time
}

// pending - запрос, ожидающий ответа решателя
type pending struct {
	seq     uint64
	runID   string
	req     solver.Request
	key     string
	started time.Time
	cancel  context.CancelFunc
	reply   chan Report
}

// NewSession создаёт сессию. Цикл запускается методом Run.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Catalog == nil || cfg.Algorithms == nil || cfg.Solver == nil {
		return nil, fmt.Errorf("harness: нужны каталог сценариев, таблица алгоритмов и решатель")
	}
	if cfg.World == nil {
		cfg.World = world.NewWorld(nil)
	}
	if cfg.Fallback == nil {
		cfg.Fallback = fallback.Walk
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		world:      cfg.World,
		overlay:    overlay.New(cfg.World),
		catalog:    cfg.Catalog,
		algorithms: cfg.Algorithms,
		solver:     cfg.Solver,
		fallback:   cfg.Fallback,
		bus:        cfg.Bus,
		history:    cfg.History,
		log:        logging.GetHarnessLogger(),
		defaultAlg: cfg.DefaultAlgorithm,
		commands:   make(chan command, cfg.QueueSize),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancelFunc: cancel,
		startedAt:  time.Now(),
	}, nil
}

// Run запускает цикл обработки команд
func (s *Session) Run(parentCtx context.Context) {
	s.startOnce.Do(func() {
		if parentCtx != nil {
			childCtx, cancel := context.WithCancel(parentCtx)
			s.cancelFunc()
			s.ctx = childCtx
			s.cancelFunc = cancel
		}
		go s.loop()
	})
}

// Stop останавливает цикл и дожидается его завершения
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.cancelFunc()
	})
	<-s.done
}

// Done закрывается после остановки цикла
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// send ставит команду в очередь цикла
func (s *Session) send(ctx context.Context, cmd command) error {
	select {
	case s.commands <- cmd:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// await ждёт ответа цикла
func await[T any](ctx context.Context, s *Session, ch <-chan T) (T, error) {
	var zero T
	select {
	case v := <-ch:
		return v, nil
	case <-s.done:
		// Цикл мог ответить перед остановкой
		select {
		case v := <-ch:
			return v, nil
		default:
		}
		return zero, ErrStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// LoadScenario очищает мир и строит сценарий key.
// Неизвестный ключ возвращает ErrUnknownScenario и ничего не меняет.
func (s *Session) LoadScenario(ctx context.Context, key string) (scenario.Scenario, error) {
	reply := make(chan loadResult, 1)
	if err := s.send(ctx, loadScenarioCmd{key: key, reply: reply}); err != nil {
		return scenario.Scenario{}, err
	}
	res, err := await(ctx, s, reply)
	if err != nil {
		return scenario.Scenario{}, err
	}
	return res.scenario, res.err
}

// FindPath отправляет запрос решателю и рисует результат.
// Ошибки построения запроса возвращаются как error; исходы решателя - в Report.Status.
func (s *Session) FindPath(ctx context.Context, q Query) (Report, error) {
	reply := make(chan Report, 1)
	errc := make(chan error, 1)
	if err := s.send(ctx, findPathCmd{query: q, reply: reply, errc: errc}); err != nil {
		return Report{}, err
	}
	select {
	case err := <-errc:
		return Report{}, err
	case rep := <-reply:
		return rep, nil
	case <-s.done:
		select {
		case rep := <-reply:
			return rep, nil
		default:
		}
		return Report{}, ErrStopped
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

// Reset снимает оверлей и заново строит активный сценарий
func (s *Session) Reset(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := s.send(ctx, resetCmd{reply: reply}); err != nil {
		return err
	}
	err, waitErr := await(ctx, s, reply)
	if waitErr != nil {
		return waitErr
	}
	return err
}

// Status возвращает снимок состояния сессии
func (s *Session) Status(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	if err := s.send(ctx, statusCmd{reply: reply}); err != nil {
		return State{}, err
	}
	return await(ctx, s, reply)
}

// Blocks возвращает видимые блоки мира
func (s *Session) Blocks(ctx context.Context) ([]world.Entry, error) {
	reply := make(chan []world.Entry, 1)
	if err := s.send(ctx, blocksCmd{reply: reply}); err != nil {
		return nil, err
	}
	return await(ctx, s, reply)
}

// Scenarios возвращает каталог сценариев
func (s *Session) Scenarios() *scenario.Catalog {
	return s.catalog
}

// Algorithms возвращает таблицу алгоритмов
func (s *Session) Algorithms() *solver.AlgorithmTable {
	return s.algorithms
}
