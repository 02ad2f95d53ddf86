package harness

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/annel0/voxel-pathlab/internal/eventbus"
	"github.com/annel0/voxel-pathlab/internal/scenario"
	"github.com/annel0/voxel-pathlab/internal/solver"
	"github.com/annel0/voxel-pathlab/internal/storage"
	"github.com/annel0/voxel-pathlab/internal/world"
	"github.com/annel0/voxel-pathlab/internal/world/block"
	"github.com/google/uuid"
)

const sideEffectTimeout = 2 * time.Second

// Команды цикла
type command interface{}

type loadScenarioCmd struct {
	key   string
	reply chan loadResult
}

type loadResult struct {
	scenario scenario.Scenario
	err      error
}

type findPathCmd struct {
	query Query
	reply chan Report
	errc  chan error
}

// solvedMsg - ответ решателя, возвращённый в цикл с номером запроса
type solvedMsg struct {
	seq     uint64
	outcome solver.Outcome
	err     error
}

type resetCmd struct {
	reply chan error
}

type statusCmd struct {
	reply chan State
}

type blocksCmd struct {
	reply chan []world.Entry
}

// loop - единственная горутина, изменяющая мир
func (s *Session) loop() {
	defer close(s.done)
	defer s.shutdown()

	s.log.Info("🧭 Цикл стенда запущен")
	for {
		select {
		case <-s.ctx.Done():
			return
		case cmd := <-s.commands:
			s.handle(cmd)
		}
	}
}

func (s *Session) handle(cmd command) {
	switch c := cmd.(type) {
	case loadScenarioCmd:
		sc, err := s.loadScenario(c.key)
		c.reply <- loadResult{scenario: sc, err: err}
	case findPathCmd:
		s.startRequest(c)
	case solvedMsg:
		s.resolve(c)
	case resetCmd:
		c.reply <- s.reset()
	case statusCmd:
		c.reply <- s.state()
	case blocksCmd:
		c.reply <- s.world.Blocks()
	default:
		s.log.Warn("неизвестная команда: %T", cmd)
	}
}

func (s *Session) shutdown() {
	if s.pending != nil {
		s.pending.cancel()
		s.pending = nil
	}
	s.log.Info("🛑 Цикл стенда остановлен")
}

func (s *Session) loadScenario(key string) (scenario.Scenario, error) {
	sc, ok := s.catalog.Get(key)
	if !ok {
		s.log.Warn("сценарий %q не найден, мир не изменён", key)
		return scenario.Scenario{}, fmt.Errorf("%w: %s", ErrUnknownScenario, key)
	}

	s.supersede("смена сценария")
	s.overlay.Clear()
	scenario.Install(s.world, sc)
	s.active = &sc
	s.last = nil

	blocks := s.world.Len()
	s.log.Info("🗺️ Сценарий %s загружен: %d блоков, старт %s, цель %s", sc.Key, blocks, sc.Start, sc.Goal)
	s.publish(s.seq, eventbus.EventScenarioLoaded, sc.Key, scenarioLoadedPayload{
		Key:    sc.Key,
		Name:   sc.Name,
		Start:  sc.Start,
		Goal:   sc.Goal,
		Blocks: blocks,
	})
	return sc, nil
}

func (s *Session) reset() error {
	if s.active == nil {
		return ErrNoScenario
	}

	s.supersede("сброс мира")
	cleared := s.overlay.Clear()
	scenario.Install(s.world, *s.active)
	s.last = nil

	s.log.Info("🔄 Мир сброшен к сценарию %s (снято маркеров: %d)", s.active.Key, cleared)
	s.publish(s.seq, eventbus.EventWorldReset, s.active.Key, worldResetPayload{
		Scenario: s.active.Key,
		Cleared:  cleared,
	})
	return nil
}

// startRequest строит запрос, снимает прошлый оверлей и запускает решатель.
// Предыдущий незавершённый запрос отменяется: рисуется только последний.
func (s *Session) startRequest(c findPathCmd) {
	if s.active == nil {
		c.errc <- ErrNoScenario
		return
	}

	start, goal := s.active.Start, s.active.Goal
	if c.query.Start != nil {
		start = *c.query.Start
	}
	if c.query.Goal != nil {
		goal = *c.query.Goal
	}

	opts := c.query.Options
	if opts.Algorithm == "" {
		opts.Algorithm = s.defaultAlg
	}
	req, err := s.algorithms.BuildRequest(start, goal, opts)
	if err != nil {
		c.errc <- err
		return
	}

	s.supersede("новый запрос")
	s.overlay.Clear()

	s.seq++
	ctx, cancel := context.WithCancel(s.ctx)
	p := &pending{
		seq:     s.seq,
		runID:   uuid.NewString(),
		req:     req,
		key:     s.active.Key,
		started: time.Now(),
		cancel:  cancel,
		reply:   c.reply,
	}
	s.pending = p

	options := solver.OptionsSummary(req)
	s.log.Info("🔎 Запрос #%d: %s %s -> %s (%s)", p.seq, req.Algorithm, start, goal, options)
	s.publish(s.seq, eventbus.EventPathRequested, p.runID, pathRequestedPayload{
		Seq:       p.seq,
		Scenario:  p.key,
		Algorithm: req.Algorithm,
		Start:     start,
		Goal:      goal,
		Options:   options,
	})

	go func(seq uint64) {
		out, err := s.solver.Solve(ctx, req)
		select {
		case s.commands <- solvedMsg{seq: seq, outcome: out, err: err}:
		case <-s.ctx.Done():
		}
	}(p.seq)
}

// supersede отменяет ожидающий запрос; его вызывающий получает StatusSuperseded
func (s *Session) supersede(reason string) {
	p := s.pending
	if p == nil {
		return
	}
	s.pending = nil
	p.cancel()

	rep := s.baseReport(p)
	rep.Status = StatusSuperseded
	rep.Message = fmt.Sprintf("Request #%d superseded: %s", p.seq, reason)
	rep.Elapsed = time.Since(p.started)
	s.log.Debug("запрос #%d вытеснен (%s)", p.seq, reason)
	s.finish(p, rep, false)
}

// resolve обрабатывает ответ решателя. Устаревший ответ отбрасывается
// раньше, чем принимается решение о запасном пути.
func (s *Session) resolve(msg solvedMsg) {
	p := s.pending
	if p == nil || p.seq != msg.seq {
		s.log.Debug("отброшен устаревший ответ #%d (текущий #%d)", msg.seq, s.seq)
		return
	}
	s.pending = nil
	p.cancel()

	rep := s.baseReport(p)
	out := msg.outcome

	switch {
	case msg.err != nil && solver.IsTransport(msg.err):
		res := s.fallback(rep.Start, rep.Goal)
		rep.Status = StatusFallback
		rep.Result = res
		rep.Stats = solver.Stats{PathLength: len(res.Path), BlocksTraversed: len(res.Path)}
		rep.Marked = s.overlay.Apply(res)
		rep.Message = fmt.Sprintf("Connection error: %v. Showing fallback path (%d blocks)", msg.err, len(res.Path))
		s.log.Warn("⚠️ Запрос #%d: решатель недоступен, показан запасной путь (%d блоков)", p.seq, len(res.Path))
	case msg.err != nil:
		rep.Status = StatusSolverError
		rep.Message = msg.err.Error()
		s.log.Warn("запрос #%d: %v", p.seq, msg.err)
	case out.Kind == solver.SolverError:
		rep.Status = StatusSolverError
		rep.Message = out.Error
		rep.Stats = out.Stats
		s.log.Warn("запрос #%d: ошибка решателя: %s", p.seq, out.Error)
	case out.Kind == solver.NoPath:
		rep.Status = StatusNoPath
		rep.Message = "No path found"
		rep.Stats = out.Stats
		s.log.Info("запрос #%d: путь не найден", p.seq)
	default:
		rep.Status = StatusPathFound
		rep.Result = out.Result
		rep.Stats = out.Stats
		rep.Marked = s.overlay.Apply(out.Result)
		rep.Message = fmt.Sprintf("Path found! %d blocks", len(out.Result.Path))
		s.log.Info("✅ Запрос #%d: путь %d блоков, сломать %d, поставить %d",
			p.seq, len(out.Result.Path), len(out.Result.Break), len(out.Result.Place))
	}

	rep.Elapsed = time.Since(p.started)
	s.finish(p, rep, true)
}

func (s *Session) baseReport(p *pending) Report {
	return Report{
		RunID:     p.runID,
		Seq:       p.seq,
		Scenario:  p.key,
		Algorithm: p.req.Algorithm,
		Start:     p.req.Start(),
		Goal:      p.req.Goal(),
		Options:   solver.OptionsSummary(p.req),
	}
}

// finish отдаёт отчёт вызывающему, публикует событие и пишет историю
func (s *Session) finish(p *pending, rep Report, current bool) {
	if current {
		s.last = &rep
	}
	p.reply <- rep

	s.publish(rep.Seq, eventbus.EventPathResolved, rep.RunID, rep)

	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	err := s.history.Append(ctx, storage.Run{
		ID:        rep.RunID,
		Seq:       rep.Seq,
		Time:      time.Now().UTC(),
		Scenario:  rep.Scenario,
		Algorithm: rep.Algorithm,
		Options:   rep.Options,
		Start:     rep.Start,
		Goal:      rep.Goal,
		Status:    string(rep.Status),
		Message:   rep.Message,
		Stats:     rep.Stats,
	})
	if err != nil {
		s.log.Warn("история: запись #%d не сохранена: %v", rep.Seq, err)
	}
}

func (s *Session) state() State {
	st := State{
		InFlight:  s.pending != nil,
		Seq:       s.seq,
		Blocks:    s.world.Len(),
		Markers:   s.world.Count(block.LayerMarker),
		StartedAt: s.startedAt,
	}
	if s.active != nil {
		st.Scenario = s.active.Key
		st.Start = s.active.Start
		st.Goal = s.active.Goal
	}
	if s.last != nil {
		last := *s.last
		st.LastRun = &last
	}
	return st
}

func (s *Session) publish(seq uint64, eventType, correlationID string, payload any) {
	if s.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(EventSource, eventType, payload)
	if err != nil {
		s.log.Warn("событие %s: %v", eventType, err)
		return
	}
	ev.CorrelationID = correlationID
	if eventType == eventbus.EventPathResolved {
		ev.Priority = 5 // итог запроса не дропается при переполнении
	}
	ev.Metadata = map[string]string{"seq": strconv.FormatUint(seq, 10)}

	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.log.Warn("публикация %s: %v", eventType, err)
	}
}
