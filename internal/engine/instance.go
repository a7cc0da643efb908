package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine/handlers"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/network"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/arena"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/utils"
)

// MatchBuilder материализует раскладку в контексте матча (entities.Build).
type MatchBuilder func(sim *Sim, layout arena.Layout) error

// TickStats - статистика одного тика для телеметрии.
type TickStats struct {
	Match     string
	Tick      uint32
	SimTime   time.Duration
	Elapsed   time.Duration // Wall time тика
	Entities  int
	Actions   int
	Commands  int
	Observers int
}

// StatsSink принимает статистику тиков. Вызывается из цикла матча, поэтому не должен блокировать.
type StatsSink interface {
	RecordTick(stats TickStats)
}

// Join - подключение сессии наблюдателя к матчу.
type Join struct {
	Session string
	Token   types.Identity // Робот оператора; NilIdentity у зрителя
}

type inspectRequest struct {
	fn   func(sim *Sim)
	done chan struct{}
}

// Instance - один запущенный матч: контекст симуляции, хаб наблюдателей и журнал команд.
//
// Всё состояние симуляции принадлежит горутине Run. Снаружи с матчем говорят
// только через каналы: команды, вход/выход сессий и Inspect.
type Instance struct {
	ID        string
	Layout    arena.Layout
	Seed      int64
	StartedAt time.Time

	Sim *Sim
	Hub *network.Hub

	// Каналы коммуникации
	CommandChan chan domain.InternalCommand // Команды от операторов и судьи
	JoinChan    chan Join                   // Вход сессий
	LeaveChan   chan string                 // Выход сессий

	Journal *domain.ReplaySession // Лента команд (для реплея)
	Events  []domain.MatchEvent   // Заметные события (для архива)

	cfg      Config
	handlers map[domain.CommandType]handlers.HandlerFunc
	stats    StatsSink
	inspect  chan inspectRequest

	logs    []api.LogEntry // Сообщения текущего тика
	actions int            // Действий за текущий тик
	stage   string
	winner  enums.Camp
	endedAt time.Time

	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	log *logrus.Entry
}

// NewInstance собирает матч по раскладке. Ошибка сборки означает неверную конфигурацию поля.
func NewInstance(cfg Config, layout arena.Layout, build MatchBuilder, registry map[domain.CommandType]handlers.HandlerFunc, stats StatsSink) (*Instance, error) {
	id := utils.GenerateID()
	seed := cfg.MatchSeed()
	log := logger.Log.WithFields(logrus.Fields{
		"component": "match",
		"match":     id,
	})

	hub := network.NewHub(id)
	opts := cfg.SimOptions(seed, log)
	opts.Replicator = hub

	i := &Instance{
		ID:          id,
		Layout:      layout,
		Seed:        seed,
		StartedAt:   time.Now(),
		Sim:         NewSim(opts),
		Hub:         hub,
		CommandChan: make(chan domain.InternalCommand, 256),
		JoinChan:    make(chan Join, 16),
		LeaveChan:   make(chan string, 16),
		Journal: &domain.ReplaySession{
			MatchID:   id,
			Seed:      seed,
			Timestamp: time.Now().Unix(),
			Layout:    layout.Name,
		},
		cfg:      cfg,
		handlers: registry,
		stats:    stats,
		inspect:  make(chan inspectRequest),
		stage:    domain.StagePrepare,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		log:      log,
	}
	i.Sim.Dispatcher.OnSend(i.observe)

	if err := build(i.Sim, layout); err != nil {
		return nil, fmt.Errorf("match %s: %w", id, err)
	}

	log.WithFields(logrus.Fields{
		"layout":   layout.Name,
		"seed":     seed,
		"entities": i.Sim.Entities.Len(),
	}).Info("Match created")
	return i, nil
}

// --- ЦИКЛ ---

// Run запускает цикл фиксированного шага ЭТОГО матча. Блокирует до Stop или отмены ctx.
func (i *Instance) Run(ctx context.Context) {
	if !i.started.CompareAndSwap(false, true) {
		return
	}
	defer close(i.done)

	ticker := time.NewTicker(i.cfg.TickInterval())
	defer ticker.Stop()

	i.log.WithField("interval", i.cfg.TickInterval()).Info("Match loop started")

	for {
		select {
		case <-ctx.Done():
			i.finish("context cancelled")
			return
		case <-i.stop:
			i.finish("stopped")
			return
		case req := <-i.inspect:
			req.fn(i.Sim)
			close(req.done)
		case <-ticker.C:
			i.Step()
		}
	}
}

// Step выполняет один тик матча. Вызывается циклом Run (или тестами вместо него).
//
// Фазы:
//  1. вход/выход сессий и команды;
//  2. симуляция (триггеры, Tick сущностей, отправка полей репликатору);
//  3. рассылка кадров тика;
//  4. телеметрия.
func (i *Instance) Step() {
	started := time.Now()
	i.actions = 0

	// 1. Входящие
	commands := i.drain()

	// 2. Симуляция
	i.Sim.Step(i.cfg.TickInterval())

	// 3. Рассылка
	i.Hub.Flush(i.Sim.Tick(), i.takeLogs())

	// 4. Телеметрия
	if i.stats != nil {
		i.stats.RecordTick(TickStats{
			Match:     i.ID,
			Tick:      i.Sim.Tick(),
			SimTime:   i.Sim.Now(),
			Elapsed:   time.Since(started),
			Entities:  i.Sim.Entities.Len(),
			Actions:   i.actions,
			Commands:  commands,
			Observers: i.Hub.SubscriberCount(),
		})
	}
}

// drain разбирает всё, что накопилось в каналах с прошлого тика. Не блокирует.
func (i *Instance) drain() int {
	commands := 0
	for {
		select {
		case j := <-i.JoinChan:
			i.join(j)
		case session := <-i.LeaveChan:
			i.leave(session)
		case cmd := <-i.CommandChan:
			i.executeCommand(cmd)
			commands++
		default:
			return commands
		}
	}
}

// Stop завершает цикл и ждёт его выхода. Повторный вызов безопасен.
func (i *Instance) Stop() {
	i.stopOnce.Do(func() { close(i.stop) })
	if i.started.Load() {
		<-i.done
	}
}

// Done закрывается, когда цикл матча завершился.
func (i *Instance) Done() <-chan struct{} {
	return i.done
}

// Inspect выполняет fn в горутине цикла матча (отладочные ручки, список матчей).
// Если цикл не запущен или уже завершён, fn выполняется сразу.
func (i *Instance) Inspect(ctx context.Context, fn func(sim *Sim)) error {
	if !i.started.Load() {
		fn(i.Sim)
		return nil
	}

	req := inspectRequest{fn: fn, done: make(chan struct{})}
	select {
	case i.inspect <- req:
	case <-i.done:
		fn(i.Sim)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (i *Instance) finish(reason string) {
	i.Hub.Close()
	if i.endedAt.IsZero() {
		i.endedAt = time.Now()
	}
	i.log.WithFields(logrus.Fields{
		"reason": reason,
		"ticks":  i.Sim.Tick(),
		"stage":  i.stage,
	}).Info("Match loop stopped")
}

// --- СЕССИИ ---

func (i *Instance) join(j Join) {
	i.Hub.SendTo(j.Session, i.BuildSnapshot(j.Token))
	i.log.WithFields(logrus.Fields{
		"session": j.Session,
		"token":   j.Token.String(),
	}).Info("Observer joined")
}

func (i *Instance) leave(session string) {
	i.Hub.Unregister(session)
	i.log.WithField("session", session).Info("Observer left")
}

// --- КОМАНДЫ ---

// executeCommand выполняет хендлер и пишет логи
func (i *Instance) executeCommand(cmd domain.InternalCommand) {
	handler, ok := i.handlers[cmd.Action]
	if !ok {
		i.reject(cmd, fmt.Errorf("unknown command %s", cmd.Action))
		return
	}
	if cmd.Action.IsAdmin() && !i.cfg.AllowAdmin {
		i.reject(cmd, ErrAdminDisabled)
		return
	}

	ctx := handlers.Context{
		Bus:     journalBus{inst: i},
		Finder:  i.Sim.Entities,
		Actor:   cmd.Token,
		Session: cmd.Session,
	}

	result, err := handler(ctx, cmd.Payload)
	if err != nil {
		i.reject(cmd, err)
		return
	}

	// INIT: наблюдателю нужен полный снимок
	if cmd.Action == domain.CommandInit && cmd.Session != "" {
		i.Hub.SendTo(cmd.Session, i.BuildSnapshot(cmd.Token))
	}

	if result.Msg != "" {
		msgType := result.MsgType
		if msgType == "" {
			msgType = "INFO"
		}
		if msgType == "ERROR" && cmd.Session != "" {
			i.replyError(cmd.Session, result.Msg)
			return
		}
		i.AddLog(result.Msg, msgType)
	}
}

// reject логирует отклонённую команду и отвечает клиенту записью ERROR.
func (i *Instance) reject(cmd domain.InternalCommand, err error) {
	i.log.WithError(err).WithFields(logrus.Fields{
		"command": cmd.Action.String(),
		"token":   cmd.Token.String(),
		"session": cmd.Session,
	}).Warn("Command rejected")

	if cmd.Session != "" {
		i.replyError(cmd.Session, err.Error())
	}
}

// journalBus публикует действия команд и пишет их в журнал матча.
// Журнал хранит только входы: всё остальное детерминированно выводится из них и зерна.
type journalBus struct {
	inst *Instance
}

func (b journalBus) Send(a domain.Action) {
	b.inst.record(a)
	b.inst.Sim.Send(a)
}

func (i *Instance) record(a domain.Action) {
	entry, err := domain.NewJournalEntry(i.Sim.Tick(), a)
	if err != nil {
		i.log.WithError(err).WithField("action", string(a.ActionName())).Warn("Action not journaled")
		return
	}
	i.Journal.Entries = append(i.Journal.Entries, entry)
}

// --- СОБЫТИЯ МАТЧА ---

// observe видит каждое действие шины (хук Dispatcher.OnSend).
func (i *Instance) observe(tick uint32, a domain.Action) {
	i.actions++

	name := a.ActionName()
	if domain.Notable(name) {
		i.Events = append(i.Events, domain.MatchEvent{Tick: tick, Name: name, Data: a})
	}

	switch act := a.(type) {
	case domain.StageStart:
		i.stage = domain.StageRunning
		i.AddLog("Match started", "RULES")
	case domain.StageEnd:
		i.stage = domain.StageEnded
		i.winner = act.Winner
		i.endedAt = time.Now()
		i.AddLog(fmt.Sprintf("Match over. Winner: %s", act.Winner), "RULES")
		i.log.WithFields(logrus.Fields{
			"winner": act.Winner.String(),
			"tick":   tick,
		}).Info("Match ended")
	case domain.StageOutpostFall:
		i.AddLog(fmt.Sprintf("%s outpost destroyed", act.Camp), "RULES")
	case domain.CombatKill:
		i.AddLog(fmt.Sprintf("%s destroyed %s", act.Killer, act.Victim), "COMBAT")
	case domain.OccupyOccupied:
		i.AddLog(fmt.Sprintf("%s captured %s", act.Camp, act.Point), "RULES")
	case domain.RuneActivated:
		i.AddLog(fmt.Sprintf("%s activated the power rune", act.Camp), "RULES")
	}
}

// Stage - последний известный этап матча. Читать в горутине цикла.
func (i *Instance) Stage() string {
	return i.stage
}

// Winner - победитель; CampUnknown, пока матч идёт.
func (i *Instance) Winner() enums.Camp {
	return i.winner
}

// Ended - матч завершён судьёй.
func (i *Instance) Ended() bool {
	return i.stage == domain.StageEnded
}

// Record собирает итог матча для архива. Вызывать после Stop или через Inspect.
func (i *Instance) Record() domain.MatchRecord {
	ended := i.endedAt
	if ended.IsZero() {
		ended = time.Now()
	}
	events := make([]domain.MatchEvent, len(i.Events))
	copy(events, i.Events)

	return domain.MatchRecord{
		ID:        i.ID,
		Layout:    i.Layout.Name,
		Seed:      i.Seed,
		StartedAt: i.StartedAt,
		EndedAt:   ended,
		Ticks:     i.Sim.Tick(),
		Winner:    i.winner,
		Events:    events,
	}
}

// Info - краткое описание для /debug/matches. Вызывать в горутине цикла (через Inspect).
func (i *Instance) Info() api.MatchInfo {
	return api.MatchInfo{
		ID:        i.ID,
		Layout:    i.Layout.Name,
		Seed:      i.Seed,
		Tick:      i.Sim.Tick(),
		SimTime:   i.Sim.Now().Seconds(),
		Entities:  i.Sim.Entities.Len(),
		Observers: i.Hub.SubscriberCount(),
		Stage:     i.stage,
	}
}
