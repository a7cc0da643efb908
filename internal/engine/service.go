package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine/handlers"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine/handlers/actions"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine/handlers/admin"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/arena"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

// JournalStore сохраняет журналы команд (бинарные файлы реплеев).
type JournalStore interface {
	Save(session *domain.ReplaySession) error
}

// MatchArchive сохраняет итоги матчей (база данных).
type MatchArchive interface {
	SaveMatch(ctx context.Context, rec domain.MatchRecord) error
}

// GameService - реестр матчей: создаёт инстансы, маршрутизирует команды, сохраняет итоги.
type GameService struct {
	cfg   Config
	build MatchBuilder

	mu      sync.RWMutex
	matches map[string]*Instance
	order   []string // Порядок создания: первый матч - матч по умолчанию

	handlers map[domain.CommandType]handlers.HandlerFunc

	// Необязательные зависимости (nil - выключено)
	Replays JournalStore
	Archive MatchArchive
	Stats   StatsSink

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *logrus.Entry
}

func NewService(cfg Config, build MatchBuilder) *GameService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &GameService{
		cfg:      cfg,
		build:    build,
		matches:  make(map[string]*Instance),
		handlers: make(map[domain.CommandType]handlers.HandlerFunc),
		ctx:      ctx,
		cancel:   cancel,
		log:      logger.Log.WithField("component", "service"),
	}

	s.registerHandlers()
	return s
}

func (s *GameService) registerHandlers() {
	// Команды операторов
	s.handlers[domain.CommandInit] = handlers.WithEmptyPayload(actions.HandleInit)
	s.handlers[domain.CommandMove] = handlers.WithPayload(actions.HandleMove)
	s.handlers[domain.CommandFire] = handlers.WithPayload(actions.HandleFire)
	s.handlers[domain.CommandSupply] = handlers.WithPayload(actions.HandleSupply)
	s.handlers[domain.CommandRuneStart] = handlers.WithPayload(actions.HandleRuneStart)
	s.handlers[domain.CommandRuneHit] = handlers.WithPayload(actions.HandleRuneHit)

	// Судейская консоль (инстанс проверяет AllowAdmin)
	s.handlers[domain.CommandGrant] = handlers.WithPayload(admin.HandleGrant)
	s.handlers[domain.CommandRevoke] = handlers.WithPayload(admin.HandleRevoke)
	s.handlers[domain.CommandKill] = handlers.WithPayload(admin.HandleKill)
	s.handlers[domain.CommandRevive] = handlers.WithPayload(admin.HandleRevive)
}

// Config возвращает параметры, с которыми создаются матчи.
func (s *GameService) Config() Config {
	return s.cfg
}

// --- МАТЧИ ---

// CreateMatch собирает матч по имени раскладки и запускает его цикл.
// Пустое имя - раскладка из конфигурации.
func (s *GameService) CreateMatch(layoutName string) (*Instance, error) {
	if layoutName == "" {
		layoutName = s.cfg.Layout
	}
	layout, err := arena.ByName(layoutName)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	inst, err := NewInstance(s.cfg, layout, s.build, s.handlers, s.Stats)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	s.mu.Lock()
	s.matches[inst.ID] = inst
	s.order = append(s.order, inst.ID)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		inst.Run(s.ctx)
	}()
	return inst, nil
}

// Match ищет матч по ID. Пустой ID - первый запущенный матч.
func (s *GameService) Match(id string) (*Instance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == "" {
		if len(s.order) == 0 {
			return nil, false
		}
		id = s.order[0]
	}
	inst, ok := s.matches[id]
	return inst, ok
}

// Matches возвращает матчи в порядке создания.
func (s *GameService) Matches() []*Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Instance, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.matches[id])
	}
	return result
}

// StopMatch останавливает матч, сохраняет его и убирает из реестра.
func (s *GameService) StopMatch(ctx context.Context, id string) error {
	s.mu.Lock()
	inst, ok := s.matches[id]
	if ok {
		delete(s.matches, id)
		for idx, mid := range s.order {
			if mid == id {
				s.order = append(s.order[:idx], s.order[idx+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("stop %s: %w", id, ErrMatchNotFound)
	}
	inst.Stop()
	return s.save(ctx, inst)
}

// --- СЕССИИ И КОМАНДЫ ---

// Attach подключает сессию к матчу: регистрирует канал в хабе и просит снимок.
func (s *GameService) Attach(matchID, session string, token types.Identity) (*Instance, chan api.Frame, error) {
	inst, ok := s.Match(matchID)
	if !ok {
		return nil, nil, fmt.Errorf("attach %q: %w", matchID, ErrMatchNotFound)
	}

	frames := inst.Hub.Register(session)
	select {
	case inst.JoinChan <- Join{Session: session, Token: token}:
	case <-inst.Done():
		inst.Hub.Unregister(session)
		return nil, nil, fmt.Errorf("attach %s: %w", inst.ID, ErrMatchClosed)
	}
	return inst, frames, nil
}

// Detach отключает сессию. Безопасно вызывать после остановки матча.
func (s *GameService) Detach(inst *Instance, session string) {
	select {
	case inst.LeaveChan <- session:
	case <-inst.Done():
	default:
		// Канал выхода переполнен: отписываемся напрямую, хаб потокобезопасен
		inst.Hub.Unregister(session)
	}
}

// ProcessCommand принимает команду от внешнего мира (WebSocket, бот).
// Token доверенный: проверку прав оператора делает транспорт до этого метода.
func (s *GameService) ProcessCommand(cmd api.ClientCommand, session string) error {
	action := domain.ParseCommand(cmd.Action)
	if action == domain.CommandUnknown {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Action)
	}

	token := types.NilIdentity
	if cmd.Token != "" {
		id, err := types.ParseIdentity(cmd.Token)
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		token = id
	}

	inst, ok := s.Match(cmd.Match)
	if !ok {
		return fmt.Errorf("command %s: %w", action, ErrMatchNotFound)
	}

	internal := domain.InternalCommand{
		Action:  action,
		Token:   token,
		Session: session,
		Payload: cmd.Payload,
	}
	select {
	case inst.CommandChan <- internal:
		return nil
	case <-inst.Done():
		return fmt.Errorf("command %s: %w", action, ErrMatchClosed)
	}
}

// --- СОХРАНЕНИЕ ---

// save пишет журнал и итог остановленного матча во все настроенные хранилища.
func (s *GameService) save(ctx context.Context, inst *Instance) error {
	var errs []error

	if s.Replays != nil {
		if err := s.Replays.Save(inst.Journal); err != nil {
			errs = append(errs, fmt.Errorf("replay %s: %w", inst.ID, err))
		}
	}
	if s.Archive != nil {
		if err := s.Archive.SaveMatch(ctx, inst.Record()); err != nil {
			errs = append(errs, fmt.Errorf("archive %s: %w", inst.ID, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"match":   inst.ID,
		"entries": len(inst.Journal.Entries),
		"events":  len(inst.Events),
	}).Info("Match saved")
	return nil
}

// Shutdown останавливает все матчи и сохраняет их.
func (s *GameService) Shutdown(ctx context.Context) error {
	s.cancel()
	s.wg.Wait()

	var errs []error
	for _, inst := range s.Matches() {
		inst.Stop()
		if err := s.save(ctx, inst); err != nil {
			s.log.WithError(err).WithField("match", inst.ID).Error("Failed to save match")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
