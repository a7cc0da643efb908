package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

var (
	// ErrNoActor - команда требует робота, а сессия его не выбрала (чистый наблюдатель).
	ErrNoActor = errors.New("command requires a robot token")
	// ErrUnknownEntity - в матче нет сущности с таким Identity.
	ErrUnknownEntity = errors.New("entity not found")
)

// ActionBus - всё, куда можно опубликовать действие. engine.Sim неявно реализует этот интерфейс.
type ActionBus interface {
	Send(a domain.Action)
}

// EntityFinder описывает любую структуру, которая может проверить наличие сущности.
// engine.EntityManager неявно реализует этот интерфейс.
type EntityFinder interface {
	Contains(id types.Identity) bool
}

// Context передает хендлеру доступ к матчу.
// Хендлер не меняет сущности напрямую: он только публикует действия на шину.
type Context struct {
	Bus     ActionBus
	Finder  EntityFinder
	Actor   types.Identity // Робот, от имени которого пришла команда (Nil у наблюдателя)
	Session string
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ пишет в логи матча напрямую, он возвращает данные.
type Result struct {
	Msg     string // Текст лога
	MsgType string // Тип лога (INFO, COMBAT, RULES, ERROR)
}

// HandlerFunc - это контракт для любой команды (MOVE, FIRE, etc).
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}

// RequireActor проверяет, что у команды есть живой робот-исполнитель.
func (ctx Context) RequireActor() error {
	if ctx.Actor.IsNil() || !ctx.Actor.Role.IsRobot() {
		return ErrNoActor
	}
	if !ctx.Finder.Contains(ctx.Actor) {
		return fmt.Errorf("actor %s: %w", ctx.Actor, ErrUnknownEntity)
	}
	return nil
}

// ResolveTarget разбирает Identity из payload и проверяет, что сущность есть в матче.
func (ctx Context) ResolveTarget(raw string) (types.Identity, error) {
	id, err := types.ParseIdentity(raw)
	if err != nil {
		return types.NilIdentity, fmt.Errorf("target: %w", err)
	}
	if id.IsNil() || !ctx.Finder.Contains(id) {
		return types.NilIdentity, fmt.Errorf("target %q: %w", raw, ErrUnknownEntity)
	}
	return id, nil
}
