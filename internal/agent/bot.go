package agent

import (
	"context"
	"encoding/json"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/utils"
)

// Настройки поведения бота
const (
	DefaultFireRange  = 6.0 // м
	DefaultThinkEvery = 10  // тиков между решениями
	retargetDistance  = 0.5 // м: новая точка MOVE только при заметном смещении цели
)

// Commander - куда бот отправляет команды (GameService.ProcessCommand).
type Commander interface {
	ProcessCommand(cmd api.ClientCommand, session string) error
}

// Bot - оператор-компьютер (headless agent).
//
// Бот подключается к матчу так же, как WebSocket-клиент: получает кадры через хаб,
// собирает из них Mirror и отправляет команды через Commander. Прямого доступа
// к сущностям у него нет.
//
// Жизненный цикл:
//  1. Attach -> регистрация сессии в матче, личный канал кадров.
//  2. Run -> цикл в отдельной горутине: Apply кадра, раз в ThinkEvery тиков Decide.
//  3. Decide -> ближайший живой враг: в радиусе FIRE, иначе MOVE к нему.
type Bot struct {
	Token   types.Identity
	Session string

	FireRange  float64
	ThinkEvery uint32

	commander Commander
	frames    <-chan api.Frame
	mirror    *Mirror

	lastThink uint32
	lastMove  domain.Vec2
	hasMove   bool

	log *logrus.Entry
}

func NewBot(token types.Identity, commander Commander, frames <-chan api.Frame) *Bot {
	session := "bot_" + utils.GenerateID()
	return &Bot{
		Token:      token,
		Session:    session,
		FireRange:  DefaultFireRange,
		ThinkEvery: DefaultThinkEvery,
		commander:  commander,
		frames:     frames,
		mirror:     NewMirror(),
		log: logger.Log.WithFields(logrus.Fields{
			"component": "bot",
			"robot":     token.String(),
		}),
	}
}

// Attach подключает бота к матчу сервиса.
func Attach(svc *engine.GameService, matchID string, token types.Identity) (*Bot, error) {
	b := NewBot(token, svc, nil)
	_, frames, err := svc.Attach(matchID, b.Session, token)
	if err != nil {
		return nil, err
	}
	b.frames = frames
	b.log.Info("Bot attached")
	return b, nil
}

// Mirror - текущая картина матча глазами бота.
func (b *Bot) Mirror() *Mirror {
	return b.mirror
}

// Run запускает цикл жизни бота. Должен быть запущен в горутине.
// Завершается по отмене ctx или при закрытии канала кадров (матч остановлен).
func (b *Bot) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-b.frames:
			if !ok {
				b.log.Info("Bot shut down")
				return
			}
			b.Handle(frame)
		}
	}
}

// Handle применяет кадр и, если пора, принимает решение.
func (b *Bot) Handle(frame api.Frame) {
	if !b.mirror.Apply(frame) {
		return
	}
	if frame.Type == api.FrameLog || frame.Type == api.FrameCall {
		return
	}
	if b.lastThink != 0 && b.mirror.Tick < b.lastThink+b.ThinkEvery {
		return
	}
	b.lastThink = max(b.mirror.Tick, 1)

	cmd, ok := b.Decide()
	if !ok {
		return
	}
	if err := b.commander.ProcessCommand(cmd, b.Session); err != nil {
		b.log.WithError(err).WithField("action", cmd.Action).Warn("Bot command rejected")
	}
}

// Decide - мозг бота: выбирает одну команду по текущей копии матча.
func (b *Bot) Decide() (api.ClientCommand, bool) {
	// --- ШАГ 1: СЕБЯ НАХОДИМ И ПРОВЕРЯЕМ ---
	me, ok := b.mirror.Self()
	if !ok || !me.Bool("alive") {
		return api.ClientCommand{}, false
	}
	pos, ok := me.Position()
	if !ok {
		return api.ClientCommand{}, false
	}

	// --- ШАГ 2: БЛИЖАЙШИЙ ЖИВОЙ ВРАГ ---
	target, targetPos, dist := b.nearestEnemy(pos)
	if target == nil {
		return api.ClientCommand{}, false
	}

	// --- ШАГ 3: ОГОНЬ ИЛИ СБЛИЖЕНИЕ ---
	if ammo, _ := me.Number("ammo"); dist <= b.FireRange && ammo > 0 {
		b.hasMove = false
		plate := int(b.mirror.Tick/b.ThinkEvery) % domain.ArmorPlates
		return b.command(domain.CommandFire, api.FirePayload{TargetID: target.ID, Plate: plate})
	}

	if b.hasMove && b.lastMove.DistanceTo(targetPos) < retargetDistance {
		return api.ClientCommand{}, false
	}
	b.lastMove = targetPos
	b.hasMove = true
	return b.command(domain.CommandMove, api.MovePayload{X: targetPos.X, Y: targetPos.Y})
}

func (b *Bot) nearestEnemy(from domain.Vec2) (*View, domain.Vec2, float64) {
	// Детерминированный порядок обхода: при равных дистанциях берём меньший ID
	ids := make([]string, 0, len(b.mirror.Entities))
	for id := range b.mirror.Entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		best    *View
		bestPos domain.Vec2
		bestD   = math.Inf(1)
	)
	myCamp := b.Token.Camp.String()
	for _, id := range ids {
		v := b.mirror.Entities[id]
		if v.Camp == "" || v.Camp == myCamp || !v.Bool("alive") {
			continue
		}
		p, ok := v.Position()
		if !ok {
			continue
		}
		if d := from.DistanceTo(p); d < bestD {
			best, bestPos, bestD = v, p, d
		}
	}
	return best, bestPos, bestD
}

// --- Хелперы для отправки команд на сервер ---

func (b *Bot) command(action domain.CommandType, payload any) (api.ClientCommand, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.log.WithError(err).Error("Error marshalling payload")
		return api.ClientCommand{}, false
	}
	return api.ClientCommand{
		Action:  action.String(),
		Match:   b.mirror.Match,
		Token:   b.Token.String(),
		Payload: data,
	}, true
}
