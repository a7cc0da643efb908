package entities

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
)

// healthReporter - строение, по HP которого судья определяет победителя по времени.
type healthReporter interface {
	Health() int
}

// campCounter - пара реплицируемых счётчиков по сторонам.
type campCounter struct {
	red  *engine.Replicated[int]
	blue *engine.Replicated[int]
}

func newCampCounter(store *engine.Store, name string) campCounter {
	return campCounter{
		red:  engine.NewReplicated(store, name+".red", 0),
		blue: engine.NewReplicated(store, name+".blue", 0),
	}
}

func (c campCounter) inc(ctx *engine.Sim, camp enums.Camp) {
	switch camp {
	case enums.CampRed:
		c.red.Set(ctx, c.red.Get()+1)
	case enums.CampBlue:
		c.blue.Set(ctx, c.blue.Get()+1)
	}
}

func (c campCounter) get(camp enums.Camp) int {
	switch camp {
	case enums.CampRed:
		return c.red.Get()
	case enums.CampBlue:
		return c.blue.Get()
	}
	return 0
}

// Referee ведёт матч: этапы, часы, расписание руны, возрождения и итог.
type Referee struct {
	engine.Store

	elapsed  time.Duration
	nextRune int

	revives     map[types.Identity]time.Duration
	reviveOrder []types.Identity

	stage     *engine.Replicated[string]
	remaining *engine.Replicated[float64] // Секунды до конца матча
	winner    *engine.Replicated[enums.Camp]
	kills     campCounter
	captures  campCounter
	runes     campCounter
}

func NewReferee(id types.Identity) *Referee {
	r := &Referee{
		Store:   engine.NewStore(id),
		revives: make(map[types.Identity]time.Duration),
	}
	r.stage = engine.NewReplicated(&r.Store, "stage", domain.StagePrepare)
	r.remaining = engine.NewReplicated(&r.Store, "remaining", 0.0)
	r.winner = engine.NewReplicated(&r.Store, "winner", enums.CampUnknown)
	r.kills = newCampCounter(&r.Store, "kills")
	r.captures = newCampCounter(&r.Store, "captures")
	r.runes = newCampCounter(&r.Store, "runes")
	return r
}

func (r *Referee) Stage() string                   { return r.stage.Get() }
func (r *Referee) Winner() enums.Camp              { return r.winner.Get() }
func (r *Referee) Elapsed() time.Duration          { return r.elapsed }
func (r *Referee) Kills(camp enums.Camp) int       { return r.kills.get(camp) }
func (r *Referee) Captures(camp enums.Camp) int    { return r.captures.get(camp) }
func (r *Referee) Activations(camp enums.Camp) int { return r.runes.get(camp) }

func (r *Referee) Init(ctx *engine.Sim) error {
	r.Mutate(ctx, func() {
		r.remaining.Set(ctx, ctx.Rules.MatchDuration.Seconds())
	})
	return nil
}

func (r *Referee) InputActions() []domain.ActionName {
	return engine.UnionActions(r.Store.InputActions(),
		domain.NameStageStart,
		domain.NameStageEnd,
		domain.NameStageBaseFall,
		domain.NameCombatKill,
		domain.NameOccupyOccupied,
		domain.NameRuneActivated,
	)
}

func (r *Referee) Receive(ctx *engine.Sim, a domain.Action) {
	if !ctx.IsAuthority() {
		return
	}

	switch act := a.(type) {
	case domain.StageStart:
		if r.Stage() == domain.StagePrepare {
			r.stage.Set(ctx, domain.StageRunning)
			r.log(ctx).Info("Match started")
		}

	case domain.StageEnd:
		if r.Stage() == domain.StageEnded {
			return
		}
		r.stage.Set(ctx, domain.StageEnded)
		r.winner.Set(ctx, act.Winner)
		r.log(ctx).WithField("winner", act.Winner.String()).Info("Match ended")

	case domain.StageBaseFall:
		if r.Stage() == domain.StageRunning {
			ctx.Send(domain.StageEnd{Winner: act.Camp.Opponent()})
		}

	case domain.CombatKill:
		if act.Killer.Camp.IsPlayable() && act.Killer.Camp != act.Victim.Camp {
			r.kills.inc(ctx, act.Killer.Camp)
		}
		if act.Victim.Role.IsRobot() && r.Stage() == domain.StageRunning {
			r.scheduleRevive(ctx, act.Victim)
		}

	case domain.OccupyOccupied:
		r.captures.inc(ctx, act.Camp)

	case domain.RuneActivated:
		r.runes.inc(ctx, act.Camp)
		r.CallObservers(ctx, "Announce", "RUNE_ACTIVATED", act.Camp.String())

	default:
		r.Store.Receive(ctx, a)
	}
}

func (r *Referee) Tick(ctx *engine.Sim, dt time.Duration) {
	if !ctx.IsAuthority() {
		return
	}

	switch r.Stage() {
	case domain.StagePrepare:
		ctx.Send(domain.StageStart{})
		return
	case domain.StageEnded:
		return
	}

	// 1. Часы
	r.elapsed += dt
	left := max(0, ctx.Rules.MatchDuration-r.elapsed)
	r.remaining.Set(ctx, left.Seconds())

	// 2. Расписание руны
	schedule := ctx.Rules.RuneEnableSchedule
	for r.nextRune < len(schedule) && r.elapsed >= schedule[r.nextRune] {
		r.nextRune++
		for e := range ctx.Entities.ByRole(enums.RolePowerRune) {
			ctx.Send(domain.RuneEnable{Rune: e.Identity()})
		}
	}

	// 3. Возрождения
	if len(r.reviveOrder) > 0 {
		due := r.reviveOrder
		r.reviveOrder = nil
		for _, id := range due {
			if r.elapsed < r.revives[id] {
				r.reviveOrder = append(r.reviveOrder, id)
				continue
			}
			delete(r.revives, id)
			ctx.Send(domain.RobotRevive{Receiver: id})
		}
	}

	// 4. Конец по времени
	if r.elapsed >= ctx.Rules.MatchDuration {
		ctx.Send(domain.StageEnd{Winner: r.judge(ctx)})
	}
}

func (r *Referee) scheduleRevive(ctx *engine.Sim, id types.Identity) {
	if _, ok := r.revives[id]; !ok {
		r.reviveOrder = append(r.reviveOrder, id)
	}
	r.revives[id] = r.elapsed + ctx.Rules.ReviveDelay
}

// judge - победитель по оставшемуся HP баз. Равенство - ничья (CampNeutral).
func (r *Referee) judge(ctx *engine.Sim) enums.Camp {
	health := map[enums.Camp]int{}
	for e := range ctx.Entities.ByRole(enums.RoleBase) {
		if h, ok := e.(healthReporter); ok {
			health[e.Identity().Camp] += h.Health()
		}
	}
	switch red, blue := health[enums.CampRed], health[enums.CampBlue]; {
	case red > blue:
		return enums.CampRed
	case blue > red:
		return enums.CampBlue
	default:
		return enums.CampNeutral
	}
}

func (r *Referee) log(ctx *engine.Sim) *logrus.Entry {
	return ctx.Log().WithFields(logrus.Fields{
		"component": "referee",
		"elapsed":   r.elapsed.String(),
	})
}
