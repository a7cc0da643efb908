package domain

import (
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
)

// ActionName - стабильное иерархическое имя действия ("Домен.Вид").
// По нему строится индекс подписок шины и пишется журнал матча.
type ActionName string

// --- ИМЕНА ДЕЙСТВИЙ ---

const (
	NameStageStart       ActionName = "Stage.Start"
	NameStageEnd         ActionName = "Stage.End"
	NameStageOutpostFall ActionName = "Stage.OutpostFall"
	NameStageBaseFall    ActionName = "Stage.BaseFall"

	NameBuffGrant  ActionName = "Buff.Grant"
	NameBuffRevoke ActionName = "Buff.Revoke"

	NameOccupyBegin    ActionName = "Occupy.Begin"
	NameOccupyEnd      ActionName = "Occupy.End"
	NameOccupyOccupied ActionName = "Occupy.Occupied"
	NameOccupyLeft     ActionName = "Occupy.Left"

	NameSupplyRequest  ActionName = "Supply.Request"
	NameSupplyDoSupply ActionName = "Supply.DoSupply"

	NameCombatFire ActionName = "Combat.Fire"
	NameCombatHit  ActionName = "Combat.Hit"
	NameCombatKill ActionName = "Combat.Kill"

	NameRobotRevive ActionName = "Robot.Revive"
	NameRobotMove   ActionName = "Robot.Move"

	NameRuneEnable    ActionName = "Rune.Enable"
	NameRuneStart     ActionName = "Rune.Start"
	NameRuneHit       ActionName = "Rune.Hit"
	NameRuneActivated ActionName = "Rune.Activated"

	NameLightSet ActionName = "Light.Set"
)

// Domain возвращает часть имени до точки ("Stage" для "Stage.OutpostFall").
func (n ActionName) Domain() string {
	for i := 0; i < len(n); i++ {
		if n[i] == '.' {
			return string(n[:i])
		}
	}
	return string(n)
}

// Action - типизированное неизменяемое сообщение шины.
//
// Интерфейс закрыт: реализовать его могут только типы этого пакета,
// поэтому получатели разбирают действия через type switch по известному набору.
type Action interface {
	ActionName() ActionName
	isAction()
}

// --- STAGE ---

type StageStart struct{}

type StageEnd struct {
	Winner enums.Camp
}

type StageOutpostFall struct {
	Camp enums.Camp
}

type StageBaseFall struct {
	Camp enums.Camp
}

// --- BUFF ---

// BuffGrant просит получателя положить эффект в свой реестр.
type BuffGrant struct {
	Receiver types.Identity
	Effect   Effect
}

type BuffRevoke struct {
	Receiver types.Identity
	Kind     EffectKind
}

// --- OCCUPY ---

// OccupyBegin публикуется точкой захвата, когда робот стороны Camp вошёл в её зону.
type OccupyBegin struct {
	Point types.Identity
	Camp  enums.Camp
	Who   types.Identity
}

type OccupyEnd struct {
	Point types.Identity
	Camp  enums.Camp
	Who   types.Identity
}

// OccupyOccupied публикуется ровно один раз на каждый завершённый отсчёт захвата.
type OccupyOccupied struct {
	Point types.Identity
	Camp  enums.Camp
}

type OccupyLeft struct {
	Point types.Identity
	Camp  enums.Camp
}

// --- SUPPLY ---

type SupplyRequest struct {
	Receiver types.Identity
	Amount   int
}

type SupplyDoSupply struct {
	Receiver types.Identity
	Amount   int
}

// --- COMBAT ---

// CombatFire - команда стрелку. Попадание доставляется отдельным CombatHit через SendChild.
type CombatFire struct {
	Shooter types.Identity
	Target  types.Identity
	Plate   int
}

type CombatHit struct {
	Shooter types.Identity
	Target  types.Identity
	Damage  int
}

type CombatKill struct {
	Victim types.Identity
	Killer types.Identity
}

// --- ROBOT ---

type RobotRevive struct {
	Receiver types.Identity
}

type RobotMove struct {
	Receiver types.Identity
	X        float64
	Y        float64
}

// --- RUNE ---

type RuneEnable struct {
	Rune types.Identity
}

type RuneStart struct {
	Rune types.Identity
	Camp enums.Camp
}

type RuneHit struct {
	Rune   types.Identity
	Camp   enums.Camp
	Branch int
}

type RuneActivated struct {
	Rune types.Identity
	Camp enums.Camp
}

// --- LIGHT ---

// LightSet адресуется дочернему светильнику через SendChild.
type LightSet struct {
	Color LightColor
}

// AllChildren - селектор "все дочерние элементы" (все плиты брони, все ветви руны).
const AllChildren = -1

// ChildAction - обёртка SendChild: действие для дочернего элемента Child сущности Parent.
// Имя совпадает с именем вложенного действия, поэтому индекс подписок не меняется.
type ChildAction struct {
	Inner  Action
	Parent types.Identity
	Child  int
}

// --- ActionName / isAction ---

func (StageStart) ActionName() ActionName       { return NameStageStart }
func (StageEnd) ActionName() ActionName         { return NameStageEnd }
func (StageOutpostFall) ActionName() ActionName { return NameStageOutpostFall }
func (StageBaseFall) ActionName() ActionName    { return NameStageBaseFall }
func (BuffGrant) ActionName() ActionName        { return NameBuffGrant }
func (BuffRevoke) ActionName() ActionName       { return NameBuffRevoke }
func (OccupyBegin) ActionName() ActionName      { return NameOccupyBegin }
func (OccupyEnd) ActionName() ActionName        { return NameOccupyEnd }
func (OccupyOccupied) ActionName() ActionName   { return NameOccupyOccupied }
func (OccupyLeft) ActionName() ActionName       { return NameOccupyLeft }
func (SupplyRequest) ActionName() ActionName    { return NameSupplyRequest }
func (SupplyDoSupply) ActionName() ActionName   { return NameSupplyDoSupply }
func (CombatFire) ActionName() ActionName       { return NameCombatFire }
func (CombatHit) ActionName() ActionName        { return NameCombatHit }
func (CombatKill) ActionName() ActionName       { return NameCombatKill }
func (RobotRevive) ActionName() ActionName      { return NameRobotRevive }
func (RobotMove) ActionName() ActionName        { return NameRobotMove }
func (RuneEnable) ActionName() ActionName       { return NameRuneEnable }
func (RuneStart) ActionName() ActionName        { return NameRuneStart }
func (RuneHit) ActionName() ActionName          { return NameRuneHit }
func (RuneActivated) ActionName() ActionName    { return NameRuneActivated }
func (LightSet) ActionName() ActionName         { return NameLightSet }
func (c ChildAction) ActionName() ActionName    { return c.Inner.ActionName() }

func (StageStart) isAction()       {}
func (StageEnd) isAction()         {}
func (StageOutpostFall) isAction() {}
func (StageBaseFall) isAction()    {}
func (BuffGrant) isAction()        {}
func (BuffRevoke) isAction()       {}
func (OccupyBegin) isAction()      {}
func (OccupyEnd) isAction()        {}
func (OccupyOccupied) isAction()   {}
func (OccupyLeft) isAction()       {}
func (SupplyRequest) isAction()    {}
func (SupplyDoSupply) isAction()   {}
func (CombatFire) isAction()       {}
func (CombatHit) isAction()        {}
func (CombatKill) isAction()       {}
func (RobotRevive) isAction()      {}
func (RobotMove) isAction()        {}
func (RuneEnable) isAction()       {}
func (RuneStart) isAction()        {}
func (RuneHit) isAction()          {}
func (RuneActivated) isAction()    {}
func (LightSet) isAction()         {}
func (ChildAction) isAction()      {}

// LightColor - состояние дочернего светильника (ветви руны, индикаторы брони).
type LightColor uint8

const (
	LightOff LightColor = iota
	LightBlink
	LightOn
)

var lightColorToString = map[LightColor]string{
	LightOff:   "OFF",
	LightBlink: "BLINK",
	LightOn:    "ON",
}

func (c LightColor) String() string {
	if val, ok := lightColorToString[c]; ok {
		return val
	}
	return "UNKNOWN"
}
