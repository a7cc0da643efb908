package arena

import (
	"errors"
	"fmt"
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

var (
	ErrUnknownTemplate = errors.New("unknown robot template")
	ErrOutOfField      = errors.New("placement is outside the field")
	ErrDuplicateID     = errors.New("duplicate placement identity")
)

// Kind - что именно размещается на поле.
type Kind string

const (
	KindRobot        Kind = "ROBOT"
	KindCapturePoint Kind = "CAPTURE_POINT"
	KindBuffArea     Kind = "BUFF_AREA"
	KindDepot        Kind = "DEPOT"
	KindOutpost      Kind = "OUTPOST"
	KindBase         Kind = "BASE"
	KindPowerRune    Kind = "POWER_RUNE"
	KindReferee      Kind = "REFEREE"
)

// Placement - одна сущность раскладки.
type Placement struct {
	Kind Kind           `json:"kind"`
	ID   types.Identity `json:"id"`
	Pos  domain.Vec2    `json:"pos"`

	// Zone - триггерный объём (точка захвата, зона баффа, зона склада)
	Zone domain.Shape `json:"zone"`

	// Для зон баффов
	Effect domain.EffectKind `json:"effect,omitempty"`
	Value  float64           `json:"value,omitempty"`
	Linger time.Duration     `json:"linger,omitempty"` // Эффект держится столько после выхода

	Robot RobotTemplate `json:"robot"` // Для роботов
	HP    int           `json:"hp,omitempty"`
}

// Layout - раскладка поля: размеры, препятствия и начальные сущности.
type Layout struct {
	Name       string         `json:"name"`
	Field      domain.Shape   `json:"field"`
	Obstacles  []domain.Shape `json:"obstacles"`
	Placements []Placement    `json:"placements"`
}

// LayoutBuilder предоставляет fluent API для создания раскладок
type LayoutBuilder struct {
	name       string
	width      float64
	height     float64
	obstacles  []domain.Shape
	placements []Placement
	serials    map[enums.Role]uint32
	errs       []error
}

// NewLayout создает новый builder для раскладки
func NewLayout(name string) *LayoutBuilder {
	return &LayoutBuilder{
		name:    name,
		width:   FieldWidth,
		height:  FieldHeight,
		serials: make(map[enums.Role]uint32),
	}
}

// WithSize устанавливает размер поля
func (b *LayoutBuilder) WithSize(width, height float64) *LayoutBuilder {
	b.width = width
	b.height = height
	return b
}

// WithObstacle добавляет непроходимую форму
func (b *LayoutBuilder) WithObstacle(shape domain.Shape) *LayoutBuilder {
	b.obstacles = append(b.obstacles, shape)
	return b
}

// Robot ставит робота из шаблона. Серийный номер задаётся явно (номер на броне).
func (b *LayoutBuilder) Robot(camp enums.Camp, role enums.Role, serial uint32, pos domain.Vec2) *LayoutBuilder {
	tmpl, ok := RobotTemplates[role]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrUnknownTemplate, role))
		return b
	}
	return b.add(Placement{
		Kind:  KindRobot,
		ID:    types.NewIdentity(camp, role, serial, 0),
		Pos:   pos,
		Robot: tmpl,
	})
}

// CapturePoint ставит нейтральную точку захвата с круглой зоной
func (b *LayoutBuilder) CapturePoint(pos domain.Vec2, radius float64) *LayoutBuilder {
	return b.add(Placement{
		Kind: KindCapturePoint,
		ID:   b.nextID(enums.CampNeutral, enums.RoleCapturePoint),
		Pos:  pos,
		Zone: domain.Circle(pos, radius),
	})
}

// BuffArea ставит зону баффа. camp = CampNeutral - зона для обеих сторон.
func (b *LayoutBuilder) BuffArea(camp enums.Camp, kind domain.EffectKind, zone domain.Shape, value float64, linger time.Duration) *LayoutBuilder {
	return b.add(Placement{
		Kind:   KindBuffArea,
		ID:     b.nextID(camp, enums.RoleBuffArea),
		Pos:    zone.Center,
		Zone:   zone,
		Effect: kind,
		Value:  value,
		Linger: linger,
	})
}

// Depot ставит склад и его зону пополнения (эффект Supply)
func (b *LayoutBuilder) Depot(camp enums.Camp, zone domain.Shape) *LayoutBuilder {
	b.add(Placement{
		Kind: KindDepot,
		ID:   b.nextID(camp, enums.RoleDepot),
		Pos:  zone.Center,
		Zone: zone,
	})
	return b.BuffArea(camp, domain.EffectSupply, zone, 0, 0)
}

func (b *LayoutBuilder) Outpost(camp enums.Camp, pos domain.Vec2) *LayoutBuilder {
	return b.add(Placement{Kind: KindOutpost, ID: b.nextID(camp, enums.RoleOutpost), Pos: pos, HP: OutpostHP})
}

func (b *LayoutBuilder) Base(camp enums.Camp, pos domain.Vec2) *LayoutBuilder {
	return b.add(Placement{Kind: KindBase, ID: b.nextID(camp, enums.RoleBase), Pos: pos, HP: BaseHP})
}

// PowerRune ставит руну. Зона - место, откуда можно запускать активацию.
func (b *LayoutBuilder) PowerRune(pos domain.Vec2, radius float64) *LayoutBuilder {
	return b.add(Placement{
		Kind: KindPowerRune,
		ID:   b.nextID(enums.CampNeutral, enums.RolePowerRune),
		Pos:  pos,
		Zone: domain.Circle(pos, radius),
	})
}

// Referee добавляет судью матча
func (b *LayoutBuilder) Referee() *LayoutBuilder {
	return b.add(Placement{Kind: KindReferee, ID: b.nextID(enums.CampNeutral, enums.RoleReferee)})
}

func (b *LayoutBuilder) nextID(camp enums.Camp, role enums.Role) types.Identity {
	b.serials[role]++
	return types.NewIdentity(camp, role, b.serials[role], 0)
}

func (b *LayoutBuilder) add(p Placement) *LayoutBuilder {
	b.placements = append(b.placements, p)
	return b
}

// Build проверяет раскладку и возвращает её
func (b *LayoutBuilder) Build() (Layout, error) {
	field := domain.Rect(domain.Vec2{X: b.width / 2, Y: b.height / 2}, b.width, b.height)

	errs := append([]error(nil), b.errs...)
	seen := make(map[types.Identity]struct{}, len(b.placements))
	for _, p := range b.placements {
		if _, ok := seen[p.ID]; ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateID, p.ID))
		}
		seen[p.ID] = struct{}{}

		if p.Kind != KindReferee && !field.Contains(p.Pos) {
			errs = append(errs, fmt.Errorf("%w: %s at %v", ErrOutOfField, p.ID, p.Pos))
		}
	}
	if len(errs) > 0 {
		return Layout{}, fmt.Errorf("layout %q: %w", b.name, errors.Join(errs...))
	}

	return Layout{
		Name:       b.name,
		Field:      field,
		Obstacles:  b.obstacles,
		Placements: b.placements,
	}, nil
}

// Count возвращает число размещений вида k.
func (l Layout) Count(k Kind) int {
	n := 0
	for _, p := range l.Placements {
		if p.Kind == k {
			n++
		}
	}
	return n
}
