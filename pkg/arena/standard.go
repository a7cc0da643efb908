package arena

import (
	"fmt"
	"sort"
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

// Размеры стандартного поля, м
const (
	FieldWidth  = 28.0
	FieldHeight = 15.0
)

// mirror отражает точку красных на сторону синих (центральная симметрия поля)
func mirror(p domain.Vec2) domain.Vec2 {
	return domain.Vec2{X: FieldWidth - p.X, Y: FieldHeight - p.Y}
}

func side(camp enums.Camp, p domain.Vec2) domain.Vec2 {
	if camp == enums.CampBlue {
		return mirror(p)
	}
	return p
}

// Standard - полное поле: по пять роботов, база, аванпост, склад и общие зоны.
func Standard() (Layout, error) {
	b := NewLayout("standard").WithSize(FieldWidth, FieldHeight)

	// Центральные стены
	b.WithObstacle(domain.Rect(domain.Vec2{X: 14, Y: 5}, 1, 3)).
		WithObstacle(domain.Rect(domain.Vec2{X: 14, Y: 10}, 1, 3))

	for _, camp := range []enums.Camp{enums.CampRed, enums.CampBlue} {
		b.Robot(camp, enums.RoleHero, 1, side(camp, domain.Vec2{X: 2, Y: 2})).
			Robot(camp, enums.RoleEngineer, 2, side(camp, domain.Vec2{X: 2, Y: 4})).
			Robot(camp, enums.RoleInfantry, 3, side(camp, domain.Vec2{X: 3, Y: 6})).
			Robot(camp, enums.RoleInfantry, 4, side(camp, domain.Vec2{X: 3, Y: 9})).
			Robot(camp, enums.RoleSentinel, 7, side(camp, domain.Vec2{X: 5, Y: 12})).
			Base(camp, side(camp, domain.Vec2{X: 1.5, Y: 7.5})).
			Outpost(camp, side(camp, domain.Vec2{X: 9, Y: 3})).
			Depot(camp, domain.Rect(side(camp, domain.Vec2{X: 1, Y: 13.5}), 2, 2)).
			WithObstacle(domain.Rect(side(camp, domain.Vec2{X: 7, Y: 7.5}), 1, 4))
	}

	b.CapturePoint(domain.Vec2{X: 14, Y: 2}, 1.2).
		BuffArea(enums.CampNeutral, domain.EffectResourceIsland, domain.Circle(domain.Vec2{X: 14, Y: 7.5}, 1.5), domain.ResourceIslandRegenRatio, 0).
		PowerRune(domain.Vec2{X: 14, Y: 13}, 1.5).
		Referee()

	return b.Build()
}

// Duel - маленькое поле один на один для отладки и тестов.
func Duel() (Layout, error) {
	return NewLayout("duel").WithSize(10, 6).
		Robot(enums.CampRed, enums.RoleInfantry, 3, domain.Vec2{X: 1, Y: 3}).
		Robot(enums.CampBlue, enums.RoleInfantry, 3, domain.Vec2{X: 9, Y: 3}).
		Depot(enums.CampRed, domain.Rect(domain.Vec2{X: 1, Y: 1}, 2, 2)).
		Depot(enums.CampBlue, domain.Rect(domain.Vec2{X: 9, Y: 5}, 2, 2)).
		CapturePoint(domain.Vec2{X: 5, Y: 3}, 1).
		BuffArea(enums.CampNeutral, domain.EffectOverheat, domain.Rect(domain.Vec2{X: 5, Y: 0.5}, 2, 1), 1, 3*time.Second).
		PowerRune(domain.Vec2{X: 5, Y: 5.5}, 0.5).
		Referee().
		Build()
}

var layouts = map[string]func() (Layout, error){
	"standard": Standard,
	"duel":     Duel,
}

// ByName возвращает раскладку по имени (конфиг, реплеи).
func ByName(name string) (Layout, error) {
	build, ok := layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("unknown layout %q (known: %v)", name, Names())
	}
	return build()
}

// Names - известные раскладки в алфавитном порядке.
func Names() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
