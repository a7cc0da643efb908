package arena

import (
	"errors"
	"testing"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

func TestStandardLayout(t *testing.T) {
	l, err := Standard()
	if err != nil {
		t.Fatalf("Standard() error: %v", err)
	}

	tests := []struct {
		kind Kind
		want int
	}{
		{KindRobot, 10},
		{KindBase, 2},
		{KindOutpost, 2},
		{KindDepot, 2},
		{KindBuffArea, 3}, // две зоны склада и остров ресурсов
		{KindCapturePoint, 1},
		{KindPowerRune, 1},
		{KindReferee, 1},
	}
	for _, tt := range tests {
		if got := l.Count(tt.kind); got != tt.want {
			t.Errorf("Count(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestStandardLayout_Symmetric(t *testing.T) {
	l, _ := Standard()

	pos := map[string]domain.Vec2{}
	for _, p := range l.Placements {
		if p.Kind == KindRobot {
			pos[p.ID.String()] = p.Pos
		}
	}
	red, blue := pos["RED/HERO#1.0"], pos["BLUE/HERO#1.0"]
	if mirror(red) != blue {
		t.Errorf("Hero positions are not mirrored: red=%v blue=%v", red, blue)
	}
}

func TestBuild_Errors(t *testing.T) {
	_, err := NewLayout("broken").WithSize(5, 5).
		Robot(enums.CampRed, enums.RoleInfantry, 3, domain.Vec2{X: 1, Y: 1}).
		Robot(enums.CampRed, enums.RoleInfantry, 3, domain.Vec2{X: 2, Y: 2}).
		Robot(enums.CampRed, enums.RoleDrone, 6, domain.Vec2{X: 1, Y: 1}).
		Outpost(enums.CampBlue, domain.Vec2{X: 10, Y: 10}).
		Build()

	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []error{ErrDuplicateID, ErrUnknownTemplate, ErrOutOfField} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v in %v", want, err)
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
	}
	if _, err := ByName("moon"); err == nil {
		t.Error("expected error for unknown layout")
	}
}
