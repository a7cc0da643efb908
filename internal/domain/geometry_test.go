package domain

import "testing"

func TestShapeContains(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		p     Vec2
		want  bool
	}{
		{"circle center", Circle(Vec2{X: 1, Y: 1}, 0.5), Vec2{X: 1, Y: 1}, true},
		{"circle edge", Circle(Vec2{X: 0, Y: 0}, 1), Vec2{X: 1, Y: 0}, true},
		{"circle outside", Circle(Vec2{X: 0, Y: 0}, 1), Vec2{X: 0.8, Y: 0.8}, false},
		{"rect inside", Rect(Vec2{X: 5, Y: 5}, 2, 4), Vec2{X: 5.9, Y: 3.1}, true},
		{"rect outside", Rect(Vec2{X: 5, Y: 5}, 2, 4), Vec2{X: 6.1, Y: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestVec2Distance(t *testing.T) {
	if d := (Vec2{X: 0, Y: 0}).DistanceTo(Vec2{X: 3, Y: 4}); d != 5 {
		t.Errorf("expected 5, got %v", d)
	}
}
