package domain

import "math"

// Vec2 - точка на поле в метрах. Начало координат - угол поля красных.
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func (v Vec2) Add(o Vec2) Vec2           { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2           { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2      { return Vec2{X: v.X * k, Y: v.Y * k} }
func (v Vec2) Len() float64              { return math.Hypot(v.X, v.Y) }
func (v Vec2) DistanceTo(o Vec2) float64 { return v.Sub(o).Len() }

// ShapeKind - форма триггерного объёма.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeRect
)

// Shape - триггерный объём или препятствие с центром Center.
// Для круга используется R, для прямоугольника W и H (оси выровнены).
type Shape struct {
	Kind   ShapeKind `json:"kind"`
	Center Vec2      `json:"center"`
	R      float64   `json:"r,omitempty"`
	W      float64   `json:"w,omitempty"`
	H      float64   `json:"h,omitempty"`
}

func Circle(center Vec2, r float64) Shape {
	return Shape{Kind: ShapeCircle, Center: center, R: r}
}

func Rect(center Vec2, w, h float64) Shape {
	return Shape{Kind: ShapeRect, Center: center, W: w, H: h}
}

// Contains - лежит ли точка внутри объёма (граница включительно).
func (s Shape) Contains(p Vec2) bool {
	switch s.Kind {
	case ShapeCircle:
		return s.Center.DistanceTo(p) <= s.R
	case ShapeRect:
		return math.Abs(p.X-s.Center.X) <= s.W/2 && math.Abs(p.Y-s.Center.Y) <= s.H/2
	}
	return false
}

// Bounds возвращает углы описывающего прямоугольника.
func (s Shape) Bounds() (min, max Vec2) {
	hw, hh := s.W/2, s.H/2
	if s.Kind == ShapeCircle {
		hw, hh = s.R, s.R
	}
	return Vec2{X: s.Center.X - hw, Y: s.Center.Y - hh}, Vec2{X: s.Center.X + hw, Y: s.Center.Y + hh}
}
