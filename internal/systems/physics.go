package systems

import (
	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

// HasLineOfSight проверяет прямую видимость между двумя точками.
// Отрезок p1-p2 не должен пересекать ни одно препятствие (по описывающему прямоугольнику).
func HasLineOfSight(obstacles []domain.Shape, p1, p2 domain.Vec2) bool {
	losLogger := logger.Log.WithFields(logrus.Fields{
		"component": "physics_system",
		"function":  "HasLineOfSight",
		"start_pos": p1,
		"end_pos":   p2,
	})

	if p1 == p2 {
		return true
	}

	for i, o := range obstacles {
		lo, hi := o.Bounds()
		if segmentHitsBox(p1, p2, lo, hi) {
			losLogger.WithField("obstacle", i).Debug("Line is blocked. Result: false")
			return false
		}
	}
	return true
}

// segmentHitsBox - пересечение отрезка с прямоугольником (алгоритм Лианга-Барски).
func segmentHitsBox(p1, p2, lo, hi domain.Vec2) bool {
	d := p2.Sub(p1)
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}

	return clip(-d.X, p1.X-lo.X) &&
		clip(d.X, hi.X-p1.X) &&
		clip(-d.Y, p1.Y-lo.Y) &&
		clip(d.Y, hi.Y-p1.Y)
}
