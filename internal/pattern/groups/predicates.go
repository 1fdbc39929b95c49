package groups

import (
	"fmt"

	"pattern-mapper/internal/pattern/models"
	"pattern-mapper/internal/pattern/values"
)

// Predicate проверяет фигуру по границам позиционной спеки на индексе.
type Predicate interface {
	Test(shape *models.ShapeInfo, index int) bool
	// Число индексов, минимум 1
	Len() int
	Describe(index int) string
}

type rotated struct {
	prerotate values.Sequence[float64]
}

func newRotated(spec models.PositionalSpec) rotated {
	return rotated{prerotate: values.NewSequence(spec.Prerotate, values.ParseFloat, values.Cyclic[float64]())}
}

// position возвращает центр, повернутый на prerotate[index].
func (r rotated) position(shape *models.ShapeInfo, index int) (float64, float64, bool) {
	if !shape.HasCenter() {
		return 0, 0, false
	}
	deg, _ := r.prerotate.Get(index)
	x, y := values.RotateXY(shape.Center[0], shape.Center[1], deg)
	return x, y, true
}

func (r rotated) describe(index int) string {
	if deg, ok := r.prerotate.Get(index); ok && deg != 0 {
		return fmt.Sprintf(" rotated: %s", values.FormatFloat(deg))
	}
	return ""
}

// ============================================================
// Box bounds
// ============================================================

type boxPredicate struct {
	rotated
	x, y values.RangeSequence
}

func newBoxPredicate(spec *models.BoxBoundSpec) *boxPredicate {
	return &boxPredicate{
		rotated: newRotated(spec.PositionalSpec),
		x:       values.NewRangeSequence(spec.XMin, spec.XMax),
		y:       values.NewRangeSequence(spec.YMin, spec.YMax),
	}
}

func (p *boxPredicate) Test(shape *models.ShapeInfo, index int) bool {
	x, y, ok := p.position(shape, index)
	return ok && p.x.Contains(x, index) && p.y.Contains(y, index)
}

func (p *boxPredicate) Len() int {
	return max(p.x.Len(), p.y.Len(), p.prerotate.Len(), 1)
}

func (p *boxPredicate) Describe(index int) string {
	return fmt.Sprintf("(x: %s y: %s%s)", bound(p.x, index), bound(p.y, index), p.describe(index))
}

// ============================================================
// Polar bounds
// ============================================================

type polarPredicate struct {
	rotated
	angle, distance values.RangeSequence
}

func newPolarPredicate(spec *models.PolarBoundSpec) *polarPredicate {
	return &polarPredicate{
		rotated:  newRotated(spec.PositionalSpec),
		angle:    values.NewRangeSequence(spec.AngleMin, spec.AngleMax),
		distance: values.NewRangeSequence(spec.DistanceMin, spec.DistanceMax),
	}
}

func (p *polarPredicate) Test(shape *models.ShapeInfo, index int) bool {
	x, y, ok := p.position(shape, index)
	if !ok {
		return false
	}
	dist, angle := values.CartesianToPolar(x, y)
	return p.distance.Contains(dist, index) && p.angle.Contains(angle, index)
}

func (p *polarPredicate) Len() int {
	return max(p.angle.Len(), p.distance.Len(), p.prerotate.Len(), 1)
}

func (p *polarPredicate) Describe(index int) string {
	return fmt.Sprintf("(t: %s r: %s%s)", bound(p.angle, index), bound(p.distance, index), p.describe(index))
}

func bound(r values.RangeSequence, index int) string {
	side := func(s values.Sequence[float64]) string {
		if v, ok := s.Get(index); ok {
			return values.FormatFloat(v)
		}
		return "*"
	}
	return "[" + side(r.Low) + " " + side(r.High) + "]"
}
