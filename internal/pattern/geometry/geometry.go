package geometry

import (
	"math"

	"pattern-mapper/internal/pattern/models"
	"pattern-mapper/internal/pattern/values"
)

// ============================================================
// Shape geometry
// ============================================================

// Compute считает center, radius, istriangle и shapelength по точкам
// контура. Фигуры без точек сохраняют свой центр.
func Compute(shape *models.ShapeInfo, fixTriangleCenters bool) {
	if len(shape.Points) == 0 {
		return
	}

	// Центр = средняя точка, включая замыкающую
	var sum [3]float64
	for _, p := range shape.Points {
		sum[0] += p.Pos.At(0)
		sum[1] += p.Pos.At(1)
		sum[2] += p.Pos.At(2)
	}
	n := float64(len(shape.Points))
	center := [3]float64{sum[0] / n, sum[1] / n, sum[2] / n}

	corners := distinctPoints(shape.Points)
	shape.IsTriangle = len(corners) == 3
	if shape.IsTriangle && fixTriangleCenters {
		center = [3]float64{}
		for _, c := range corners {
			center[0] += c[0] / 3
			center[1] += c[1] / 3
			center[2] += c[2] / 3
		}
	}
	shape.Center = values.Floats{center[0], center[1], center[2]}

	radius := 0.0
	for _, p := range shape.Points {
		radius = math.Max(radius, dist(center, pos(p)))
	}
	shape.Radius = radius

	if shape.ShapeLength == nil {
		length := fillDistances(shape.Points)
		shape.ShapeLength = &length
	}
}

// fillDistances заполняет пустые absdist/reldist и возвращает длину контура.
func fillDistances(points []models.PointData) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += dist(pos(points[i-1]), pos(points[i]))
	}
	if total == 0 || points[len(points)-1].AbsDist != 0 {
		return total
	}
	walked := 0.0
	for i := range points {
		if i > 0 {
			walked += dist(pos(points[i-1]), pos(points[i]))
		}
		points[i].AbsDist = walked
		points[i].RelDist = walked / total
	}
	return total
}

func distinctPoints(points []models.PointData) [][3]float64 {
	var out [][3]float64
	for _, p := range points {
		q := pos(p)
		seen := false
		for _, o := range out {
			if o == q {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, q)
		}
	}
	return out
}

func pos(p models.PointData) [3]float64 {
	return [3]float64{p.Pos.At(0), p.Pos.At(1), p.Pos.At(2)}
}

func dist(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// ============================================================
// Normalization
// ============================================================

// Bounds прямоугольник в плоскости xy.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Bounds) Center() (float64, float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

func (b Bounds) Extent() float64 {
	return math.Max(b.MaxX-b.MinX, b.MaxY-b.MinY)
}

// BoundsOf охватывает все точки фигур (или центры фигур без точек).
// Для пустого списка ok = false.
func BoundsOf(shapes []*models.ShapeInfo) (b Bounds, ok bool) {
	b = Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	add := func(x, y float64) {
		b.MinX, b.MaxX = math.Min(b.MinX, x), math.Max(b.MaxX, x)
		b.MinY, b.MaxY = math.Min(b.MinY, y), math.Max(b.MaxY, y)
		ok = true
	}
	for _, s := range shapes {
		if len(s.Points) == 0 {
			if s.HasCenter() {
				add(s.Center[0], s.Center[1])
			}
			continue
		}
		for _, p := range s.Points {
			add(p.Pos.At(0), p.Pos.At(1))
		}
	}
	return b, ok
}

// Normalize переносит центр рамки в начало координат и масштабирует так,
// чтобы больший размер был 1. Радиус и расстояния масштабируются тоже.
func Normalize(shapes []*models.ShapeInfo, recenter, rescale bool) {
	if !recenter && !rescale {
		return
	}
	b, ok := BoundsOf(shapes)
	if !ok {
		return
	}
	var cx, cy float64
	if recenter {
		cx, cy = b.Center()
	}
	scale := 1.0
	if rescale && b.Extent() > 0 {
		scale = 1 / b.Extent()
	}

	apply := func(v values.Floats) {
		if len(v) >= 2 {
			v[0] = (v[0] - cx) * scale
			v[1] = (v[1] - cy) * scale
		}
	}
	for _, s := range shapes {
		apply(s.Center)
		for i := range s.Points {
			apply(s.Points[i].Pos)
			s.Points[i].AbsDist *= scale
		}
		s.Radius *= scale
		if s.ShapeLength != nil {
			length := *s.ShapeLength * scale
			s.ShapeLength = &length
		}
	}
}
