package geometry

import (
	"testing"

	"pattern-mapper/internal/pattern/models"
	"pattern-mapper/internal/pattern/values"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outline(coords ...float64) []models.PointData {
	var pts []models.PointData
	for i := 0; i+1 < len(coords); i += 2 {
		pts = append(pts, models.PointData{Pos: values.Floats{coords[i], coords[i+1], 0}})
	}
	return pts
}

func TestComputeSquare(t *testing.T) {
	s := &models.ShapeInfo{Points: outline(0, 0, 2, 0, 2, 2, 0, 2)}
	Compute(s, false)

	assert.InDelta(t, 1, s.Center[0], 1e-9)
	assert.InDelta(t, 1, s.Center[1], 1e-9)
	assert.InDelta(t, 1.41421356, s.Radius, 1e-6)
	assert.False(t, s.IsTriangle)
	require.NotNil(t, s.ShapeLength)
	assert.InDelta(t, 6, *s.ShapeLength, 1e-9)
	assert.InDelta(t, 1, s.Points[3].RelDist, 1e-9)
}

func TestComputeTriangleCenter(t *testing.T) {
	// closed outline repeats the first point
	pts := outline(0, 0, 3, 0, 0, 3, 0, 0)

	plain := &models.ShapeInfo{Points: pts}
	Compute(plain, false)
	assert.True(t, plain.IsTriangle)
	assert.InDelta(t, 0.75, plain.Center[0], 1e-9)

	fixed := &models.ShapeInfo{Points: outline(0, 0, 3, 0, 0, 3, 0, 0)}
	Compute(fixed, true)
	assert.InDelta(t, 1, fixed.Center[0], 1e-9)
	assert.InDelta(t, 1, fixed.Center[1], 1e-9)
}

func TestComputeWithoutPoints(t *testing.T) {
	s := &models.ShapeInfo{Center: values.Floats{4, 5}}
	Compute(s, true)
	assert.Equal(t, values.Floats{4, 5}, s.Center)
}

func TestNormalize(t *testing.T) {
	a := &models.ShapeInfo{Points: outline(10, 10, 12, 10, 12, 12)}
	b := &models.ShapeInfo{Points: outline(14, 10, 14, 14)}
	shapes := []*models.ShapeInfo{a, b}
	for _, s := range shapes {
		Compute(s, false)
	}

	Normalize(shapes, true, true)

	bounds, ok := BoundsOf(shapes)
	require.True(t, ok)
	assert.InDelta(t, -0.5, bounds.MinX, 1e-9)
	assert.InDelta(t, 0.5, bounds.MaxX, 1e-9)
	assert.InDelta(t, -0.5, bounds.MinY, 1e-9)
	assert.InDelta(t, 1, bounds.Extent(), 1e-9)
	assert.InDelta(t, 0.5, b.Center[0], 1e-9)
}

func TestNormalizeDisabled(t *testing.T) {
	s := &models.ShapeInfo{Center: values.Floats{3, 3}}
	Normalize([]*models.ShapeInfo{s}, false, false)
	assert.Equal(t, values.Floats{3, 3}, s.Center)

	Normalize(nil, true, true)
}
