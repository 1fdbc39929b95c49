package dedup

import (
	"bytes"
	"log"
	"math"
	"math/rand"
	"testing"

	"pattern-mapper/internal/pattern/match"
	"pattern-mapper/internal/pattern/models"
	"pattern-mapper/internal/pattern/values"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shapeAt(idx int, x, y, r float64) *models.ShapeInfo {
	return &models.ShapeInfo{ShapeIndex: idx, Center: values.Floats{x, y}, Radius: r}
}

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func TestMergeDuplicates(t *testing.T) {
	logger, buf := quietLogger()
	pd := &models.PatternData{
		Shapes: []*models.ShapeInfo{
			shapeAt(0, 0, 0, 1),
			shapeAt(1, 5, 5, 1),
			shapeAt(2, 0, 0.00001, 1),
			shapeAt(3, 9, 9, 1),
			shapeAt(4, 5, 5, 1.00001),
		},
		Groups: []*models.GroupInfo{
			models.NewGroup("all", []int{0, 1, 2, 3, 4}),
			{
				GroupName:    "tail",
				ShapeIndices: values.Ints{2, 3, 4},
				SequenceSteps: []models.SequenceStep{
					{SequenceIndex: 0, ShapeIndices: values.Ints{2}},
					{SequenceIndex: 1, ShapeIndices: values.Ints{3, 4}},
				},
			},
		},
	}

	res := MergeDuplicates(pd, Options{Tolerance: 1e-4, Logger: logger})

	assert.Equal(t, 2, res.Removed)
	assert.Equal(t, map[int]int{2: 0, 4: 1}, res.Canonical)
	require.Len(t, pd.Shapes, 3)
	for i, s := range pd.Shapes {
		assert.Equal(t, i, s.ShapeIndex)
	}
	assert.Equal(t, 1, pd.Shapes[0].DupCount)
	assert.Equal(t, 1, pd.Shapes[1].DupCount)
	assert.Equal(t, 0, pd.Shapes[2].DupCount)
	assert.Equal(t, 9.0, pd.Shapes[2].Center[0])

	assert.Equal(t, values.Ints{0, 1, 2}, pd.Group("all").ShapeIndices)
	tail := pd.Group("tail")
	assert.Equal(t, values.Ints{0, 1, 2}, tail.ShapeIndices)
	assert.Equal(t, values.Ints{0}, tail.SequenceSteps[0].ShapeIndices)
	assert.Equal(t, values.Ints{1, 2}, tail.SequenceSteps[1].ShapeIndices)
	assert.Contains(t, buf.String(), "[DEDUP] merged 2 duplicate shapes")
}

func TestMergeDuplicatesFirstOccurrenceWins(t *testing.T) {
	logger, _ := quietLogger()
	// 1 is within tolerance of 0 and of 2, but 2 is not within tolerance of 0.
	pd := &models.PatternData{Shapes: []*models.ShapeInfo{
		shapeAt(0, 0, 0, 1),
		shapeAt(1, 0.6, 0, 1),
		shapeAt(2, 1.2, 0, 1),
	}}
	res := MergeDuplicates(pd, Options{Tolerance: 1, Logger: logger})

	assert.Equal(t, map[int]int{1: 0}, res.Canonical)
	require.Len(t, pd.Shapes, 2)
	assert.Equal(t, 1.2, pd.Shapes[1].Center[0])
}

func TestMergeDuplicatesScope(t *testing.T) {
	logger, _ := quietLogger()
	a := shapeAt(0, 0, 0, 1)
	a.ShapePath = "keep/a"
	b := shapeAt(1, 0, 0, 1)
	b.ShapePath = "other/b"
	c := shapeAt(2, 0, 0, 1)
	c.ShapePath = "keep/c"
	pd := &models.PatternData{Shapes: []*models.ShapeInfo{a, b, c}}

	scope, err := match.CompileAll([]string{"keep/*"})
	require.NoError(t, err)
	res := MergeDuplicates(pd, Options{Tolerance: 0.1, Scope: scope, Logger: logger})

	assert.Equal(t, map[int]int{2: 0}, res.Canonical)
	require.Len(t, pd.Shapes, 2)
	assert.Equal(t, "other/b", pd.Shapes[1].ShapePath)
}

func TestMergeDuplicatesSkipsShapesWithoutCenter(t *testing.T) {
	logger, _ := quietLogger()
	pd := &models.PatternData{Shapes: []*models.ShapeInfo{
		{ShapeIndex: 0},
		{ShapeIndex: 1},
		shapeAt(2, 1, 1, 1),
	}}
	res := MergeDuplicates(pd, Options{Tolerance: 10, Logger: logger})
	assert.Zero(t, res.Removed)
	assert.Len(t, pd.Shapes, 3)
}

func TestMergeDuplicatesInvariant(t *testing.T) {
	logger, _ := quietLogger()
	rng := rand.New(rand.NewSource(7))

	for _, tol := range []float64{0, 0.05, 0.2, 0.5} {
		var shapes []*models.ShapeInfo
		for i := 0; i < 120; i++ {
			x := math.Round(rng.Float64()*40) / 10
			y := math.Round(rng.Float64()*40) / 10
			r := math.Round(rng.Float64()*3) / 10
			shapes = append(shapes, shapeAt(i, x, y, r))
		}
		var all, even []int
		for i := range shapes {
			all = append(all, i)
			if i%2 == 0 {
				even = append(even, i)
			}
		}
		pd := &models.PatternData{
			Shapes: shapes,
			Groups: []*models.GroupInfo{models.NewGroup("all", all), models.NewGroup("even", even)},
		}
		before := len(pd.Shapes)

		res := MergeDuplicates(pd, Options{Tolerance: tol, Logger: logger})

		assert.Equal(t, before-res.Removed, len(pd.Shapes))
		for i := range pd.Shapes {
			for j := i + 1; j < len(pd.Shapes); j++ {
				assert.False(t, same(pd.Shapes[i], pd.Shapes[j], tol),
					"tolerance %g: shapes %d and %d are still duplicates", tol, i, j)
			}
		}
		for _, g := range pd.Groups {
			for _, idx := range g.AllShapeIndices() {
				assert.GreaterOrEqual(t, idx, 0)
				assert.Less(t, idx, len(pd.Shapes))
			}
		}
	}
}
