// Package dedup сливает фигуры, лежащие друг на друге.
package dedup

import (
	"log"
	"math"
	"slices"

	"pattern-mapper/internal/pattern/match"
	"pattern-mapper/internal/pattern/models"

	"github.com/dhconnelly/rtreego"
)

// При нулевом допуске rtree считает точки непересекающимися
const searchPadding = 1e-9

type Options struct {
	Tolerance float64
	// Только фигуры с подходящим путем; пусто = все
	Scope  []match.Matcher
	Logger *log.Logger
}

type Result struct {
	Removed int
	// Старый индекс удаленной фигуры -> индекс оставшейся (до перенумерации)
	Canonical map[int]int
}

type indexedCenter struct {
	index int
	rect  rtreego.Rect
}

func (c *indexedCenter) Bounds() rtreego.Rect { return c.rect }

// MergeDuplicates находит фигуры, совпадающие по центру и радиусу с более
// ранней в пределах допуска, удаляет их, перенумеровывает оставшиеся и
// переписывает группы и шаги. На входе индекс фигуры равен ее позиции.
func MergeDuplicates(pd *models.PatternData, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	tol := math.Max(opts.Tolerance, 0)
	result := Result{Canonical: map[int]int{}}

	inScope := func(s *models.ShapeInfo) bool {
		return s.HasCenter() && (len(opts.Scope) == 0 || match.Any(opts.Scope, s.Path()))
	}

	var spatials []rtreego.Spatial
	for i, s := range pd.Shapes {
		if inScope(s) {
			pt := rtreego.Point{s.Center[0], s.Center[1]}
			spatials = append(spatials, &indexedCenter{index: i, rect: pt.ToRect(searchPadding)})
		}
	}
	if len(spatials) < 2 {
		return result
	}
	tree := rtreego.NewTree(2, 25, 50, spatials...)

	for i, base := range pd.Shapes {
		if base.IsDuplicate() || !inScope(base) {
			continue
		}
		area := rtreego.Point{base.Center[0], base.Center[1]}.ToRect(tol + searchPadding)
		var candidates []int
		for _, obj := range tree.SearchIntersect(area) {
			if j := obj.(*indexedCenter).index; j > i {
				candidates = append(candidates, j)
			}
		}
		// Сравниваем только с последующими фигурами, в исходном порядке
		slices.Sort(candidates)
		for _, j := range candidates {
			other := pd.Shapes[j]
			if other.IsDuplicate() || !same(base, other, tol) {
				continue
			}
			other.DupCount = models.DuplicateRemoved
			base.DupCount++
			result.Canonical[j] = i
		}
	}
	result.Removed = len(result.Canonical)
	if result.Removed == 0 {
		return result
	}

	pd.RemapGroups(func(idx int) int {
		if canon, ok := result.Canonical[idx]; ok {
			return canon
		}
		return idx
	})

	renumber := make(map[int]int, len(pd.Shapes))
	kept := pd.Shapes[:0]
	for i, s := range pd.Shapes {
		if s.IsDuplicate() {
			continue
		}
		renumber[i] = len(kept)
		s.ShapeIndex = len(kept)
		kept = append(kept, s)
	}
	clear(pd.Shapes[len(kept):])
	pd.Shapes = kept

	pd.RemapGroups(func(idx int) int {
		if n, ok := renumber[idx]; ok {
			return n
		}
		return -1
	})

	logger.Printf("[DEDUP] merged %d duplicate shapes (tolerance %g), %d remain", result.Removed, tol, len(pd.Shapes))
	return result
}

func same(a, b *models.ShapeInfo, tol float64) bool {
	dist := math.Hypot(a.Center[0]-b.Center[0], a.Center[1]-b.Center[1])
	return dist <= tol && math.Abs(a.Radius-b.Radius) <= tol
}
