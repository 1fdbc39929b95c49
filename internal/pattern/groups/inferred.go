package groups

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"pattern-mapper/internal/pattern/models"
	"pattern-mapper/internal/pattern/values"
)

const InferenceHSV = "HS:V"

// InferredExtractor группирует фигуры по тону и насыщенности. Шаги группы
// идут по возрастанию V.
type InferredExtractor struct {
	// Округление компонент цвета; nil = без округления
	RoundDigits *int
}

type hueSat struct{ h, s float64 }

func (e *InferredExtractor) Extract(ctx *Context) []*models.GroupInfo {
	var order []hueSat
	clusters := make(map[hueSat][]*models.ShapeInfo)
	skipped := 0
	for _, shape := range ctx.Shapes() {
		hsv, ok := shape.HSV()
		if !ok {
			skipped++
			continue
		}
		key := hueSat{e.round(hsv.H), e.round(hsv.S)}
		if _, seen := clusters[key]; !seen {
			order = append(order, key)
		}
		clusters[key] = append(clusters[key], shape)
	}
	if skipped > 0 {
		ctx.Logf("[GROUPS] %d shapes have no color, left out of inferred groups", skipped)
	}

	out := make([]*models.GroupInfo, 0, len(order))
	used := make(map[string]bool)
	for _, key := range order {
		group := e.buildGroup(key, clusters[key], len(out))
		taken := func(name string) bool { return used[name] || ctx.HasGroup(name) }
		if taken(group.GroupName) {
			base := group.GroupName
			for n := len(out); taken(group.GroupName); n++ {
				group.GroupName = fmt.Sprintf("%s_%d", base, n)
			}
		}
		used[group.GroupName] = true
		out = append(out, group)
	}
	return out
}

func (e *InferredExtractor) buildGroup(key hueSat, shapes []*models.ShapeInfo, position int) *models.GroupInfo {
	paths := make([][]string, len(shapes))
	indices := make([]int, len(shapes))
	byValue := make(map[float64][]int)
	for i, shape := range shapes {
		paths[i] = models.SplitPath(shape.ParentPath)
		indices[i] = shape.ShapeIndex
		hsv, _ := shape.HSV()
		v := e.round(hsv.V)
		byValue[v] = append(byValue[v], shape.ShapeIndex)
	}

	prefix := commonPrefix(paths)
	name := nameFromSegments(prefix)
	if name == "" {
		name = fmt.Sprintf("_%d", position)
	}

	levels := make([]float64, 0, len(byValue))
	for v := range byValue {
		levels = append(levels, v)
	}
	slices.Sort(levels)

	var steps []models.SequenceStep
	if len(levels) == 1 {
		step := models.DefaultStep(indices)
		step.InferredFromValue = values.FormatFloat(levels[0])
		steps = append(steps, step)
	} else {
		for i, v := range levels {
			steps = append(steps, models.SequenceStep{
				SequenceIndex:     i,
				ShapeIndices:      models.SortedIndices(byValue[v]),
				InferredFromValue: values.FormatFloat(v),
			})
		}
	}

	return &models.GroupInfo{
		GroupName:         name,
		GroupPath:         strings.Join(prefix, "/"),
		InferenceType:     InferenceHSV,
		InferredFromValue: values.FormatFloats(key.h, key.s),
		ShapeIndices:      models.SortedIndices(indices),
		SequenceSteps:     steps,
	}
}

func (e *InferredExtractor) round(x float64) float64 {
	if e.RoundDigits == nil {
		return x
	}
	return values.Round(x, *e.RoundDigits)
}

// ============================================================
// Path prefixes
// ============================================================

// PathPrefixExtractor создает группу на каждый parent path, по имени
// последнего значимого сегмента. Занятые имена пропускаются.
type PathPrefixExtractor struct{}

func (PathPrefixExtractor) Extract(ctx *Context) []*models.GroupInfo {
	var order []string
	members := make(map[string][]int)
	for _, shape := range ctx.Shapes() {
		if shape.ParentPath == "" {
			continue
		}
		if _, ok := members[shape.ParentPath]; !ok {
			order = append(order, shape.ParentPath)
		}
		members[shape.ParentPath] = append(members[shape.ParentPath], shape.ShapeIndex)
	}

	var out []*models.GroupInfo
	used := make(map[string]bool)
	for _, parent := range order {
		name := nameFromSegments(models.SplitPath(parent))
		if name == "" || used[name] || ctx.HasGroup(name) {
			continue
		}
		used[name] = true
		group := models.NewGroup(name, members[parent])
		group.GroupPath = parent
		group.InferenceType = "path"
		group.InferredFromValue = parent
		out = append(out, group)
	}
	return out
}

// ============================================================
// Helpers
// ============================================================

var idSuffix = regexp.MustCompile(`^.*\[id=([^\]]+)\]$`)

// nameFromSegments берет последний не скрытый сегмент ("_" в начале),
// "name[id=X]" превращается в X.
func nameFromSegments(segments []string) string {
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if m := idSuffix.FindStringSubmatch(seg); m != nil {
			seg = m[1]
		}
		if seg != "" && !strings.HasPrefix(seg, "_") {
			return seg
		}
	}
	return ""
}

// commonPrefix возвращает общий префикс всех путей.
func commonPrefix(paths [][]string) []string {
	if len(paths) == 0 {
		return nil
	}
	prefix := paths[0]
	for _, p := range paths[1:] {
		n := 0
		for n < len(prefix) && n < len(p) && prefix[n] == p[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return slices.Clone(prefix)
}
