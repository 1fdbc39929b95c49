package groups

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"pattern-mapper/internal/pattern/models"
)

const (
	DepthLayerGroupPrefix = "depthlayer_"
	InferenceDepthLayer   = "depthlayer"
)

var leadingInt = regexp.MustCompile(`^-?\d+`)

// LayerAssignment результат раскладки по слоям.
type LayerAssignment struct {
	// Исходный номер слоя -> итоговый (после сжатия)
	Layers   map[int]int
	Distance float64
	// Группы со слоем, в порядке регистрации
	Groups       []*models.GroupInfo
	DefaultLayer *int
}

// Depth переводит номер слоя в смещение по z.
func (a *LayerAssignment) Depth(layer int) float64 {
	return float64(layer) * a.Distance
}

// ApplyDepthLayering назначает группам слой и глубину и создает по группе
// depthlayer_<N> на каждый слой. nil spec = режим manual по умолчанию.
func ApplyDepthLayering(ctx *Context, spec *models.DepthLayeringSpec) (*LayerAssignment, error) {
	mode := models.DepthManual
	if spec != nil {
		m, err := models.ParseDepthMode(spec.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	var defaultLayer *int
	if spec != nil {
		defaultLayer = spec.DefaultLayer
	}

	type layered struct {
		group *models.GroupInfo
		raw   int
	}
	var members []layered
	for _, g := range ctx.Groups() {
		if g.IsTemporary() {
			continue
		}
		if raw, ok := rawLayer(g, mode, defaultLayer); ok {
			members = append(members, layered{g, raw})
		} else if g.DepthLayer != nil {
			ctx.Logf("[DEPTH] group %q has depthlayer %s, not used in %s mode", g.GroupName, g.DepthLayer, mode)
		}
	}

	assignment := &LayerAssignment{
		Layers:       make(map[int]int),
		Distance:     spec.Distance(),
		DefaultLayer: defaultLayer,
	}
	var raws []int
	for _, m := range members {
		if !slices.Contains(raws, m.raw) {
			raws = append(raws, m.raw)
		}
	}
	slices.Sort(raws)
	// Слой по умолчанию сжимается вместе с остальными
	order := raws
	if defaultLayer != nil && !slices.Contains(raws, *defaultLayer) {
		order = append(slices.Clone(raws), *defaultLayer)
		slices.Sort(order)
	}
	for i, raw := range order {
		if spec.CondenseLayers() {
			assignment.Layers[raw] = i
		} else {
			assignment.Layers[raw] = raw
		}
	}

	byLayer := make(map[int][]*models.GroupInfo)
	for _, m := range members {
		layer := assignment.Layers[m.raw]
		m.group.DepthLayer = models.Layer(layer)
		m.group.Depth = models.Float(assignment.Depth(layer))
		byLayer[layer] = append(byLayer[layer], m.group)
		assignment.Groups = append(assignment.Groups, m.group)
	}

	for _, raw := range raws {
		layer := assignment.Layers[raw]
		name := fmt.Sprintf("%s%d", DepthLayerGroupPrefix, layer)
		synth := NewCombiner(ctx, models.OpOr).Add(byLayer[layer]...).Build(name)
		synth.InferenceType = InferenceDepthLayer
		synth.InferredFromValue = strconv.Itoa(raw)
		synth.DepthLayer = models.Layer(layer)
		synth.Depth = models.Float(assignment.Depth(layer))
		ctx.AddGroup(synth)
	}
	ctx.Logf("[DEPTH] %s mode: %d groups on %d layers", mode, len(members), len(raws))
	return assignment, nil
}

func rawLayer(g *models.GroupInfo, mode models.DepthMode, defaultLayer *int) (int, bool) {
	explicit := g.DepthLayer != nil && !g.DepthLayer.Auto
	switch mode {
	case models.DepthFlat:
		if defaultLayer != nil {
			return *defaultLayer, true
		}
		return 0, true
	case models.DepthGroupNamePrefix:
		if explicit {
			return g.DepthLayer.Layer, true
		}
		if g.DepthLayer == nil {
			return 0, false
		}
		if n, ok := NameLayer(g.GroupName); ok {
			return n, true
		}
		if defaultLayer != nil {
			return *defaultLayer, true
		}
		return 0, false
	}
	if explicit {
		return g.DepthLayer.Layer, true
	}
	return 0, false
}

// NameLayer читает число в начале имени группы, пропуская "." и "_".
func NameLayer(name string) (int, bool) {
	digits := leadingInt.FindString(strings.TrimLeft(name, "._"))
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	return n, err == nil
}

// ApplyShapeLayers переносит слой группы на ее фигуры и пишет глубину в
// center z. Побеждает первая группа. Фигуры без группы получают слой по
// умолчанию, если он задан.
func ApplyShapeLayers(ctx *Context, assignment *LayerAssignment) {
	for _, shape := range ctx.Shapes() {
		shape.DepthLayer = nil
	}
	conflicts := 0
	for _, g := range assignment.Groups {
		if g.DepthLayer == nil || g.DepthLayer.Auto {
			continue
		}
		layer := g.DepthLayer.Layer
		for _, idx := range g.AllShapeIndices() {
			shape := ctx.Shape(idx)
			if shape == nil {
				continue
			}
			if shape.DepthLayer != nil {
				if *shape.DepthLayer != layer {
					conflicts++
					ctx.Logf("[DEPTH] shape %d: layer %d from %q conflicts with layer %d, keeping %d",
						idx, layer, g.GroupName, *shape.DepthLayer, *shape.DepthLayer)
				}
				continue
			}
			shape.DepthLayer = models.Int(layer)
			shape.SetDepth(assignment.Depth(layer))
		}
	}

	if assignment.DefaultLayer != nil {
		layer := *assignment.DefaultLayer
		if mapped, ok := assignment.Layers[layer]; ok {
			layer = mapped
		}
		for _, shape := range ctx.Shapes() {
			if shape.DepthLayer == nil {
				shape.DepthLayer = models.Int(layer)
				shape.SetDepth(assignment.Depth(layer))
			}
		}
	}
	if conflicts > 0 {
		ctx.Logf("[DEPTH] %d conflicting layer assignments", conflicts)
	}
}
