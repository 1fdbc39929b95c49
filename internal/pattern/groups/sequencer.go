package groups

import (
	"math"
	"slices"

	"pattern-mapper/internal/pattern/models"
	"pattern-mapper/internal/pattern/values"
)

// Sequencer разбивает фигуры группы на упорядоченные шаги.
type Sequencer interface {
	Sequence(indices []int, ctx *Context) []models.SequenceStep
}

// NewSequencer возвращает сортировку по атрибуту или пустую при nil spec.
func NewSequencer(spec *models.SequenceBySpec) (Sequencer, error) {
	if spec == nil {
		return noOpSequencer{}, nil
	}
	attr, err := models.ParseSequenceAttr(spec.Attr)
	if err != nil {
		return nil, err
	}
	return &attributeSequencer{
		attr:        attr,
		roundDigits: spec.RoundDigits,
		reverse:     spec.Reverse != nil && *spec.Reverse,
	}, nil
}

type noOpSequencer struct{}

func (noOpSequencer) Sequence(indices []int, _ *Context) []models.SequenceStep {
	return []models.SequenceStep{models.DefaultStep(indices)}
}

type attributeSequencer struct {
	attr        models.SequenceAttr
	roundDigits *int
	reverse     bool
}

func (s *attributeSequencer) Sequence(indices []int, ctx *Context) []models.SequenceStep {
	byKey := make(map[float64][]int)
	for _, idx := range indices {
		key, ok := AttributeValue(ctx.Shape(idx), s.attr)
		if !ok {
			// Без ключа у любой фигуры группа не сортируется вообще
			ctx.Logf("[GROUPS] shape %d has no %s value, leaving group unsequenced", idx, s.attr)
			return noOpSequencer{}.Sequence(indices, ctx)
		}
		if s.roundDigits != nil {
			key = values.Round(key, *s.roundDigits)
		}
		byKey[key] = append(byKey[key], idx)
	}

	keys := make([]float64, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if s.reverse {
		slices.Reverse(keys)
	}

	steps := make([]models.SequenceStep, 0, len(keys))
	for i, key := range keys {
		steps = append(steps, models.SequenceStep{
			SequenceIndex:     i,
			ShapeIndices:      models.SortedIndices(byKey[key]),
			InferredFromValue: values.FormatFloat(key),
		})
	}
	return steps
}

// AttributeValue читает ключ сортировки фигуры. Цвета в 0..1, x, y и
// distance берутся из центра.
func AttributeValue(shape *models.ShapeInfo, attr models.SequenceAttr) (float64, bool) {
	if shape == nil {
		return 0, false
	}
	switch attr {
	case models.AttrRed, models.AttrGreen, models.AttrBlue:
		if len(shape.Color) < 3 {
			return 0, false
		}
		channel := map[models.SequenceAttr]int{models.AttrRed: 0, models.AttrGreen: 1, models.AttrBlue: 2}[attr]
		return float64(shape.Color[channel]) / 255, true
	case models.AttrHue, models.AttrSaturation, models.AttrValue:
		hsv, ok := shape.HSV()
		if !ok {
			return 0, false
		}
		switch attr {
		case models.AttrHue:
			return hsv.H, true
		case models.AttrSaturation:
			return hsv.S, true
		}
		return hsv.V, true
	case models.AttrX, models.AttrY, models.AttrDistance:
		if !shape.HasCenter() {
			return 0, false
		}
		switch attr {
		case models.AttrX:
			return shape.Center[0], true
		case models.AttrY:
			return shape.Center[1], true
		}
		return math.Hypot(shape.Center[0], shape.Center[1]), true
	}
	return 0, false
}

// groupFromSteps собирает группу, shapeindices = объединение шагов.
func groupFromSteps(name string, steps []models.SequenceStep) *models.GroupInfo {
	var all []int
	for _, step := range steps {
		all = append(all, step.ShapeIndices...)
	}
	return &models.GroupInfo{
		GroupName:     name,
		ShapeIndices:  models.SortedIndices(all),
		SequenceSteps: steps,
	}
}

// resequence пересобирает шаги g заново.
func resequence(g *models.GroupInfo, seq Sequencer, ctx *Context) {
	g.SequenceSteps = seq.Sequence(g.AllShapeIndices(), ctx)
	g.ShapeIndices = groupFromSteps(g.GroupName, g.SequenceSteps).ShapeIndices
}
