package groups

import (
	"slices"

	"pattern-mapper/internal/pattern/models"
)

// Combiner объединяет группы булевым оператором. Шаги берутся у первой
// добавленной группы с последовательностью, остальные дают только состав.
type Combiner struct {
	ctx           *Context
	op            models.BoolOp
	sequenceGroup *models.GroupInfo
	others        []*models.GroupInfo
}

func NewCombiner(ctx *Context, op models.BoolOp) *Combiner {
	if op == "" {
		op = models.OpOr
	}
	return &Combiner{ctx: ctx, op: op}
}

func (c *Combiner) Add(groups ...*models.GroupInfo) *Combiner {
	for _, g := range groups {
		switch {
		case !g.IsSequenced():
			c.others = append(c.others, g)
		case c.sequenceGroup == nil:
			c.sequenceGroup = g
		default:
			c.ctx.Logf("[GROUPS] ignoring sequencing for group %q, already sequenced by %q",
				g.GroupName, c.sequenceGroup.GroupName)
			c.others = append(c.others, g)
		}
	}
	return c
}

// Build собирает итоговую группу с именем name.
func (c *Combiner) Build(name string) *models.GroupInfo {
	sets := make([][]int, 0, len(c.others))
	for _, g := range c.others {
		sets = append(sets, g.AllShapeIndices())
	}
	combined := combineIndexSets(sets, c.op)

	if c.sequenceGroup == nil {
		return groupFromSteps(name, []models.SequenceStep{models.DefaultStep(combined)})
	}

	steps := make([]models.SequenceStep, 0, len(c.sequenceGroup.SequenceSteps))
	for _, base := range c.sequenceGroup.SequenceSteps {
		indices := []int(base.ShapeIndices)
		if len(c.others) > 0 {
			indices = combineIndexSets([][]int{indices, combined}, c.op)
		}
		steps = append(steps, models.SequenceStep{
			SequenceIndex:     base.SequenceIndex,
			ShapeIndices:      models.SortedIndices(indices),
			InferredFromValue: base.InferredFromValue,
		})
	}
	return groupFromSteps(name, steps)
}

// combineIndexSets пересекает (and) или объединяет (or) все наборы.
func combineIndexSets(sets [][]int, op models.BoolOp) []int {
	if len(sets) == 0 {
		return nil
	}
	result := slices.Clone(sets[0])
	for _, set := range sets[1:] {
		if op == models.OpAnd {
			result = slices.DeleteFunc(result, func(idx int) bool {
				return !slices.Contains(set, idx)
			})
		} else {
			result = append(result, set...)
		}
	}
	return models.SortedIndices(result)
}
