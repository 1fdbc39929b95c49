package groups

import (
	"pattern-mapper/internal/pattern/models"
)

// predicateGenerator: группа на каждый индекс предиката, если есть фигуры.
type predicateGenerator struct {
	namer     namer
	predicate Predicate
	sequencer Sequencer
}

func newPredicateGenerator(spec *models.GenSpecBase, p Predicate, seq Sequencer) (*predicateGenerator, error) {
	if spec.GroupName == "" {
		return nil, ErrMissingGroupName
	}
	return &predicateGenerator{namer: newNamer(spec), predicate: p, sequencer: seq}, nil
}

func (g *predicateGenerator) Generate(ctx *Context) ([]*models.GroupInfo, error) {
	type candidate struct {
		index   int
		indices []int
	}
	var candidates []candidate
	for i := 0; i < g.predicate.Len(); i++ {
		var indices []int
		for _, shape := range ctx.Shapes() {
			if g.predicate.Test(shape, i) {
				indices = append(indices, shape.ShapeIndex)
			}
		}
		if len(indices) == 0 {
			continue
		}
		candidates = append(candidates, candidate{index: i, indices: indices})
	}

	out := make([]*models.GroupInfo, 0, len(candidates))
	for _, c := range candidates {
		group := groupFromSteps(g.namer.name(c.index, len(candidates)), g.sequencer.Sequence(c.indices, ctx))
		group.InferenceType = "bounded"
		group.InferredFromValue = g.predicate.Describe(c.index)
		out = append(out, group)
	}
	return out, nil
}
