package groups

import (
	"strings"

	"pattern-mapper/internal/pattern/models"
	"pattern-mapper/internal/pattern/values"
)

// ============================================================
// Boolean combination
// ============================================================

type booleanGenerator struct {
	namer      namer
	groups     []string
	withGroups []string
	op         models.BoolOp
	permute    bool
	sequencer  Sequencer
	resequence bool
}

func newBooleanGenerator(spec *models.BooleanSpec, seq Sequencer) (*booleanGenerator, error) {
	op, err := models.ParseBoolOp(spec.BoolOp)
	if err != nil {
		return nil, err
	}
	return &booleanGenerator{
		namer:      newNamer(&spec.GenSpecBase),
		groups:     setItems(spec.Groups),
		withGroups: setItems(spec.WithGroups),
		op:         op,
		permute:    spec.Permute != nil && *spec.Permute,
		sequencer:  seq,
		resequence: spec.SequenceBy != nil,
	}, nil
}

type groupPair struct{ first, second string }

func (g *booleanGenerator) Generate(ctx *Context) ([]*models.GroupInfo, error) {
	names1 := ctx.GroupNamesByPatterns(g.groups)
	names2 := names1
	if len(g.withGroups) > 0 {
		names2 = ctx.GroupNamesByPatterns(g.withGroups)
	} else if !g.permute {
		return g.combineAll(ctx, names1), nil
	}

	var pairs []groupPair
	if g.permute {
		// Полное произведение, пары вида a_a тоже
		for _, a := range names1 {
			for _, b := range names2 {
				pairs = append(pairs, groupPair{a, b})
			}
		}
	} else if len(names1) > 0 && len(names2) > 0 {
		seq1 := values.SequenceOf(names1, values.Cyclic[string]())
		seq2 := values.SequenceOf(names2, values.Cyclic[string]())
		for i := 0; i < max(len(names1), len(names2)); i++ {
			a, _ := seq1.Get(i)
			b, _ := seq2.Get(i)
			pairs = append(pairs, groupPair{a, b})
		}
	}

	var out []*models.GroupInfo
	for i, pair := range pairs {
		first, second := ctx.Group(pair.first), ctx.Group(pair.second)
		if first == nil || second == nil {
			ctx.Logf("[GROUPS] boolean %s: skipping pair %q/%q, group not found%s", g.op, pair.first, pair.second, ctx.hint(pair.first, pair.second))
			continue
		}
		name := g.pairName(i, len(pairs), pair)
		result := NewCombiner(ctx, g.op).Add(first, second).Build(name)
		result.InferenceType = string(g.op)
		result.InferredFromValue = pair.first + " " + pair.second
		if g.resequence {
			resequence(result, g.sequencer, ctx)
		}
		out = append(out, result)
	}
	return out, nil
}

func (g *booleanGenerator) combineAll(ctx *Context, names []string) []*models.GroupInfo {
	c := NewCombiner(ctx, g.op)
	var found []string
	for _, name := range names {
		group := ctx.Group(name)
		if group == nil {
			ctx.Logf("[GROUPS] boolean %s: group %q not found%s, skipping", g.op, name, ctx.hint(name))
			continue
		}
		c.Add(group)
		found = append(found, name)
	}
	if len(found) == 0 {
		return nil
	}
	name := g.namer.name(0, 1)
	if name == "" || g.namer.base == "" {
		name = strings.Join(found, "_")
	}
	result := c.Build(name)
	result.InferenceType = string(g.op)
	result.InferredFromValue = strings.Join(found, " ")
	if g.resequence {
		resequence(result, g.sequencer, ctx)
	}
	return []*models.GroupInfo{result}
}

func (g *booleanGenerator) pairName(index, total int, pair groupPair) string {
	switch {
	case g.namer.explicit:
		return g.namer.name(index, total)
	case g.namer.base != "":
		return g.namer.base + "_" + pair.first + "_" + pair.second
	}
	return pair.first + "_" + pair.second
}

// ============================================================
// Merge
// ============================================================

type mergeGenerator struct {
	name       string
	groups     []string
	flatten    bool
	sequencer  Sequencer
	resequence bool
}

func newMergeGenerator(spec *models.MergeSpec, seq Sequencer) (*mergeGenerator, error) {
	if spec.GroupName == "" {
		return nil, ErrMissingGroupName
	}
	return &mergeGenerator{
		name:       spec.GroupName,
		groups:     setItems(spec.Groups),
		flatten:    spec.Flatten != nil && *spec.Flatten,
		sequencer:  seq,
		resequence: spec.SequenceBy != nil,
	}, nil
}

func (g *mergeGenerator) Generate(ctx *Context) ([]*models.GroupInfo, error) {
	var sources []*models.GroupInfo
	for _, name := range ctx.GroupNamesByPatterns(g.groups) {
		group := ctx.Group(name)
		if group == nil {
			ctx.Logf("[GROUPS] merge %q: group %q not found%s, skipping", g.name, name, ctx.hint(name))
			continue
		}
		sources = append(sources, group)
	}
	if len(sources) == 0 {
		ctx.Logf("[GROUPS] merge %q: no source groups", g.name)
		return nil, nil
	}

	var result *models.GroupInfo
	if g.flatten {
		var all []int
		for _, src := range sources {
			all = append(all, src.AllShapeIndices()...)
		}
		result = models.NewGroup(g.name, all)
	} else {
		// Шаги всех групп подряд, с новой нумерацией
		var steps []models.SequenceStep
		for _, src := range sources {
			for _, step := range src.SequenceSteps {
				steps = append(steps, models.SequenceStep{
					SequenceIndex:     len(steps),
					ShapeIndices:      models.SortedIndices(step.ShapeIndices),
					InferredFromValue: step.InferredFromValue,
				})
			}
		}
		result = groupFromSteps(g.name, steps)
	}
	result.InferenceType = "merge"
	result.InferredFromValue = strings.Join(g.groups, " ")
	if g.resequence {
		resequence(result, g.sequencer, ctx)
	}
	return []*models.GroupInfo{result}, nil
}

// ============================================================
// Manual
// ============================================================

type manualGenerator struct {
	spec       *models.ManualSpec
	sequencer  Sequencer
	resequence bool
}

func newManualGenerator(spec *models.ManualSpec, seq Sequencer) (*manualGenerator, error) {
	if spec.GroupName == "" {
		return nil, ErrMissingGroupName
	}
	return &manualGenerator{spec: spec, sequencer: seq, resequence: spec.SequenceBy != nil}, nil
}

func (g *manualGenerator) Generate(ctx *Context) ([]*models.GroupInfo, error) {
	var steps []models.SequenceStep
	all := append([]int(nil), g.spec.ShapeIndices...)
	for _, step := range g.spec.SequenceSteps {
		step.ShapeIndices = g.knownShapes(ctx, step.ShapeIndices)
		steps = append(steps, step)
		all = append(all, step.ShapeIndices...)
	}
	all = g.knownShapes(ctx, all)
	if len(steps) == 0 {
		steps = []models.SequenceStep{models.DefaultStep(all)}
	}
	group := &models.GroupInfo{
		GroupName:     g.spec.GroupName,
		ShapeIndices:  models.SortedIndices(all),
		SequenceSteps: steps,
		InferenceType: "manual",
	}
	if g.resequence {
		resequence(group, g.sequencer, ctx)
	}
	return []*models.GroupInfo{group}, nil
}

// knownShapes отбрасывает индексы вне списка фигур.
func (g *manualGenerator) knownShapes(ctx *Context, indices []int) values.Ints {
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if ctx.Shape(idx) == nil {
			ctx.Logf("[GROUPS] manual %q: no shape %d", g.spec.GroupName, idx)
			continue
		}
		out = append(out, idx)
	}
	return models.SortedIndices(out)
}

// setItems оставляет заданные элементы списка.
func setItems(list values.List) []string {
	return values.NewSequence(list, values.ParseString).Values()
}
