package groups

import (
	"errors"
	"fmt"

	"pattern-mapper/internal/pattern/models"
)

var ErrMissingGroupName = errors.New("spec needs a groupname")

// Generator строит группы по одной спеке и уже готовым группам.
type Generator interface {
	Generate(ctx *Context) ([]*models.GroupInfo, error)
}

// NewGenerator создает генератор для варианта спеки.
func NewGenerator(spec models.GroupGenSpec) (Generator, error) {
	if err := models.ValidateSpec(spec); err != nil {
		return nil, err
	}
	seq, err := NewSequencer(spec.Base().SequenceBy)
	if err != nil {
		return nil, err
	}
	switch s := spec.(type) {
	case *models.BoxBoundSpec:
		return newPredicateGenerator(&s.GenSpecBase, newBoxPredicate(s), seq)
	case *models.PolarBoundSpec:
		return newPredicateGenerator(&s.GenSpecBase, newPolarPredicate(s), seq)
	case *models.PathSpec:
		return newPathGenerator(s, seq)
	case *models.BooleanSpec:
		return newBooleanGenerator(s, seq)
	case *models.MergeSpec:
		return newMergeGenerator(s, seq)
	case *models.ManualSpec:
		return newManualGenerator(s, seq)
	}
	return nil, fmt.Errorf("%w: %T", models.ErrUnsupportedSpec, spec)
}

// Apply запускает генератор и регистрирует результат с учетом общих полей
// спеки (temporary, depthlayer, mergeto).
func Apply(ctx *Context, spec models.GroupGenSpec) ([]*models.GroupInfo, error) {
	gen, err := NewGenerator(spec)
	if err != nil {
		return nil, err
	}
	produced, err := gen.Generate(ctx)
	if err != nil {
		return nil, err
	}

	base := spec.Base()
	added := make([]*models.GroupInfo, 0, len(produced))
	for _, g := range produced {
		if base.Temporary != nil {
			g.Temporary = models.Bool(*base.Temporary)
		}
		if base.DepthLayer != nil {
			layer := *base.DepthLayer
			g.DepthLayer = &layer
		}
		if ctx.AddGroup(g) {
			added = append(added, g)
		}
	}
	if base.MergeTo != "" && len(added) > 0 {
		mergeInto(ctx, base.MergeTo, added)
	}
	return added, nil
}

// mergeInto объединяет groups в группу target, создавая ее при первом
// обращении.
func mergeInto(ctx *Context, target string, groups []*models.GroupInfo) {
	c := NewCombiner(ctx, models.OpOr)
	existing := ctx.Group(target)
	if existing != nil {
		c.Add(existing)
	}
	c.Add(groups...)
	merged := c.Build(target)
	if existing != nil {
		merged.GroupPath = existing.GroupPath
		merged.Temporary = existing.Temporary
		merged.DepthLayer = existing.DepthLayer
	}
	merged.InferenceType = "mergeto"
	ctx.ReplaceGroup(merged)
}
