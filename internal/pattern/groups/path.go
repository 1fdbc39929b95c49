package groups

import (
	"fmt"
	"strings"

	"pattern-mapper/internal/pattern/match"
	"pattern-mapper/internal/pattern/models"
)

// pathGenerator группирует фигуры по пути. Без groupatdepth одна группа на
// шаблон, иначе по первым groupatdepth сегментам (0 = группа на фигуру).
type pathGenerator struct {
	namer        namer
	patterns     []string
	matchers     []match.Matcher
	groupAtDepth *int
	sequencer    Sequencer
}

func newPathGenerator(spec *models.PathSpec, seq Sequencer) (*pathGenerator, error) {
	if spec.GroupAtDepth != nil && *spec.GroupAtDepth < 0 {
		return nil, fmt.Errorf("%w: groupatdepth must not be negative", models.ErrInvalidSpec)
	}
	patterns := make([]string, 0, len(spec.Paths))
	for _, p := range spec.Paths {
		if p = strings.TrimSpace(p); p != "" && p != "_" {
			patterns = append(patterns, p)
		}
	}
	matchers, err := match.CompileAll(patterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidSpec, err)
	}
	return &pathGenerator{
		namer:        newNamer(&spec.GenSpecBase),
		patterns:     patterns,
		matchers:     matchers,
		groupAtDepth: spec.GroupAtDepth,
		sequencer:    seq,
	}, nil
}

type pathBucket struct {
	key     string
	label   string
	indices []int
}

func (g *pathGenerator) Generate(ctx *Context) ([]*models.GroupInfo, error) {
	var buckets []*pathBucket
	if g.groupAtDepth == nil {
		buckets = g.bucketByPattern(ctx)
	} else {
		buckets = g.bucketByPrefix(ctx, *g.groupAtDepth)
	}

	out := make([]*models.GroupInfo, 0, len(buckets))
	for i, b := range buckets {
		name := g.namer.name(i, len(buckets))
		if g.namer.base == "" {
			name = b.key
		}
		group := groupFromSteps(name, g.sequencer.Sequence(b.indices, ctx))
		group.InferenceType = "path"
		group.InferredFromValue = b.label
		if g.groupAtDepth != nil {
			group.GroupPath = b.key
		}
		out = append(out, group)
	}
	return out, nil
}

func (g *pathGenerator) bucketByPattern(ctx *Context) []*pathBucket {
	var buckets []*pathBucket
	for i, m := range g.matchers {
		var indices []int
		for _, shape := range ctx.Shapes() {
			if m.Match(shape.Path()) {
				indices = append(indices, shape.ShapeIndex)
			}
		}
		if len(indices) == 0 {
			ctx.Logf("[GROUPS] path pattern %q matched no shapes", g.patterns[i])
			continue
		}
		buckets = append(buckets, &pathBucket{key: g.patterns[i], label: g.patterns[i], indices: indices})
	}
	return buckets
}

func (g *pathGenerator) bucketByPrefix(ctx *Context, depth int) []*pathBucket {
	var buckets []*pathBucket
	byKey := make(map[string]*pathBucket)
	for _, shape := range ctx.Shapes() {
		path := shape.Path()
		if !match.Any(g.matchers, path) {
			continue
		}
		key := path
		if depth > 0 {
			if segments := models.SplitPath(path); len(segments) > depth {
				key = strings.Join(segments[:depth], "/")
			}
		}
		b, ok := byKey[key]
		if !ok {
			b = &pathBucket{key: key, label: key}
			byKey[key] = b
			buckets = append(buckets, b)
		}
		b.indices = append(b.indices, shape.ShapeIndex)
	}
	return buckets
}
