package loader

import (
	"fmt"
	"log"

	"pattern-mapper/internal/pattern/dedup"
	"pattern-mapper/internal/pattern/geometry"
	"pattern-mapper/internal/pattern/groups"
	"pattern-mapper/internal/pattern/match"
	"pattern-mapper/internal/pattern/models"
	"pattern-mapper/internal/pattern/states"
	"pattern-mapper/internal/pattern/values"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// ============================================================
// Pattern Loader
// ============================================================

// Допуск для mergedups без явного значения
const DefaultMergeTolerance = 1e-4

type Builder struct {
	MergeTolerance float64
	logger         *log.Logger
}

// Load результат одной полной пересборки.
type Load struct {
	ID      string
	Pattern *models.PatternData
	Dedup   dedup.Result
	Layers  *groups.LayerAssignment
	// Сколько спек пропущено из-за ошибок
	Skipped int
}

// Output то, что отдается наружу: паттерн и состояния фигур.
type Output struct {
	LoadID      string              `json:"loadid"`
	Pattern     *models.PatternData `json:"pattern"`
	ShapeStates []states.Entry      `json:"shapestates"`
	Removed     int                 `json:"removed"`
	Skipped     int                 `json:"skipped"`
}

func (l *Load) Output(logger *log.Logger) *Output {
	return &Output{
		LoadID:      l.ID,
		Pattern:     l.Pattern,
		ShapeStates: states.Resolve(l.Pattern, logger),
		Removed:     l.Dedup.Removed,
		Skipped:     l.Skipped,
	}
}

func NewBuilder(logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		MergeTolerance: DefaultMergeTolerance,
		logger:         logger,
	}
}

// Build прогоняет весь конвейер и возвращает паттерн.
func (b *Builder) Build(settings *models.PatternSettings, shapes []*models.ShapeInfo) (*models.PatternData, error) {
	load, err := b.Load(settings, shapes)
	if err != nil {
		return nil, err
	}
	return load.Pattern, nil
}

// Load собирает паттерн с нуля. Входные фигуры копируются и не меняются.
// Ошибка в отдельной спеке логируется и спека пропускается; падает только
// на непригодном списке фигур.
func (b *Builder) Load(settings *models.PatternSettings, shapes []*models.ShapeInfo) (*Load, error) {
	if settings == nil {
		settings = &models.PatternSettings{}
	}
	id := uuid.NewString()
	logger := log.New(b.logger.Writer(), fmt.Sprintf("[%s] ", id[:8]), b.logger.Flags()|log.Lmsgprefix)
	load := &Load{ID: id}

	for i, s := range shapes {
		if s == nil {
			return nil, fmt.Errorf("shape %d is null", i)
		}
	}
	var copied []*models.ShapeInfo
	if err := copier.CopyWithOption(&copied, &shapes, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copy shapes: %w", err)
	}
	for i, s := range copied {
		s.ShapeIndex = i
		s.DepthLayer = nil
	}
	logger.Printf("[LOADER] load started: %d shapes, %d group specs", len(copied), len(settings.Groups))

	// Геометрия
	fix := settings.FixTriangleCenters != nil && *settings.FixTriangleCenters
	for _, s := range copied {
		geometry.Compute(s, fix)
	}
	geometry.Normalize(copied,
		settings.Recenter != nil && *settings.Recenter,
		settings.Rescale != nil && *settings.Rescale)

	pd := &models.PatternData{Shapes: copied, Settings: settings}
	if md := settings.MergeDups; md != nil && md.Enabled {
		scope, err := match.CompileAll(md.Paths)
		if err != nil {
			logger.Printf("[LOADER] mergedups paths: %v, merging all shapes", err)
			scope = nil
		}
		load.Dedup = dedup.MergeDuplicates(pd, dedup.Options{
			Tolerance: md.ToleranceOr(b.MergeTolerance),
			Scope:     scope,
			Logger:    logger,
		})
	}

	ctx := groups.NewContext(pd.Shapes, logger)
	if settings.AutoGroupEnabled() {
		for _, g := range (&groups.InferredExtractor{}).Extract(ctx) {
			ctx.AddGroup(g)
		}
		for _, g := range (groups.PathPrefixExtractor{}).Extract(ctx) {
			ctx.AddGroup(g)
		}
	}
	if settings.AutoSidesEnabled() {
		b.addSides(ctx, logger)
	}

	for i, spec := range settings.Groups {
		added, err := groups.Apply(ctx, spec)
		if err != nil {
			load.Skipped++
			logger.Printf("[LOADER] groups[%d] (%s %q) skipped: %v", i, spec.Kind(), spec.Base().GroupName, err)
			continue
		}
		logger.Printf("[LOADER] groups[%d] (%s) added %d groups", i, spec.Kind(), len(added))
	}

	layers, err := groups.ApplyDepthLayering(ctx, settings.DepthLayering)
	if err != nil {
		logger.Printf("[LOADER] depth layering skipped: %v", err)
	} else {
		groups.ApplyShapeLayers(ctx, layers)
		load.Layers = layers
	}

	pd.Groups = ctx.VisibleGroups()
	load.Pattern = pd
	logger.Printf("[LOADER] load finished: %d shapes, %d groups (%d hidden), %d specs skipped",
		len(pd.Shapes), len(pd.Groups), len(ctx.Groups())-len(pd.Groups), load.Skipped)
	return load, nil
}

// ============================================================
// Side groups
// ============================================================

type side struct {
	name                   string
	xmin, xmax, ymin, ymax string
}

var sides = []side{
	{name: "tophalf", ymin: "0"},
	{name: "bottomhalf", ymax: "0"},
	{name: "lefthalf", xmax: "0"},
	{name: "righthalf", xmin: "0"},
}

// addSides добавляет четыре группы полуплоскостей, если имя свободно.
func (b *Builder) addSides(ctx *groups.Context, logger *log.Logger) {
	for _, sd := range sides {
		if ctx.HasGroup(sd.name) {
			continue
		}
		spec := &models.BoxBoundSpec{
			GenSpecBase: models.GenSpecBase{GroupName: sd.name},
			XMin:        bound(sd.xmin),
			XMax:        bound(sd.xmax),
			YMin:        bound(sd.ymin),
			YMax:        bound(sd.ymax),
		}
		if _, err := groups.Apply(ctx, spec); err != nil {
			logger.Printf("[LOADER] side group %s: %v", sd.name, err)
		}
	}
}

func bound(v string) values.List {
	if v == "" {
		return nil
	}
	return values.ListOf(v)
}
