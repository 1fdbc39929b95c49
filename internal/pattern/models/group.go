package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"pattern-mapper/internal/pattern/values"
)

// ============================================================
// Sequence steps and groups
// ============================================================

// SequenceStep один шаг последовательности группы.
type SequenceStep struct {
	SequenceIndex     int         `json:"sequenceindex"`
	ShapeIndices      values.Ints `json:"shapeindices,omitempty"`
	IsDefault         *bool       `json:"isdefault,omitempty"`
	InferredFromValue string      `json:"inferredfromvalue,omitempty"`
}

// DefaultStep единственный общий шаг группы без последовательности.
func DefaultStep(indices []int) SequenceStep {
	return SequenceStep{
		SequenceIndex: 0,
		ShapeIndices:  SortedIndices(indices),
		IsDefault:     Bool(true),
	}
}

// Default: шаг общий.
func (s SequenceStep) Default() bool {
	return s.IsDefault != nil && *s.IsDefault
}

// GroupInfo именованное подмножество фигур, группы могут пересекаться.
type GroupInfo struct {
	GroupName         string         `json:"groupname"`
	GroupPath         string         `json:"grouppath,omitempty"`
	InferenceType     string         `json:"inferencetype,omitempty"`
	InferredFromValue string         `json:"inferredfromvalue,omitempty"`
	DepthLayer        *LayerValue    `json:"depthlayer,omitempty"`
	Depth             *float64       `json:"depth,omitempty"`
	ShapeIndices      values.Ints    `json:"shapeindices,omitempty"`
	SequenceSteps     []SequenceStep `json:"sequencesteps,omitempty"`
	Temporary         *bool          `json:"temporary,omitempty"`
}

// NewGroup создает группу без последовательности.
func NewGroup(name string, indices []int) *GroupInfo {
	sorted := SortedIndices(indices)
	return &GroupInfo{
		GroupName:     name,
		ShapeIndices:  sorted,
		SequenceSteps: []SequenceStep{DefaultStep(sorted)},
	}
}

// IsTemporary: вспомогательная группа для следующих генераторов.
// Имена с "." временные, если не указано иное.
func (g *GroupInfo) IsTemporary() bool {
	if g.Temporary != nil {
		return *g.Temporary
	}
	return strings.HasPrefix(g.GroupName, ".")
}

// IsSequenced: больше одного шага или один не общий.
func (g *GroupInfo) IsSequenced() bool {
	switch len(g.SequenceSteps) {
	case 0:
		return false
	case 1:
		return !g.SequenceSteps[0].Default()
	}
	return true
}

// AllShapeIndices объединение shapeindices и индексов всех шагов.
// Принадлежность к группе везде проверяется по нему.
func (g *GroupInfo) AllShapeIndices() []int {
	all := append([]int(nil), g.ShapeIndices...)
	for _, step := range g.SequenceSteps {
		all = append(all, step.ShapeIndices...)
	}
	return SortedIndices(all)
}

// ContainsShape проверяет фигуру по AllShapeIndices.
func (g *GroupInfo) ContainsShape(shapeIndex int) bool {
	if slices.Contains(g.ShapeIndices, shapeIndex) {
		return true
	}
	for _, step := range g.SequenceSteps {
		if slices.Contains(step.ShapeIndices, shapeIndex) {
			return true
		}
	}
	return false
}

// RemapIndices переписывает индексы через mapping. Отрицательные
// отбрасываются, списки остаются отсортированными и без повторов.
func (g *GroupInfo) RemapIndices(mapping func(int) int) {
	g.ShapeIndices = remapList(g.ShapeIndices, mapping)
	for i := range g.SequenceSteps {
		g.SequenceSteps[i].ShapeIndices = remapList(g.SequenceSteps[i].ShapeIndices, mapping)
	}
}

func remapList(indices values.Ints, mapping func(int) int) values.Ints {
	if len(indices) == 0 {
		return indices
	}
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if mapped := mapping(idx); mapped >= 0 {
			out = append(out, mapped)
		}
	}
	return SortedIndices(out)
}

// SortedIndices отсортированная копия без повторов, nil для пустого.
func SortedIndices(indices []int) values.Ints {
	if len(indices) == 0 {
		return nil
	}
	out := slices.Clone(indices)
	slices.Sort(out)
	return values.Ints(slices.Compact(out))
}

// Указатели для необязательных полей
func Bool(b bool) *bool         { return &b }
func Float(f float64) *float64 { return &f }
func Int(i int) *int            { return &i }

// ============================================================
// Depth layer values
// ============================================================

// AutoLayer: слой берется из имени группы.
const AutoLayer = "auto"

// LayerValue номер слоя или "auto".
type LayerValue struct {
	Auto  bool
	Layer int
}

func Layer(n int) *LayerValue { return &LayerValue{Layer: n} }
func Auto() *LayerValue       { return &LayerValue{Auto: true} }

func (l LayerValue) String() string {
	if l.Auto {
		return AutoLayer
	}
	return fmt.Sprint(l.Layer)
}

func (l LayerValue) MarshalJSON() ([]byte, error) {
	if l.Auto {
		return json.Marshal(AutoLayer)
	}
	return json.Marshal(l.Layer)
}

func (l *LayerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*l = LayerValue{Layer: int(v)}
		return nil
	case string:
		if strings.EqualFold(strings.TrimSpace(v), AutoLayer) {
			*l = LayerValue{Auto: true}
			return nil
		}
		if n, ok := values.ParseInt(v); ok {
			*l = LayerValue{Layer: n}
			return nil
		}
	}
	return fmt.Errorf("%w: depthlayer must be an integer or %q, got %s", ErrInvalidSpec, AutoLayer, data)
}
