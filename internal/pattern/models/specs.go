package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pattern-mapper/internal/pattern/values"
)

var (
	ErrUnsupportedSpec = errors.New("unsupported group gen spec")
	ErrConflictingSpec = errors.New("multiple conflicting group gen types")
	ErrInvalidSpec     = errors.New("invalid spec")
)

// ============================================================
// Group generation specs
// ============================================================

// SpecKind вид генератора групп.
type SpecKind string

const (
	KindBoxBound   SpecKind = "boxbound"
	KindPolarBound SpecKind = "polarbound"
	KindBoolean    SpecKind = "boolean"
	KindMerge      SpecKind = "merge"
	KindPath       SpecKind = "path"
	KindManual     SpecKind = "manual"
	KindInvalid    SpecKind = "invalid"
)

// GroupGenSpec описание одного генератора. Реализации: BoxBoundSpec,
// PolarBoundSpec, BooleanSpec, MergeSpec, PathSpec, ManualSpec, InvalidSpec.
type GroupGenSpec interface {
	Kind() SpecKind
	Base() *GenSpecBase
}

// GenSpecBase общие поля всех спек.
type GenSpecBase struct {
	GroupName  string          `json:"groupname,omitempty"`
	Suffixes   values.List     `json:"suffixes,omitempty"`
	SequenceBy *SequenceBySpec `json:"sequenceby,omitempty"`
	Temporary  *bool           `json:"temporary,omitempty"`
	DepthLayer *LayerValue     `json:"depthlayer,omitempty"`
	MergeTo    string          `json:"mergeto,omitempty"`
}

func (b *GenSpecBase) Base() *GenSpecBase { return b }

// IsTemporary: по умолчанию временные имена с ".".
func (b *GenSpecBase) IsTemporary() bool {
	if b.Temporary != nil {
		return *b.Temporary
	}
	return strings.HasPrefix(b.GroupName, ".")
}

// PositionalSpec поворот по индексам, в градусах.
type PositionalSpec struct {
	Prerotate values.List `json:"prerotate,omitempty"`
}

type BoxBoundSpec struct {
	GenSpecBase
	PositionalSpec
	XMin values.List `json:"xmin,omitempty"`
	XMax values.List `json:"xmax,omitempty"`
	YMin values.List `json:"ymin,omitempty"`
	YMax values.List `json:"ymax,omitempty"`
}

func (*BoxBoundSpec) Kind() SpecKind { return KindBoxBound }

type PolarBoundSpec struct {
	GenSpecBase
	PositionalSpec
	AngleMin    values.List `json:"anglemin,omitempty"`
	AngleMax    values.List `json:"anglemax,omitempty"`
	DistanceMin values.List `json:"distancemin,omitempty"`
	DistanceMax values.List `json:"distancemax,omitempty"`
}

func (*PolarBoundSpec) Kind() SpecKind { return KindPolarBound }

// PathSpec группирует фигуры по Paths. GroupAtDepth делит совпадения по
// префиксу пути из стольких сегментов.
type PathSpec struct {
	GenSpecBase
	Paths        values.List `json:"paths,omitempty"`
	GroupAtDepth *int        `json:"groupatdepth,omitempty"`
}

func (*PathSpec) Kind() SpecKind { return KindPath }

// BooleanSpec комбинирует группы попарно с WithGroups или все вместе,
// если WithGroups пуст.
type BooleanSpec struct {
	GenSpecBase
	Groups     values.List `json:"groups,omitempty"`
	WithGroups values.List `json:"withgroups,omitempty"`
	BoolOp     string      `json:"boolop,omitempty"`
	Permute    *bool       `json:"permute,omitempty"`
}

func (*BooleanSpec) Kind() SpecKind { return KindBoolean }

type booleanJSON BooleanSpec

// MarshalJSON всегда пишет boolop, иначе спека читается обратно как merge
func (s *BooleanSpec) MarshalJSON() ([]byte, error) {
	op, err := ParseBoolOp(s.BoolOp)
	if err != nil {
		return nil, err
	}
	out := booleanJSON(*s)
	out.BoolOp = string(op)
	return json.Marshal(&out)
}

// MergeSpec склеивает шаги групп или (flatten) объединяет их без шагов.
type MergeSpec struct {
	GenSpecBase
	Groups  values.List `json:"groups,omitempty"`
	Flatten *bool       `json:"flatten,omitempty"`
}

func (*MergeSpec) Kind() SpecKind { return KindMerge }

// ManualSpec явный список фигур и шагов.
type ManualSpec struct {
	GenSpecBase
	ShapeIndices  values.Ints    `json:"shapeindices,omitempty"`
	SequenceSteps []SequenceStep `json:"sequencesteps,omitempty"`
}

func (*ManualSpec) Kind() SpecKind { return KindManual }

// InvalidSpec запись, которую не удалось разобрать. Остальные настройки
// грузятся, причина в Err.
type InvalidSpec struct {
	GenSpecBase
	Raw json.RawMessage
	Err error
}

func (*InvalidSpec) Kind() SpecKind { return KindInvalid }

func (s *InvalidSpec) MarshalJSON() ([]byte, error) {
	if len(s.Raw) == 0 {
		return []byte("{}"), nil
	}
	return s.Raw, nil
}

// ============================================================
// Classification
// ============================================================

type specRule struct {
	kind    SpecKind
	matches func(keys map[string]json.RawMessage) bool
}

// specRules порядок классификации. Запись, подходящая под несколько правил,
// отклоняется.
var specRules = []specRule{
	{KindBoxBound, hasAny("xmin", "xmax", "ymin", "ymax")},
	{KindPolarBound, hasAny("anglemin", "anglemax", "distancemin", "distancemax")},
	{KindBoolean, func(k map[string]json.RawMessage) bool {
		return hasAny("groups")(k) && hasAny("withgroups", "boolop", "permute")(k)
	}},
	{KindMerge, func(k map[string]json.RawMessage) bool {
		return hasAny("groups")(k) && !hasAny("withgroups", "boolop", "permute")(k)
	}},
	{KindPath, hasAny("paths")},
	{KindManual, hasAny("shapeindices", "sequencesteps")},
}

func hasAny(names ...string) func(map[string]json.RawMessage) bool {
	return func(keys map[string]json.RawMessage) bool {
		for _, name := range names {
			if _, ok := keys[name]; ok {
				return true
			}
		}
		return false
	}
}

// ClassifySpec определяет вид спеки.
func ClassifySpec(data []byte) (SpecKind, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return KindInvalid, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	var kinds []SpecKind
	for _, rule := range specRules {
		if rule.matches(keys) {
			kinds = append(kinds, rule.kind)
		}
	}
	switch len(kinds) {
	case 0:
		return KindInvalid, fmt.Errorf("%w: %s", ErrUnsupportedSpec, data)
	case 1:
		return kinds[0], nil
	}
	return KindInvalid, fmt.Errorf("%w: %v", ErrConflictingSpec, kinds)
}

// DecodeGroupGenSpec классифицирует и разбирает одну спеку.
func DecodeGroupGenSpec(data []byte) (GroupGenSpec, error) {
	kind, err := ClassifySpec(data)
	if err != nil {
		return nil, err
	}
	var spec GroupGenSpec
	switch kind {
	case KindBoxBound:
		spec = &BoxBoundSpec{}
	case KindPolarBound:
		spec = &PolarBoundSpec{}
	case KindBoolean:
		spec = &BooleanSpec{}
	case KindMerge:
		spec = &MergeSpec{}
	case KindPath:
		spec = &PathSpec{}
	case KindManual:
		spec = &ManualSpec{}
	}
	if err := json.Unmarshal(data, spec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSpec, kind, err)
	}
	base := spec.Base()
	if base.Temporary == nil && strings.HasPrefix(base.GroupName, ".") {
		base.Temporary = Bool(true)
	}
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}
	if b, ok := spec.(*BooleanSpec); ok {
		op, _ := ParseBoolOp(b.BoolOp)
		b.BoolOp = string(op)
	}
	return spec, nil
}

// ValidateSpec проверяет перечислимые поля спеки.
func ValidateSpec(spec GroupGenSpec) error {
	if inv, ok := spec.(*InvalidSpec); ok {
		return inv.Err
	}
	if sb := spec.Base().SequenceBy; sb != nil {
		if _, err := ParseSequenceAttr(sb.Attr); err != nil {
			return err
		}
	}
	if b, ok := spec.(*BooleanSpec); ok {
		if _, err := ParseBoolOp(b.BoolOp); err != nil {
			return err
		}
	}
	return nil
}

// decodeSpecList разбирает все записи, ошибки превращаются в InvalidSpec.
func decodeSpecList(raws []json.RawMessage) []GroupGenSpec {
	if len(raws) == 0 {
		return nil
	}
	specs := make([]GroupGenSpec, 0, len(raws))
	for _, raw := range raws {
		spec, err := DecodeGroupGenSpec(raw)
		if err != nil {
			var compact bytes.Buffer
			if json.Compact(&compact, raw) == nil {
				raw = compact.Bytes()
			}
			inv := &InvalidSpec{Raw: raw, Err: err}
			// только для логов
			_ = json.Unmarshal(raw, &inv.GenSpecBase)
			spec = inv
		}
		specs = append(specs, spec)
	}
	return specs
}

// ============================================================
// Boolean operators
// ============================================================

type BoolOp string

const (
	OpAnd BoolOp = "and"
	OpOr  BoolOp = "or"
)

var boolOpAliases = map[string]BoolOp{
	"and": OpAnd, "&": OpAnd,
	"or": OpOr, "|": OpOr,
}

// ParseBoolOp разбирает оператор, пусто = or.
func ParseBoolOp(s string) (BoolOp, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return OpOr, nil
	}
	if op, ok := boolOpAliases[s]; ok {
		return op, nil
	}
	return "", fmt.Errorf("%w: unsupported boolop %q", ErrInvalidSpec, s)
}

// ============================================================
// Sequencing
// ============================================================

// SequenceAttr атрибут фигуры для разбиения на шаги.
type SequenceAttr string

const (
	AttrRed        SequenceAttr = "r"
	AttrGreen      SequenceAttr = "g"
	AttrBlue       SequenceAttr = "b"
	AttrHue        SequenceAttr = "h"
	AttrSaturation SequenceAttr = "s"
	AttrValue      SequenceAttr = "v"
	AttrX          SequenceAttr = "x"
	AttrY          SequenceAttr = "y"
	AttrDistance   SequenceAttr = "distance"
)

var sequenceAttrAliases = map[string]SequenceAttr{
	"r": AttrRed, "red": AttrRed,
	"g": AttrGreen, "green": AttrGreen,
	"b": AttrBlue, "blue": AttrBlue,
	"h": AttrHue, "hue": AttrHue,
	"s": AttrSaturation, "sat": AttrSaturation, "saturation": AttrSaturation,
	"v": AttrValue, "value": AttrValue,
	"x": AttrX, "y": AttrY,
	"d": AttrDistance, "dist": AttrDistance, "distance": AttrDistance,
}

// ParseSequenceAttr разбирает имя атрибута или псевдоним.
func ParseSequenceAttr(s string) (SequenceAttr, error) {
	if attr, ok := sequenceAttrAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return attr, nil
	}
	return "", fmt.Errorf("%w: unsupported sequenceby attr %q", ErrInvalidSpec, s)
}

// SequenceBySpec разбиение фигур группы на шаги по атрибуту.
type SequenceBySpec struct {
	Attr        string `json:"attr"`
	RoundDigits *int   `json:"rounddigits,omitempty"`
	Reverse     *bool  `json:"reverse,omitempty"`
}

// UnmarshalJSON принимает имя атрибута или объект.
func (s *SequenceBySpec) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = SequenceBySpec{Attr: name}
		return nil
	}
	type alias SequenceBySpec
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = SequenceBySpec(a)
	return nil
}
