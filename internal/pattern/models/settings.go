package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"pattern-mapper/internal/pattern/values"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ============================================================
// Depth layering
// ============================================================

type DepthMode string

const (
	DepthManual          DepthMode = "manual"
	DepthFlat            DepthMode = "flat"
	DepthGroupNamePrefix DepthMode = "groupnameprefix"
)

// Расстояние по z между соседними слоями
const DefaultLayerDistance = 0.1

// ParseDepthMode разбирает имя режима, пусто = manual.
func ParseDepthMode(s string) (DepthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "manual":
		return DepthManual, nil
	case "flat":
		return DepthFlat, nil
	case "groupnameprefix", "prefix":
		return DepthGroupNamePrefix, nil
	}
	return "", fmt.Errorf("%w: unsupported depth layering mode %q", ErrInvalidSpec, s)
}

type DepthLayeringSpec struct {
	Mode          string   `json:"mode,omitempty"`
	Condense      *bool    `json:"condense,omitempty"`
	LayerDistance *float64 `json:"layerdistance,omitempty"`
	DefaultLayer  *int     `json:"defaultlayer,omitempty"`
}

// UnmarshalJSON принимает имя режима или объект.
func (d *DepthLayeringSpec) UnmarshalJSON(data []byte) error {
	var mode string
	if err := json.Unmarshal(data, &mode); err == nil {
		*d = DepthLayeringSpec{Mode: mode}
		return nil
	}
	type alias DepthLayeringSpec
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = DepthLayeringSpec(a)
	return nil
}

// CondenseLayers по умолчанию true.
func (d *DepthLayeringSpec) CondenseLayers() bool {
	return d == nil || d.Condense == nil || *d.Condense
}

func (d *DepthLayeringSpec) Distance() float64 {
	if d == nil || d.LayerDistance == nil {
		return DefaultLayerDistance
	}
	return *d.LayerDistance
}

// ============================================================
// Duplicate merging
// ============================================================

// MergeDupsSpec включает слияние дублей. Ключ принимает true/false, допуск
// числом или объект с Paths для ограничения по путям.
type MergeDupsSpec struct {
	Enabled   bool        `json:"enabled"`
	Tolerance *float64    `json:"tolerance,omitempty"`
	Paths     values.List `json:"paths,omitempty"`
}

func (m *MergeDupsSpec) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*m = MergeDupsSpec{}
		return nil
	case bool:
		*m = MergeDupsSpec{Enabled: v}
		return nil
	case float64:
		*m = MergeDupsSpec{Enabled: true, Tolerance: Float(v)}
		return nil
	case map[string]any:
		var obj struct {
			Enabled   *bool       `json:"enabled"`
			Tolerance *float64    `json:"tolerance"`
			Paths     values.List `json:"paths"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*m = MergeDupsSpec{
			Enabled:   obj.Enabled == nil || *obj.Enabled,
			Tolerance: obj.Tolerance,
			Paths:     obj.Paths,
		}
		return nil
	}
	return fmt.Errorf("%w: mergedups must be a bool, number or object, got %s", ErrInvalidSpec, data)
}

// ToleranceOr возвращает допуск или fallback.
func (m *MergeDupsSpec) ToleranceOr(fallback float64) float64 {
	if m == nil || m.Tolerance == nil {
		return fallback
	}
	return *m.Tolerance
}

// ============================================================
// Shape states
// ============================================================

type TransformSpec struct {
	Scale        values.Floats `json:"scale,omitempty"`
	UniformScale *float64      `json:"uniformscale,omitempty"`
	Rotate       values.Floats `json:"rotate,omitempty"`
	Translate    values.Floats `json:"translate,omitempty"`
	Pivot        values.Floats `json:"pivot,omitempty"`
}

// TextureLayer текстура и сила ее смешивания.
type TextureLayer struct {
	Texture  string        `json:"texture,omitempty"`
	Level    *float64      `json:"level,omitempty"`
	UVOffset values.Floats `json:"uvoffset,omitempty"`
	UVScale  values.Floats `json:"uvscale,omitempty"`
}

// ShapeState визуальное состояние фигуры. nil поля наследуются снизу.
type ShapeState struct {
	PathColor       values.Floats  `json:"pathcolor,omitempty"`
	PanelColor      values.Floats  `json:"panelcolor,omitempty"`
	PathVisible     *bool          `json:"pathvisible,omitempty"`
	PanelVisible    *bool          `json:"panelvisible,omitempty"`
	LocalTransform  *TransformSpec `json:"localtransform,omitempty"`
	GlobalTransform *TransformSpec `json:"globaltransform,omitempty"`
	PathTex         *TextureLayer  `json:"pathtex,omitempty"`
	TexLayer1       *TextureLayer  `json:"texlayer1,omitempty"`
	TexLayer2       *TextureLayer  `json:"texlayer2,omitempty"`
}

// GroupShapeState состояние для фигур групп из Group (имена или glob).
type GroupShapeState struct {
	Group values.List `json:"group"`
	ShapeState
}

// ============================================================
// Settings
// ============================================================

type PatternSettings struct {
	Groups             []GroupGenSpec     `json:"groups,omitempty"`
	AutoGroup          *bool              `json:"autogroup,omitempty"`
	AutoSides          *bool              `json:"autosides,omitempty"`
	DepthLayering      *DepthLayeringSpec `json:"depthlayering,omitempty"`
	Recenter           *bool              `json:"recenter,omitempty"`
	Rescale            *bool              `json:"rescale,omitempty"`
	FixTriangleCenters *bool              `json:"fixtrianglecenters,omitempty"`
	MergeDups          *MergeDupsSpec     `json:"mergedups,omitempty"`
	DefaultShapeState  *ShapeState        `json:"defaultshapestate,omitempty"`
	GroupShapeStates   []GroupShapeState  `json:"groupshapestates,omitempty"`
}

// UnmarshalJSON разбирает спеки по одной: плохая запись становится
// InvalidSpec, документ целиком не падает.
func (s *PatternSettings) UnmarshalJSON(data []byte) error {
	type alias PatternSettings
	aux := struct {
		*alias
		Groups []json.RawMessage `json:"groups,omitempty"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Groups = decodeSpecList(aux.Groups)
	return nil
}

// AutoGroupEnabled: true, если autogroup не выключен явно.
func (s *PatternSettings) AutoGroupEnabled() bool {
	return s.AutoGroup == nil || *s.AutoGroup
}

// AutoSidesEnabled: true, если autosides не выключен явно.
func (s *PatternSettings) AutoSidesEnabled() bool {
	return s.AutoSides == nil || *s.AutoSides
}

// ParseSettings разбирает настройки в JSON.
func ParseSettings(data []byte) (*PatternSettings, error) {
	settings := &PatternSettings{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

// ParseSettingsYAML разбирает YAML с теми же ключами, что и JSON.
func ParseSettingsYAML(data []byte) (*PatternSettings, error) {
	jsonData, err := YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return ParseSettings(jsonData)
}

// YAMLToJSON перекодирует YAML в JSON.
func YAMLToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return json.Marshal(jsonCompatible(doc))
}

// ParseSettingsTOML разбирает TOML. Спеки групп задаются как [[groups]].
func ParseSettingsTOML(data []byte) (*PatternSettings, error) {
	jsonData, err := TOMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return ParseSettings(jsonData)
}

// TOMLToJSON перекодирует TOML в JSON.
func TOMLToJSON(data []byte) ([]byte, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, nil
	}
	return json.Marshal(doc)
}

// Форматы для ParseSettingsAs
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// SettingsFormat определяет формат по имени файла или content type.
// Все неизвестное считается JSON.
func SettingsFormat(nameOrType string) string {
	s := strings.ToLower(strings.TrimSpace(strings.Split(nameOrType, ";")[0]))
	switch {
	case strings.HasSuffix(s, ".yaml"), strings.HasSuffix(s, ".yml"), strings.HasSuffix(s, "/yaml"), strings.HasSuffix(s, "/x-yaml"):
		return FormatYAML
	case strings.HasSuffix(s, ".toml"), strings.HasSuffix(s, "/toml"):
		return FormatTOML
	}
	return FormatJSON
}

// ParseSettingsAs разбирает data в формате format.
func ParseSettingsAs(format string, data []byte) (*PatternSettings, error) {
	switch format {
	case FormatYAML:
		return ParseSettingsYAML(data)
	case FormatTOML:
		return ParseSettingsTOML(data)
	}
	return ParseSettings(data)
}

// ToJSON переводит документ в JSON. nil = пустой документ.
func ToJSON(format string, data []byte) ([]byte, error) {
	switch format {
	case FormatYAML:
		return YAMLToJSON(data)
	case FormatTOML:
		return TOMLToJSON(data)
	}
	return data, nil
}

// jsonCompatible меняет map[any]any на map[string]any для encoding/json.
func jsonCompatible(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = jsonCompatible(item)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return out
	case []any:
		for i, item := range x {
			x[i] = jsonCompatible(item)
		}
		return x
	}
	return v
}
