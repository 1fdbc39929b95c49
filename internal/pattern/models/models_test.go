package models

import (
	"encoding/json"
	"testing"

	"pattern-mapper/internal/pattern/values"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupInfoRoundTrip(t *testing.T) {
	g := &GroupInfo{
		GroupName:         "ring",
		GroupPath:         "layer1/ring",
		InferenceType:     "HS:V",
		InferredFromValue: "0.5 1",
		DepthLayer:        Layer(2),
		Depth:             Float(0.2),
		ShapeIndices:      values.Ints{0, 3, 7, 12},
		SequenceSteps: []SequenceStep{
			{SequenceIndex: 0, ShapeIndices: values.Ints{0, 3}, InferredFromValue: "0.25"},
			{SequenceIndex: 1, ShapeIndices: values.Ints{7, 12}, InferredFromValue: "0.75"},
		},
		Temporary: Bool(false),
	}

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"shapeindices":"0 3 7 12"`)

	var back GroupInfo
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g, &back)
}

func TestSequenceStepRoundTrip(t *testing.T) {
	step := DefaultStep([]int{5, 1, 5, 3})
	assert.Equal(t, values.Ints{1, 3, 5}, step.ShapeIndices)

	data, err := json.Marshal(step)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sequenceindex":0,"shapeindices":"1 3 5","isdefault":true}`, string(data))

	var back SequenceStep
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, step, back)
}

func TestGroupMembership(t *testing.T) {
	g := &GroupInfo{
		GroupName:    "g",
		ShapeIndices: values.Ints{1, 2},
		SequenceSteps: []SequenceStep{
			{SequenceIndex: 0, ShapeIndices: values.Ints{2, 4}},
		},
	}
	assert.Equal(t, []int{1, 2, 4}, []int(g.AllShapeIndices()))
	assert.True(t, g.ContainsShape(4))
	assert.True(t, g.ContainsShape(1))
	assert.False(t, g.ContainsShape(3))
	assert.True(t, g.IsSequenced(), "one non-default step is a sequence")

	plain := NewGroup("plain", []int{3, 1})
	assert.False(t, plain.IsSequenced())
	assert.Equal(t, values.Ints{1, 3}, plain.ShapeIndices)
}

func TestGroupTemporary(t *testing.T) {
	assert.True(t, NewGroup(".helper", nil).IsTemporary())
	assert.False(t, NewGroup("visible", nil).IsTemporary())

	g := NewGroup(".kept", nil)
	g.Temporary = Bool(false)
	assert.False(t, g.IsTemporary())
}

func TestRemapIndices(t *testing.T) {
	g := &GroupInfo{
		GroupName:     "g",
		ShapeIndices:  values.Ints{0, 1, 2, 3},
		SequenceSteps: []SequenceStep{{ShapeIndices: values.Ints{1, 3}}},
	}
	mapping := map[int]int{0: 0, 1: 0, 2: -1, 3: 1}
	g.RemapIndices(func(i int) int { return mapping[i] })

	assert.Equal(t, values.Ints{0, 1}, g.ShapeIndices)
	assert.Equal(t, values.Ints{0, 1}, g.SequenceSteps[0].ShapeIndices)
}

func TestLayerValueJSON(t *testing.T) {
	var lv LayerValue
	require.NoError(t, json.Unmarshal([]byte(`"auto"`), &lv))
	assert.True(t, lv.Auto)

	require.NoError(t, json.Unmarshal([]byte(`3`), &lv))
	assert.Equal(t, LayerValue{Layer: 3}, lv)

	require.NoError(t, json.Unmarshal([]byte(`"4"`), &lv))
	assert.Equal(t, 4, lv.Layer)

	err := json.Unmarshal([]byte(`"front"`), &lv)
	assert.ErrorIs(t, err, ErrInvalidSpec)

	data, err := json.Marshal(Auto())
	require.NoError(t, err)
	assert.Equal(t, `"auto"`, string(data))
}

func TestClassifySpec(t *testing.T) {
	cases := []struct {
		name string
		in   string
		kind SpecKind
		err  error
	}{
		{"Box", `{"groupname":"a","xmin":0}`, KindBoxBound, nil},
		{"Polar", `{"anglemin":"0 90","anglemax":"90 180"}`, KindPolarBound, nil},
		{"Boolean", `{"groups":"a","withgroups":"b"}`, KindBoolean, nil},
		{"BooleanByOp", `{"groups":"a*","boolop":"and"}`, KindBoolean, nil},
		{"Merge", `{"groups":"a b"}`, KindMerge, nil},
		{"Path", `{"paths":"a/*"}`, KindPath, nil},
		{"Manual", `{"shapeindices":"1 2"}`, KindManual, nil},
		{"Unsupported", `{"groupname":"x"}`, KindInvalid, ErrUnsupportedSpec},
		{"Conflicting", `{"xmin":0,"paths":"a"}`, KindInvalid, ErrConflictingSpec},
		{"BoxAndPolar", `{"xmin":0,"anglemin":0}`, KindInvalid, ErrConflictingSpec},
		{"NotAnObject", `[1]`, KindInvalid, ErrInvalidSpec},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, err := ClassifySpec([]byte(tc.in))
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.kind, kind)
		})
	}
}

func TestDecodeGroupGenSpec(t *testing.T) {
	spec, err := DecodeGroupGenSpec([]byte(`{
		"groupname": ".quad",
		"xmin": "0 _", "xmax": 10,
		"prerotate": "0 90",
		"suffixes": "a b",
		"sequenceby": "hue",
		"depthlayer": "auto"
	}`))
	require.NoError(t, err)

	box, ok := spec.(*BoxBoundSpec)
	require.True(t, ok)
	assert.Equal(t, values.List{"0", "_"}, box.XMin)
	assert.Equal(t, values.List{"10"}, box.XMax)
	assert.Equal(t, values.List{"0", "90"}, box.Prerotate)
	assert.Equal(t, "hue", box.SequenceBy.Attr)
	assert.True(t, box.DepthLayer.Auto)
	require.NotNil(t, box.Temporary)
	assert.True(t, *box.Temporary, "dot prefixed names default to temporary")

	_, err = DecodeGroupGenSpec([]byte(`{"groups":"a","boolop":"xor"}`))
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = DecodeGroupGenSpec([]byte(`{"paths":"a","sequenceby":{"attr":"weight"}}`))
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestSettingsKeepBadSpecs(t *testing.T) {
	settings, err := ParseSettings([]byte(`{
		"groups": [
			{"groupname": "left", "xmax": 0},
			{"groupname": "broken", "xmin": 0, "paths": "a"},
			{"groupname": "named", "paths": "a/*"}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, settings.Groups, 3)

	assert.Equal(t, KindBoxBound, settings.Groups[0].Kind())
	assert.Equal(t, KindPath, settings.Groups[2].Kind())

	inv, ok := settings.Groups[1].(*InvalidSpec)
	require.True(t, ok)
	assert.ErrorIs(t, inv.Err, ErrConflictingSpec)
	assert.ErrorIs(t, ValidateSpec(inv), ErrConflictingSpec)
	assert.Equal(t, "broken", inv.GroupName)
}

func TestPatternSettingsRoundTrip(t *testing.T) {
	in := `{
		"groups": [
			{"groupname": "box", "xmin": "0 5", "xmax": 10, "sequenceby": {"attr": "x", "rounddigits": 2, "reverse": true}},
			{"groupname": "ring", "anglemin": 0, "distancemax": "0.5", "depthlayer": 3, "mergeto": "all"},
			{"groupname": "sub", "paths": ["a/*", "b/c d"], "groupatdepth": 2},
			{"groups": "ring*", "withgroups": "box", "boolop": "and", "permute": true},
			{"groupname": "merged", "groups": "box ring", "flatten": true},
			{"groupname": "either", "groups": "box ring", "boolop": ""},
			{"groupname": "manual", "sequencesteps": [{"sequenceindex": 0, "shapeindices": "1 2"}]}
		],
		"autogroup": false,
		"depthlayering": "groupnameprefix",
		"recenter": true,
		"mergedups": 0.01,
		"defaultshapestate": {"pathcolor": "1 1 1 1", "pathvisible": true},
		"groupshapestates": [
			{"group": "ring*", "panelcolor": "1 0 0 1", "localtransform": {"rotate": "0 0 45"}, "texlayer1": {"texture": "noise", "level": 0.5}}
		]
	}`

	first, err := ParseSettings([]byte(in))
	require.NoError(t, err)
	for _, spec := range first.Groups {
		require.NotEqual(t, KindInvalid, spec.Kind())
	}
	assert.Equal(t, "groupnameprefix", first.DepthLayering.Mode)
	assert.True(t, first.MergeDups.Enabled)
	assert.Equal(t, 0.01, first.MergeDups.ToleranceOr(1))

	data, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := ParseSettings(data)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	either := second.Groups[5]
	require.Equal(t, KindBoolean, either.Kind())
	assert.Equal(t, string(OpOr), either.(*BooleanSpec).BoolOp)
	assert.Contains(t, string(data), `"groupname":"either","groups":"box ring","boolop":"or"`)
}

func TestParseSettingsYAML(t *testing.T) {
	settings, err := ParseSettingsYAML([]byte(`
groups:
  - groupname: top
    ymin: 0
  - groupname: named
    paths: [a/*, b/*]
depthlayering:
  mode: flat
  defaultlayer: 1
mergedups:
  tolerance: 0.5
  paths: a/*
`))
	require.NoError(t, err)
	require.Len(t, settings.Groups, 2)
	assert.Equal(t, KindBoxBound, settings.Groups[0].Kind())
	assert.Equal(t, values.List{"a/*", "b/*"}, settings.Groups[1].(*PathSpec).Paths)
	assert.Equal(t, 1, *settings.DepthLayering.DefaultLayer)
	assert.True(t, settings.MergeDups.Enabled)
	assert.Equal(t, values.List{"a/*"}, settings.MergeDups.Paths)
}

func TestParseSettingsTOML(t *testing.T) {
	settings, err := ParseSettingsTOML([]byte(`
autogroup = false
depthlayering = "prefix"

[[groups]]
groupname = "ring"
anglemin = 0
anglemax = 90
depthlayer = "auto"

[[groups]]
groupname = "both"
groups = "ring"
withgroups = "ring"
boolop = "&"

[defaultshapestate]
pathcolor = [1, 0, 0, 1]
`))
	require.NoError(t, err)
	require.Len(t, settings.Groups, 2)
	assert.Equal(t, KindPolarBound, settings.Groups[0].Kind())
	assert.True(t, settings.Groups[0].Base().DepthLayer.Auto)
	assert.Equal(t, KindBoolean, settings.Groups[1].Kind())
	assert.Equal(t, "and", settings.Groups[1].(*BooleanSpec).BoolOp)
	assert.False(t, settings.AutoGroupEnabled())
	assert.Equal(t, "prefix", settings.DepthLayering.Mode)
	assert.Equal(t, values.Floats{1, 0, 0, 1}, settings.DefaultShapeState.PathColor)

	_, err = ParseSettingsTOML([]byte(`groups = [`))
	assert.Error(t, err)

	empty, err := ParseSettingsTOML(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Groups)
}

func TestSettingsFormat(t *testing.T) {
	cases := map[string]string{
		"pattern.yaml":                    FormatYAML,
		"dir/pattern.YML":                 FormatYAML,
		"application/yaml; charset=utf-8": FormatYAML,
		"application/x-yaml":              FormatYAML,
		"settings.toml":                   FormatTOML,
		"application/toml":                FormatTOML,
		"application/json":                FormatJSON,
		"":                                FormatJSON,
	}
	for in, want := range cases {
		assert.Equal(t, want, SettingsFormat(in), in)
	}

	settings, err := ParseSettingsAs(FormatYAML, []byte("autosides: false"))
	require.NoError(t, err)
	assert.False(t, settings.AutoSidesEnabled())
}

func TestMergeDupsForms(t *testing.T) {
	cases := []struct {
		in      string
		enabled bool
		tol     float64
	}{
		{`true`, true, 1e-4},
		{`false`, false, 1e-4},
		{`0.25`, true, 0.25},
		{`{"enabled": false, "tolerance": 2}`, false, 2},
	}
	for _, tc := range cases {
		var m MergeDupsSpec
		require.NoError(t, json.Unmarshal([]byte(tc.in), &m), tc.in)
		assert.Equal(t, tc.enabled, m.Enabled, tc.in)
		assert.Equal(t, tc.tol, m.ToleranceOr(1e-4), tc.in)
	}
	var m MergeDupsSpec
	assert.ErrorIs(t, json.Unmarshal([]byte(`"yes"`), &m), ErrInvalidSpec)
}

func TestDepthLayeringDefaults(t *testing.T) {
	var spec *DepthLayeringSpec
	assert.True(t, spec.CondenseLayers())
	assert.Equal(t, DefaultLayerDistance, spec.Distance())

	mode, err := ParseDepthMode("prefix")
	require.NoError(t, err)
	assert.Equal(t, DepthGroupNamePrefix, mode)

	_, err = ParseDepthMode("sideways")
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestShapeHSV(t *testing.T) {
	s := &ShapeInfo{Color: values.Ints{255, 0, 0}}
	hsv, ok := s.HSV()
	require.True(t, ok)
	assert.InDelta(t, 0, hsv.H, 1e-9)
	assert.InDelta(t, 1, hsv.S, 1e-9)
	assert.InDelta(t, 1, hsv.V, 1e-9)

	s.Color = values.Ints{0, 0, 255}
	hsv, _ = s.HSV()
	assert.InDelta(t, 2.0/3, hsv.H, 1e-9)

	_, ok = (&ShapeInfo{}).HSV()
	assert.False(t, ok)
}

func TestShapePath(t *testing.T) {
	assert.Equal(t, "a/b/s1", (&ShapeInfo{ShapePath: "a/b/s1", ShapeName: "x"}).Path())
	assert.Equal(t, "a/b/s1", (&ShapeInfo{ParentPath: "a/b", ShapeName: "s1"}).Path())
	assert.Equal(t, []string{"a", "b"}, SplitPath("/a//b/"))

	s := &ShapeInfo{Center: values.Floats{1, 2}}
	s.SetDepth(0.3)
	assert.Equal(t, values.Floats{1, 2, 0.3}, s.Center)
}
