package states

import (
	"bytes"
	"log"
	"testing"

	"pattern-mapper/internal/pattern/models"
	"pattern-mapper/internal/pattern/values"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	settings, err := models.ParseSettings([]byte(`{
		"defaultshapestate": {"pathcolor": "1 1 1 1", "pathvisible": true, "localtransform": {"scale": "1 1 1"}},
		"groupshapestates": [
			{"group": "ring_*", "pathcolor": "1 0 0 1", "localtransform": {"rotate": "0 0 90"}},
			{"group": "ring_outer", "pathvisible": false, "texlayer1": {"texture": "noise", "level": 0.5}},
			{"group": "nothing", "panelvisible": true}
		]
	}`))
	require.NoError(t, err)

	pd := &models.PatternData{
		Shapes: []*models.ShapeInfo{{ShapeIndex: 0}, {ShapeIndex: 1}, {ShapeIndex: 2}},
		Groups: []*models.GroupInfo{
			models.NewGroup("ring_inner", []int{0}),
			models.NewGroup("ring_outer", []int{1}),
		},
		Settings: settings,
	}
	var buf bytes.Buffer

	entries := Resolve(pd, log.New(&buf, "", 0))

	require.Len(t, entries, 3)
	assert.Equal(t, values.Floats{1, 0, 0, 1}, entries[0].PathColor)
	assert.True(t, *entries[0].PathVisible)
	assert.Equal(t, values.Floats{1, 1, 1}, entries[0].LocalTransform.Scale)
	assert.Equal(t, values.Floats{0, 0, 90}, entries[0].LocalTransform.Rotate)
	assert.Nil(t, entries[0].TexLayer1)

	assert.False(t, *entries[1].PathVisible)
	require.NotNil(t, entries[1].TexLayer1)
	assert.Equal(t, "noise", entries[1].TexLayer1.Texture)

	assert.Equal(t, values.Floats{1, 1, 1, 1}, entries[2].PathColor)
	assert.Nil(t, entries[2].LocalTransform.Rotate)
	assert.Nil(t, entries[2].PanelVisible)

	assert.Contains(t, buf.String(), `group "nothing" not found`)
	assert.Nil(t, settings.DefaultShapeState.LocalTransform.Rotate, "settings are not modified")
}

func TestResolveWithoutSettings(t *testing.T) {
	entries := Resolve(&models.PatternData{Shapes: []*models.ShapeInfo{{ShapeIndex: 0}}}, nil)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].ShapeIndex)
	assert.Nil(t, entries[0].PathColor)
}

func TestOverlayTexture(t *testing.T) {
	dst := models.ShapeState{PathTex: &models.TextureLayer{Texture: "a", Level: models.Float(1)}}
	Overlay(&dst, &models.ShapeState{PathTex: &models.TextureLayer{Level: models.Float(0.25)}})
	assert.Equal(t, "a", dst.PathTex.Texture)
	assert.Equal(t, 0.25, *dst.PathTex.Level)
}
