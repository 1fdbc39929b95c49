// Package states вычисляет визуальное состояние фигур из состояния по
// умолчанию и состояний групп.
package states

import (
	"log"

	"pattern-mapper/internal/pattern/groups"
	"pattern-mapper/internal/pattern/models"
)

// Entry итоговое состояние фигуры.
type Entry struct {
	ShapeIndex int `json:"shapeindex"`
	models.ShapeState
}

// Resolve накладывает состояние по умолчанию, затем состояния групп в
// порядке настроек. Поздние записи перекрывают ранние по полям.
func Resolve(pd *models.PatternData, logger *log.Logger) []Entry {
	entries := make([]Entry, len(pd.Shapes))
	for i, shape := range pd.Shapes {
		entries[i].ShapeIndex = shape.ShapeIndex
	}
	if pd.Settings == nil {
		return entries
	}

	if def := pd.Settings.DefaultShapeState; def != nil {
		for i := range entries {
			Overlay(&entries[i].ShapeState, def)
		}
	}

	ctx := groups.NewContext(pd.Shapes, logger)
	for _, g := range pd.Groups {
		ctx.AddGroup(g)
	}
	for n, gs := range pd.Settings.GroupShapeStates {
		names := ctx.GroupNamesByPatterns(gs.Group)
		applied := 0
		for _, name := range names {
			g := ctx.Group(name)
			if g == nil {
				if hint := ctx.Suggest(name); hint != "" {
					ctx.Logf("[STATES] groupshapestates[%d]: group %q not found, did you mean %q?", n, name, hint)
				} else {
					ctx.Logf("[STATES] groupshapestates[%d]: group %q not found", n, name)
				}
				continue
			}
			for _, idx := range g.AllShapeIndices() {
				if idx >= 0 && idx < len(entries) {
					Overlay(&entries[idx].ShapeState, &gs.ShapeState)
				}
			}
			applied++
		}
		if applied == 0 {
			ctx.Logf("[STATES] groupshapestates[%d] (%s) matched no groups", n, gs.Group)
		}
	}
	return entries
}

// Overlay копирует заданные поля src в dst.
func Overlay(dst, src *models.ShapeState) {
	if src.PathColor != nil {
		dst.PathColor = append(dst.PathColor[:0:0], src.PathColor...)
	}
	if src.PanelColor != nil {
		dst.PanelColor = append(dst.PanelColor[:0:0], src.PanelColor...)
	}
	if src.PathVisible != nil {
		dst.PathVisible = models.Bool(*src.PathVisible)
	}
	if src.PanelVisible != nil {
		dst.PanelVisible = models.Bool(*src.PanelVisible)
	}
	dst.LocalTransform = overlayTransform(dst.LocalTransform, src.LocalTransform)
	dst.GlobalTransform = overlayTransform(dst.GlobalTransform, src.GlobalTransform)
	dst.PathTex = overlayTexture(dst.PathTex, src.PathTex)
	dst.TexLayer1 = overlayTexture(dst.TexLayer1, src.TexLayer1)
	dst.TexLayer2 = overlayTexture(dst.TexLayer2, src.TexLayer2)
}

func overlayTransform(dst, src *models.TransformSpec) *models.TransformSpec {
	if src == nil {
		return dst
	}
	out := &models.TransformSpec{}
	if dst != nil {
		*out = *dst
	}
	if src.Scale != nil {
		out.Scale = src.Scale
	}
	if src.UniformScale != nil {
		out.UniformScale = models.Float(*src.UniformScale)
	}
	if src.Rotate != nil {
		out.Rotate = src.Rotate
	}
	if src.Translate != nil {
		out.Translate = src.Translate
	}
	if src.Pivot != nil {
		out.Pivot = src.Pivot
	}
	return out
}

func overlayTexture(dst, src *models.TextureLayer) *models.TextureLayer {
	if src == nil {
		return dst
	}
	out := &models.TextureLayer{}
	if dst != nil {
		*out = *dst
	}
	if src.Texture != "" {
		out.Texture = src.Texture
	}
	if src.Level != nil {
		out.Level = models.Float(*src.Level)
	}
	if src.UVOffset != nil {
		out.UVOffset = src.UVOffset
	}
	if src.UVScale != nil {
		out.UVScale = src.UVScale
	}
	return out
}
