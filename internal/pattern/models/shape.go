package models

import (
	"strings"

	"pattern-mapper/internal/pattern/values"

	"github.com/lucasb-eyer/go-colorful"
)

// ============================================================
// Shapes
// ============================================================

// dupcount фигуры, поглощенной более ранним дублем
const DuplicateRemoved = -1

// PointData точка контура и расстояние вдоль него.
type PointData struct {
	Pos     values.Floats `json:"pos"`
	AbsDist float64       `json:"absdist"`
	RelDist float64       `json:"reldist"`
}

// ShapeInfo один контур исходной иллюстрации.
type ShapeInfo struct {
	ShapeIndex  int           `json:"shapeindex"`
	ShapeName   string        `json:"shapename,omitempty"`
	ShapePath   string        `json:"shapepath,omitempty"`
	ParentPath  string        `json:"parentpath,omitempty"`
	Color       values.Ints   `json:"color,omitempty"`
	Center      values.Floats `json:"center,omitempty"`
	Radius      float64       `json:"radius,omitempty"`
	ShapeLength *float64      `json:"shapelength,omitempty"`
	DepthLayer  *int          `json:"depthlayer,omitempty"`
	DupCount    int           `json:"dupcount,omitempty"`
	IsTriangle  bool          `json:"istriangle,omitempty"`
	Points      []PointData   `json:"points,omitempty"`
}

// HSV цвет в hue/saturation/value, компоненты в 0..1.
type HSV struct {
	H, S, V float64
}

// HSV переводит RGB (0-255). ok = false, если цвета нет.
func (s *ShapeInfo) HSV() (hsv HSV, ok bool) {
	if len(s.Color) < 3 {
		return HSV{}, false
	}
	c := colorful.Color{
		R: float64(s.Color[0]) / 255,
		G: float64(s.Color[1]) / 255,
		B: float64(s.Color[2]) / 255,
	}
	h, sat, v := c.Hsv()
	return HSV{H: h / 360, S: sat, V: v}, true
}

// Path путь фигуры для сопоставления с шаблонами.
func (s *ShapeInfo) Path() string {
	if s.ShapePath != "" {
		return s.ShapePath
	}
	switch {
	case s.ParentPath == "":
		return s.ShapeName
	case s.ShapeName == "":
		return s.ParentPath
	}
	return s.ParentPath + "/" + s.ShapeName
}

// PathSegments сегменты Path без пустых.
func (s *ShapeInfo) PathSegments() []string {
	return SplitPath(s.Path())
}

// IsDuplicate: фигура поглощена дублем.
func (s *ShapeInfo) IsDuplicate() bool {
	return s.DupCount == DuplicateRemoved
}

// HasCenter: известны хотя бы x и y.
func (s *ShapeInfo) HasCenter() bool {
	return len(s.Center) >= 2
}

// SetDepth пишет z в центр, дополняя его до трех компонент.
func (s *ShapeInfo) SetDepth(z float64) {
	for len(s.Center) < 3 {
		s.Center = append(s.Center, 0)
	}
	s.Center[2] = z
}

// SplitPath делит путь по "/", пустые сегменты отбрасываются.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
