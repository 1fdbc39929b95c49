// Package groups строит группы фигур по спекам: реестр групп, генераторы,
// неявные экстракторы и раскладка по слоям глубины.
package groups

import (
	"fmt"
	"log"
	"slices"

	"pattern-mapper/internal/pattern/match"
	"pattern-mapper/internal/pattern/models"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Минимальная похожесть имени для подсказки
const suggestThreshold = 0.6

// ============================================================
// Context
// ============================================================

// Context хранит фигуры и уже построенные группы. Все этапы пишут в один
// Context, поэтому поздние генераторы видят группы ранних.
// Не потокобезопасен.
type Context struct {
	shapes []*models.ShapeInfo
	groups []*models.GroupInfo
	byName map[string]*models.GroupInfo
	logger *log.Logger
}

// NewContext создает реестр для фигур. nil logger = log.Default().
func NewContext(shapes []*models.ShapeInfo, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.Default()
	}
	return &Context{
		shapes: shapes,
		byName: make(map[string]*models.GroupInfo),
		logger: logger,
	}
}

func (c *Context) Logger() *log.Logger { return c.logger }

func (c *Context) Logf(format string, v ...any) {
	c.logger.Printf(format, v...)
}

func (c *Context) Shapes() []*models.ShapeInfo { return c.shapes }

func (c *Context) Shape(index int) *models.ShapeInfo {
	if index < 0 || index >= len(c.shapes) {
		return nil
	}
	return c.shapes[index]
}

// AddGroup регистрирует g. Группа с уже занятым именем отбрасывается,
// возвращается false.
func (c *Context) AddGroup(g *models.GroupInfo) bool {
	if g == nil || g.GroupName == "" {
		c.Logf("[GROUPS] ignoring unnamed group")
		return false
	}
	if _, exists := c.byName[g.GroupName]; exists {
		c.Logf("[GROUPS] ignoring duplicate group name %q", g.GroupName)
		return false
	}
	c.groups = append(c.groups, g)
	c.byName[g.GroupName] = g
	return true
}

// ReplaceGroup заменяет группу с именем g.GroupName или добавляет g.
func (c *Context) ReplaceGroup(g *models.GroupInfo) {
	old, ok := c.byName[g.GroupName]
	if !ok {
		c.AddGroup(g)
		return
	}
	c.groups[slices.Index(c.groups, old)] = g
	c.byName[g.GroupName] = g
}

func (c *Context) Group(name string) *models.GroupInfo {
	return c.byName[name]
}

func (c *Context) HasGroup(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Groups возвращает все группы, включая временные, в порядке регистрации.
func (c *Context) Groups() []*models.GroupInfo {
	return c.groups
}

// VisibleGroups возвращает группы без временных.
func (c *Context) VisibleGroups() []*models.GroupInfo {
	out := make([]*models.GroupInfo, 0, len(c.groups))
	for _, g := range c.groups {
		if !g.IsTemporary() {
			out = append(out, g)
		}
	}
	return out
}

// GroupsWithShape возвращает группы, в которые входит фигура shapeIndex.
func (c *Context) GroupsWithShape(shapeIndex int) []*models.GroupInfo {
	var out []*models.GroupInfo
	for _, g := range c.groups {
		if g.ContainsShape(shapeIndex) {
			out = append(out, g)
		}
	}
	return out
}

// GroupNamesByPatterns раскрывает имена и glob-шаблоны по реестру.
// Точное имя важнее шаблона. Порядок регистрации, без повторов.
// Простое имя без группы остается в списке, чтобы вызывающий мог о нем
// сообщить.
func (c *Context) GroupNamesByPatterns(patterns []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if c.HasGroup(pattern) || !match.IsGlob(pattern) {
			add(pattern)
			continue
		}
		m, err := match.CompileGlob(pattern)
		if err != nil {
			c.Logf("[GROUPS] bad group pattern %q: %v", pattern, err)
			continue
		}
		for _, g := range c.groups {
			if m.Match(g.GroupName) {
				add(g.GroupName)
			}
		}
	}
	return out
}

// Suggest подбирает самое похожее имя группы для ненайденного имени.
// Пустая строка, если похожих нет.
func (c *Context) Suggest(name string) string {
	if name == "" || c.HasGroup(name) {
		return ""
	}
	lev := metrics.NewLevenshtein()
	best, bestScore := "", 0.0
	for _, g := range c.groups {
		score := strutil.Similarity(name, g.GroupName, lev)
		if score < suggestThreshold || score >= 1 || score <= bestScore {
			continue
		}
		best, bestScore = g.GroupName, score
	}
	return best
}

// hint форматирует подсказку для лога.
func (c *Context) hint(names ...string) string {
	for _, name := range names {
		if s := c.Suggest(name); s != "" {
			return fmt.Sprintf(" (%q: did you mean %q?)", name, s)
		}
	}
	return ""
}
