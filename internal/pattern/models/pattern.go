package models

// PatternData результат загрузки: фигуры после слияния дублей, видимые
// группы и исходные настройки.
type PatternData struct {
	Shapes   []*ShapeInfo     `json:"shapes"`
	Groups   []*GroupInfo     `json:"groups"`
	Settings *PatternSettings `json:"settings,omitempty"`
}

// GroupsByName индекс групп по имени, первая группа побеждает.
func (p *PatternData) GroupsByName() map[string]*GroupInfo {
	byName := make(map[string]*GroupInfo, len(p.Groups))
	for _, g := range p.Groups {
		if _, ok := byName[g.GroupName]; !ok {
			byName[g.GroupName] = g
		}
	}
	return byName
}

func (p *PatternData) Group(name string) *GroupInfo {
	for _, g := range p.Groups {
		if g.GroupName == name {
			return g
		}
	}
	return nil
}

func (p *PatternData) Shape(index int) *ShapeInfo {
	if index < 0 || index >= len(p.Shapes) {
		return nil
	}
	return p.Shapes[index]
}

// RemapGroups переписывает индексы всех групп.
func (p *PatternData) RemapGroups(mapping func(int) int) {
	for _, g := range p.Groups {
		g.RemapIndices(mapping)
	}
}
