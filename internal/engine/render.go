package engine

import (
	"fishgame-server/internal/core/types"
	"fishgame-server/internal/domain"
)

const (
	colorRock        = 0x8A8A8A
	colorFallingRock = 0xBDBDBD
	colorHome        = 0xFFD54F
	colorFood        = 0x9CCC65
	colorSnail       = 0xA1887F
	colorUnknown     = 0xFFFFFF
)

// GlyphFor - как сущность выглядит на сетке. Общая для веб-снимка и терминала.
func GlyphFor(e *domain.Entity) types.Glyph {
	switch e.Kind {
	case domain.KindRock:
		if e.Falling {
			return types.MakeGlyph(colorFallingRock, 'v')
		}
		return types.MakeGlyph(colorRock, '#')
	case domain.KindFishHome:
		return types.MakeGlyph(colorHome, 'H')
	case domain.KindFishFood:
		return types.MakeGlyph(colorFood, '*')
	case domain.KindSnail:
		return types.MakeGlyph(colorSnail, 's')
	case domain.KindFish:
		color := uint32(colorUnknown)
		if e.ColorIndex >= 0 && e.ColorIndex < len(domain.Palette) {
			color = domain.Palette[e.ColorIndex]
		}
		switch {
		case e.IsPlayer:
			return types.MakeGlyph(color, '@')
		case e.FastScared:
			return types.MakeGlyph(color, 'F')
		default:
			return types.MakeGlyph(color, 'f')
		}
	}
	return types.MakeGlyph(colorUnknown, '?')
}

// renderPriority - кто рисуется поверх в клетке с несколькими объектами
func renderPriority(e *domain.Entity) int {
	switch {
	case e.IsPlayer:
		return 5
	case e.Kind == domain.KindFish:
		return 4
	case e.Kind == domain.KindSnail:
		return 3
	case e.Kind == domain.KindRock:
		return 2
	case e.Kind == domain.KindFishFood:
		return 1
	}
	return 0
}

// TopAt возвращает объект, который виден в клетке (nil - пусто)
func TopAt(w *domain.World, x, y int) *domain.Entity {
	var top *domain.Entity
	for _, e := range w.Find(x, y) {
		if top == nil || renderPriority(e) > renderPriority(top) {
			top = e
		}
	}
	return top
}
