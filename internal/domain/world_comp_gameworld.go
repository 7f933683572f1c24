package domain

import "slices"

func (w *World) GetIndex(x, y int) int {
	return y*w.Width + x
}

// Find возвращает сущности в клетке в порядке регистрации (новый срез).
// За пределами сетки - пусто.
func (w *World) Find(x, y int) []*Entity {
	if !w.InBounds(x, y) {
		return nil
	}
	return slices.Clone(w.spatialHash[w.GetIndex(x, y)])
}

func (w *World) hasBlocking(x, y int) bool {
	for _, e := range w.spatialHash[w.GetIndex(x, y)] {
		if e.IsBlocking() {
			return true
		}
	}
	return false
}

// addToCell вставляет сущность в индекс, сохраняя порядок регистрации
func (w *World) addToCell(e *Entity) {
	idx := w.GetIndex(e.pos.X, e.pos.Y)
	cell := w.spatialHash[idx]
	at, _ := slices.BinarySearchFunc(cell, e.seq, func(other *Entity, seq uint64) int {
		switch {
		case other.seq < seq:
			return -1
		case other.seq > seq:
			return 1
		}
		return 0
	})
	w.spatialHash[idx] = slices.Insert(cell, at, e)
}

// removeFromCell удаляет сущность из индекса без нарушения порядка
func (w *World) removeFromCell(e *Entity) {
	idx := w.GetIndex(e.pos.X, e.pos.Y)
	cell := w.spatialHash[idx]
	i := slices.Index(cell, e)
	if i < 0 {
		return
	}
	cell = slices.Delete(cell, i, i+1)
	if len(cell) == 0 {
		delete(w.spatialHash, idx)
		return
	}
	w.spatialHash[idx] = cell
}

// relocate перемещает сущность в индексе и запоминает прежнюю клетку
func (w *World) relocate(e *Entity, p Position) {
	w.removeFromCell(e)
	e.prev = e.pos
	e.pos = p
	w.addToCell(e)
}
