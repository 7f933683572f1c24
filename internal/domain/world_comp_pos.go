package domain

import "fmt"

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Shift возвращает новую позицию со смещением, не меняя текущую
func (p Position) Shift(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Step возвращает соседнюю клетку в направлении d
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return p.Shift(dx, dy)
}

// Manhattan возвращает манхэттенское расстояние
func (p Position) Manhattan(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y)
}

// IsAdjacent возвращает true, если клетки соседние по стороне (без диагоналей)
func (p Position) IsAdjacent(other Position) bool {
	return p.Manhattan(other) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction - одно из четырех направлений движения. Y растет вниз.
type Direction uint8

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Directions - фиксированный порядок для равновероятного выбора
var Directions = [...]Direction{DirUp, DirDown, DirLeft, DirRight}

func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// DirectionFromDelta обратное преобразование. Диагонали и ноль дают DirNone.
func DirectionFromDelta(dx, dy int) Direction {
	switch {
	case dx == 0 && dy == -1:
		return DirUp
	case dx == 0 && dy == 1:
		return DirDown
	case dx == -1 && dy == 0:
		return DirLeft
	case dx == 1 && dy == 0:
		return DirRight
	}
	return DirNone
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "UP"
	case DirDown:
		return "DOWN"
	case DirLeft:
		return "LEFT"
	case DirRight:
		return "RIGHT"
	}
	return "NONE"
}
