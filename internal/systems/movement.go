package systems

import (
	"fishgame-server/internal/domain"
)

// MovementResult - результат вычисления движения
type MovementResult struct {
	NewPos    domain.Position
	HasMoved  bool
	BlockedBy *domain.Entity // Камень, в который уперлись
	IsWall    bool           // Край сетки
}

// CalculateMove вычисляет ход рыбы на одну клетку. Не меняет состояние мира!
func CalculateMove(e *domain.Entity, dir domain.Direction, w *domain.World) MovementResult {
	target := e.Pos().Step(dir)
	res := MovementResult{NewPos: target}

	if dir == domain.DirNone {
		res.NewPos = e.Pos()
		return res
	}

	// 1. Проверка границ
	if !w.InBounds(target.X, target.Y) {
		res.IsWall = true
		return res
	}

	// 2. Проверка камней
	for _, other := range w.Find(target.X, target.Y) {
		if other != e && other.IsBlocking() {
			res.BlockedBy = other
			return res
		}
	}

	res.HasMoved = true
	return res
}
