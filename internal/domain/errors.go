package domain

import "errors"

var (
	// ErrOutOfBounds - координата за пределами сетки
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrPlacementExhausted - случайное размещение не нашло свободной клетки.
	// Означает неверное соотношение размера сетки и количества объектов.
	ErrPlacementExhausted = errors.New("placement exhausted")

	// ErrInvariantViolation - внутренняя логическая ошибка (двойное удаление,
	// рыба одновременно в missing и found и т.п.)
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrTurnPending - игрок уже сдвинулся, сначала нужен STEP
	ErrTurnPending = errors.New("player already moved this turn")
)
