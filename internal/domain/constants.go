package domain

// Параметры "живости" рыб
const (
	// FastScaredChance - вероятность, что новая рыба окажется пугливой
	FastScaredChance = 0.5

	// Пугливые рыбы двигаются в 80% ходов, спокойные - в 30%
	FastScaredMoveChance = 0.8
	CalmMoveChance       = 0.3
)

// Параметры улитки и размещения
const (
	// DefaultSnailCadence - улитка пытается сдвинуться раз в N шагов мира
	DefaultSnailCadence = 3

	// minPlacementAttempts - нижняя граница попыток случайного размещения
	minPlacementAttempts = 1000
)

// Palette - фиксированная палитра рыб. Индекс 0 - цвет игрока.
var Palette = []uint32{
	0xFF8C00, // игрок
	0xE53935,
	0xF48FB1,
	0xFFEB3B,
	0x66BB6A,
	0x26C6DA,
	0x1E88E5,
	0xAB47BC,
	0xFFFFFF,
	0x8D6E63,
}

// PlayerColor - индекс цвета игрока в Palette
const PlayerColor = 0
