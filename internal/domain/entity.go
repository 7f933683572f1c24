package domain

import "fmt"

// Entity - любой объект, который можно поставить на сетку.
// Набор вариантов закрыт (Kind), поведение определяется видом и парой флагов.
// Позиция меняется только через World, чтобы SpatialHash оставался согласованным.
type Entity struct {
	ID   EntityID
	Kind EntityKind

	// Rock
	Falling bool

	// Fish
	ColorIndex int
	FastScared bool
	IsPlayer   bool

	// Snail: счетчик шагов мира до следующей попытки движения
	Cooldown int

	pos  Position
	prev Position // клетка до последнего перемещения

	world *World // слабая ссылка, только для запросов
	seq   uint64 // порядок регистрации
}

// --- КОНСТРУКТОРЫ ---

func NewRock() *Entity {
	return &Entity{Kind: KindRock}
}

func NewFallingRock() *Entity {
	return &Entity{Kind: KindRock, Falling: true}
}

func NewFishHome() *Entity {
	return &Entity{Kind: KindFishHome}
}

func NewFishFood() *Entity {
	return &Entity{Kind: KindFishFood}
}

func NewSnail() *Entity {
	return &Entity{Kind: KindSnail}
}

func NewFish(colorIndex int, fastScared bool) *Entity {
	return &Entity{Kind: KindFish, ColorIndex: colorIndex, FastScared: fastScared}
}

// NewPlayer создает рыбу игрока. Игрок никогда не бывает пугливым.
func NewPlayer() *Entity {
	return &Entity{Kind: KindFish, ColorIndex: PlayerColor, IsPlayer: true}
}

// --- ДОСТУП ---

func (e *Entity) Pos() Position  { return e.pos }
func (e *Entity) Prev() Position { return e.prev }
func (e *Entity) X() int         { return e.pos.X }
func (e *Entity) Y() int         { return e.pos.Y }

// World возвращает мир, в котором зарегистрирована сущность (nil после удаления)
func (e *Entity) World() *World { return e.world }

func (e *Entity) Is(kind EntityKind) bool { return e.Kind == kind }

// IsBlocking - загораживает ли сущность клетку для плавания
func (e *Entity) IsBlocking() bool { return e.Kind == KindRock }

// IsSelfDriven - двигается ли сущность сама в World.StepAll
func (e *Entity) IsSelfDriven() bool {
	return e.Kind == KindSnail || (e.Kind == KindRock && e.Falling)
}

// swims - подчиняется ли сущность правилу CanSwim
func (e *Entity) swims() bool {
	return e.Kind == KindFish || e.Kind == KindSnail
}

// --- ДВИЖЕНИЕ ---

// SetPosition ставит сущность в клетку без проверок проходимости.
// Проверяются только границы сетки.
func (e *Entity) SetPosition(x, y int) error {
	p := Position{X: x, Y: y}
	if e.world == nil {
		e.pos, e.prev = p, p
		return nil
	}
	if !e.world.InBounds(x, y) {
		return fmt.Errorf("set position of %s to %s: %w", e.ID, p, ErrOutOfBounds)
	}
	e.world.relocate(e, p)
	return nil
}

// Move сдвигает сущность на одну клетку, если это разрешено правилами мира
func (e *Entity) Move(d Direction) bool {
	if e.world == nil || d == DirNone {
		return false
	}
	target := e.pos.Step(d)
	if !e.world.canEnter(e, target) {
		return false
	}
	e.world.relocate(e, target)
	return true
}

func (e *Entity) MoveUp() bool    { return e.Move(DirUp) }
func (e *Entity) MoveDown() bool  { return e.Move(DirDown) }
func (e *Entity) MoveLeft() bool  { return e.Move(DirLeft) }
func (e *Entity) MoveRight() bool { return e.Move(DirRight) }

// MoveRandomly выбирает одно из четырех направлений равновероятно.
// Если клетка недоступна - остается на месте.
func (e *Entity) MoveRandomly() bool {
	if e.world == nil {
		return false
	}
	d := Directions[e.world.rng.Intn(len(Directions))]
	return e.Move(d)
}

// FindSameCell возвращает всех в клетке сущности, включая ее саму
func (e *Entity) FindSameCell() []*Entity {
	if e.world == nil {
		return nil
	}
	return e.world.Find(e.pos.X, e.pos.Y)
}

// step - ход самоходной сущности в World.StepAll
func (e *Entity) step() {
	switch e.Kind {
	case KindRock:
		if e.Falling {
			e.MoveDown()
		}
	case KindSnail:
		e.Cooldown++
		if e.Cooldown >= e.world.snailCadence() {
			e.Cooldown = 0
			e.MoveRandomly()
		}
	}
}
