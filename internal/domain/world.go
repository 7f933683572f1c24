package domain

import (
	"fmt"
	"slices"
)

// Random - источник случайности, который внедряется снаружи.
// *rand.Rand подходит как есть, в тестах подставляется сценарный источник.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// World - реестр всех живых сущностей и пространственный индекс.
// World единолично владеет сущностями: добавление и удаление только через него.
type World struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Tick   int `json:"tick"` // количество вызовов StepAll

	// MaxPlacementAttempts - предел попыток InsertRandomly (0 = по умолчанию)
	MaxPlacementAttempts int `json:"-"`
	// SnailCadence - раз в сколько шагов мира двигается улитка (0 = по умолчанию)
	SnailCadence int `json:"-"`

	// entities в порядке регистрации
	entities []*Entity
	registry map[EntityID]*Entity

	// SpatialHash: индекс клетки -> сущности в порядке регистрации.
	// Ключ: Y * Width + X
	spatialHash map[int][]*Entity

	rng       Random
	nextIndex uint64
}

// NewWorld создает пустой мир. Размеры должны быть положительными.
func NewWorld(width, height int, rng Random) *World {
	return &World{
		Width:       width,
		Height:      height,
		registry:    make(map[EntityID]*Entity),
		spatialHash: make(map[int][]*Entity),
		rng:         rng,
	}
}

func (w *World) Rand() Random { return w.rng }

func (w *World) InBounds(x, y int) bool {
	return x >= 0 && x < w.Width && y >= 0 && y < w.Height
}

// Insert ставит сущность в явную клетку и регистрирует ее
func (w *World) Insert(e *Entity, x, y int) error {
	if !w.InBounds(x, y) {
		return fmt.Errorf("insert %s at (%d,%d): %w", e.Kind, x, y, ErrOutOfBounds)
	}
	if e.world != nil {
		return fmt.Errorf("insert %s: already registered as %s: %w", e.Kind, e.ID, ErrInvariantViolation)
	}

	e.seq = w.nextIndex
	e.ID = PackEntityID(e.Kind, w.nextIndex)
	w.nextIndex++

	e.world = w
	e.pos = Position{X: x, Y: y}
	e.prev = e.pos

	w.entities = append(w.entities, e)
	w.registry[e.ID] = e
	w.addToCell(e)
	return nil
}

// InsertRandomly выбирает случайную клетку без блокирующих объектов.
// Камни требуют полностью пустую клетку, чтобы не накрыть дом или рыбу.
func (w *World) InsertRandomly(factory func() *Entity) (*Entity, error) {
	e := factory()
	attempts := w.placementAttempts()
	for i := 0; i < attempts; i++ {
		x := w.rng.Intn(w.Width)
		y := w.rng.Intn(w.Height)

		if e.IsBlocking() {
			if len(w.spatialHash[w.GetIndex(x, y)]) > 0 {
				continue
			}
		} else if w.hasBlocking(x, y) {
			continue
		}

		if err := w.Insert(e, x, y); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, fmt.Errorf("place %s on %dx%d after %d attempts: %w", e.Kind, w.Width, w.Height, attempts, ErrPlacementExhausted)
}

func (w *World) InsertFishHome() (*Entity, error) {
	return w.InsertRandomly(NewFishHome)
}

func (w *World) InsertRockRandomly() (*Entity, error) {
	return w.InsertRandomly(NewRock)
}

func (w *World) InsertFallingRockRandomly() (*Entity, error) {
	return w.InsertRandomly(NewFallingRock)
}

func (w *World) InsertSnailRandomly() (*Entity, error) {
	return w.InsertRandomly(NewSnail)
}

// InsertFishRandomly создает рыбу цвета colorIndex. Пугливость выпадает один раз при создании.
func (w *World) InsertFishRandomly(colorIndex int) (*Entity, error) {
	return w.InsertRandomly(func() *Entity {
		return NewFish(colorIndex, w.rng.Float64() < FastScaredChance)
	})
}

func (w *World) InsertFoodRandomly() (*Entity, error) {
	return w.InsertRandomly(NewFishFood)
}

// Remove снимает сущность с регистрации. Повторное удаление - логическая ошибка.
func (w *World) Remove(e *Entity) error {
	if !w.Contains(e) {
		return fmt.Errorf("remove %s %s: not registered: %w", e.Kind, e.ID, ErrInvariantViolation)
	}

	w.removeFromCell(e)
	delete(w.registry, e.ID)
	if idx := slices.Index(w.entities, e); idx >= 0 {
		w.entities = slices.Delete(w.entities, idx, idx+1)
	}
	e.world = nil
	return nil
}

// Contains - членство по идентичности, а не по значению
func (w *World) Contains(e *Entity) bool {
	return e != nil && e.world == w && w.registry[e.ID] == e
}

// GetEntity ищет сущность по ID
func (w *World) GetEntity(id EntityID) *Entity {
	return w.registry[id]
}

// Entities возвращает копию списка сущностей в порядке регистрации
func (w *World) Entities() []*Entity {
	return slices.Clone(w.entities)
}

func (w *World) Len() int {
	return len(w.entities)
}

// CanSwim - клетка в пределах сетки и в ней нет камня.
// Рыба может делить клетку с домом, едой, другими рыбами и улиткой.
func (w *World) CanSwim(e *Entity, x, y int) bool {
	if !w.InBounds(x, y) {
		return false
	}
	for _, other := range w.spatialHash[w.GetIndex(x, y)] {
		if other != e && other.Kind == KindRock {
			return false
		}
	}
	return true
}

// StepAll дает каждой самоходной сущности ровно один ход, в порядке регистрации.
// Статичные объекты пропускаются.
func (w *World) StepAll() {
	w.Tick++
	for _, e := range slices.Clone(w.entities) {
		if !w.Contains(e) || !e.IsSelfDriven() {
			continue
		}
		e.step()
	}
}

// ObjectsFollow выстраивает followers "паровозиком" за лидером:
// первый встает в предыдущую клетку лидера, каждый следующий - в старую клетку
// впереди идущего. Старые позиции снимаются заранее, до любых перемещений.
// После вызова лидер считается "осевшим", повторный вызов без нового хода лидера ничего не делает.
func (w *World) ObjectsFollow(leader *Entity, followers []*Entity) {
	if leader.prev == leader.pos {
		return
	}

	old := make([]Position, len(followers))
	for i, f := range followers {
		old[i] = f.pos
	}

	target := leader.prev
	for i, f := range followers {
		if w.Contains(f) {
			w.relocate(f, target)
		}
		target = old[i]
	}
	leader.prev = leader.pos
}

func (w *World) placementAttempts() int {
	if w.MaxPlacementAttempts > 0 {
		return w.MaxPlacementAttempts
	}
	return max(minPlacementAttempts, 8*w.Width*w.Height)
}

func (w *World) snailCadence() int {
	if w.SnailCadence > 0 {
		return w.SnailCadence
	}
	return DefaultSnailCadence
}

// canEnter - правила входа в клетку для конкретного вида сущности
func (w *World) canEnter(e *Entity, p Position) bool {
	if e.swims() {
		return w.CanSwim(e, p.X, p.Y)
	}
	if !w.InBounds(p.X, p.Y) {
		return false
	}
	if e.Kind == KindRock && e.Falling {
		return !w.hasBlocking(p.X, p.Y)
	}
	return true
}
