package engine

import (
	"fishgame-server/internal/domain"
	"fishgame-server/pkg/logger"
	"os"
	"testing"

	"github.com/zyedidia/generic/mapset"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	// Exit with the result of the tests
	os.Exit(m.Run())
}

// scriptRand отдает заранее заданные числа по очереди.
// Когда очередь пуста, Float64 = 0.99 (ничего не случается), Intn = 0.
type scriptRand struct {
	floats []float64
	ints   []int
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

// newTestGame собирает партию вручную: дом и игрок в (hx, hy), без камней, улитки и рыб
func newTestGame(t *testing.T, w, h int, rules RuleSet, rnd *scriptRand, hx, hy int) *FishGame {
	t.Helper()
	g := &FishGame{
		World:      domain.NewWorld(w, h, rnd),
		Rules:      rules,
		Config:     Config{Width: w, Height: h, RulesName: rules.Name, CheckInvariants: true},
		missingIdx: mapset.New[domain.EntityID](),
		foundIdx:   mapset.New[domain.EntityID](),
		rnd:        rnd,
	}
	g.Home = domain.NewFishHome()
	mustInsert(t, g.World, g.Home, hx, hy)
	g.Player = domain.NewPlayer()
	mustInsert(t, g.World, g.Player, hx, hy)
	return g
}

func (g *FishGame) addMissingAt(t *testing.T, color int, fast bool, x, y int) *domain.Entity {
	t.Helper()
	f := domain.NewFish(color, fast)
	mustInsert(t, g.World, f, x, y)
	g.missing = append(g.missing, f)
	g.missingIdx.Put(f.ID)
	return f
}

func (g *FishGame) addFoundAt(t *testing.T, color int, fast bool, x, y int) *domain.Entity {
	t.Helper()
	f := domain.NewFish(color, fast)
	mustInsert(t, g.World, f, x, y)
	g.found = append(g.found, f)
	g.foundIdx.Put(f.ID)
	return f
}

func mustInsert(t *testing.T, w *domain.World, e *domain.Entity, x, y int) {
	t.Helper()
	if err := w.Insert(e, x, y); err != nil {
		t.Fatalf("Insert(%s at %d,%d): %v", e.Kind, x, y, err)
	}
}

// awayFromHome уводит игрока из дома, чтобы ход не запускал доставку
func awayFromHome(t *testing.T, g *FishGame, x, y int) {
	t.Helper()
	if err := g.Player.SetPosition(x, y); err != nil {
		t.Fatal(err)
	}
	g.World.ObjectsFollow(g.Player, nil)
}
