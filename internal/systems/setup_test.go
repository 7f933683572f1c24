package systems

import (
	"fishgame-server/pkg/logger"
	"math/rand"
	"os"
	"testing"

	"fishgame-server/internal/domain"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	// Exit with the result of the tests
	os.Exit(m.Run())
}

// scriptRand отдает заранее заданные Float64 по очереди, Intn - всегда intVal
type scriptRand struct {
	floats []float64
	intVal int
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptRand) Intn(n int) int { return r.intVal % n }

func createTestWorld(w, h int) *domain.World {
	return domain.NewWorld(w, h, rand.New(rand.NewSource(1)))
}
