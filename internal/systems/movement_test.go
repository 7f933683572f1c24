package systems

import (
	"fishgame-server/internal/domain"
	"testing"
)

func TestCalculateMove(t *testing.T) {
	world := createTestWorld(10, 10)
	rock := domain.NewRock()
	if err := world.Insert(rock, 5, 5); err != nil {
		t.Fatal(err)
	}
	actor := domain.NewPlayer()
	if err := world.Insert(actor, 4, 5); err != nil {
		t.Fatal(err)
	}

	// Test 1: Move into empty space
	res := CalculateMove(actor, domain.DirUp, world)
	if !res.HasMoved {
		t.Error("Expected move to succeed")
	}
	if res.NewPos != (domain.Position{X: 4, Y: 4}) {
		t.Errorf("Expected pos (4,4), got %s", res.NewPos)
	}
	if actor.Pos() != (domain.Position{X: 4, Y: 5}) {
		t.Error("CalculateMove must not change the world")
	}

	// Test 2: Move into rock
	res = CalculateMove(actor, domain.DirRight, world)
	if res.HasMoved {
		t.Error("Expected move to fail (rock)")
	}
	if res.BlockedBy != rock {
		t.Errorf("Expected BlockedBy=rock, got %v", res.BlockedBy)
	}

	// Test 3: Move OOB
	if err := actor.SetPosition(0, 0); err != nil {
		t.Fatal(err)
	}
	res = CalculateMove(actor, domain.DirLeft, world)
	if res.HasMoved || !res.IsWall {
		t.Error("Expected move to fail (OOB)")
	}
}
