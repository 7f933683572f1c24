package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fishgame-server/internal/domain"
	"fishgame-server/internal/engine/handlers"
	"fishgame-server/pkg/api"
	"strings"
	"sync"
	"testing"
	"time"
)

type memReplays struct {
	mu    sync.Mutex
	saved map[string]*domain.ReplaySession
}

func (m *memReplays) SaveReplay(id string, rs *domain.ReplaySession) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[id] = rs
	return "mem://" + id, nil
}

type memScores struct {
	mu   sync.Mutex
	recs []domain.ScoreRecord
}

func (m *memScores) RecordResult(_ context.Context, rec domain.ScoreRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func testConfig() Config {
	cfg := NewConfig()
	cfg.Seed = 1234
	cfg.Width, cfg.Height = 12, 10
	cfg.NumRocks = 5
	return cfg
}

func newTestService(t *testing.T) (*GameService, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := NewService(ctx)
	t.Cleanup(func() {
		cancel()
		s.Wait()
	})
	return s, cancel
}

func submit(t *testing.T, s *GameService, id, action string, payload any) (*api.ServerResponse, error) {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.ProcessCommand(ctx, id, api.ClientCommand{Action: action, Payload: raw})
}

func TestService_SessionLifecycle(t *testing.T) {
	s, _ := newTestService(t)
	replays := &memReplays{saved: map[string]*domain.ReplaySession{}}
	scores := &memScores{}
	s.Replays, s.Scores = replays, scores

	inst, err := s.CreateSession(testConfig())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if ids := s.Sessions(); len(ids) != 1 || ids[0] != inst.ID {
		t.Fatalf("Sessions() = %v", ids)
	}

	state, err := submit(t, s, inst.ID, "INIT", nil)
	if err != nil {
		t.Fatalf("INIT: %v", err)
	}
	if state.Type != "INIT" || state.Grid.Width != 12 || state.MissingLeft != len(domain.Palette)-1 {
		t.Errorf("unexpected INIT state: %+v", state)
	}
	if len(state.Logs) == 0 {
		t.Error("INIT must carry the welcome log")
	}

	state, err = submit(t, s, inst.ID, "STEP", nil)
	if err != nil {
		t.Fatalf("STEP: %v", err)
	}
	if state.Type != "UPDATE" || state.StepsTaken != 1 {
		t.Errorf("STEP state: type=%s steps=%d", state.Type, state.StepsTaken)
	}

	if !s.CloseSession(inst.ID) {
		t.Fatal("CloseSession must find the session")
	}
	if _, ok := s.GetInstance(inst.ID); ok {
		t.Error("closed session must be forgotten")
	}
	if rs := replays.saved[inst.ID]; rs == nil || len(rs.Actions) != 1 || rs.FinalSteps != 1 {
		t.Errorf("replay not saved correctly: %+v", rs)
	}
	if len(scores.recs) != 1 || scores.recs[0].SessionID != inst.ID {
		t.Errorf("score not recorded: %+v", scores.recs)
	}
}

func TestService_Errors(t *testing.T) {
	s, _ := newTestService(t)
	inst, err := s.CreateSession(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      string
		action  string
		payload any
		want    error
	}{
		{"unknown session", "nope", "STEP", nil, ErrSessionNotFound},
		{"unknown action", inst.ID, "DANCE", nil, ErrUnknownAction},
		{"admin disabled", inst.ID, "SPAWN_ROCK", api.PositionPayload{X: 1, Y: 1}, ErrAdminDisabled},
		{"diagonal move", inst.ID, "MOVE", api.DirectionPayload{Dx: 1, Dy: 1}, handlers.ErrBadPayload},
		{"missing payload", inst.ID, "CLICK", nil, handlers.ErrBadPayload},
		{"click out of bounds", inst.ID, "CLICK", api.PositionPayload{X: 50, Y: 1}, domain.ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := submit(t, s, tt.id, tt.action, tt.payload)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestService_AdminSpawn(t *testing.T) {
	s, _ := newTestService(t)
	s.EnableAdmin = true
	inst, err := s.CreateSession(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	// Ищем свободную клетку по снимку
	state, err := submit(t, s, inst.ID, "INIT", nil)
	if err != nil {
		t.Fatal(err)
	}
	busy := map[[2]int]bool{}
	for _, e := range state.Entities {
		busy[[2]int{e.Pos.X, e.Pos.Y}] = true
	}
	var free [2]int
search:
	for y := 0; y < 10; y++ {
		for x := 0; x < 12; x++ {
			if !busy[[2]int{x, y}] {
				free = [2]int{x, y}
				break search
			}
		}
	}

	state, err = submit(t, s, inst.ID, "SPAWN_FOOD", api.PositionPayload{X: free[0], Y: free[1]})
	if err != nil {
		t.Fatalf("SPAWN_FOOD: %v", err)
	}
	foundFood := false
	for _, e := range state.Entities {
		if e.Kind == "FOOD" && e.Pos.X == free[0] && e.Pos.Y == free[1] {
			foundFood = true
		}
	}
	if !foundFood {
		t.Error("spawned food must be in the snapshot")
	}
}

func TestService_HubReceivesUpdates(t *testing.T) {
	s, _ := newTestService(t)
	inst, err := s.CreateSession(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	ch := s.Hub.Subscribe(inst.ID)
	if _, err := submit(t, s, inst.ID, "STEP", nil); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-ch:
		if msg.SessionID != inst.ID || msg.StepsTaken != 1 {
			t.Errorf("unexpected update %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber got no update")
	}
}

func TestService_ShutdownStopsInstances(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewService(ctx)
	inst, err := s.CreateSession(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	cancel()
	s.Wait()

	select {
	case <-inst.Done():
	default:
		t.Fatal("instance must stop with the service context")
	}
	if _, err := s.Submit(context.Background(), inst.ID, domain.InternalCommand{Action: domain.ActionStep}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("err = %v, want ErrSessionClosed", err)
	}
}

func TestService_SessionLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewServiceWithLimit(ctx, 1)
	t.Cleanup(func() {
		cancel()
		s.Wait()
	})

	first, err := s.CreateSession(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateSession(testConfig()); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("second session err = %v, want ErrTooManySessions", err)
	}

	// Невалидный конфиг не должен занимать слот
	bad := testConfig()
	bad.Width = 0
	s.CloseSession(first.ID)

	// Слот освобождается сразу после выхода из цикла партии
	deadline := time.Now().Add(2 * time.Second)
	for {
		_, err := s.CreateSession(bad)
		if errors.Is(err, ErrInvalidConfig) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("slot was not released: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := s.CreateSession(testConfig()); err != nil {
		t.Fatalf("slot leaked after a failed create: %v", err)
	}
}

// waitForSlot пытается создать партию, пока занятый слот не освободится
func waitForSlot(t *testing.T, s *GameService) *Instance {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		inst, err := s.CreateSession(testConfig())
		if err == nil {
			return inst
		}
		if !errors.Is(err, ErrTooManySessions) || time.Now().After(deadline) {
			t.Fatalf("slot was not released: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestService_IdleSessionReleased(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewServiceWithLimit(ctx, 1)
	s.IdleTimeout = 50 * time.Millisecond
	t.Cleanup(func() {
		cancel()
		s.Wait()
	})

	first, err := s.CreateSession(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := submit(t, s, first.ID, "INIT", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateSession(testConfig()); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("second session err = %v, want ErrTooManySessions", err)
	}

	// Брошенная партия уходит сама, слот достается следующему
	second := waitForSlot(t, s)

	select {
	case <-first.Done():
	default:
		t.Fatal("idle instance must be stopped")
	}
	if _, err := submit(t, s, first.ID, "STEP", nil); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
	if ids := s.Sessions(); len(ids) != 1 || ids[0] != second.ID {
		t.Errorf("sessions = %v, want only %s", ids, second.ID)
	}
}

func TestService_CommandsKeepSessionAlive(t *testing.T) {
	s, _ := newTestService(t)
	s.IdleTimeout = 150 * time.Millisecond

	inst, err := s.CreateSession(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	for range 6 {
		time.Sleep(50 * time.Millisecond)
		if _, err := submit(t, s, inst.ID, "STEP", nil); err != nil {
			t.Fatalf("active session was closed: %v", err)
		}
	}
}

func TestService_FinishedSessionReleased(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewServiceWithLimit(ctx, 1)
	s.FinishedGrace = 300 * time.Millisecond
	replays := &memReplays{saved: map[string]*domain.ReplaySession{}}
	s.Replays = replays
	t.Cleanup(func() {
		cancel()
		s.Wait()
	})

	// Партия, в которой осталось сделать один ход до конца
	game, err := NewFishGame(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range game.Missing() {
		game.dropMissing(f)
	}
	if !s.slots.TryAcquire(1) {
		t.Fatal("no free slot")
	}
	inst := s.launch(game)

	state, err := submit(t, s, inst.ID, "STEP", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !state.GameOver {
		t.Fatal("game must be over")
	}

	// Пока идет пауза, итог еще можно посмотреть
	if _, err := submit(t, s, inst.ID, "SNAPSHOT", nil); err != nil {
		t.Errorf("snapshot during grace: %v", err)
	}

	waitForSlot(t, s)

	replays.mu.Lock()
	_, saved := replays.saved[inst.ID]
	replays.mu.Unlock()
	if !saved {
		t.Error("finished session must save its replay")
	}
	if _, ok := s.GetInstance(inst.ID); ok {
		t.Error("finished session must leave the service")
	}
}

func TestService_SnapshotIsReadOnly(t *testing.T) {
	s, _ := newTestService(t)
	inst, err := s.CreateSession(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := submit(t, s, inst.ID, "INIT", nil); err != nil {
		t.Fatal(err)
	}

	ch := s.Hub.Subscribe(inst.ID)
	for range 3 {
		state, err := submit(t, s, inst.ID, "SNAPSHOT", nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(state.Logs) != 0 {
			t.Errorf("snapshot must not carry logs, got %+v", state.Logs)
		}
		if len(state.Entities) == 0 {
			t.Error("snapshot must carry the world")
		}
	}

	select {
	case msg := <-ch:
		t.Fatalf("snapshot was broadcast: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}

	state, err := submit(t, s, inst.ID, "STEP", nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range state.Logs {
		if strings.HasPrefix(l.Text, "Welcome") {
			t.Errorf("snapshots left log entries behind: %q", l.Text)
		}
	}
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("step must still be broadcast")
	}
}

func TestService_SecondMoveNeedsStep(t *testing.T) {
	s, _ := newTestService(t)
	inst, err := s.CreateSession(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	// Первый удачный MOVE занимает ход, дальше любые MOVE отклоняются до STEP
	for _, d := range domain.Directions {
		dx, dy := d.Delta()
		_, err := submit(t, s, inst.ID, "MOVE", api.DirectionPayload{Dx: dx, Dy: dy})
		if err != nil && !errors.Is(err, domain.ErrTurnPending) {
			t.Fatalf("MOVE %v: %v", d, err)
		}
	}
	dx, dy := domain.Directions[0].Delta()
	if _, err := submit(t, s, inst.ID, "MOVE", api.DirectionPayload{Dx: dx, Dy: dy}); !errors.Is(err, domain.ErrTurnPending) {
		t.Fatalf("extra MOVE err = %v, want ErrTurnPending", err)
	}

	if _, err := submit(t, s, inst.ID, "STEP", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := submit(t, s, inst.ID, "MOVE", api.DirectionPayload{Dx: dx, Dy: dy}); errors.Is(err, domain.ErrTurnPending) {
		t.Error("MOVE after STEP must be accepted")
	}
}
