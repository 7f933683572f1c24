package engine

import (
	"context"
	"errors"
	"fishgame-server/internal/domain"
	"fishgame-server/internal/engine/handlers"
	"fishgame-server/internal/engine/handlers/actions"
	"fishgame-server/internal/engine/handlers/admin"
	"fishgame-server/internal/network"
	"fishgame-server/pkg/api"
	"fishgame-server/pkg/logger"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultMaxSessions - сколько партий может жить одновременно
	DefaultMaxSessions = 256

	// DefaultIdleTimeout - партия без команд столько времени закрывается
	DefaultIdleTimeout = 15 * time.Minute

	// DefaultFinishedGrace - сколько законченная партия еще доступна для просмотра
	DefaultFinishedGrace = 30 * time.Second
)

var ErrTooManySessions = errors.New("too many sessions")

// ReplaySaver сохраняет запись партии и возвращает путь к файлу
type ReplaySaver interface {
	SaveReplay(sessionID string, rs *domain.ReplaySession) (string, error)
}

// ScoreRecorder записывает итог партии в таблицу рекордов
type ScoreRecorder interface {
	RecordResult(ctx context.Context, rec domain.ScoreRecord) error
}

// GameService держит все запущенные партии
type GameService struct {
	mu        sync.RWMutex
	instances map[string]*Instance
	cancels   map[string]context.CancelFunc

	Hub *network.Broadcaster

	Replays ReplaySaver   // может быть nil
	Scores  ScoreRecorder // может быть nil

	// EnableAdmin разрешает SPAWN_* команды
	EnableAdmin bool

	// IdleTimeout и FinishedGrace читаются при запуске партии
	IdleTimeout   time.Duration
	FinishedGrace time.Duration

	actionHandlers map[domain.ActionType]handlers.HandlerFunc

	// slots ограничивает число живых партий, слот освобождается по выходу из Run
	slots *semaphore.Weighted

	ctx context.Context
	wg  sync.WaitGroup
}

// NewService создает сервис. Все партии живут не дольше ctx.
func NewService(ctx context.Context) *GameService {
	return NewServiceWithLimit(ctx, DefaultMaxSessions)
}

// NewServiceWithLimit - то же, но с явным лимитом одновременных партий
func NewServiceWithLimit(ctx context.Context, maxSessions int64) *GameService {
	s := &GameService{
		slots:          semaphore.NewWeighted(maxSessions),
		instances:      make(map[string]*Instance),
		cancels:        make(map[string]context.CancelFunc),
		Hub:            network.NewBroadcaster(),
		IdleTimeout:    DefaultIdleTimeout,
		FinishedGrace:  DefaultFinishedGrace,
		actionHandlers: make(map[domain.ActionType]handlers.HandlerFunc),
		ctx:            ctx,
	}
	s.registerHandlers()
	return s
}

func (s *GameService) registerHandlers() {
	s.actionHandlers[domain.ActionInit] = handlers.WithEmptyPayload(actions.HandleInit)
	s.actionHandlers[domain.ActionMove] = handlers.WithPayload(actions.HandleMove)
	s.actionHandlers[domain.ActionStep] = handlers.WithEmptyPayload(actions.HandleStep)
	s.actionHandlers[domain.ActionClick] = handlers.WithPayload(actions.HandleClick)
	s.actionHandlers[domain.ActionSpawnFood] = handlers.WithPayload(admin.HandleSpawnFood)
	s.actionHandlers[domain.ActionSpawnRock] = handlers.WithPayload(admin.HandleSpawnRock)
	s.actionHandlers[domain.ActionSnapshot] = handlers.WithEmptyPayload(actions.HandleSnapshot)
}

// CreateSession создает партию и запускает ее цикл
func (s *GameService) CreateSession(cfg Config) (*Instance, error) {
	if !s.slots.TryAcquire(1) {
		return nil, ErrTooManySessions
	}

	game, err := NewFishGame(cfg)
	if err != nil {
		s.slots.Release(1)
		return nil, err
	}
	return s.launch(game), nil
}

// launch регистрирует партию и запускает ее цикл. Слот уже занят вызывающим.
func (s *GameService) launch(game *FishGame) *Instance {
	id := uuid.NewString()
	inst := NewInstance(id, game, s)
	ctx, cancel := context.WithCancel(s.ctx)

	s.mu.Lock()
	s.instances[id] = inst
	s.cancels[id] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.slots.Release(1)
		inst.Run(ctx)
	}()

	logger.Log.WithFields(logrus.Fields{
		"component": "game_service",
		"session":   id,
		"seed":      game.Config.Seed,
	}).Info("Session created")
	return inst
}

func (s *GameService) GetInstance(id string) (*Instance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[id]
	return inst, ok
}

// Sessions возвращает отсортированный список ID живых партий
func (s *GameService) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.instances))
	for id := range s.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Submit отправляет команду в партию и ждет снимок после нее
func (s *GameService) Submit(ctx context.Context, id string, cmd domain.InternalCommand) (*api.ServerResponse, error) {
	if cmd.Action.IsAdmin() && !s.EnableAdmin {
		return nil, fmt.Errorf("%s: %w", cmd.Action, ErrAdminDisabled)
	}

	inst, ok := s.GetInstance(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}

	reply := make(chan CommandResult, 1)
	select {
	case inst.CommandChan <- InstanceCommand{Cmd: cmd, Reply: reply}:
	case <-inst.Done():
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.State, res.Err
	case <-inst.Done():
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProcessCommand принимает команду от внешнего мира (HTTP, WebSocket).
// Права доступа (Token) проверяются ДО этого метода.
func (s *GameService) ProcessCommand(ctx context.Context, id string, c api.ClientCommand) (*api.ServerResponse, error) {
	action := domain.ParseAction(c.Action)
	if action == domain.ActionUnknown {
		return nil, fmt.Errorf("%q: %w", c.Action, ErrUnknownAction)
	}
	return s.Submit(ctx, id, domain.InternalCommand{Action: action, Payload: c.Payload})
}

// CloseSession останавливает партию, сохраняя реплей и результат
func (s *GameService) CloseSession(id string) bool {
	s.mu.Lock()
	inst, ok := s.instances[id]
	cancel := s.cancels[id]
	delete(s.instances, id)
	delete(s.cancels, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	cancel()
	<-inst.Done()
	return true
}

// forget убирает партию, которая остановилась сама (таймаут, конец игры).
// Не ждет Done: вызывается из горутины самой партии.
func (s *GameService) forget(id string) {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	delete(s.instances, id)
	delete(s.cancels, id)
	s.mu.Unlock()

	if ok {
		cancel()
	}
}

// Wait ждет завершения всех партий (после отмены контекста сервиса)
func (s *GameService) Wait() {
	s.wg.Wait()
}
