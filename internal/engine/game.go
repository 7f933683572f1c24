package engine

import (
	"encoding/json"
	"errors"
	"fishgame-server/internal/domain"
	"fishgame-server/internal/systems"
	"fishgame-server/pkg/api"
	"fishgame-server/pkg/logger"
	"fishgame-server/pkg/utils"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"
)

// FishGame - одна партия: мир, игрок, дом и два списка рыб.
// Рыба в каждый момент либо потеряна (missing), либо плывет за игроком (found), либо уже дома.
// Не потокобезопасен: все вызовы идут из одной горутины (см. Instance).
type FishGame struct {
	World  *domain.World
	Player *domain.Entity
	Home   *domain.Entity
	Rules  RuleSet
	Config Config

	Score      int
	StepsTaken int
	Delivered  int // доставлено игроком
	WentHome   int // вернулись сами
	FoodEaten  int // съедено игроком

	missing []*domain.Entity
	found   []*domain.Entity

	// Индексы членства, чтобы не искать по слайсам на каждом ходу
	missingIdx mapset.Set[domain.EntityID]
	foundIdx   mapset.Set[domain.EntityID]

	rnd domain.Random

	// playerMoved - игрок сдвинулся после последнего Step. Один ход на шаг.
	playerMoved bool

	Logs   []api.LogEntry
	logSeq int

	// Replay - лента внешних действий. nil - запись выключена (например, при проигрывании).
	Replay *domain.ReplaySession
}

// NewFishGame создает партию с генератором от cfg.Seed
func NewFishGame(cfg Config) (*FishGame, error) {
	return NewFishGameWithRand(cfg, utils.NewRng(cfg.Seed))
}

// NewFishGameWithRand создает партию с внешним источником случайности.
// Ошибка размещения означает, что сетка слишком мала для заданного числа объектов.
func NewFishGameWithRand(cfg Config, rnd domain.Random) (*FishGame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules, _ := RulesByName(cfg.RulesName)

	g := &FishGame{
		World:      domain.NewWorld(cfg.Width, cfg.Height, rnd),
		Rules:      rules,
		Config:     cfg,
		missingIdx: mapset.New[domain.EntityID](),
		foundIdx:   mapset.New[domain.EntityID](),
		rnd:        rnd,
		Logs:       make([]api.LogEntry, 0),
	}

	var err error
	if g.Home, err = g.World.InsertFishHome(); err != nil {
		return nil, fmt.Errorf("place home: %w", err)
	}
	for i := 0; i < cfg.NumRocks; i++ {
		if _, err := g.World.InsertRockRandomly(); err != nil {
			return nil, fmt.Errorf("place rock %d/%d: %w", i+1, cfg.NumRocks, err)
		}
	}
	for i := 0; i < cfg.NumFallingRocks; i++ {
		if _, err := g.World.InsertFallingRockRandomly(); err != nil {
			return nil, fmt.Errorf("place falling rock %d/%d: %w", i+1, cfg.NumFallingRocks, err)
		}
	}
	if _, err := g.World.InsertSnailRandomly(); err != nil {
		return nil, fmt.Errorf("place snail: %w", err)
	}

	// Игрок стартует из дома
	g.Player = domain.NewPlayer()
	if err := g.World.Insert(g.Player, g.Home.X(), g.Home.Y()); err != nil {
		return nil, fmt.Errorf("place player: %w", err)
	}

	for color := 1; color < len(domain.Palette); color++ {
		fish, err := g.World.InsertFishRandomly(color)
		if err != nil {
			return nil, fmt.Errorf("place fish %d: %w", color, err)
		}
		g.missing = append(g.missing, fish)
		g.missingIdx.Put(fish.ID)
	}

	g.Replay = &domain.ReplaySession{
		Seed:            cfg.Seed,
		Timestamp:       time.Now().Unix(),
		Width:           cfg.Width,
		Height:          cfg.Height,
		NumRocks:        cfg.NumRocks,
		NumFallingRocks: cfg.NumFallingRocks,
		Rules:           rules.Name,
		Actions:         make([]domain.ReplayAction, 0),
	}

	g.log().WithFields(logrus.Fields{
		"width":   cfg.Width,
		"height":  cfg.Height,
		"rules":   rules.Name,
		"missing": len(g.missing),
	}).Info("Game created")
	g.AddLog(fmt.Sprintf("%d fish are lost. Bring them home!", len(g.missing)), LogInfo)
	return g, nil
}

func (g *FishGame) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "fish_game",
		"seed":      g.Config.Seed,
	})
}

// --- ХОД ---

// Step выполняет один ход игры. Порядок действий фиксирован:
// поимка и доставка, потеря, появление еды, еда игрока, блуждание, паровозик, шаг мира.
func (g *FishGame) Step() error {
	g.record(domain.ActionStep, nil)
	g.StepsTaken++
	g.playerMoved = false

	// 1. Что лежит в клетке игрока
	var food []*domain.Entity
	for _, other := range g.Player.FindSameCell() {
		if other == g.Player {
			continue
		}
		switch other.Kind {
		case domain.KindFish:
			if g.missingIdx.Has(other.ID) {
				g.catch(other)
			}
		case domain.KindFishFood:
			food = append(food, other)
		case domain.KindFishHome:
			if err := g.deliver(); err != nil {
				return err
			}
		}
	}

	// 2. Потеря последней рыбы в хвосте
	if g.Rules.LossEligible(g.StepsTaken, len(g.found)) && g.rnd.Float64() < g.Rules.LossChance {
		g.loseLast()
	}

	// 3. Новая еда
	if g.Rules.FoodSpawnChance > 0 && g.rnd.Float64() < g.Rules.FoodSpawnChance {
		if _, err := g.World.InsertFoodRandomly(); err != nil {
			if !errors.Is(err, domain.ErrPlacementExhausted) {
				return err
			}
			// Забитая сетка - не ошибка хода, еда просто не появилась
			g.log().WithError(err).Warn("No room for food")
		}
	}

	// 4. Еда, на которой стоял игрок (если ее не съели раньше)
	for _, f := range food {
		if !g.World.Contains(f) {
			continue
		}
		if err := g.World.Remove(f); err != nil {
			return err
		}
		g.Score += g.Rules.FoodScore
		g.FoodEaten++
		g.AddLog(fmt.Sprintf("Yum! +%d", g.Rules.FoodScore), LogFood)
	}

	// 5. Потерянные рыбы блуждают
	res, err := systems.WanderMissing(g.World, g.missing, g.rnd)
	if err != nil {
		return fmt.Errorf("wander: %w", err)
	}
	for range res.Ate {
		g.AddLog("A lost fish found some food.", LogFood)
	}
	for _, f := range res.WentHome {
		g.dropMissing(f)
		g.WentHome++
		g.AddLog(fmt.Sprintf("Fish #%d found its own way home.", f.ColorIndex), LogHome)
	}

	// 6. Найденные плывут за игроком
	g.World.ObjectsFollow(g.Player, g.found)

	// 7. Улитка и падающие камни
	g.World.StepAll()

	if g.Config.CheckInvariants {
		if err := g.checkInvariants(); err != nil {
			g.log().WithError(err).WithField("step", g.StepsTaken).Error("Invariant check failed")
			return err
		}
	}

	if g.GameOver() {
		g.AddLog(fmt.Sprintf("All fish are home! Final score: %d", g.Score), LogInfo)
		g.log().WithFields(logrus.Fields{"score": g.Score, "steps": g.StepsTaken}).Info("Game over")
	}
	return nil
}

func (g *FishGame) catch(fish *domain.Entity) {
	g.dropMissing(fish)
	g.found = append(g.found, fish)
	g.foundIdx.Put(fish.ID)

	value := g.Rules.CatchValue(fish)
	g.Score += value
	g.AddLog(fmt.Sprintf("Found fish #%d! +%d", fish.ColorIndex, value), LogFound)
}

// deliver забирает из мира всех рыб, которые плывут за игроком
func (g *FishGame) deliver() error {
	if len(g.found) == 0 {
		return nil
	}
	for _, f := range g.found {
		if err := g.World.Remove(f); err != nil {
			return fmt.Errorf("deliver %s: %w", f.ID, err)
		}
	}
	n := len(g.found)
	g.Delivered += n
	g.found = nil
	g.foundIdx = mapset.New[domain.EntityID]()
	g.AddLog(fmt.Sprintf("Delivered %d fish home.", n), LogDelivered)
	return nil
}

// loseLast возвращает последнюю рыбу хвоста в список потерянных. Рыба остается на своей клетке.
func (g *FishGame) loseLast() {
	last := len(g.found) - 1
	fish := g.found[last]
	g.found = g.found[:last]
	g.foundIdx.Remove(fish.ID)

	g.missing = append(g.missing, fish)
	g.missingIdx.Put(fish.ID)

	msg := fmt.Sprintf("Fish #%d got scared and swam away.", fish.ColorIndex)
	if g.Rules.LossPenalty {
		value := g.Rules.CatchValue(fish)
		g.Score -= value
		msg = fmt.Sprintf("%s -%d", msg, value)
	}
	g.AddLog(msg, LogLost)
}

func (g *FishGame) dropMissing(fish *domain.Entity) {
	if idx := slices.Index(g.missing, fish); idx >= 0 {
		g.missing = slices.Delete(g.missing, idx, idx+1)
	}
	g.missingIdx.Remove(fish.ID)
}

// --- ДЕЙСТВИЯ ИГРОКА ---

// MovePlayer сдвигает игрока на клетку. Ход при этом не выполняется.
func (g *FishGame) MovePlayer(dir domain.Direction) bool {
	dx, dy := dir.Delta()
	g.record(domain.ActionMove, api.DirectionPayload{Dx: dx, Dy: dy})
	moved := g.Player.Move(dir)
	if moved {
		g.playerMoved = true
	}
	return moved
}

// PlayerMoved - игрок уже сдвинулся и ждет Step
func (g *FishGame) PlayerMoved() bool { return g.playerMoved }

// Click убирает все камни из клетки. Остальные объекты не трогает.
func (g *FishGame) Click(x, y int) error {
	if !g.World.InBounds(x, y) {
		return fmt.Errorf("click (%d,%d): %w", x, y, domain.ErrOutOfBounds)
	}
	g.record(domain.ActionClick, api.PositionPayload{X: x, Y: y})

	removed := 0
	for _, e := range g.World.Find(x, y) {
		if e.Kind != domain.KindRock {
			continue
		}
		if err := g.World.Remove(e); err != nil {
			return err
		}
		removed++
	}
	if removed > 0 {
		g.log().WithFields(logrus.Fields{"x": x, "y": y, "removed": removed}).Debug("Rocks cleared")
	}
	return nil
}

// SpawnFood кладет еду в явную клетку (отладка)
func (g *FishGame) SpawnFood(x, y int) error {
	return g.spawn(domain.ActionSpawnFood, domain.NewFishFood(), x, y)
}

// SpawnRock ставит камень в явную клетку (отладка)
func (g *FishGame) SpawnRock(x, y int) error {
	return g.spawn(domain.ActionSpawnRock, domain.NewRock(), x, y)
}

func (g *FishGame) spawn(action domain.ActionType, e *domain.Entity, x, y int) error {
	if err := g.World.Insert(e, x, y); err != nil {
		return err
	}
	g.record(action, api.PositionPayload{X: x, Y: y})
	return nil
}

// Apply выполняет записанное действие. Используется при проигрывании реплея.
func (g *FishGame) Apply(action domain.ActionType, payload json.RawMessage) error {
	switch action {
	case domain.ActionStep:
		return g.Step()
	case domain.ActionMove:
		var p api.DirectionPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("move payload: %w", err)
		}
		g.MovePlayer(domain.DirectionFromDelta(p.Dx, p.Dy))
		return nil
	case domain.ActionClick, domain.ActionSpawnFood, domain.ActionSpawnRock:
		var p api.PositionPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("%s payload: %w", action, err)
		}
		switch action {
		case domain.ActionClick:
			return g.Click(p.X, p.Y)
		case domain.ActionSpawnFood:
			return g.SpawnFood(p.X, p.Y)
		default:
			return g.SpawnRock(p.X, p.Y)
		}
	}
	return fmt.Errorf("action %s cannot be applied", action)
}

func (g *FishGame) record(action domain.ActionType, payload any) {
	if g.Replay == nil {
		return
	}
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	g.Replay.Actions = append(g.Replay.Actions, domain.ReplayAction{
		Step:    g.StepsTaken,
		Action:  action,
		Payload: raw,
	})
}

// --- ЗАПРОСЫ ---

func (g *FishGame) MissingFishLeft() int { return len(g.missing) }
func (g *FishGame) FoundCount() int      { return len(g.found) }

// Missing возвращает копию списка потерянных рыб
func (g *FishGame) Missing() []*domain.Entity { return slices.Clone(g.missing) }

// Found возвращает копию хвоста в порядке поимки
func (g *FishGame) Found() []*domain.Entity { return slices.Clone(g.found) }

// IsFollowing - плывет ли рыба за игроком
func (g *FishGame) IsFollowing(e *domain.Entity) bool { return g.foundIdx.Has(e.ID) }

// GameOver - все рыбы дома
func (g *FishGame) GameOver() bool {
	return len(g.missing) == 0 && len(g.found) == 0
}

// Result - итог партии для таблицы рекордов
func (g *FishGame) Result(sessionID string) domain.ScoreRecord {
	return domain.ScoreRecord{
		SessionID:  sessionID,
		Seed:       g.Config.Seed,
		Rules:      g.Rules.Name,
		Score:      g.Score,
		Steps:      g.StepsTaken,
		Delivered:  g.Delivered,
		WentHome:   g.WentHome,
		GameOver:   g.GameOver(),
		FinishedAt: time.Now(),
	}
}

// FinishReplay фиксирует итог в записи и возвращает ее (nil, если запись выключена)
func (g *FishGame) FinishReplay() *domain.ReplaySession {
	if g.Replay == nil {
		return nil
	}
	g.Replay.FinalScore = g.Score
	g.Replay.FinalSteps = g.StepsTaken
	return g.Replay
}

// checkInvariants: списки без дублей и не пересекаются, все живые объекты внутри сетки
func (g *FishGame) checkInvariants() error {
	if g.missingIdx.Size() != len(g.missing) || g.foundIdx.Size() != len(g.found) {
		return fmt.Errorf("index out of sync (missing %d/%d, found %d/%d): %w",
			g.missingIdx.Size(), len(g.missing), g.foundIdx.Size(), len(g.found), domain.ErrInvariantViolation)
	}

	seen := mapset.New[domain.EntityID]()
	for _, list := range [][]*domain.Entity{g.missing, g.found} {
		for _, f := range list {
			if seen.Has(f.ID) {
				return fmt.Errorf("fish %s listed twice: %w", f.ID, domain.ErrInvariantViolation)
			}
			seen.Put(f.ID)
			if !g.World.Contains(f) {
				return fmt.Errorf("fish %s is not in the world: %w", f.ID, domain.ErrInvariantViolation)
			}
		}
	}

	if !g.World.Contains(g.Player) {
		return fmt.Errorf("player is not in the world: %w", domain.ErrInvariantViolation)
	}
	for _, e := range g.World.Entities() {
		if !g.World.InBounds(e.X(), e.Y()) {
			return fmt.Errorf("%s at %s: %w", e.ID, e.Pos(), domain.ErrInvariantViolation)
		}
	}
	return nil
}
