package agent

import (
	"context"
	"encoding/json"
	"fishgame-server/internal/domain"
	"fishgame-server/internal/engine"
	"fishgame-server/internal/systems"
	"fishgame-server/pkg/api"
	"fishgame-server/pkg/logger"
	"fishgame-server/pkg/utils"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// Bot представляет собой "Игрока-компьютера" (Headless Agent).
// Он управляет своей сессией так же, как внешний клиент: отправляет команды
// и принимает решения только по снимку состояния, без доступа к миру движка.
//
// Жизненный цикл:
//  1. NewBot -> привязка к сессии.
//  2. Run -> цикл в отдельной горутине: снимок -> решение -> команда.
//  3. Бот плавает случайно, разбивает камни на пути и делает ход после каждого движения.
type Bot struct {
	SessionID string
	Service   *engine.GameService // Прямая ссылка на движок (для простоты в этом проекте)

	// Delay - пауза между командами, чтобы за ботом можно было следить
	Delay time.Duration
	// MaxSteps - бот сдается после стольких ходов (0 - без ограничения)
	MaxSteps int

	rng *rand.Rand
	log *logrus.Entry
}

func NewBot(sessionID string, service *engine.GameService, seed int64) *Bot {
	return &Bot{
		SessionID: sessionID,
		Service:   service,
		Delay:     200 * time.Millisecond,
		MaxSteps:  2000,
		rng:       utils.NewRng(seed),
		log: logger.Log.WithFields(logrus.Fields{
			"component": "bot",
			"session":   sessionID,
		}),
	}
}

// Run запускает цикл жизни бота. Возвращается, когда партия окончена или ctx отменен.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("Bot started")

	state, err := b.send(ctx, domain.ActionInit, nil)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(b.Delay)
	defer ticker.Stop()

	for !state.GameOver && (b.MaxSteps == 0 || state.StepsTaken < b.MaxSteps) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		action, payload := b.decide(state)
		next, err := b.send(ctx, action, payload)
		if err != nil {
			return err
		}

		// После движения или клика - ход мира
		if action != domain.ActionStep {
			if next, err = b.send(ctx, domain.ActionStep, nil); err != nil {
				return err
			}
		}
		state = next
	}

	b.log.WithFields(logrus.Fields{
		"score": state.Score,
		"steps": state.StepsTaken,
		"over":  state.GameOver,
	}).Info("Bot finished")
	return nil
}

// decide - мозг бота: случайное направление, камень на пути убирается кликом
func (b *Bot) decide(state *api.ServerResponse) (domain.ActionType, any) {
	local, me := b.buildLocalWorld(state)
	if me == nil {
		return domain.ActionStep, nil
	}

	dir := domain.Directions[b.rng.Intn(len(domain.Directions))]
	res := systems.CalculateMove(me, dir, local)

	switch {
	case res.HasMoved:
		dx, dy := dir.Delta()
		return domain.ActionMove, api.DirectionPayload{Dx: dx, Dy: dy}
	case res.BlockedBy != nil:
		return domain.ActionClick, api.PositionPayload{X: res.NewPos.X, Y: res.NewPos.Y}
	default:
		// Край пруда - просто пропускаем ход
		return domain.ActionStep, nil
	}
}

// buildLocalWorld создает локальную копию мира из снимка: только камни и сам игрок.
func (b *Bot) buildLocalWorld(state *api.ServerResponse) (*domain.World, *domain.Entity) {
	if state.Grid == nil {
		return nil, nil
	}
	local := domain.NewWorld(state.Grid.Width, state.Grid.Height, b.rng)

	var me *domain.Entity
	for _, ev := range state.Entities {
		var e *domain.Entity
		switch {
		case ev.Kind == domain.KindRock.String():
			e = domain.NewRock()
		case ev.IsPlayer:
			e = domain.NewPlayer()
		default:
			continue
		}
		if err := local.Insert(e, ev.Pos.X, ev.Pos.Y); err != nil {
			b.log.WithError(err).Warn("Snapshot entity out of grid")
			continue
		}
		if e.IsPlayer {
			me = e
		}
	}
	return local, me
}

func (b *Bot) send(ctx context.Context, action domain.ActionType, payload any) (*api.ServerResponse, error) {
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	return b.Service.Submit(ctx, b.SessionID, domain.InternalCommand{Action: action, Payload: raw})
}
