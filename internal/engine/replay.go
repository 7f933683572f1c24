package engine

import (
	"fishgame-server/internal/domain"
	"fishgame-server/pkg/logger"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ConfigFromReplay восстанавливает параметры партии из записи
func ConfigFromReplay(rs *domain.ReplaySession) Config {
	return Config{
		Seed:            rs.Seed,
		Width:           rs.Width,
		Height:          rs.Height,
		NumRocks:        rs.NumRocks,
		NumFallingRocks: rs.NumFallingRocks,
		RulesName:       rs.Rules,
		CheckInvariants: true,
	}
}

// Playback заново строит партию по сиду и применяет записанные действия.
// Запись новой ленты при этом выключена.
func Playback(rs *domain.ReplaySession) (*FishGame, error) {
	g, err := NewFishGame(ConfigFromReplay(rs))
	if err != nil {
		return nil, fmt.Errorf("replay setup: %w", err)
	}
	g.Replay = nil

	for i, a := range rs.Actions {
		if err := g.Apply(a.Action, a.Payload); err != nil {
			return g, fmt.Errorf("replay action %d (%s): %w", i, a.Action, err)
		}
	}

	if rs.FinalSteps != 0 && (g.Score != rs.FinalScore || g.StepsTaken != rs.FinalSteps) {
		logger.Log.WithFields(logrus.Fields{
			"component":      "replay",
			"seed":           rs.Seed,
			"recorded_score": rs.FinalScore,
			"replayed_score": g.Score,
			"recorded_steps": rs.FinalSteps,
			"replayed_steps": g.StepsTaken,
		}).Warn("Replay diverged from the recorded result")
	}
	return g, nil
}
