package systems

import (
	"fishgame-server/internal/domain"
	"fishgame-server/pkg/logger"
	"fmt"

	"github.com/sirupsen/logrus"
)

// WanderResult - что случилось за проход блуждающих рыб
type WanderResult struct {
	WentHome []*domain.Entity // рыбы, сами нашедшие дом (уже удалены из мира)
	Ate      []*domain.Entity // съеденная еда (уже удалена из мира)
	Moved    int
}

// ShouldWander решает по одному случайному числу, двигается ли рыба в этот ход.
// Пугливые рыбы двигаются примерно в 2.7 раза чаще.
func ShouldWander(fish *domain.Entity, r float64) bool {
	if fish.FastScared {
		return r < domain.FastScaredMoveChance
	}
	return r < domain.CalmMoveChance
}

// WanderMissing делает один ход для каждой потерянной рыбы.
// Еда съедается сразу, а рыбы, доплывшие до дома, удаляются из мира в конце прохода,
// чтобы не менять missing во время итерации. Убрать их из missing - забота вызывающего.
func WanderMissing(w *domain.World, missing []*domain.Entity, rnd domain.Random) (WanderResult, error) {
	var res WanderResult
	log := logger.Log.WithFields(logrus.Fields{
		"component": "ai_system",
		"function":  "WanderMissing",
	})

	for _, lost := range missing {
		if ShouldWander(lost, rnd.Float64()) && lost.MoveRandomly() {
			res.Moved++
		}

		home := false
		for _, other := range lost.FindSameCell() {
			if other == lost {
				continue
			}
			switch other.Kind {
			case domain.KindFishHome:
				home = true
			case domain.KindFishFood:
				// Две рыбы в одной клетке: съест только первая
				if !w.Contains(other) {
					continue
				}
				if err := w.Remove(other); err != nil {
					return res, err
				}
				res.Ate = append(res.Ate, other)
				log.WithFields(logrus.Fields{"fish": lost.ID, "food": other.ID}).Debug("Missing fish ate food")
			}
		}
		if home {
			res.WentHome = append(res.WentHome, lost)
		}
	}

	for _, f := range res.WentHome {
		if err := w.Remove(f); err != nil {
			return res, fmt.Errorf("remove fish that went home: %w", err)
		}
		log.WithField("fish", f.ID).Debug("Missing fish found its own way home")
	}
	return res, nil
}
