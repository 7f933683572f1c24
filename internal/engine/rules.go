package engine

import (
	"fishgame-server/internal/domain"
	"sort"
)

const DefaultRulesName = "food"

// RuleSet - числа, по которым считается очко и потеря рыбы.
// Оба набора правил описывают одну и ту же игру, отличаются только параметры.
type RuleSet struct {
	Name string `json:"name"`

	CatchScore     int `json:"catchScore"`
	FastCatchScore int `json:"fastCatchScore"`

	// Потеря рыбы возможна только после LossAfterSteps ходов и при found > LossMinFound
	LossAfterSteps int     `json:"lossAfterSteps"`
	LossMinFound   int     `json:"lossMinFound"`
	LossChance     float64 `json:"lossChance"`
	LossPenalty    bool    `json:"lossPenalty"` // вычитать ли очки за потерянную рыбу

	FoodSpawnChance float64 `json:"foodSpawnChance"`
	FoodScore       int     `json:"foodScore"`
}

var ClassicRules = RuleSet{
	Name:           "classic",
	CatchScore:     10,
	FastCatchScore: 20,
	LossAfterSteps: 20,
	LossMinFound:   3,
	LossChance:     0.8,
}

var FoodRules = RuleSet{
	Name:            "food",
	CatchScore:      10,
	FastCatchScore:  20,
	LossAfterSteps:  20,
	LossMinFound:    3,
	LossChance:      0.3,
	LossPenalty:     true,
	FoodSpawnChance: 0.05,
	FoodScore:       10,
}

var ruleSets = map[string]RuleSet{
	ClassicRules.Name: ClassicRules,
	FoodRules.Name:    FoodRules,
}

// RulesByName ищет набор правил. Пустое имя - правила по умолчанию.
func RulesByName(name string) (RuleSet, bool) {
	if name == "" {
		name = DefaultRulesName
	}
	r, ok := ruleSets[name]
	return r, ok
}

// RuleNames - список для CLI и /api/rules
func RuleNames() []string {
	names := make([]string, 0, len(ruleSets))
	for n := range ruleSets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CatchValue - сколько стоит поимка рыбы (и сколько отнимается при потере со штрафом)
func (r RuleSet) CatchValue(fish *domain.Entity) int {
	if fish.FastScared {
		return r.FastCatchScore
	}
	return r.CatchScore
}

// LossEligible - можно ли в этот ход потерять рыбу
func (r RuleSet) LossEligible(stepsTaken, found int) bool {
	return stepsTaken > r.LossAfterSteps && found > r.LossMinFound
}
