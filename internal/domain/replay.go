package domain

import "encoding/json"

// ReplayAction - запись одного внешнего действия (ход, шаг, клик)
type ReplayAction struct {
	Step    int             `json:"step"`    // StepsTaken на момент действия
	Action  ActionType      `json:"action"`  // Что сделал
	Payload json.RawMessage `json:"payload"` // С какими параметрами
}

// ReplaySession - полная запись партии. Вместе с Seed этого достаточно,
// чтобы детерминированно воспроизвести игру.
type ReplaySession struct {
	Seed            int64  `json:"seed"`
	Timestamp       int64  `json:"timestamp"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	NumRocks        int    `json:"numRocks"`
	NumFallingRocks int    `json:"numFallingRocks"`
	Rules           string `json:"rules"`

	FinalScore int `json:"finalScore"`
	FinalSteps int `json:"finalSteps"`

	Actions []ReplayAction `json:"actions"`
}
