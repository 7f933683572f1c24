package domain

import "strings"

// ActionType - Внутренний числовой идентификатор действия
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionInit
	ActionMove
	ActionStep
	ActionClick
	ActionSpawnFood
	ActionSpawnRock
	ActionSnapshot
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"INIT":       ActionInit,
	"MOVE":       ActionMove,
	"STEP":       ActionStep,
	"WAIT":       ActionStep, // старое имя из клиента
	"CLICK":      ActionClick,
	"SPAWN_FOOD": ActionSpawnFood,
	"SPAWN_ROCK": ActionSpawnRock,
	"SNAPSHOT":   ActionSnapshot,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionInit:      "INIT",
	ActionMove:      "MOVE",
	ActionStep:      "STEP",
	ActionClick:     "CLICK",
	ActionSpawnFood: "SPAWN_FOOD",
	ActionSpawnRock: "SPAWN_ROCK",
	ActionSnapshot:  "SNAPSHOT",
}

// ParseAction конвертирует строку из JSON в ActionType
func ParseAction(s string) ActionType {
	if val, ok := actionStringToCmd[strings.ToUpper(s)]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// IsAdmin - отладочные действия, которые не должны попадать в обычный клиент
func (a ActionType) IsAdmin() bool {
	return a == ActionSpawnFood || a == ActionSpawnRock
}

// IsReadOnly - действие только читает состояние: не пишет в лог, не рассылается подписчикам
func (a ActionType) IsReadOnly() bool {
	return a == ActionSnapshot
}
