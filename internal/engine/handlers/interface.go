package handlers

import (
	"encoding/json"
	"fishgame-server/internal/domain"
)

// GameActions описывает то, что хендлер может сделать с партией.
// FishGame неявно реализует этот интерфейс.
type GameActions interface {
	MovePlayer(dir domain.Direction) bool
	PlayerMoved() bool
	Step() error
	Click(x, y int) error
	SpawnFood(x, y int) error
	SpawnRock(x, y int) error
	GameOver() bool
}

// Context передает хендлеру состояние партии.
// Мы передаем ссылки, чтобы хендлер мог менять состояние (мутировать данные).
type Context struct {
	Game  GameActions
	World *domain.World  // Только для чтения: все изменения идут через Game
	Actor *domain.Entity // Рыба игрока
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ пишет в лог партии напрямую, он возвращает данные.
type Result struct {
	Msg     string // Текст лога
	MsgType string // Тип лога (INFO, ERROR)
}

// HandlerFunc - это контракт для любой команды (MOVE, STEP, CLICK, etc).
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}
