package actions

import "fishgame-server/internal/engine/handlers"

// HandleInit ничего не меняет: клиент просто получает текущий снимок
func HandleInit(ctx handlers.Context) (handlers.Result, error) {
	if ctx.Game.GameOver() {
		return handlers.Result{Msg: "This game is over.", MsgType: "INFO"}, nil
	}
	return handlers.Result{
		Msg:     "Welcome to the fish pond. Find the lost fish and lead them home.",
		MsgType: "INFO",
	}, nil
}

// HandleSnapshot - только чтение: без записи в лог партии
func HandleSnapshot(ctx handlers.Context) (handlers.Result, error) {
	return handlers.EmptyResult(), nil
}
