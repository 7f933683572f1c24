package actions

import "fishgame-server/internal/engine/handlers"

func HandleStep(ctx handlers.Context) (handlers.Result, error) {
	if ctx.Game.GameOver() {
		return handlers.Result{Msg: "This game is over.", MsgType: "INFO"}, nil
	}
	if err := ctx.Game.Step(); err != nil {
		return handlers.EmptyResult(), err
	}
	return handlers.EmptyResult(), nil
}
