package admin

import (
	"fishgame-server/internal/engine/handlers"
	"fishgame-server/pkg/api"
	"fmt"
)

func HandleSpawnFood(ctx handlers.Context, p api.PositionPayload) (handlers.Result, error) {
	if err := ctx.Game.SpawnFood(p.X, p.Y); err != nil {
		return handlers.EmptyResult(), err
	}
	return handlers.Result{Msg: fmt.Sprintf("Spawned food at (%d,%d)", p.X, p.Y), MsgType: "INFO"}, nil
}

func HandleSpawnRock(ctx handlers.Context, p api.PositionPayload) (handlers.Result, error) {
	if err := ctx.Game.SpawnRock(p.X, p.Y); err != nil {
		return handlers.EmptyResult(), err
	}
	return handlers.Result{Msg: fmt.Sprintf("Spawned rock at (%d,%d)", p.X, p.Y), MsgType: "INFO"}, nil
}
