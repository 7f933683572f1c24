package actions

import (
	"fishgame-server/internal/engine/handlers"
	"fishgame-server/pkg/api"
)

// HandleClick убирает камни из клетки
func HandleClick(ctx handlers.Context, p api.PositionPayload) (handlers.Result, error) {
	if err := ctx.Game.Click(p.X, p.Y); err != nil {
		return handlers.EmptyResult(), err
	}
	return handlers.EmptyResult(), nil
}
