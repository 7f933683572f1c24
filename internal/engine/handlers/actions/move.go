package actions

import (
	"fishgame-server/internal/domain"
	"fishgame-server/internal/engine/handlers"
	"fishgame-server/internal/systems"
	"fishgame-server/pkg/api"
)

// HandleMove сдвигает игрока на одну клетку. Ход не тратится, его делает STEP.
// Второй MOVE до STEP отклоняется: иначе игрок проплывает мимо рыб, а хвост рвется.
func HandleMove(ctx handlers.Context, p api.DirectionPayload) (handlers.Result, error) {
	if ctx.Game.PlayerMoved() {
		return handlers.EmptyResult(), domain.ErrTurnPending
	}

	dir := domain.DirectionFromDelta(p.Dx, p.Dy)
	res := systems.CalculateMove(ctx.Actor, dir, ctx.World)

	if res.IsWall {
		return handlers.Result{Msg: "The pond ends here.", MsgType: "ERROR"}, nil
	}
	if res.BlockedBy != nil {
		return handlers.Result{Msg: "A rock is in the way. Click it to clear.", MsgType: "ERROR"}, nil
	}

	ctx.Game.MovePlayer(dir)
	return handlers.EmptyResult(), nil
}
