package engine

import (
	"fishgame-server/internal/domain"
	"fishgame-server/pkg/api"
)

// BuildState создает полный снимок партии для клиента.
// logs - записи, накопленные с прошлого снимка (см. DrainLogs).
func BuildState(g *FishGame, sessionID string, msgType string, logs []api.LogEntry) *api.ServerResponse {
	entities := g.World.Entities()
	views := make([]api.EntityView, 0, len(entities))
	for _, e := range entities {
		views = append(views, toEntityView(g, e))
	}

	// Копия логов, чтобы не было гонки данных
	logsCopy := make([]api.LogEntry, len(logs))
	copy(logsCopy, logs)

	return &api.ServerResponse{
		Type:        msgType,
		SessionID:   sessionID,
		Tick:        g.World.Tick,
		Grid:        &api.GridMeta{Width: g.World.Width, Height: g.World.Height},
		Entities:    views,
		Score:       g.Score,
		StepsTaken:  g.StepsTaken,
		MissingLeft: g.MissingFishLeft(),
		FoundCount:  g.FoundCount(),
		GameOver:    g.GameOver(),
		Logs:        logsCopy,
	}
}

// toEntityView конвертирует доменную сущность в DTO для отправки клиенту.
func toEntityView(g *FishGame, e *domain.Entity) api.EntityView {
	view := api.EntityView{
		ID:   e.ID.String(),
		Kind: e.Kind.String(),
	}
	view.Pos.X = e.X()
	view.Pos.Y = e.Y()

	glyph := GlyphFor(e)
	view.Render.Symbol = glyph.Symbol()
	view.Render.Color = glyph.HexColor()

	switch e.Kind {
	case domain.KindFish:
		view.ColorIndex = e.ColorIndex
		view.FastScared = e.FastScared
		view.IsPlayer = e.IsPlayer
		view.Following = g.IsFollowing(e)
	case domain.KindRock:
		view.Falling = e.Falling
	}
	return view
}
