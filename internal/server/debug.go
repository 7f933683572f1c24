package server

import (
	"fishgame-server/internal/domain"
	"fishgame-server/internal/engine"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DebugHandler предоставляет доступ к внутреннему состоянию движка
type DebugHandler struct {
	Service *engine.GameService
	Replays ReplayLister
}

func NewDebugHandler(s *engine.GameService, replays ReplayLister) *DebugHandler {
	return &DebugHandler{Service: s, Replays: replays}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(r chi.Router) {
	r.Get("/debug/sessions", h.handleListSessions)
	r.Get("/debug/sessions/{id}/entities", h.handleDumpEntities)
	r.Get("/debug/replays", h.handleListReplays)
	r.Mount("/debug/prof", middleware.Profiler())
}

// /debug/sessions - список партий и количество подписчиков
func (h *DebugHandler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	type SessionSummary struct {
		ID          string `json:"id"`
		Subscribers bool   `json:"has_subscribers"`
	}

	summary := make([]SessionSummary, 0)
	for _, id := range h.Service.Sessions() {
		summary = append(summary, SessionSummary{
			ID:          id,
			Subscribers: h.Service.Hub.HasSubscriber(id),
		})
	}
	writeJSON(w, summary)
}

// /debug/sessions/{id}/entities - все сущности партии
func (h *DebugHandler) handleDumpEntities(w http.ResponseWriter, r *http.Request) {
	// Снимок берем через цикл партии, чтобы не читать мир из чужой горутины
	state, err := h.Service.Submit(r.Context(), chi.URLParam(r, "id"), domain.InternalCommand{Action: domain.ActionSnapshot})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, state.Entities)
}

// /debug/replays - сохраненные файлы реплеев
func (h *DebugHandler) handleListReplays(w http.ResponseWriter, r *http.Request) {
	if h.Replays == nil {
		writeJSON(w, nil)
		return
	}
	names, err := h.Replays.List()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, names)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Если data == nil, возвращаем пустой массив [], а не null
	if data == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
		return
	}
	respondJSON(w, http.StatusOK, data)
}
