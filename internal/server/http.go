package server

import (
	"context"
	"encoding/json"
	"errors"
	"fishgame-server/internal/domain"
	"fishgame-server/internal/engine"
	"fishgame-server/internal/engine/handlers"
	"fishgame-server/internal/version"
	"fishgame-server/pkg/api"
	"fishgame-server/pkg/logger"
	"fishgame-server/pkg/utils"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ScoreBoard - источник таблицы рекордов
type ScoreBoard interface {
	TopScores(ctx context.Context, rules string, limit int) ([]domain.ScoreRecord, error)
}

// ReplayLister - список сохраненных реплеев (для debug)
type ReplayLister interface {
	List() ([]string, error)
}

type Server struct {
	Engine  *engine.GameService
	Auth    *Auth
	Scores  ScoreBoard   // может быть nil
	Replays ReplayLister // может быть nil
	Port    string

	// Defaults - параметры новой партии, если клиент их не задал
	Defaults engine.Config

	httpServer *http.Server
}

func New(svc *engine.GameService, auth *Auth, port string) *Server {
	return &Server{
		Engine:   svc,
		Auth:     auth,
		Port:     port,
		Defaults: engine.NewConfig(),
	}
}

// Router собирает все маршруты. Отдельно от Run, чтобы тесты работали через httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(enableCORS)

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Get("/scores", s.handleScores)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleCreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/state", s.handleState)
				r.Get("/state.msgpack", s.handleStateMsgpack)
				r.Post("/commands", s.handleCommand)
				r.Delete("/", s.handleCloseSession)
			})
		})
	})

	r.Get("/ws/{id}", s.handleWS)

	debugHandler := NewDebugHandler(s.Engine, s.Replays)
	debugHandler.RegisterRoutes(r)

	return r
}

// Run запускает HTTP сервер и останавливает его при отмене ctx
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              ":" + s.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("🐟 Fish game server running on :%s", s.Port)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, version.Info())
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	out := make([]engine.RuleSet, 0)
	for _, name := range engine.RuleNames() {
		rules, _ := engine.RulesByName(name)
		out = append(out, rules)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	if s.Scores == nil {
		respondJSON(w, http.StatusOK, []api.ScoreView{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := s.Scores.TopScores(r.Context(), r.URL.Query().Get("rules"), limit)
	if err != nil {
		respondError(w, err)
		return
	}

	views := make([]api.ScoreView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, api.ScoreView{
			SessionID:  rec.SessionID,
			Rules:      rec.Rules,
			Score:      rec.Score,
			Steps:      rec.Steps,
			Delivered:  rec.Delivered,
			FinishedAt: rec.FinishedAt.UnixMilli(),
		})
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.Engine.Sessions())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req api.CreateSessionRequest
	// Пустое тело - партия по умолчанию
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondJSON(w, http.StatusBadRequest, api.ServerResponse{Type: "ERROR", Error: "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		respondJSON(w, http.StatusBadRequest, api.ServerResponse{Type: "ERROR", Error: err.Error()})
		return
	}

	inst, err := s.Engine.CreateSession(s.configFor(req))
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := s.Auth.IssueToken(inst.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	state, err := s.Engine.Submit(r.Context(), inst.ID, domain.InternalCommand{Action: domain.ActionInit})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, api.SessionCreated{
		SessionID: inst.ID,
		Token:     token,
		Seed:      inst.Game.Config.Seed,
		State:     *state,
	})
}

// configFor накладывает запрос клиента на значения по умолчанию
func (s *Server) configFor(req api.CreateSessionRequest) engine.Config {
	cfg := s.Defaults
	cfg.Seed = time.Now().UnixNano()
	if req.Width > 0 {
		cfg.Width = req.Width
	}
	if req.Height > 0 {
		cfg.Height = req.Height
	}
	switch {
	case req.Seed != 0:
		cfg.Seed = req.Seed
	case req.SeedPhrase != "":
		cfg.Seed = utils.StringToSeed(req.SeedPhrase)
	}
	if req.Rules != "" {
		cfg.RulesName = req.Rules
	}
	if req.NumRocks != nil {
		cfg.NumRocks = *req.NumRocks
	}
	if req.NumFallingRocks != nil {
		cfg.NumFallingRocks = *req.NumFallingRocks
	}
	return cfg
}

// handleState отдает снимок. Смотреть может кто угодно, токен не нужен.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, r, codecFor(r))
}

func (s *Server) handleStateMsgpack(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, r, MsgpackCodec)
}

func (s *Server) writeState(w http.ResponseWriter, r *http.Request, codec Codec) {
	state, err := s.Engine.Submit(r.Context(), chi.URLParam(r, "id"), domain.InternalCommand{Action: domain.ActionSnapshot})
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := codec.Marshal(state)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", codec.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var cmd api.ClientCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSON(w, http.StatusBadRequest, api.ServerResponse{Type: "ERROR", Error: "invalid command"})
		return
	}
	if err := s.Auth.Authorize(bearerToken(r, cmd.Token), id); err != nil {
		respondError(w, err)
		return
	}

	state, err := s.Engine.ProcessCommand(r.Context(), id, cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Auth.Authorize(bearerToken(r, ""), id); err != nil {
		respondError(w, err)
		return
	}
	if !s.Engine.CloseSession(id) {
		respondError(w, engine.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bearerToken берет токен из Authorization, иначе из тела команды
func bearerToken(r *http.Request, fallback string) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return fallback
}

// statusFor переводит ошибки домена в HTTP-коды
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrOutOfBounds),
		errors.Is(err, handlers.ErrBadPayload),
		errors.Is(err, engine.ErrUnknownAction),
		errors.Is(err, engine.ErrInvalidConfig),
		errors.Is(err, domain.ErrPlacementExhausted):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrAdminDisabled):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, domain.ErrTurnPending):
		return http.StatusConflict
	case errors.Is(err, engine.ErrTooManySessions):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Log.WithError(err).WithField("component", "http").Error("Internal error")
	}
	respondJSON(w, status, api.ServerResponse{Type: "ERROR", Error: err.Error()})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
