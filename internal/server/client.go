package server

import (
	"context"
	"fishgame-server/internal/domain"
	"fishgame-server/internal/engine"
	"fishgame-server/pkg/api"
	"fishgame-server/pkg/logger"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	commandTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и GameService.
// Общие снимки идут из Hub. Ошибки и личные снимки (первый кадр, запрос зрителя) - напрямую через Replies.
type Client struct {
	Game      *engine.GameService
	Auth      *Auth
	Conn      *websocket.Conn
	Codec     Codec
	SessionID string

	// CanControl - соединение подключилось с валидным токеном
	CanControl bool

	Updates chan api.ServerResponse
	Replies chan api.ServerResponse
	done    chan struct{}
}

func NewClient(game *engine.GameService, auth *Auth, conn *websocket.Conn, sessionID string, codec Codec) *Client {
	return &Client{
		Game:      game,
		Auth:      auth,
		Conn:      conn,
		Codec:     codec,
		SessionID: sessionID,
		Replies:   make(chan api.ServerResponse, 16),
		done:      make(chan struct{}),
	}
}

func (c *Client) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "ws_client",
		"session":   c.SessionID,
	})
}

// handleWS обрабатывает подключение по WebSocket: /ws/{id}?token=...&codec=msgpack
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.Engine.GetInstance(id); !ok {
		respondError(w, engine.ErrSessionNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Error("Upgrade error")
		return
	}

	client := NewClient(s.Engine, s.Auth, conn, id, codecFor(r))
	if tok := r.URL.Query().Get("token"); tok != "" {
		client.CanControl = s.Auth.Authorize(tok, id) == nil
	}
	client.Updates = s.Engine.Hub.Subscribe(id)

	// Запускаем пампы
	go client.writePump()
	go client.readPump()
}

// readPump читает команды от клиента
func (c *Client) readPump() {
	defer func() {
		close(c.done)
		c.Game.Hub.Unsubscribe(c.SessionID, c.Updates)
		if err := c.Conn.Close(); err != nil {
			c.log().WithError(err).Debug("failed to close websocket connection")
		}
		c.log().Info("Client disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log().WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c.log().WithField("control", c.CanControl).Info("Client connected")

	// Первый снимок (триггер первой отрисовки) только этому клиенту
	c.snapshot()

	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log().WithError(err).Warn("WS read error")
			}
			return
		}

		action := domain.ParseAction(cmd.Action)
		// Зритель без токена на INIT получает личный снимок, как при подключении
		if action == domain.ActionSnapshot || (!c.CanControl && action == domain.ActionInit && cmd.Token == "") {
			c.snapshot()
			continue
		}
		if !c.CanControl {
			// Токен можно передать и в самой команде
			if err := c.Auth.Authorize(cmd.Token, c.SessionID); err != nil {
				c.reply(api.ServerResponse{Type: "ERROR", SessionID: c.SessionID, Error: err.Error()})
				continue
			}
			c.CanControl = true
		}
		c.submit(cmd)
	}
}

// submit отправляет команду в партию. Снимок придет всем подписчикам через Hub.
func (c *Client) submit(cmd api.ClientCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if _, err := c.Game.ProcessCommand(ctx, c.SessionID, cmd); err != nil {
		c.reply(api.ServerResponse{Type: "ERROR", SessionID: c.SessionID, Error: err.Error()})
	}
}

// snapshot отдает текущее состояние только этому клиенту, партию не трогает
func (c *Client) snapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	state, err := c.Game.Submit(ctx, c.SessionID, domain.InternalCommand{Action: domain.ActionSnapshot})
	if err != nil {
		c.reply(api.ServerResponse{Type: "ERROR", SessionID: c.SessionID, Error: err.Error()})
		return
	}
	c.reply(*state)
}

func (c *Client) reply(msg api.ServerResponse) {
	select {
	case c.Replies <- msg:
	default:
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Updates:
			if !ok {
				// Партия закрыта
				_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := c.write(message); err != nil {
				return
			}

		case message := <-c.Replies:
			if err := c.write(message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log().WithError(err).Debug("ping failed")
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *Client) write(msg api.ServerResponse) error {
	data, err := c.Codec.Marshal(msg)
	if err != nil {
		c.log().WithError(err).Error("encode message failed")
		return err
	}
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.Conn.WriteMessage(c.Codec.MessageType(), data); err != nil {
		c.log().WithError(err).Debug("write message failed")
		return err
	}
	return nil
}
