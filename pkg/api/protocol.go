package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// ServerResponse это корневой объект, который сервер отправляет клиенту.
// Полный "снимок" сессии: сетка, все живые сущности и счетчики для HUD.
// Отправляется после каждой обработанной команды.
type ServerResponse struct {
	// Type тип сообщения: "INIT", "UPDATE" или "ERROR".
	Type string `json:"type"`

	// SessionID сессия, к которой относится снимок.
	SessionID string `json:"sessionId,omitempty"`

	// Tick количество шагов мира (World.StepAll).
	Tick int `json:"tick"`

	// Grid метаданные о размере сетки.
	Grid *GridMeta `json:"grid,omitempty"`

	// Entities все живые сущности в порядке регистрации.
	Entities []EntityView `json:"entities,omitempty"`

	// HUD - счет и прогресс.
	Score       int  `json:"score"`
	StepsTaken  int  `json:"stepsTaken"`
	MissingLeft int  `json:"missingLeft"`
	FoundCount  int  `json:"foundCount"`
	GameOver    bool `json:"gameOver"`

	// Logs новые сообщения, сгенерированные с прошлой команды.
	Logs []LogEntry `json:"logs,omitempty"`

	// Error текст ошибки для Type == "ERROR".
	Error string `json:"error,omitempty"`
}

// GridMeta содержит размеры сетки, чтобы клиент знал, какую сетку готовить.
type GridMeta struct {
	Width  int `json:"w"`
	Height int `json:"h"`
}

// EntityView это DTO для сущности. Дискриминатор - Kind, для рыб еще цвет и пугливость.
type EntityView struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // ROCK, HOME, FOOD, SNAIL, FISH

	Pos struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"pos"`

	Render struct {
		Symbol string `json:"symbol"`
		Color  string `json:"color"`
	} `json:"render"`

	ColorIndex int  `json:"colorIndex,omitempty"`
	FastScared bool `json:"fastScared,omitempty"`
	IsPlayer   bool `json:"isPlayer,omitempty"`
	Falling    bool `json:"falling,omitempty"`
	Following  bool `json:"following,omitempty"` // рыба в списке found
}

// LogEntry представляет одну запись в игровом логе.
type LogEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Type      string `json:"type"`      // INFO, FOUND, DELIVERED, LOST, HOME, FOOD, ERROR
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// SessionCreated ответ на создание сессии.
// Token нужен для управления, без него соединение только наблюдает.
type SessionCreated struct {
	SessionID string         `json:"sessionId"`
	Token     string         `json:"token"`
	Seed      int64          `json:"seed"`
	State     ServerResponse `json:"state"`
}

// ScoreView строка таблицы рекордов.
type ScoreView struct {
	SessionID  string `json:"sessionId"`
	Rules      string `json:"rules"`
	Score      int    `json:"score"`
	Steps      int    `json:"steps"`
	Delivered  int    `json:"delivered"`
	FinishedAt int64  `json:"finishedAt"` // Unix milliseconds
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех команд от клиента к серверу.
type ClientCommand struct {
	// Token управляющий токен сессии (для WebSocket; по HTTP идет в Authorization).
	Token string `json:"token,omitempty"`

	// Action название действия: MOVE, STEP, CLICK, INIT.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CreateSessionRequest параметры новой игры. Нули означают значения по умолчанию.
type CreateSessionRequest struct {
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
	Seed            int64  `json:"seed,omitempty"`
	SeedPhrase      string `json:"seedPhrase,omitempty"` // альтернатива Seed
	Rules           string `json:"rules,omitempty"`      // classic | food
	NumRocks        *int   `json:"numRocks,omitempty"`
	NumFallingRocks *int   `json:"numFallingRocks,omitempty"`
}

// --- Payloads ---

// DirectionPayload используется для MOVE. Только четыре направления, без диагоналей.
type DirectionPayload struct {
	Dx int `json:"dx"`
	Dy int `json:"dy"`
}

// PositionPayload используется для действий, нацеленных на клетку (CLICK, SPAWN_*).
type PositionPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}
