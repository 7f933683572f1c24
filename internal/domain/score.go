package domain

import "time"

// ScoreRecord - итог завершенной партии для таблицы рекордов
type ScoreRecord struct {
	SessionID  string    `json:"sessionId"`
	Seed       int64     `json:"seed"`
	Rules      string    `json:"rules"`
	Score      int       `json:"score"`
	Steps      int       `json:"steps"`
	Delivered  int       `json:"delivered"`  // сколько рыб игрок привел домой
	WentHome   int       `json:"wentHome"`   // сколько вернулись сами
	GameOver   bool      `json:"gameOver"`   // false, если сессию закрыли раньше
	FinishedAt time.Time `json:"finishedAt"`
}
