package engine

import (
	"fishgame-server/pkg/api"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Типы записей игрового лога
const (
	LogInfo      = "INFO"
	LogFound     = "FOUND"
	LogDelivered = "DELIVERED"
	LogLost      = "LOST"
	LogHome      = "HOME"
	LogFood      = "FOOD"
	LogError     = "ERROR"
)

// AddLog добавляет запись в игровой лог партии
func (g *FishGame) AddLog(text, logType string) {
	g.logSeq++
	g.Logs = append(g.Logs, api.LogEntry{
		ID:        fmt.Sprintf("%d_%d", g.StepsTaken, g.logSeq),
		Text:      text,
		Type:      logType,
		Timestamp: time.Now().UnixMilli(),
	})
	g.log().WithFields(logrus.Fields{
		"component": "game_log",
		"log_type":  logType,
		"step":      g.StepsTaken,
	}).Debug(text)
}

// DrainLogs отдает накопленные записи и очищает буфер
func (g *FishGame) DrainLogs() []api.LogEntry {
	out := g.Logs
	g.Logs = make([]api.LogEntry, 0)
	return out
}
