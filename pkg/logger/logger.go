package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
var Log = logrus.New()

// Init инициализирует глобальный логгер с выводом в stdout.
// Эта функция должна быть вызвана один раз при старте приложения в main.go.
func Init() {
	InitWithOutput(os.Stdout)
}

// InitWithOutput - то же самое, но с произвольным выводом.
// Терминальный клиент занимает stdout экраном, поэтому пишет логи в файл.
func InitWithOutput(out io.Writer) {
	Log = logrus.New()

	// 1. Уровень логирования из переменной окружения. По умолчанию - "info".
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// 2. Форматтер: "json" - для продакшена, "text" - для разработки.
	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))
	if logFormat == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   out == os.Stdout,
		})
	}

	Log.SetOutput(out)
}

// Component возвращает логгер с полем component
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
