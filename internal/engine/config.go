package engine

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	DefaultWidth    = 20
	DefaultHeight   = 15
	DefaultNumRocks = 20
)

// Config хранит параметры запуска одной партии
type Config struct {
	// Seed - мастер-зерно. От него зависит вся партия, поэтому по нему же строится реплей.
	Seed int64

	Width  int
	Height int

	NumRocks        int
	NumFallingRocks int

	// RulesName - "classic" или "food" (по умолчанию)
	RulesName string

	// CheckInvariants включает проверку списков и координат в конце каждого хода
	CheckInvariants bool
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed:            time.Now().UnixNano(),
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		NumRocks:        DefaultNumRocks,
		NumFallingRocks: 0,
		RulesName:       DefaultRulesName,
		CheckInvariants: true,
	}
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("grid %dx%d: %w", c.Width, c.Height, ErrInvalidConfig)
	}
	if c.NumRocks < 0 || c.NumFallingRocks < 0 {
		return fmt.Errorf("negative rock count: %w", ErrInvalidConfig)
	}
	if _, ok := RulesByName(c.RulesName); !ok {
		return fmt.Errorf("unknown rules %q: %w", c.RulesName, ErrInvalidConfig)
	}
	return nil
}
