package terminal

import (
	"fishgame-server/internal/engine"
	"fishgame-server/pkg/api"
	"fishgame-server/pkg/logger"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// note - один тон мелодии
type note struct {
	freq float64
	dur  time.Duration
}

// Мелодии на события игрового лога
var cues = map[string][]note{
	engine.LogFound:     {{660, 70 * time.Millisecond}, {880, 90 * time.Millisecond}},
	engine.LogDelivered: {{523, 70 * time.Millisecond}, {659, 70 * time.Millisecond}, {784, 140 * time.Millisecond}},
	engine.LogLost:      {{330, 120 * time.Millisecond}, {220, 200 * time.Millisecond}},
	engine.LogHome:      {{440, 60 * time.Millisecond}, {330, 60 * time.Millisecond}},
	engine.LogFood:      {{1320, 40 * time.Millisecond}},
}

// Sounds проигрывает короткие сигналы на события партии.
// Без звуковой карты работает молча: игра не должна падать из-за звука.
type Sounds struct {
	enabled bool
	volume  float64 // log2, 0 - без изменений
	play    func(...beep.Streamer)
}

// NewSounds инициализирует динамик. enable=false или ошибка инициализации дают немой Sounds.
func NewSounds(enable bool) *Sounds {
	s := &Sounds{volume: -2, play: speaker.Play}
	if !enable {
		return s
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		logger.Component("sound").WithError(err).Warn("Audio unavailable, running silent")
		return s
	}
	s.enabled = true
	return s
}

// Cue собирает мелодию для типа лога. nil - для этого события звука нет.
func (s *Sounds) Cue(logType string) beep.Streamer {
	notes, ok := cues[logType]
	if !ok {
		return nil
	}

	parts := make([]beep.Streamer, 0, len(notes)*2)
	for _, n := range notes {
		tone, err := generators.SineTone(sampleRate, n.freq)
		if err != nil {
			return nil
		}
		parts = append(parts,
			beep.Take(sampleRate.N(n.dur), tone),
			beep.Silence(sampleRate.N(15*time.Millisecond)),
		)
	}

	return &effects.Volume{Streamer: beep.Seq(parts...), Base: 2, Volume: s.volume}
}

// PlayLogs проигрывает сигналы для новых записей лога
func (s *Sounds) PlayLogs(logs []api.LogEntry) {
	if !s.enabled {
		return
	}
	for _, l := range logs {
		if cue := s.Cue(l.Type); cue != nil {
			s.play(cue)
		}
	}
}
