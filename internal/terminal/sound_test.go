package terminal

import (
	"fishgame-server/internal/engine"
	"fishgame-server/pkg/api"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func TestSounds_Cue(t *testing.T) {
	s := NewSounds(false)

	for _, logType := range []string{engine.LogFound, engine.LogDelivered, engine.LogLost, engine.LogHome, engine.LogFood} {
		t.Run(logType, func(t *testing.T) {
			cue := s.Cue(logType)
			if cue == nil {
				t.Fatal("expected a cue")
			}

			want := 0
			for _, n := range cues[logType] {
				want += sampleRate.N(n.dur) + sampleRate.N(15*time.Millisecond)
			}

			total := 0
			buf := make([][2]float64, 512)
			for {
				n, ok := cue.Stream(buf)
				for i := 0; i < n; i++ {
					if buf[i][0] < -1 || buf[i][0] > 1 {
						t.Fatalf("sample out of range: %f", buf[i][0])
					}
				}
				total += n
				if !ok {
					break
				}
			}
			if total != want {
				t.Errorf("cue length = %d samples, want %d", total, want)
			}
		})
	}

	if s.Cue(engine.LogInfo) != nil {
		t.Error("INFO must stay silent")
	}
}

func TestSounds_PlayLogs(t *testing.T) {
	var played int
	s := &Sounds{enabled: true, play: func(st ...beep.Streamer) { played += len(st) }}

	s.PlayLogs([]api.LogEntry{
		{Type: engine.LogInfo},
		{Type: engine.LogFound},
		{Type: engine.LogDelivered},
	})
	if played != 2 {
		t.Errorf("played = %d, want 2", played)
	}

	s.enabled = false
	s.PlayLogs([]api.LogEntry{{Type: engine.LogLost}})
	if played != 2 {
		t.Error("disabled sounds must not play")
	}
}
