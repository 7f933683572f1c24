package engine

import (
	"errors"
	"fishgame-server/internal/domain"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"classic rules", func(c *Config) { c.RulesName = "classic" }, false},
		{"empty rules means default", func(c *Config) { c.RulesName = "" }, false},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
		{"negative height", func(c *Config) { c.Height = -3 }, true},
		{"negative rocks", func(c *Config) { c.NumRocks = -1 }, true},
		{"negative falling rocks", func(c *Config) { c.NumFallingRocks = -1 }, true},
		{"unknown rules", func(c *Config) { c.RulesName = "hard" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err must wrap ErrInvalidConfig: %v", err)
			}
		})
	}
}

func TestRules(t *testing.T) {
	if r, ok := RulesByName(""); !ok || r.Name != DefaultRulesName {
		t.Errorf("empty name must resolve to %s", DefaultRulesName)
	}
	if _, ok := RulesByName("nope"); ok {
		t.Error("unknown rules must not resolve")
	}
	if names := RuleNames(); len(names) != 2 || names[0] != "classic" || names[1] != "food" {
		t.Errorf("RuleNames() = %v", names)
	}

	calm := domain.NewFish(1, false)
	fast := domain.NewFish(2, true)
	if FoodRules.CatchValue(calm) != 10 || FoodRules.CatchValue(fast) != 20 {
		t.Error("catch values must be 10/20")
	}

	tests := []struct {
		steps, found int
		want         bool
	}{
		{20, 4, false},
		{21, 3, false},
		{21, 4, true},
	}
	for _, tt := range tests {
		if got := ClassicRules.LossEligible(tt.steps, tt.found); got != tt.want {
			t.Errorf("LossEligible(%d, %d) = %v, want %v", tt.steps, tt.found, got, tt.want)
		}
	}
}

func TestGlyphFor(t *testing.T) {
	tests := []struct {
		name string
		e    *domain.Entity
		char byte
	}{
		{"player", domain.NewPlayer(), '@'},
		{"calm fish", domain.NewFish(3, false), 'f'},
		{"fast fish", domain.NewFish(3, true), 'F'},
		{"rock", domain.NewRock(), '#'},
		{"falling rock", domain.NewFallingRock(), 'v'},
		{"home", domain.NewFishHome(), 'H'},
		{"food", domain.NewFishFood(), '*'},
		{"snail", domain.NewSnail(), 's'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GlyphFor(tt.e).Char(); got != tt.char {
				t.Errorf("char = %q, want %q", got, tt.char)
			}
		})
	}

	if GlyphFor(domain.NewFish(3, false)).Color() != domain.Palette[3] {
		t.Error("fish color must come from the palette")
	}
}

func TestTopAt(t *testing.T) {
	g := newTestGame(t, 3, 3, FoodRules, &scriptRand{}, 1, 1)
	if top := TopAt(g.World, 1, 1); top != g.Player {
		t.Errorf("player must be drawn over home, got %v", top)
	}
	if TopAt(g.World, 0, 0) != nil {
		t.Error("empty cell")
	}
}
