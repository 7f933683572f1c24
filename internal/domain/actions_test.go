package domain

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		input    string
		expected ActionType
	}{
		{"MOVE", ActionMove},
		{"move", ActionMove},
		{"Step", ActionStep},
		{"WAIT", ActionStep},
		{"click", ActionClick},
		{"SPAWN_FOOD", ActionSpawnFood},
		{"snapshot", ActionSnapshot},
		{"ATTACK", ActionUnknown},
		{"", ActionUnknown},
	}

	for _, tt := range tests {
		result := ParseAction(tt.input)
		if result != tt.expected {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestActionType_String(t *testing.T) {
	tests := []struct {
		action   ActionType
		expected string
	}{
		{ActionMove, "MOVE"},
		{ActionStep, "STEP"},
		{ActionClick, "CLICK"},
		{ActionSnapshot, "SNAPSHOT"},
		{ActionUnknown, "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.action.String(); got != tt.expected {
			t.Errorf("ActionType(%d).String() = %q, want %q", tt.action, got, tt.expected)
		}
	}
}

func TestActionType_IsReadOnly(t *testing.T) {
	if !ActionSnapshot.IsReadOnly() {
		t.Error("SNAPSHOT must be read-only")
	}
	for _, a := range []ActionType{ActionInit, ActionMove, ActionStep, ActionClick, ActionSpawnFood} {
		if a.IsReadOnly() {
			t.Errorf("%s must not be read-only", a)
		}
	}
}

func TestPackEntityID(t *testing.T) {
	id := PackEntityID(KindSnail, 42)
	if id.Kind() != KindSnail || id.Index() != 42 {
		t.Errorf("unpacked (%s, %d), want (SNAIL, 42)", id.Kind(), id.Index())
	}
	if id.String() != "[SNAIL:42]" {
		t.Errorf("String() = %q", id.String())
	}

	data, err := id.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var back EntityID
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}
	if back != id {
		t.Errorf("JSON round trip: got %d want %d", back, id)
	}
}

func TestDirectionFromDelta(t *testing.T) {
	for _, d := range Directions {
		dx, dy := d.Delta()
		if got := DirectionFromDelta(dx, dy); got != d {
			t.Errorf("DirectionFromDelta(%d,%d) = %s, want %s", dx, dy, got, d)
		}
	}
	if DirectionFromDelta(1, 1) != DirNone || DirectionFromDelta(0, 0) != DirNone {
		t.Error("diagonal and zero deltas must map to DirNone")
	}
}
