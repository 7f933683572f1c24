package api

import "testing"

func TestDirectionPayload_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       DirectionPayload
		wantErr bool
	}{
		{"right", DirectionPayload{Dx: 1}, false},
		{"up", DirectionPayload{Dy: -1}, false},
		{"zero", DirectionPayload{}, true},
		{"too far", DirectionPayload{Dx: 2}, true},
		{"diagonal", DirectionPayload{Dx: 1, Dy: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSessionRequest_Validate(t *testing.T) {
	neg := -1
	if err := (CreateSessionRequest{}).Validate(); err != nil {
		t.Errorf("empty request should be valid: %v", err)
	}
	if err := (CreateSessionRequest{NumRocks: &neg}).Validate(); err == nil {
		t.Error("negative rock count accepted")
	}
	if err := (CreateSessionRequest{Width: 500}).Validate(); err == nil {
		t.Error("huge grid accepted")
	}
}
