package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fishgame-server/internal/domain"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleReplay() *domain.ReplaySession {
	return &domain.ReplaySession{
		Seed:            -42,
		Timestamp:       1700000000,
		Width:           20,
		Height:          15,
		NumRocks:        20,
		NumFallingRocks: 2,
		Rules:           "food",
		FinalScore:      130,
		FinalSteps:      57,
		Actions: []domain.ReplayAction{
			{Step: 0, Action: domain.ActionMove, Payload: json.RawMessage(`{"dx":1,"dy":0}`)},
			{Step: 0, Action: domain.ActionStep},
			{Step: 1, Action: domain.ActionClick, Payload: json.RawMessage(`{"x":3,"y":4}`)},
		},
	}
}

func TestReplay_WriteRead(t *testing.T) {
	want := sampleReplay()

	var buf bytes.Buffer
	if err := WriteReplay(&buf, want); err != nil {
		t.Fatalf("WriteReplay: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte(MagicHeader)) {
		t.Fatal("file must start with the magic header")
	}

	got, err := ReadReplay(&buf)
	if err != nil {
		t.Fatalf("ReadReplay: %v", err)
	}

	if got.Seed != want.Seed || got.Rules != want.Rules || got.Width != want.Width ||
		got.NumFallingRocks != want.NumFallingRocks || got.FinalScore != want.FinalScore {
		t.Errorf("header mismatch: got %+v", got)
	}
	if len(got.Actions) != len(want.Actions) {
		t.Fatalf("actions = %d, want %d", len(got.Actions), len(want.Actions))
	}
	for i := range want.Actions {
		if got.Actions[i].Action != want.Actions[i].Action || got.Actions[i].Step != want.Actions[i].Step ||
			!bytes.Equal(got.Actions[i].Payload, want.Actions[i].Payload) {
			t.Errorf("action %d: got %+v, want %+v", i, got.Actions[i], want.Actions[i])
		}
	}
}

func TestReplay_RejectsGarbage(t *testing.T) {
	t.Run("bad magic", func(t *testing.T) {
		var buf bytes.Buffer
		h := ReplayFileHeader{Version: Version1}
		copy(h.Magic[:], "NOPE")
		_ = binary.Write(&buf, binary.LittleEndian, &h)
		if _, err := ReadReplay(&buf); !errors.Is(err, ErrInvalidReplay) {
			t.Errorf("err = %v, want ErrInvalidReplay", err)
		}
	})

	t.Run("future version", func(t *testing.T) {
		var buf bytes.Buffer
		h := ReplayFileHeader{Version: 99}
		copy(h.Magic[:], MagicHeader)
		_ = binary.Write(&buf, binary.LittleEndian, &h)
		if _, err := ReadReplay(&buf); !errors.Is(err, ErrInvalidReplay) {
			t.Errorf("err = %v, want ErrInvalidReplay", err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteReplay(&buf, sampleReplay()); err != nil {
			t.Fatal(err)
		}
		short := bytes.NewReader(buf.Bytes()[:buf.Len()-5])
		if _, err := ReadReplay(short); err == nil {
			t.Error("truncated file must fail")
		}
	})
}

func TestReplayService_SaveLoadList(t *testing.T) {
	svc, err := NewReplayService(filepath.Join(t.TempDir(), "replays"))
	if err != nil {
		t.Fatal(err)
	}

	path, err := svc.SaveReplay("abc", sampleReplay())
	if err != nil {
		t.Fatalf("SaveReplay: %v", err)
	}
	if filepath.Ext(path) != ReplayExt {
		t.Errorf("path %s must end with %s", path, ReplayExt)
	}

	names, err := svc.List()
	if err != nil || len(names) != 1 {
		t.Fatalf("List() = %v, %v", names, err)
	}

	rs, err := svc.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rs.Actions) != 3 {
		t.Errorf("actions = %d, want 3", len(rs.Actions))
	}
}

func TestReplayService_FailedSaveLeavesNoFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "replays")
	svc, err := NewReplayService(dir)
	if err != nil {
		t.Fatal(err)
	}

	rs := sampleReplay()
	rs.Rules = strings.Repeat("x", 300) // не влезает в RulesLen
	if _, err := svc.SaveReplay("abc", rs); err == nil {
		t.Fatal("SaveReplay must fail for an oversized rules name")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed save left files behind: %v", entries)
	}

	// Следующее сохранение с тем же ID проходит как обычно
	if _, err := svc.SaveReplay("abc", sampleReplay()); err != nil {
		t.Fatalf("SaveReplay after failure: %v", err)
	}
	names, err := svc.List()
	if err != nil || len(names) != 1 {
		t.Fatalf("List() = %v, %v", names, err)
	}
}

func TestScoreStore(t *testing.T) {
	store, err := OpenScoreStore(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("OpenScoreStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Now()
	recs := []domain.ScoreRecord{
		{SessionID: "a", Rules: "food", Score: 50, Steps: 40, FinishedAt: now},
		{SessionID: "b", Rules: "food", Score: 90, Steps: 80, GameOver: true, FinishedAt: now},
		{SessionID: "c", Rules: "classic", Score: 120, Steps: 60, FinishedAt: now},
		{SessionID: "d", Rules: "food", Score: 90, Steps: 30, FinishedAt: now},
	}
	for _, r := range recs {
		if err := store.RecordResult(ctx, r); err != nil {
			t.Fatalf("RecordResult(%s): %v", r.SessionID, err)
		}
	}

	all, err := store.TopScores(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 || all[0].SessionID != "c" {
		t.Fatalf("TopScores(all) = %+v", all)
	}

	food, err := store.TopScores(ctx, "food", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(food) != 2 || food[0].SessionID != "d" || food[1].SessionID != "b" {
		t.Errorf("ties must be broken by fewer steps: %+v", food)
	}
	if !food[1].GameOver {
		t.Error("GameOver must round-trip")
	}
	if food[0].FinishedAt.UnixMilli() != now.UnixMilli() {
		t.Error("FinishedAt must keep millisecond precision")
	}
}
