package storage

import (
	"bufio"
	"encoding/binary"
	"fishgame-server/internal/domain"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	MagicHeader string = `FGRP` // 4 байта
	Version1    uint32 = 1

	ReplayExt = ".fgrp"
)

// ReplayFileHeader - это точное представление заголовка файла в памяти.
// binary.Write умеет писать это целиком, так как тут нет слайсов и строк, только массивы и числа.
// Имя набора правил идет сразу после заголовка (RulesLen байт).
type ReplayFileHeader struct {
	Magic           [4]byte // 4 байта
	Version         uint32  // 4 байта
	Seed            int64   // 8 байт
	Timestamp       int64   // 8 байт
	Width           uint16  // 2 байта
	Height          uint16  // 2 байта
	NumRocks        uint16  // 2 байта
	NumFallingRocks uint16  // 2 байта
	FinalScore      int32   // 4 байта
	FinalSteps      int32   // 4 байта
	ActionCount     int32   // 4 байта
	RulesLen        uint8   // 1 байт
}

// ActionHeader - заголовок каждой записи действия.
type ActionHeader struct {
	Step       int32  // 4
	ActionType uint8  // 1
	PayloadLen uint16 // 2
}

// ReplayService хранит реплеи партий в одной папке
type ReplayService struct {
	SaveDir string
}

func NewReplayService(dir string) (*ReplayService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create replay dir: %w", err)
	}
	return &ReplayService{SaveDir: dir}, nil
}

// SaveReplay пишет реплей в файл replay_<seed>_<session>.fgrp и возвращает путь.
// Пишем во временный файл и переименовываем: недописанный реплей не попадает в List.
func (s *ReplayService) SaveReplay(sessionID string, session *domain.ReplaySession) (_ string, err error) {
	filename := fmt.Sprintf("replay_%d_%s%s", session.Seed, sessionID, ReplayExt)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.CreateTemp(s.SaveDir, "replay_*.tmp")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	bw := bufio.NewWriter(f)
	if err = WriteReplay(bw, session); err != nil {
		return "", fmt.Errorf("write replay: %w", err)
	}
	if err = bw.Flush(); err != nil {
		return "", fmt.Errorf("flush replay: %w", err)
	}
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("close replay: %w", err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return "", fmt.Errorf("rename replay: %w", err)
	}
	return path, nil
}

// List возвращает имена сохраненных реплеев по алфавиту
func (s *ReplayService) List() ([]string, error) {
	entries, err := os.ReadDir(s.SaveDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ReplayExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// WriteReplay сериализует реплей в бинарный формат FGRP
func WriteReplay(w io.Writer, s *domain.ReplaySession) error {
	rules := []byte(s.Rules)
	if len(rules) > math.MaxUint8 {
		return fmt.Errorf("rules name too long: %d", len(rules))
	}
	for _, v := range []int{s.Width, s.Height, s.NumRocks, s.NumFallingRocks} {
		if v < 0 || v > math.MaxUint16 {
			return fmt.Errorf("dimension %d does not fit the replay header", v)
		}
	}

	// 1. Подготавливаем и пишем ГЛОБАЛЬНЫЙ ЗАГОЛОВОК
	header := ReplayFileHeader{
		Version:         Version1,
		Seed:            s.Seed,
		Timestamp:       s.Timestamp,
		Width:           uint16(s.Width),
		Height:          uint16(s.Height),
		NumRocks:        uint16(s.NumRocks),
		NumFallingRocks: uint16(s.NumFallingRocks),
		FinalScore:      int32(s.FinalScore),
		FinalSteps:      int32(s.FinalSteps),
		ActionCount:     int32(len(s.Actions)),
		RulesLen:        uint8(len(rules)),
	}
	copy(header.Magic[:], MagicHeader) // Копируем строку в массив [4]byte

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(rules); err != nil {
		return err
	}

	// 2. Пишем действия
	for _, act := range s.Actions {
		payloadLen := len(act.Payload)
		if payloadLen > math.MaxUint16 {
			return fmt.Errorf("payload too long: %d", payloadLen)
		}

		actHeader := ActionHeader{
			Step:       int32(act.Step),
			ActionType: uint8(act.Action),
			PayloadLen: uint16(payloadLen),
		}

		// Пишем заголовок действия одной командой
		if err := binary.Write(w, binary.LittleEndian, &actHeader); err != nil {
			return err
		}
		if payloadLen > 0 {
			if _, err := w.Write(act.Payload); err != nil {
				return err
			}
		}
	}

	return nil
}
