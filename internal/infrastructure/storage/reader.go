package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fishgame-server/internal/domain"
	"fmt"
	"io"
	"os"
)

var ErrInvalidReplay = errors.New("invalid replay file")

// maxActions - защита от гигантских аллокаций на битом файле
const maxActions = 1 << 22

func (s *ReplayService) Load(path string) (*domain.ReplaySession, error) {
	return LoadFile(path)
}

// LoadFile читает реплей с диска
func LoadFile(path string) (*domain.ReplaySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadReplay(bufio.NewReader(f))
}

// ReadReplay разбирает бинарный формат FGRP
func ReadReplay(r io.Reader) (*domain.ReplaySession, error) {
	// 1. Читаем заголовок целиком
	var header ReplayFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return nil, fmt.Errorf("magic %q: %w", header.Magic[:], ErrInvalidReplay)
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("unsupported version: %d (expected %d): %w", header.Version, Version1, ErrInvalidReplay)
	}
	if header.ActionCount < 0 || header.ActionCount > maxActions {
		return nil, fmt.Errorf("action count %d: %w", header.ActionCount, ErrInvalidReplay)
	}

	rules := make([]byte, header.RulesLen)
	if _, err := io.ReadFull(r, rules); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	session := &domain.ReplaySession{
		Seed:            header.Seed,
		Timestamp:       header.Timestamp,
		Width:           int(header.Width),
		Height:          int(header.Height),
		NumRocks:        int(header.NumRocks),
		NumFallingRocks: int(header.NumFallingRocks),
		Rules:           string(rules),
		FinalScore:      int(header.FinalScore),
		FinalSteps:      int(header.FinalSteps),
		Actions:         make([]domain.ReplayAction, header.ActionCount),
	}

	// 2. Читаем Actions
	for i := 0; i < int(header.ActionCount); i++ {
		var ah ActionHeader
		if err := binary.Read(r, binary.LittleEndian, &ah); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}

		act := domain.ReplayAction{
			Step:   int(ah.Step),
			Action: domain.ActionType(ah.ActionType),
		}
		if ah.PayloadLen > 0 {
			act.Payload = make([]byte, ah.PayloadLen)
			if _, err := io.ReadFull(r, act.Payload); err != nil {
				return nil, fmt.Errorf("action %d payload: %w", i, err)
			}
		}

		session.Actions[i] = act
	}

	return session, nil
}
