package utils

import (
	"hash/fnv"
	"math/rand"
)

// NewRng создает локальный генератор. Один генератор на игру, никакого глобального состояния.
func NewRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// StringToSeed превращает строку (например "daily-2026-10-19") в сид.
// Одинаковая строка всегда дает одинаковый мир.
func StringToSeed(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64() & 0x7FFFFFFFFFFFFFFF)
}
