package domain

import (
	"fmt"
	"strconv"
)

// EntityID - упакованный идентификатор (Kind + Index)
type EntityID uint64

// Конфигурация битов
const (
	bitsIndex = 56
	bitsKind  = 8

	shiftKind = bitsIndex

	maskIndex = (1 << bitsIndex) - 1
	maskKind  = (1 << bitsKind) - 1
)

// PackEntityID создает ID из вида сущности и порядкового номера регистрации
func PackEntityID(kind EntityKind, index uint64) EntityID {
	id := index & maskIndex
	id |= (uint64(kind) & maskKind) << shiftKind
	return EntityID(id)
}

func (id EntityID) Kind() EntityKind {
	return EntityKind((id >> shiftKind) & maskKind)
}

func (id EntityID) Index() uint64 {
	return uint64(id & maskIndex)
}

// MarshalJSON сериализует ID в строку, так как JS теряет точность для больших int64
func (id EntityID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(id), 10) + `"`), nil
}

// UnmarshalJSON принимает и строку, и число
func (id *EntityID) UnmarshalJSON(data []byte) error {
	if len(data) > 1 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	val, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return err
	}
	*id = EntityID(val)
	return nil
}

// String для логов: [FISH:12]
func (id EntityID) String() string {
	return fmt.Sprintf("[%s:%d]", id.Kind(), id.Index())
}
