package domain

import "strings"

// EntityKind - закрытый набор вариантов сущностей на сетке
type EntityKind uint8

const (
	KindUnknown EntityKind = iota
	KindRock
	KindFishHome
	KindFishFood
	KindSnail
	KindFish
)

var kindToString = map[EntityKind]string{
	KindRock:     "ROCK",
	KindFishHome: "HOME",
	KindFishFood: "FOOD",
	KindSnail:    "SNAIL",
	KindFish:     "FISH",
}

var stringToKind = map[string]EntityKind{
	"ROCK":  KindRock,
	"HOME":  KindFishHome,
	"FOOD":  KindFishFood,
	"SNAIL": KindSnail,
	"FISH":  KindFish,
}

// ParseKind конвертирует строку из JSON в EntityKind (без учета регистра)
func ParseKind(s string) EntityKind {
	if k, ok := stringToKind[strings.ToUpper(s)]; ok {
		return k
	}
	return KindUnknown
}

func (k EntityKind) String() string {
	if s, ok := kindToString[k]; ok {
		return s
	}
	return "UNKNOWN"
}
