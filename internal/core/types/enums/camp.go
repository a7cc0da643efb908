package enums

import "strings"

// Camp - сторона, которой принадлежит сущность.
type Camp uint8

const (
	CampUnknown Camp = iota
	CampNeutral
	CampRed
	CampBlue
)

var campToString = map[Camp]string{
	CampNeutral: "NEUTRAL",
	CampRed:     "RED",
	CampBlue:    "BLUE",
}

var campStringToType = map[string]Camp{
	"NEUTRAL": CampNeutral,
	"RED":     CampRed,
	"BLUE":    CampBlue,
}

// String возвращает строковое представление (для логов и дебага)
func (c Camp) String() string {
	if val, ok := campToString[c]; ok {
		return val
	}
	return "UNKNOWN"
}

// ParseCamp конвертирует строку в Enum (нужно для загрузки раскладок/конфигов)
func ParseCamp(s string) Camp {
	upper := strings.ToUpper(s)
	if val, ok := campStringToType[upper]; ok {
		return val
	}
	return CampUnknown
}

// Opponent возвращает противоположную сторону. Для нейтралов и неизвестных - CampUnknown.
func (c Camp) Opponent() Camp {
	switch c {
	case CampRed:
		return CampBlue
	case CampBlue:
		return CampRed
	default:
		return CampUnknown
	}
}

// IsPlayable - true для сторон, которые могут владеть роботами.
func (c Camp) IsPlayable() bool {
	return c == CampRed || c == CampBlue
}
