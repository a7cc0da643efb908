package enums

import "strings"

// Role - тип сущности на поле.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleHero
	RoleEngineer
	RoleInfantry
	RoleSentinel
	RoleDrone
	RoleOre
	RoleDepot
	RoleOutpost
	RoleBase
	RoleCapturePoint
	RoleBuffArea
	RolePowerRune
	RoleReferee
)

var roleToString = map[Role]string{
	RoleHero:         "HERO",
	RoleEngineer:     "ENGINEER",
	RoleInfantry:     "INFANTRY",
	RoleSentinel:     "SENTINEL",
	RoleDrone:        "DRONE",
	RoleOre:          "ORE",
	RoleDepot:        "DEPOT",
	RoleOutpost:      "OUTPOST",
	RoleBase:         "BASE",
	RoleCapturePoint: "CAPTURE_POINT",
	RoleBuffArea:     "BUFF_AREA",
	RolePowerRune:    "POWER_RUNE",
	RoleReferee:      "REFEREE",
}

var roleStringToType = map[string]Role{
	"HERO":          RoleHero,
	"ENGINEER":      RoleEngineer,
	"INFANTRY":      RoleInfantry,
	"SENTINEL":      RoleSentinel,
	"DRONE":         RoleDrone,
	"ORE":           RoleOre,
	"DEPOT":         RoleDepot,
	"OUTPOST":       RoleOutpost,
	"BASE":          RoleBase,
	"CAPTURE_POINT": RoleCapturePoint,
	"BUFF_AREA":     RoleBuffArea,
	"POWER_RUNE":    RolePowerRune,
	"REFEREE":       RoleReferee,
}

// String возвращает строковое представление (для логов и дебага)
func (r Role) String() string {
	if val, ok := roleToString[r]; ok {
		return val
	}
	return "UNKNOWN"
}

// ParseRole конвертирует строку в Enum
func ParseRole(s string) Role {
	upper := strings.ToUpper(s)
	if val, ok := roleStringToType[upper]; ok {
		return val
	}
	return RoleUnknown
}

// IsRobot - роли, которые управляются операторами и участвуют в бою.
func (r Role) IsRobot() bool {
	switch r {
	case RoleHero, RoleEngineer, RoleInfantry, RoleSentinel, RoleDrone:
		return true
	}
	return false
}

// IsStructure - неподвижные объекты с HP (аванпост, база).
func (r Role) IsStructure() bool {
	return r == RoleOutpost || r == RoleBase
}
