package domain

import "strings"

// CommandType - Внутренний числовой идентификатор клиентской команды
type CommandType uint8

const (
	CommandUnknown CommandType = iota
	CommandInit
	CommandMove
	CommandFire
	CommandSupply
	CommandRuneStart
	CommandRuneHit
	// Админские команды (судейская консоль)
	CommandGrant
	CommandRevoke
	CommandKill
	CommandRevive
)

// Маппинг для конвертации JSON -> Domain
var commandStringToType = map[string]CommandType{
	"INIT":       CommandInit,
	"MOVE":       CommandMove,
	"FIRE":       CommandFire,
	"SUPPLY":     CommandSupply,
	"RUNE_START": CommandRuneStart,
	"RUNE_HIT":   CommandRuneHit,
	"GRANT":      CommandGrant,
	"REVOKE":     CommandRevoke,
	"KILL":       CommandKill,
	"REVIVE":     CommandRevive,
}

// Маппинг для логов Domain -> String
var commandTypeToString = map[CommandType]string{
	CommandInit:      "INIT",
	CommandMove:      "MOVE",
	CommandFire:      "FIRE",
	CommandSupply:    "SUPPLY",
	CommandRuneStart: "RUNE_START",
	CommandRuneHit:   "RUNE_HIT",
	CommandGrant:     "GRANT",
	CommandRevoke:    "REVOKE",
	CommandKill:      "KILL",
	CommandRevive:    "REVIVE",
}

// ParseCommand конвертирует строку из JSON в CommandType
func ParseCommand(s string) CommandType {
	// Делаем нечувствительным к регистру для надежности
	upper := strings.ToUpper(s)
	if val, ok := commandStringToType[upper]; ok {
		return val
	}
	return CommandUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (c CommandType) String() string {
	if val, ok := commandTypeToString[c]; ok {
		return val
	}
	return "UNKNOWN"
}

// IsAdmin - команды судейской консоли, недоступные операторам роботов
func (c CommandType) IsAdmin() bool {
	switch c {
	case CommandGrant, CommandRevoke, CommandKill, CommandRevive:
		return true
	}
	return false
}
