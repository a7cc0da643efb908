package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

// Config хранит параметры запуска матчей
type Config struct {
	// TickRate - частота фиксированного шага, Гц.
	TickRate int
	// Seed - мастер-зерно. 0 - случайное для каждого матча.
	Seed int64

	MaxDispatchDepth int
	IsolateFaults    bool

	// AllowAdmin разрешает судейские команды (GRANT, REVOKE, KILL, REVIVE).
	AllowAdmin bool

	Rules  domain.Rules
	Layout string // Раскладка поля по умолчанию
}

// NewConfig создает конфиг по умолчанию
func NewConfig() Config {
	return Config{
		TickRate:         domain.DefaultTickRate,
		MaxDispatchDepth: domain.DefaultMaxDispatchDepth,
		IsolateFaults:    true,
		Rules:            domain.DefaultRules(),
		Layout:           "standard",
	}
}

// TickInterval - длительность одного шага симуляции.
func (c Config) TickInterval() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = domain.DefaultTickRate
	}
	return time.Second / time.Duration(rate)
}

// MatchSeed возвращает зерно нового матча: заданное или случайное.
func (c Config) MatchSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

// SimOptions собирает параметры авторитетного контекста симуляции.
func (c Config) SimOptions(seed int64, log *logrus.Entry) SimOptions {
	return SimOptions{
		Authority:     true,
		Seed:          seed,
		Rules:         c.Rules,
		MaxDepth:      c.MaxDispatchDepth,
		IsolateFaults: c.IsolateFaults,
		Log:           log,
	}
}
