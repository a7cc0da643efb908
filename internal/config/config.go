package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/infrastructure/storage"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/infrastructure/telemetry"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/utils"
)

// EnvPrefix - префикс переменных окружения: SX_SERVER_PORT, SX_ENGINE_SEED, ...
const EnvPrefix = "SX"

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type EngineConfig struct {
	TickRate         int    `mapstructure:"tickRate"`
	Seed             int64  `mapstructure:"seed"`
	SeedPhrase       string `mapstructure:"seedPhrase"` // Строка вместо числа (хешируется в зерно)
	MaxDispatchDepth int    `mapstructure:"maxDispatchDepth"`
	IsolateFaults    bool   `mapstructure:"isolateFaults"`
	AllowAdmin       bool   `mapstructure:"allowAdmin"`
	Layout           string `mapstructure:"layout"`
}

type RulesConfig struct {
	CaptureSeconds       float64       `mapstructure:"captureSeconds"`
	RuneActivatedSeconds float64       `mapstructure:"runeActivatedSeconds"`
	RuneHitTimeout       time.Duration `mapstructure:"runeHitTimeout"`
	RuneBranches         int           `mapstructure:"runeBranches"`
	SupplyCooldown       time.Duration `mapstructure:"supplyCooldown"`
	MatchSeconds         float64       `mapstructure:"matchSeconds"`
	ReviveSeconds        float64       `mapstructure:"reviveSeconds"`
}

type StorageConfig struct {
	Type        string `mapstructure:"type"` // none | sqlite | postgres
	SQLitePath  string `mapstructure:"sqlitePath"`
	PostgresDSN string `mapstructure:"postgresDsn"`
	ReplayDir   string `mapstructure:"replayDir"` // Пусто - журналы не пишутся
}

type InfluxConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	Token      string `mapstructure:"token"`
	Org        string `mapstructure:"org"`
	Bucket     string `mapstructure:"bucket"`
	Every      uint32 `mapstructure:"every"`
	BackupPath string `mapstructure:"backupPath"`
}

type TelemetryConfig struct {
	Influx InfluxConfig `mapstructure:"influx"`
}

type LoggingConfig struct {
	GelfAddress string `mapstructure:"gelfAddress"`
}

type BotsConfig struct {
	// Camps - стороны, роботами которых управляют встроенные боты.
	Camps []string `mapstructure:"camps"`
}

// Config - вся конфигурация сервера.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Bots      BotsConfig      `mapstructure:"bots"`
}

func setDefaults(v *viper.Viper) {
	rules := domain.DefaultRules()

	v.SetDefault("server.port", "8080")

	v.SetDefault("engine.tickRate", domain.DefaultTickRate)
	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.seedPhrase", "")
	v.SetDefault("engine.maxDispatchDepth", domain.DefaultMaxDispatchDepth)
	v.SetDefault("engine.isolateFaults", true)
	v.SetDefault("engine.allowAdmin", false)
	v.SetDefault("engine.layout", "standard")

	v.SetDefault("rules.captureSeconds", rules.CaptureDuration.Seconds())
	v.SetDefault("rules.runeActivatedSeconds", rules.RuneActivatedDuration.Seconds())
	v.SetDefault("rules.runeHitTimeout", rules.RuneHitTimeout)
	v.SetDefault("rules.runeBranches", rules.RuneBranches)
	v.SetDefault("rules.supplyCooldown", rules.SupplyCooldown)
	v.SetDefault("rules.matchSeconds", rules.MatchDuration.Seconds())
	v.SetDefault("rules.reviveSeconds", rules.ReviveDelay.Seconds())

	v.SetDefault("storage.type", storage.TypeNone)
	v.SetDefault("storage.sqlitePath", "simulator.db")
	v.SetDefault("storage.postgresDsn", "host=localhost port=5432 user=postgres password=postgres dbname=simulator sslmode=disable")
	v.SetDefault("storage.replayDir", "replays")

	v.SetDefault("telemetry.influx.enabled", false)
	v.SetDefault("telemetry.influx.url", "http://localhost:8086")
	v.SetDefault("telemetry.influx.token", "")
	v.SetDefault("telemetry.influx.org", "scutrobotlab")
	v.SetDefault("telemetry.influx.bucket", "simulator")
	v.SetDefault("telemetry.influx.every", domain.DefaultTickRate)
	v.SetDefault("telemetry.influx.backupPath", "")

	v.SetDefault("logging.gelfAddress", "")

	v.SetDefault("bots.camps", []string{})
}

// Load читает конфигурацию: значения по умолчанию, .env, файл (если задан), переменные SX_*.
//
// Отсутствующий .env не ошибка. Отсутствующий явно указанный файл - ошибка.
func Load(path string) (Config, error) {
	// 1. .env в рабочем каталоге
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 2. Файл конфигурации (json/toml/yaml по расширению)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// 3. Окружение
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые нельзя исправить молча.
func (c Config) Validate() error {
	var errs []error
	if c.Engine.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("engine.tickRate must be positive, got %d", c.Engine.TickRate))
	}
	if c.Engine.MaxDispatchDepth <= 0 {
		errs = append(errs, fmt.Errorf("engine.maxDispatchDepth must be positive, got %d", c.Engine.MaxDispatchDepth))
	}
	if c.Rules.RuneBranches <= 0 {
		errs = append(errs, fmt.Errorf("rules.runeBranches must be positive, got %d", c.Rules.RuneBranches))
	}
	switch c.Storage.Type {
	case storage.TypeNone, storage.TypeSQLite, storage.TypePostgres:
	default:
		errs = append(errs, fmt.Errorf("storage.type: %w: %q", storage.ErrUnknownStorage, c.Storage.Type))
	}
	for _, camp := range c.Bots.Camps {
		if !enums.ParseCamp(camp).IsPlayable() {
			errs = append(errs, fmt.Errorf("bots.camps: %q is not a playable camp", camp))
		}
	}
	return errors.Join(errs...)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ToEngine собирает параметры матчей.
func (c Config) ToEngine() engine.Config {
	cfg := engine.NewConfig()
	cfg.TickRate = c.Engine.TickRate
	cfg.Seed = c.Engine.Seed
	if cfg.Seed == 0 && c.Engine.SeedPhrase != "" {
		cfg.Seed = utils.StringToSeed(c.Engine.SeedPhrase)
	}
	cfg.MaxDispatchDepth = c.Engine.MaxDispatchDepth
	cfg.IsolateFaults = c.Engine.IsolateFaults
	cfg.AllowAdmin = c.Engine.AllowAdmin
	cfg.Layout = c.Engine.Layout

	cfg.Rules.CaptureDuration = seconds(c.Rules.CaptureSeconds)
	cfg.Rules.RuneActivatedDuration = seconds(c.Rules.RuneActivatedSeconds)
	cfg.Rules.RuneHitTimeout = c.Rules.RuneHitTimeout
	cfg.Rules.RuneBranches = c.Rules.RuneBranches
	cfg.Rules.SupplyCooldown = c.Rules.SupplyCooldown
	cfg.Rules.MatchDuration = seconds(c.Rules.MatchSeconds)
	cfg.Rules.ReviveDelay = seconds(c.Rules.ReviveSeconds)
	return cfg
}

// ToArchive - параметры архива матчей.
func (c Config) ToArchive() storage.ArchiveConfig {
	return storage.ArchiveConfig{
		Type:        c.Storage.Type,
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// ToInflux - параметры телеметрии.
func (c Config) ToInflux() telemetry.InfluxConfig {
	in := c.Telemetry.Influx
	return telemetry.InfluxConfig{
		Enabled:    in.Enabled,
		URL:        in.URL,
		Token:      in.Token,
		Org:        in.Org,
		Bucket:     in.Bucket,
		Every:      in.Every,
		BackupPath: in.BackupPath,
	}
}

// BotCamps - стороны под управлением ботов.
func (c Config) BotCamps() []enums.Camp {
	result := make([]enums.Camp, 0, len(c.Bots.Camps))
	for _, s := range c.Bots.Camps {
		result = append(result, enums.ParseCamp(s))
	}
	return result
}
