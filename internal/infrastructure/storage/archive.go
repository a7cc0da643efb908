package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

// Типы хранилища итогов матчей (storage.type)
const (
	TypeNone     = "none"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

var ErrUnknownStorage = errors.New("unknown storage type")

// ArchiveConfig - параметры подключения архива матчей.
type ArchiveConfig struct {
	Type        string
	SQLitePath  string // Пусто - база в памяти
	PostgresDSN string
}

// MatchRow - итог матча.
type MatchRow struct {
	ID        string    `gorm:"primaryKey;size:26"` // ULID
	Layout    string    `gorm:"size:64"`
	Seed      int64
	StartedAt time.Time `gorm:"index"`
	EndedAt   time.Time
	Ticks     uint32
	Winner    string     `gorm:"size:16"`
	Events    []EventRow `gorm:"foreignKey:MatchID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// EventRow - заметное событие матча, нагрузка хранится как JSON.
type EventRow struct {
	ID      uint   `gorm:"primaryKey"`
	MatchID string `gorm:"size:26;index:idx_event_match"`
	Tick    uint32 `gorm:"index:idx_event_match"`
	Name    string `gorm:"size:64"`
	Payload datatypes.JSON
}

// MatchStore - архив итогов матчей поверх gorm.
type MatchStore struct {
	DB  *gorm.DB
	log *logrus.Entry
}

// OpenArchive подключает архив по типу из конфигурации.
// Для TypeNone возвращает nil без ошибки: архив выключен.
func OpenArchive(cfg ArchiveConfig) (*MatchStore, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Type {
	case "", TypeNone:
		return nil, nil
	case TypeSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "file::memory:?cache=shared"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		})
	case TypePostgres:
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.PostgresDSN,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s archive: %w", cfg.Type, err)
	}

	return NewMatchStore(db)
}

// NewMatchStore мигрирует схему и возвращает архив поверх готового соединения.
func NewMatchStore(db *gorm.DB) (*MatchStore, error) {
	if err := db.AutoMigrate(&MatchRow{}, &EventRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	s := &MatchStore{
		DB:  db,
		log: logger.Log.WithFields(logrus.Fields{"component": "archive", "dialect": db.Dialector.Name()}),
	}
	s.log.Info("Match archive ready")
	return s, nil
}

// SaveMatch сохраняет итог матча вместе с событиями одной транзакцией.
func (s *MatchStore) SaveMatch(ctx context.Context, rec domain.MatchRecord) error {
	row := MatchRow{
		ID:        rec.ID,
		Layout:    rec.Layout,
		Seed:      rec.Seed,
		StartedAt: rec.StartedAt,
		EndedAt:   rec.EndedAt,
		Ticks:     rec.Ticks,
		Winner:    rec.Winner.String(),
	}

	for _, ev := range rec.Events {
		payload, err := json.Marshal(ev.Data)
		if err != nil {
			return fmt.Errorf("event %s at tick %d: %w", ev.Name, ev.Tick, err)
		}
		row.Events = append(row.Events, EventRow{
			MatchID: rec.ID,
			Tick:    ev.Tick,
			Name:    string(ev.Name),
			Payload: datatypes.JSON(payload),
		})
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("save match %s: %w", rec.ID, err)
	}

	s.log.WithFields(logrus.Fields{
		"match":  rec.ID,
		"events": len(row.Events),
		"winner": row.Winner,
	}).Debug("Match archived")
	return nil
}

// ListMatches возвращает последние матчи (новые первыми), без событий.
func (s *MatchStore) ListMatches(ctx context.Context, limit int) ([]MatchRow, error) {
	var rows []MatchRow
	err := s.DB.WithContext(ctx).
		Order("started_at desc").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Events возвращает события матча по возрастанию тика.
func (s *MatchStore) Events(ctx context.Context, matchID string) ([]EventRow, error) {
	var rows []EventRow
	err := s.DB.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("tick asc, id asc").
		Find(&rows).Error
	return rows, err
}

// Close закрывает пул соединений.
func (s *MatchStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
