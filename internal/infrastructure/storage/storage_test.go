package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

var (
	red    = types.NewIdentity(enums.CampRed, enums.RoleInfantry, 3, 0)
	blue   = types.NewIdentity(enums.CampBlue, enums.RoleHero, 1, 0)
	runeID = types.NewIdentity(enums.CampNeutral, enums.RolePowerRune, 1, 0)
)

func sampleSession(t *testing.T) *domain.ReplaySession {
	t.Helper()
	actions := []struct {
		tick   uint32
		action domain.Action
	}{
		{1, domain.RobotMove{Receiver: red, X: 4, Y: 3}},
		{3, domain.CombatFire{Shooter: red, Target: blue, Plate: 2}},
		{7, domain.ChildAction{Inner: domain.RuneHit{Rune: runeID, Camp: enums.CampRed, Branch: 4}, Parent: runeID, Child: 4}},
	}

	s := &domain.ReplaySession{MatchID: "01JTESTMATCH", Seed: 42, Timestamp: 1700000000, Layout: "duel"}
	for _, a := range actions {
		entry, err := domain.NewJournalEntry(a.tick, a.action)
		require.NoError(t, err)
		s.Entries = append(s.Entries, entry)
	}
	return s
}

func TestJournal_BinaryRoundTrip(t *testing.T) {
	src := sampleSession(t)

	var buf bytes.Buffer
	require.NoError(t, writeBinary(&buf, src))
	assert.Equal(t, MagicHeader, string(buf.Bytes()[:4]))

	got, err := readBinary(&buf)
	require.NoError(t, err)
	assert.Equal(t, src.MatchID, got.MatchID)
	assert.Equal(t, src.Layout, got.Layout)
	assert.Equal(t, src.Seed, got.Seed)
	require.Len(t, got.Entries, 3)

	for idx := range src.Entries {
		want, err := src.Entries[idx].Decode()
		require.NoError(t, err)
		have, err := got.Entries[idx].Decode()
		require.NoError(t, err)
		assert.Equal(t, want, have)
		assert.Equal(t, src.Entries[idx].Tick, got.Entries[idx].Tick)
	}
}

func TestJournal_ReadErrors(t *testing.T) {
	var good bytes.Buffer
	require.NoError(t, writeBinary(&good, sampleSession(t)))
	raw := good.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"Wrong magic", append([]byte("CDRP"), raw[4:]...)},
		{"Truncated entries", raw[:len(raw)-3]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readBinary(bytes.NewReader(tt.data))
			assert.Error(t, err)
		})
	}

	_, err := readBinary(bytes.NewReader(append([]byte("CDRP"), raw[4:]...)))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestReplayService_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "replays")
	svc, err := NewReplayService(dir)
	require.NoError(t, err)

	src := sampleSession(t)
	require.NoError(t, svc.Save(src))

	path := filepath.Join(dir, "replay_01JTESTMATCH_42.sxrp")
	assert.FileExists(t, path)

	got, err := svc.Load(path)
	require.NoError(t, err)
	assert.Len(t, got.Entries, len(src.Entries))

	_, err = svc.Load(filepath.Join(dir, "missing.sxrp"))
	assert.Error(t, err)
}

func newTestArchive(t *testing.T) *MatchStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store, err := NewMatchStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMatchStore_SaveAndQuery(t *testing.T) {
	store := newTestArchive(t)
	ctx := context.Background()
	start := time.Date(2025, 12, 4, 10, 0, 0, 0, time.UTC)

	older := domain.MatchRecord{ID: "A", Layout: "duel", Seed: 1, StartedAt: start, Winner: enums.CampNeutral}
	newer := domain.MatchRecord{
		ID:        "B",
		Layout:    "standard",
		Seed:      2,
		StartedAt: start.Add(time.Hour),
		EndedAt:   start.Add(time.Hour + 7*time.Minute),
		Ticks:     21000,
		Winner:    enums.CampRed,
		Events: []domain.MatchEvent{
			{Tick: 10, Name: domain.NameStageStart, Data: domain.StageStart{}},
			{Tick: 900, Name: domain.NameCombatKill, Data: domain.CombatKill{Victim: blue, Killer: red}},
		},
	}
	require.NoError(t, store.SaveMatch(ctx, older))
	require.NoError(t, store.SaveMatch(ctx, newer))

	// Повторное сохранение с тем же ID - ошибка первичного ключа
	assert.Error(t, store.SaveMatch(ctx, older))

	rows, err := store.ListMatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "B", rows[0].ID)
	assert.Equal(t, "RED", rows[0].Winner)

	events, err := store.Events(ctx, "B")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(domain.NameCombatKill), events[1].Name)

	var kill domain.CombatKill
	require.NoError(t, json.Unmarshal(events[1].Payload, &kill))
	assert.Equal(t, blue, kill.Victim)
	assert.Equal(t, red, kill.Killer)
}

func TestOpenArchive(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ArchiveConfig
		wantNil bool
		wantErr error
	}{
		{"Disabled", ArchiveConfig{Type: TypeNone}, true, nil},
		{"Empty type", ArchiveConfig{}, true, nil},
		{"Unknown", ArchiveConfig{Type: "mongo"}, true, ErrUnknownStorage},
		{"SQLite file", ArchiveConfig{Type: TypeSQLite, SQLitePath: filepath.Join(t.TempDir(), "matches.db")}, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := OpenArchive(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, store)
				return
			}
			require.NotNil(t, store)
			assert.NoError(t, store.Close())
		})
	}
}
