package telemetry

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func sampleStats(tick uint32) engine.TickStats {
	return engine.TickStats{
		Match:     "M1",
		Tick:      tick,
		SimTime:   2 * time.Second,
		Elapsed:   1500 * time.Microsecond,
		Entities:  5,
		Actions:   12,
		Commands:  1,
		Observers: 2,
	}
}

func TestTickPoint(t *testing.T) {
	at := time.Unix(1700000000, 0)
	line := influxdb2_write.PointToLineProtocol(TickPoint(sampleStats(100), at), time.Second)

	assert.True(t, strings.HasPrefix(line, "tick,match=M1 "), line)
	for _, field := range []string{"entities=5i", "actions=12i", "tick=100i", "elapsed_ms=1.5", "sim_seconds=2"} {
		assert.Contains(t, line, field)
	}
	assert.Contains(t, line, "1700000000")
}

func TestNewInfluxSink_Disabled(t *testing.T) {
	_, err := NewInfluxSink(context.Background(), InfluxConfig{})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestInfluxSink_BackupWhenUnreachable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.lp.gz")
	sink, err := NewInfluxSink(context.Background(), InfluxConfig{
		Enabled:    true,
		URL:        "http://127.0.0.1:1",
		Org:        "scut",
		Bucket:     "simulator",
		Every:      2,
		BackupPath: path,
	})
	require.NoError(t, err)

	// Нечётные тики пропускаются
	for tick := uint32(1); tick <= 4; tick++ {
		sink.RecordTick(sampleStats(tick))
	}
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "tick=2i")
	assert.Contains(t, lines[1], "tick=4i")
}

func TestNewInfluxSink_UnreachableWithoutBackup(t *testing.T) {
	_, err := NewInfluxSink(context.Background(), InfluxConfig{Enabled: true, URL: "http://127.0.0.1:1"})
	assert.Error(t, err)
}
