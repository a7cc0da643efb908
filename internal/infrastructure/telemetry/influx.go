package telemetry

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

const MeasurementTick = "tick"

var ErrDisabled = errors.New("influx telemetry is disabled")

// InfluxConfig - параметры telemetry.influx.*
type InfluxConfig struct {
	Enabled    bool
	URL        string
	Token      string
	Org        string
	Bucket     string
	Every      uint32 // Писать каждый N-й тик (0 и 1 - каждый)
	BackupPath string // gzip-файл line protocol, если InfluxDB недоступен
}

// InfluxSink пишет статистику тиков в InfluxDB.
//
// WriteAPI неблокирующий: точки копятся в батч и уходят фоном, поэтому RecordTick
// можно вызывать прямо из цикла матча.
type InfluxSink struct {
	cfg    InfluxConfig
	client influxdb2.Client
	writer influxdb2_api.WriteAPI

	mu     sync.Mutex
	backup *gzip.Writer
	file   *os.File

	log *logrus.Entry
}

// NewInfluxSink подключается к InfluxDB. Если сервер не отвечает и задан BackupPath,
// точки пишутся в gzip-файл line protocol для последующей загрузки.
func NewInfluxSink(ctx context.Context, cfg InfluxConfig) (*InfluxSink, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	s := &InfluxSink{
		cfg: cfg,
		log: logger.Log.WithFields(logrus.Fields{"component": "telemetry", "bucket": cfg.Bucket}),
	}

	s.client = influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	running, err := s.client.Ping(pingCtx)
	if err == nil && running {
		s.writer = s.client.WriteAPI(cfg.Org, cfg.Bucket)
		go s.drainErrors(s.writer.Errors())
		s.log.WithField("url", cfg.URL).Info("InfluxDB telemetry connected")
		return s, nil
	}

	// Сервер недоступен
	s.client.Close()
	s.client = nil
	if cfg.BackupPath == "" {
		return nil, fmt.Errorf("influx %s is unreachable: %w", cfg.URL, errors.Join(err, errors.New("no backup path")))
	}

	file, ferr := os.OpenFile(cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if ferr != nil {
		return nil, fmt.Errorf("error creating backup file: %w", ferr)
	}
	s.file = file
	s.backup = gzip.NewWriter(file)
	s.log.WithField("backupPath", cfg.BackupPath).Warn("InfluxDB unreachable, writing telemetry to backup file")
	return s, nil
}

func (s *InfluxSink) drainErrors(errs <-chan error) {
	for err := range errs {
		s.log.WithError(err).Error("Error sending data to InfluxDB")
	}
}

// RecordTick реализует engine.StatsSink.
func (s *InfluxSink) RecordTick(stats engine.TickStats) {
	if s.cfg.Every > 1 && stats.Tick%s.cfg.Every != 0 {
		return
	}
	point := TickPoint(stats, time.Now())

	if s.writer != nil {
		s.writer.WritePoint(point)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backup == nil {
		return
	}
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := s.backup.Write([]byte(line)); err != nil {
		s.log.WithError(err).Error("Error writing to InfluxDB backup file")
	}
}

// TickPoint переводит статистику тика в точку InfluxDB.
func TickPoint(stats engine.TickStats, at time.Time) *influxdb2_write.Point {
	return influxdb2.NewPointWithMeasurement(MeasurementTick).
		AddTag("match", stats.Match).
		AddField("tick", int64(stats.Tick)).
		AddField("sim_seconds", stats.SimTime.Seconds()).
		AddField("elapsed_ms", float64(stats.Elapsed.Microseconds())/1000).
		AddField("entities", stats.Entities).
		AddField("actions", stats.Actions).
		AddField("commands", stats.Commands).
		AddField("observers", stats.Observers).
		SetTime(at)
}

// Close сбрасывает буферы и закрывает соединение.
func (s *InfluxSink) Close() error {
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.client != nil {
		s.client.Close()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backup == nil {
		return nil
	}
	err := errors.Join(s.backup.Close(), s.file.Close())
	s.backup = nil
	return err
}
