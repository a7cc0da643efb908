package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInit_LevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	Init()

	if Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %s, want debug", Log.GetLevel())
	}
	if _, ok := Log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want *logrus.JSONFormatter", Log.Formatter)
	}
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	Init()

	if Log.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %s, want info", Log.GetLevel())
	}
}

func TestWriterHook_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	hook := &writerHook{writer: &buf, formatter: &logrus.JSONFormatter{}, levels: logrus.AllLevels}

	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	l.AddHook(hook)
	l.WithField("match", "m1").Warn("hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("hook output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "hello" || rec["match"] != "m1" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestEnableGelf_EmptyAddressIsNoop(t *testing.T) {
	if err := EnableGelf(""); err != nil {
		t.Errorf("EnableGelf(\"\") = %v, want nil", err)
	}
}
