package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Заполняются через -ldflags "-X .../internal/version.BuildDate=2025-12-14 ...".
var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
	BuildCI     string
)

const (
	// Name - имя сервиса в логах и /version.
	Name = "SimulatorX"
	// Protocol - ревизия протокола /ws (кадры и команды). Меняется при несовместимых правках pkg/api.
	Protocol = 1
)

// Номер сборки - число суток от первого дня проекта.
var buildEpoch = time.Date(2025, time.December, 4, 0, 0, 0, 0, time.UTC)

// VersionInfo - метаданные сборки для /version и стартового лога.
type VersionInfo struct {
	Name      string `json:"name"`
	Protocol  int    `json:"protocol"`
	BuildID   int    `json:"buildId"`
	BuildDate string `json:"buildDate,omitempty"`
	Commit    string `json:"commit,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
	Branch    string `json:"branch,omitempty"`
	CI        string `json:"ci,omitempty"`
	GoVersion string `json:"goVersion"`

	Calculated bool   `json:"calculated"`
	Error      string `json:"error,omitempty"`
}

// CalculateBuildID считает номер сборки по BuildDate.
func CalculateBuildID() (int, error) {
	return daysSinceEpoch(BuildDate)
}

func daysSinceEpoch(date string) (int, error) {
	if date == "" {
		return 0, fmt.Errorf("BuildDate is empty")
	}
	t, err := time.ParseInLocation(time.DateOnly, date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid BuildDate %q: %w", date, err)
	}
	if t.Before(buildEpoch) {
		return 0, fmt.Errorf("BuildDate %s is before epoch %s", date, buildEpoch.Format(time.DateOnly))
	}
	// Обе даты в UTC, переходов на летнее время нет
	return int(t.Sub(buildEpoch).Hours() / 24), nil
}

// vcsStamp - коммит из метаданных go build, если ldflags его не задали.
func vcsStamp() (revision string, dirty bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return revision, dirty
}

// Info собирает метаданные. Безопасно вызывать в любой момент.
func Info() VersionInfo {
	info := VersionInfo{
		Name:      Name,
		Protocol:  Protocol,
		BuildDate: BuildDate,
		Commit:    BuildCommit,
		Branch:    BuildBranch,
		CI:        BuildCI,
		GoVersion: runtime.Version(),
	}
	if info.Commit == "" {
		info.Commit, info.Dirty = vcsStamp()
	}

	id, err := CalculateBuildID()
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.BuildID = id
	info.Calculated = true
	return info
}

// String - строка для стартового лога.
func String() string {
	info := Info()
	if !info.Calculated {
		return fmt.Sprintf("%s build unknown, protocol v%d (%s)", info.Name, info.Protocol, info.Error)
	}

	commit := coalesce(info.Commit, "unknown")
	if info.Dirty {
		commit += "+dirty"
	}
	return fmt.Sprintf(
		"%s build %d (%s) protocol v%d commit[%s] branch[%s] ci[%s]",
		info.Name,
		info.BuildID,
		info.BuildDate,
		info.Protocol,
		commit,
		coalesce(info.Branch, "unknown"),
		coalesce(info.CI, "local"),
	)
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
