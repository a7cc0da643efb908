package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/utils"
)

// AddLog добавляет сообщение в лог матча. В конце тика оно уйдёт всем наблюдателям.
func (i *Instance) AddLog(text, logType string) {
	i.logs = append(i.logs, newLogEntry(text, logType))
	i.log.WithFields(logrus.Fields{
		"component": "game_log",
		"log_type":  logType,
		"tick":      i.Sim.Tick(),
	}).Info(text)
}

// replyError отвечает одной сессии, не засоряя общий лог матча.
func (i *Instance) replyError(session, text string) {
	i.Hub.SendTo(session, api.Frame{
		Type:  api.FrameLog,
		Match: i.ID,
		Tick:  i.Sim.Tick(),
		Logs:  []api.LogEntry{newLogEntry(text, "ERROR")},
	})
}

// takeLogs забирает сообщения тика
func (i *Instance) takeLogs() []api.LogEntry {
	logs := i.logs
	i.logs = nil
	return logs
}

func newLogEntry(text, logType string) api.LogEntry {
	return api.LogEntry{
		ID:        utils.GenerateID(),
		Text:      text,
		Type:      logType,
		Timestamp: time.Now().UnixMilli(),
	}
}
