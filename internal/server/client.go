package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/utils"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между WebSocket и GameService.
//
// Первое сообщение клиента - INIT с матчем и токеном робота (пустой токен - зритель).
// Дальше сервер шлёт msgpack-кадры бинарными сообщениями, клиент - JSON-команды.
type Client struct {
	Service *engine.GameService
	Conn    *websocket.Conn
	Session string

	token types.Identity
	inst  *engine.Instance
	log   *logrus.Entry
}

func NewClient(service *engine.GameService, conn *websocket.Conn) *Client {
	session := utils.GenerateID()
	return &Client{
		Service: service,
		Conn:    conn,
		Session: session,
		log:     logger.Log.WithFields(logrus.Fields{"component": "ws", "session": session}),
	}
}

// handshake читает INIT и подключает сессию к матчу.
func (c *Client) handshake() (chan api.Frame, error) {
	var login api.ClientCommand
	if err := c.Conn.ReadJSON(&login); err != nil {
		return nil, err
	}

	token, err := types.ParseIdentity(login.Token)
	if err != nil {
		return nil, err
	}

	inst, frames, err := c.Service.Attach(login.Match, c.Session, token)
	if err != nil {
		return nil, err
	}

	c.token = token
	c.inst = inst
	c.log = c.log.WithFields(logrus.Fields{"match": inst.ID, "token": token.String()})
	c.log.Info("Client attached")
	return frames, nil
}

// serve - весь жизненный цикл соединения: рукопожатие, пампы, отключение.
func (c *Client) serve() {
	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// 1. HANDSHAKE
	frames, err := c.handshake()
	if err != nil {
		c.log.WithError(err).Warn("Handshake failed")
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = c.Conn.Close()
		return
	}

	// 2. ПАМПЫ
	go c.writePump(frames)
	c.readPump()
}

// readPump читает команды клиента до разрыва соединения.
func (c *Client) readPump() {
	defer func() {
		c.Service.Detach(c.inst, c.Session)
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
		c.log.Info("Client disconnected")
	}()

	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Error("WS error")
			}
			return
		}

		// Сессия привязана к матчу и роботу рукопожатием
		cmd.Match = c.inst.ID
		cmd.Token = ""
		if !c.token.IsNil() {
			cmd.Token = c.token.String()
		}

		if err := c.Service.ProcessCommand(cmd, c.Session); err != nil {
			c.log.WithError(err).WithField("action", cmd.Action).Warn("Command rejected")
			c.inst.Hub.SendTo(c.Session, api.Frame{
				Type:  api.FrameLog,
				Match: c.inst.ID,
				Logs: []api.LogEntry{{
					ID:        utils.GenerateID(),
					Text:      err.Error(),
					Type:      "ERROR",
					Timestamp: time.Now().UnixMilli(),
				}},
			})
		}
	}
}

// writePump отправляет кадры клиенту + Ping. Хаб закрывает канал при отписке.
func (c *Client) writePump(frames <-chan api.Frame) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case frame, ok := <-frames:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}

			data, err := api.EncodeFrame(frame)
			if err != nil {
				c.log.WithError(err).Error("Frame encoding failed")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				c.log.WithError(err).Debug("write frame failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
