package api

import (
	"net/http"
	"time"

	"github.com/annel0/voxel-pathlab/internal/render"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	frameWriteWait = 10 * time.Second
	scenePongWait  = 60 * time.Second
	scenePingEvery = 30 * time.Second
)

// Конфигурация WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // стенд локальный, браузерный клиент с любого origin
	},
}

// handleSceneStream отдаёт кадры рендера по WebSocket.
// Клиент только читает; рендер не ждёт медленного клиента.
func (rs *RestServer) handleSceneStream(c *gin.Context) {
	if rs.loop == nil {
		respond(c, http.StatusServiceUnavailable, "Рендер отключён", nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		rs.log.Warn("ws: upgrade: %v", err)
		return
	}

	id, frames := rs.loop.Subscribe(4)
	rs.log.Info("👀 Зритель сцены #%d подключён (%s)", id, c.ClientIP())

	done := make(chan struct{})
	go rs.readScene(conn, done)
	rs.writeScene(conn, frames, done)

	rs.loop.Unsubscribe(id)
	rs.log.Info("зритель сцены #%d отключён", id)
}

// readScene держит соединение живым и замечает закрытие со стороны клиента
func (rs *RestServer) readScene(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(scenePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(scenePongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				rs.log.Debug("ws: чтение: %v", err)
			}
			return
		}
	}
}

// writeScene отправляет кадры и пинги, пока клиент подключён
func (rs *RestServer) writeScene(conn *websocket.Conn, frames <-chan render.Frame, done <-chan struct{}) {
	ticker := time.NewTicker(scenePingEvery)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case frame, ok := <-frames:
			_ = conn.SetWriteDeadline(time.Now().Add(frameWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "render stopped"))
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(frameWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
