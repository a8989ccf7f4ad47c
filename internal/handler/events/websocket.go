package events

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
)

type inboundMessage struct {
	Type     string `json:"type"`
	UserName string `json:"userName,omitempty"`
}

type outgoingMessage struct {
	Type      string             `json:"type"`
	Data      *dispatch.Snapshot `json:"data,omitempty"`
	Error     string             `json:"error,omitempty"`
	Timestamp int64              `json:"timestamp"`
}

func stateMessage(kind string, snap dispatch.Snapshot) outgoingMessage {
	return outgoingMessage{Type: kind, Data: &snap, Timestamp: time.Now().Unix()}
}

func errorMessage(message string) outgoingMessage {
	return outgoingMessage{Type: "error", Error: message, Timestamp: time.Now().Unix()}
}

// handleWebSocket 接收客户端命令并推送每次状态变化
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, unsubscribe := h.broker.Subscribe()
	defer unsubscribe()

	out := make(chan outgoingMessage, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		h.writeLoop(ctx, conn, out, updates)
	}()
	defer func() {
		cancel()
		<-writerDone
	}()

	if snap, err := h.dispatcher.Dispatch(ctx, dispatch.Query{}); err == nil {
		h.enqueue(ctx, out, stateMessage("state", snap))
	} else {
		h.enqueue(ctx, out, errorMessage(err.Error()))
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		cmd, err := dispatch.ParseCommand(msg.Type, msg.UserName)
		if err != nil {
			h.enqueue(ctx, out, errorMessage(err.Error()))
			continue
		}
		snap, err := h.dispatcher.Dispatch(ctx, cmd)
		if err != nil {
			h.enqueue(ctx, out, errorMessage(err.Error()))
			continue
		}
		h.enqueue(ctx, out, stateMessage("result", snap))
	}
}

func (h *Handler) enqueue(ctx context.Context, out chan<- outgoingMessage, msg outgoingMessage) {
	select {
	case out <- msg:
	case <-ctx.Done():
	}
}

// writeLoop 是连接上唯一的写入者
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan outgoingMessage, updates <-chan dispatch.Snapshot) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(msg outgoingMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Debug("websocket write failed", zap.Error(err))
			conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-out:
			if !write(msg) {
				return
			}
		case snap, ok := <-updates:
			if !ok {
				conn.Close()
				return
			}
			if !write(stateMessage("state", snap)) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
