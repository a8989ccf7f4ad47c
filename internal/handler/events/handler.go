// Package events 通过WebSocket与SSE推送会话状态快照。
package events

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/handler/respond"
	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
)

const (
	pongWait     = 60 * time.Second
	pingPeriod   = 54 * time.Second
	writeWait    = 10 * time.Second
	sseHeartbeat = 15 * time.Second
)

// Subscriber 提供状态快照订阅
type Subscriber interface {
	Subscribe() (<-chan dispatch.Snapshot, func())
}

// Handler 推送处理器
type Handler struct {
	dispatcher respond.Dispatcher
	out        *respond.Responder
	broker     Subscriber
	log        *zap.Logger
	upgrader   websocket.Upgrader
}

// New 创建推送处理器
func New(d respond.Dispatcher, broker Subscriber, log *zap.Logger) *Handler {
	log = log.Named("events")
	return &Handler{
		dispatcher: d,
		out:        respond.New(d, log),
		broker:     broker,
		log:        log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册推送路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
	r.Get("/events", h.handleSSE)
}
