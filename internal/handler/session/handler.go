package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/handler/respond"
	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
	"github.com/zhouzirui/kairn/backend/pkg/utils"
)

// Handler 会话挂载的HTTP处理器
type Handler struct {
	out *respond.Responder
	log *zap.Logger
}

// New 创建会话处理器
func New(d respond.Dispatcher, log *zap.Logger) *Handler {
	log = log.Named("session")
	return &Handler{out: respond.New(d, log), log: log}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleMount)
	r.Get("/session", h.handleCurrent)
}

// handleMount 以新的会话ID重新挂载聊天界面
func (h *Handler) handleMount(w http.ResponseWriter, r *http.Request) {
	h.out.Command(w, r, dispatch.SessionRequested{}, http.StatusCreated)
}

// handleCurrent 返回当前挂载的会话
func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	snap, err := h.out.Dispatch(r.Context(), dispatch.Query{})
	if err != nil {
		h.out.Error(w, err)
		return
	}
	if snap.Session == nil {
		utils.RespondError(w, h.log, http.StatusNotFound, "no session mounted")
		return
	}
	h.out.JSON(w, http.StatusOK, snap)
}
