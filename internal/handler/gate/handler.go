package gate

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/handler/respond"
	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
)

// Handler 身份对话框开关的HTTP处理器
type Handler struct {
	out *respond.Responder
}

// New 创建对话框处理器
func New(d respond.Dispatcher, log *zap.Logger) *Handler {
	return &Handler{out: respond.New(d, log.Named("gate"))}
}

// RegisterRoutes 注册对话框相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/gate", h.handleGet)
	r.Post("/gate", h.handleOpenChange)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.out.Dispatch(r.Context(), dispatch.Query{})
	if err != nil {
		h.out.Error(w, err)
		return
	}
	h.out.JSON(w, http.StatusOK, snap.Dialog)
}

// handleOpenChange 请求打开或关闭对话框
func (h *Handler) handleOpenChange(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Open *bool `json:"open"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.out.BadRequest(w, "invalid request body")
		return
	}
	if payload.Open == nil {
		h.out.BadRequest(w, "open is required")
		return
	}

	var cmd dispatch.Command = dispatch.CloseRequested{}
	if *payload.Open {
		cmd = dispatch.OpenRequested{}
	}
	h.out.Command(w, r, cmd, http.StatusOK)
}
