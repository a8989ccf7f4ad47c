package identity

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/handler/respond"
	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
)

// Handler 身份信息的HTTP处理器
type Handler struct {
	out *respond.Responder
}

// New 创建身份处理器
func New(d respond.Dispatcher, log *zap.Logger) *Handler {
	return &Handler{out: respond.New(d, log.Named("identity"))}
}

// RegisterRoutes 注册身份相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/identity", h.handleGet)
	r.Put("/identity", h.handleSubmit)
	r.Delete("/identity", h.handleReset)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.out.Dispatch(r.Context(), dispatch.Query{})
	if err != nil {
		h.out.Error(w, err)
		return
	}
	h.out.JSON(w, http.StatusOK, map[string]*string{"userName": snap.Dialog.UserName})
}

// handleSubmit 表单提交：保存名称并关闭对话框。名称不做校验，空字符串同样接受。
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserName *string `json:"userName"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.out.BadRequest(w, "invalid request body")
		return
	}
	if payload.UserName == nil {
		h.out.BadRequest(w, "userName is required")
		return
	}

	h.out.Command(w, r, dispatch.NameSubmitted{Name: *payload.UserName}, http.StatusOK)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.out.Command(w, r, dispatch.ResetRequested{}, http.StatusOK)
}
