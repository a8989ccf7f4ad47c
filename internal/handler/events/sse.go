package events

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
	"github.com/zhouzirui/kairn/backend/pkg/utils"
)

// handleSSE 以Server-Sent Events推送状态快照，只读
func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, h.log, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	updates, unsubscribe := h.broker.Subscribe()
	defer unsubscribe()

	snap, err := h.dispatcher.Dispatch(ctx, dispatch.Query{})
	if err != nil {
		h.out.Error(w, err)
		return
	}

	utils.SetupSSEHeaders(w)
	if err := utils.SendSSEEvent(w, flusher, "state", snap); err != nil {
		h.log.Debug("sse write failed", zap.Error(err))
		return
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, "state", snap); err != nil {
				h.log.Debug("sse write failed", zap.Error(err))
				return
			}
		case t := <-ticker.C:
			if err := utils.SendSSEEvent(w, flusher, "heartbeat", map[string]string{
				"time": t.UTC().Format(time.RFC3339),
			}); err != nil {
				return
			}
		}
	}
}
