// Package respond 提供各处理器共用的命令分发与错误映射。
package respond

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
	"github.com/zhouzirui/kairn/backend/pkg/utils"
)

// Dispatcher 是处理器所需的命令队列接口
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd dispatch.Command) (dispatch.Snapshot, error)
}

// Responder 绑定命令队列与日志，供处理器写响应
type Responder struct {
	dispatcher Dispatcher
	log        *zap.Logger
}

// New 创建Responder
func New(d Dispatcher, log *zap.Logger) *Responder {
	return &Responder{dispatcher: d, log: log}
}

// Dispatch 将命令转交给队列
func (rp *Responder) Dispatch(ctx context.Context, cmd dispatch.Command) (dispatch.Snapshot, error) {
	return rp.dispatcher.Dispatch(ctx, cmd)
}

// Command 分发命令并以快照作为响应体
func (rp *Responder) Command(w http.ResponseWriter, r *http.Request, cmd dispatch.Command, status int) {
	snap, err := rp.dispatcher.Dispatch(r.Context(), cmd)
	if err != nil {
		rp.Error(w, err)
		return
	}
	rp.JSON(w, status, snap)
}

// JSON 发送JSON响应
func (rp *Responder) JSON(w http.ResponseWriter, status int, payload interface{}) {
	utils.RespondJSON(w, rp.log, status, payload)
}

// BadRequest 发送400响应
func (rp *Responder) BadRequest(w http.ResponseWriter, message string) {
	utils.RespondError(w, rp.log, http.StatusBadRequest, message)
}

// Error 将分发错误映射为HTTP状态码
func (rp *Responder) Error(w http.ResponseWriter, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		rp.log.Warn("command failed", zap.Error(err))
	}
	utils.RespondError(w, rp.log, status, err.Error())
}

// Status 返回err对应的HTTP状态码
func Status(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrUnknownCommand):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
