package handlers

import (
	"context"
	"errors"

	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError 將錯誤轉為統一的 JSON 錯誤響應
func RespondError(c *gin.Context, err error, debug bool) {
	if errors.Is(c.Request.Context().Err(), context.DeadlineExceeded) {
		err = common.ErrGatewayTimeout.Wrap(err)
	}

	status, resp := common.ToResponse(err, debug)
	if status >= 500 {
		common.LogError("請求處理失敗",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestid.Get(c)),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// RespondBindError 請求格式或欄位驗證失敗
func RespondBindError(c *gin.Context, err error) {
	common.LogWarn("請求格式無效",
		zap.Error(err),
		zap.String("request_id", requestid.Get(c)),
	)
	c.AbortWithStatusJSON(400, common.ErrorResponse{
		Code:    common.ErrCodeInvalidRequest,
		Message: common.ErrInvalidRequest.Message,
		Details: err.Error(),
	})
}
