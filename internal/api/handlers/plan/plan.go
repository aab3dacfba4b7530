package plan

import (
	"context"
	"net/http"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Planner 產生計畫的服務
type Planner interface {
	GeneratePlan(ctx context.Context, req planner.PlanRequest) (*planner.PlanResponse, error)
	GenerateBatch(ctx context.Context, reqs []planner.PlanRequest) (*planner.BatchResponse, error)
}

// Handler 計畫處理程序
type Handler struct {
	svc   Planner
	debug bool
}

// NewHandler 創建計畫處理程序
func NewHandler(svc Planner, debug bool) *Handler {
	return &Handler{svc: svc, debug: debug}
}

// HandleGenerate POST /api/v1/plans
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req planner.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBindError(c, err)
		return
	}

	common.LogInfo("開始處理計畫請求",
		zap.String("request_id", requestid.Get(c)),
		zap.Float64("target_calories", req.TargetCalories),
		zap.Float64("target_protein", req.TargetProtein),
		zap.Int("max_slots", req.MaxSlots),
	)

	resp, err := h.svc.GeneratePlan(c.Request.Context(), req)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleBatch POST /api/v1/plans/batch
func (h *Handler) HandleBatch(c *gin.Context) {
	var req planner.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBindError(c, err)
		return
	}

	common.LogInfo("開始處理批次計畫請求",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("count", len(req.Requests)),
	)

	resp, err := h.svc.GenerateBatch(c.Request.Context(), req.Requests)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, resp)
}
