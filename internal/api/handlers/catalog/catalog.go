package catalog

import (
	"net/http"
	"strconv"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/mealplan"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Catalog 目錄查詢服務
type Catalog interface {
	Preview(prefs planner.PreferencesInput) (*planner.PreviewResponse, error)
	Stats() (mealplan.CatalogStats, error)
	Recipe(id int64) (*mealplan.Recipe, error)
}

// Handler 目錄處理程序
type Handler struct {
	svc   Catalog
	debug bool
}

// NewHandler 創建目錄處理程序
func NewHandler(svc Catalog, debug bool) *Handler {
	return &Handler{svc: svc, debug: debug}
}

// HandlePreview POST /api/v1/catalog/preview
func (h *Handler) HandlePreview(c *gin.Context) {
	var prefs planner.PreferencesInput
	if err := c.ShouldBindJSON(&prefs); err != nil {
		handlers.RespondBindError(c, err)
		return
	}

	resp, err := h.svc.Preview(prefs)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleStats GET /api/v1/catalog/stats
func (h *Handler) HandleStats(c *gin.Context) {
	stats, err := h.svc.Stats()
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HandleRecipe GET /api/v1/recipes/:id
func (h *Handler) HandleRecipe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	recipe, err := h.svc.Recipe(id)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
