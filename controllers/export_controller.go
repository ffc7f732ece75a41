package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-collector/middleware"
	"github.com/vnkhanh/survey-collector/services"
)

type ExportController struct {
	export *services.ExportService
}

func NewExportController(export *services.ExportService) *ExportController {
	return &ExportController{export: export}
}

// GET /api/surveys/:id/export?format=csv|xlsx
func (h *ExportController) Export(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, err := h.export.Export(c.Request.Context(), id, middleware.CurrentUserID(c), c.DefaultQuery("format", services.ExportCSV))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
