package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-collector/middleware"
	"github.com/vnkhanh/survey-collector/services"
)

type SurveyController struct {
	surveys *services.SurveyService
	stats   *services.StatsService
}

func NewSurveyController(surveys *services.SurveyService, stats *services.StatsService) *SurveyController {
	return &SurveyController{surveys: surveys, stats: stats}
}

/* ========== Tạo khảo sát kèm câu hỏi + lựa chọn ========== */

// POST /api/surveys
func (h *SurveyController) Create(c *gin.Context) {
	var req services.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	survey, err := h.surveys.Create(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, survey)
}

// GET /api/surveys
func (h *SurveyController) List(c *gin.Context) {
	surveys, err := h.surveys.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, surveys)
}

// GET /api/surveys/:id
func (h *SurveyController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	survey, err := h.surveys.GetOwned(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

/* ========== Cập nhật: chỉ title / is_public / status ========== */

// PUT|PATCH /api/surveys/:id
func (h *SurveyController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	survey, err := h.surveys.Update(c.Request.Context(), id, middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

// DELETE /api/surveys/:id
func (h *SurveyController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.surveys.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ========== Sắp xếp lại câu hỏi ========== */

// PUT /api/surveys/:id/questions/reorder
func (h *SurveyController) ReorderQuestions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.surveys.ReorderQuestions(c.Request.Context(), id, middleware.CurrentUserID(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

/* ========== Thống kê ========== */

// GET /api/surveys/:id/stats
func (h *SurveyController) Stats(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	stats, err := h.stats.SurveyStats(c.Request.Context(), id, middleware.CurrentUserID(c))
	if errors.Is(err, services.ErrSurveyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgStatsNotFound})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

/* ========== Xem khảo sát qua token ========== */

// GET /api/public/surveys/:token
func (h *SurveyController) GetByToken(c *gin.Context) {
	survey, err := h.surveys.GetByToken(c.Request.Context(), c.Param("token"), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

// GET /api/public/surveys
func (h *SurveyController) ListPublic(c *gin.Context) {
	surveys, err := h.surveys.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, surveys)
}
