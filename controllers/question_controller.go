package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-collector/middleware"
	"github.com/vnkhanh/survey-collector/services"
)

type QuestionController struct {
	questions *services.QuestionService
	choices   *services.ChoiceService
}

func NewQuestionController(questions *services.QuestionService, choices *services.ChoiceService) *QuestionController {
	return &QuestionController{questions: questions, choices: choices}
}

/* ========== Câu hỏi (owner-only) ========== */

// GET /api/questions?survey=
func (h *QuestionController) List(c *gin.Context) {
	surveyID, ok := queryID(c, "survey")
	if !ok {
		return
	}
	questions, err := h.questions.List(c.Request.Context(), middleware.CurrentUserID(c), surveyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// POST /api/questions
func (h *QuestionController) Create(c *gin.Context) {
	var req services.AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	q, err := h.questions.Create(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// GET /api/questions/:id
func (h *QuestionController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	q, err := h.questions.Get(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// PUT|PATCH /api/questions/:id
func (h *QuestionController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	q, err := h.questions.Update(c.Request.Context(), id, middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// DELETE /api/questions/:id: xoá + dồn thứ tự
func (h *QuestionController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.questions.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ========== Lựa chọn (owner-only) ========== */

// GET /api/choices?question=
func (h *QuestionController) ListChoices(c *gin.Context) {
	questionID, ok := queryID(c, "question")
	if !ok {
		return
	}
	choices, err := h.choices.List(c.Request.Context(), middleware.CurrentUserID(c), questionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, choices)
}

// POST /api/choices
func (h *QuestionController) CreateChoice(c *gin.Context) {
	var req services.CreateChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	ch, err := h.choices.Create(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ch)
}

// GET /api/choices/:id
func (h *QuestionController) GetChoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ch, err := h.choices.Get(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

// PUT|PATCH /api/choices/:id
func (h *QuestionController) UpdateChoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	ch, err := h.choices.Update(c.Request.Context(), id, middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

// DELETE /api/choices/:id
func (h *QuestionController) DeleteChoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.choices.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
