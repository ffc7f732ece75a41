package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-collector/middleware"
	"github.com/vnkhanh/survey-collector/services"
)

type ResponseController struct {
	responses *services.ResponseService
}

func NewResponseController(responses *services.ResponseService) *ResponseController {
	return &ResponseController{responses: responses}
}

/* ========== Session: tạo ẩn danh, còn lại owner-only ========== */

// POST /api/sessions
func (h *ResponseController) CreateSession(c *gin.Context) {
	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	sess, err := h.responses.CreateSession(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// GET /api/sessions?survey=
func (h *ResponseController) ListSessions(c *gin.Context) {
	surveyID, ok := queryID(c, "survey")
	if !ok {
		return
	}
	sessions, err := h.responses.ListSessions(c.Request.Context(), middleware.CurrentUserID(c), surveyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /api/sessions/:id
func (h *ResponseController) GetSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sess, err := h.responses.GetSession(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// DELETE /api/sessions/:id
func (h *ResponseController) DeleteSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.responses.DeleteSession(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ========== Response: tạo ẩn danh, còn lại owner-only ========== */

// POST /api/responses
func (h *ResponseController) CreateResponse(c *gin.Context) {
	var req services.CreateResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	resp, err := h.responses.CreateResponse(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GET /api/responses?survey=&session=&question=
func (h *ResponseController) ListResponses(c *gin.Context) {
	var f services.ResponseFilter
	var ok bool
	if f.SurveyID, ok = queryID(c, "survey"); !ok {
		return
	}
	if f.SessionID, ok = queryID(c, "session"); !ok {
		return
	}
	if f.QuestionID, ok = queryID(c, "question"); !ok {
		return
	}
	views, err := h.responses.ListResponses(c.Request.Context(), middleware.CurrentUserID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GET /api/responses/:id
func (h *ResponseController) GetResponse(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.responses.GetResponse(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PUT|PATCH /api/responses/:id: thay phần trả lời
func (h *ResponseController) UpdateResponse(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var answer services.Answer
	if err := c.ShouldBindJSON(&answer); err != nil {
		badPayload(c, err)
		return
	}
	view, err := h.responses.UpdateResponse(c.Request.Context(), id, middleware.CurrentUserID(c), answer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /api/responses/:id
func (h *ResponseController) DeleteResponse(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.responses.DeleteResponse(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ========== Nộp cả khảo sát qua token ========== */

// POST /api/public/surveys/:token/submit
func (h *ResponseController) Submit(c *gin.Context) {
	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.responses.Submit(c.Request.Context(), c.Param("token"), middleware.CurrentUserID(c), c.ClientIP(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
