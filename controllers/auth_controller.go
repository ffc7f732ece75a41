package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-collector/middleware"
	"github.com/vnkhanh/survey-collector/services"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// POST /api/auth/register
func (h *AuthController) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// POST /api/token: username/password -> {access, refresh}
func (h *AuthController) ObtainToken(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	pair, err := h.auth.IssueTokens(user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

type refreshReq struct {
	Refresh string `json:"refresh" binding:"required"`
}

// POST /api/token/refresh: {refresh} -> {access}
func (h *AuthController) RefreshToken(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	access, err := h.auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// GET /api/token/current: user đã đăng nhập lấy cặp token mới
func (h *AuthController) CurrentToken(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	pair, err := h.auth.IssueTokens(&user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// GET /api/me
func (h *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": c.MustGet(middleware.CtxUserPublic)})
}
