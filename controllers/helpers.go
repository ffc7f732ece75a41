package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-collector/services"
)

const (
	msgNotAccessible = "This survey is not accessible."
	msgStatsNotFound = "survey not found or you are not the author"
)

// respondError ánh xạ lỗi service sang HTTP status + JSON.
func respondError(c *gin.Context, err error) {
	if ve, ok := services.AsValidationErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Dữ liệu không hợp lệ", "errors": ve})
		return
	}

	switch {
	case errors.Is(err, services.ErrSurveyNotAccessible):
		c.JSON(http.StatusForbidden, gin.H{"error": msgNotAccessible})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi máy chủ, vui lòng thử lại sau"})
	}
}

func badPayload(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Payload không hợp lệ", "error": err.Error()})
}

// paramID đọc :id dương; sai thì trả 400 và ok=false.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "ID không hợp lệ"})
		return 0, false
	}
	return uint(id), true
}

// queryID đọc filter ?name=; rỗng -> 0.
func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": name + " không hợp lệ"})
		return 0, false
	}
	return uint(id), true
}
