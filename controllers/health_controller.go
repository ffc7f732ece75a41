package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthController struct {
	db    *gorm.DB
	redis *redis.Client
}

// rdb có thể nil khi không cấu hình redis.
func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{db: db, redis: rdb}
}

func (h *HealthController) HealthCheck(c *gin.Context) {
	// Mặc định trạng thái OK
	response := gin.H{
		"status":  "ok",
		"message": "Service is healthy",
		"db":      "ok",
		"cache":   "disabled",
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	// Thử ping database
	sqlDB, err := h.db.DB()
	if err != nil {
		response["status"] = "error"
		response["db"] = "error: cannot get DB instance"
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		response["status"] = "error"
		response["db"] = "error: cannot connect to DB"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	// redis lỗi chỉ làm mất cache thống kê, không coi là down
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			response["cache"] = "error: " + err.Error()
		} else {
			response["cache"] = "ok"
		}
	}

	c.JSON(http.StatusOK, response)
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
