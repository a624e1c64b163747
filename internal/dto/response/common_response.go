package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// QueueStatsResponse 队列统计响应
type QueueStatsResponse struct {
	Queue     string    `json:"queue"`
	Size      int       `json:"size"`
	Pending   int       `json:"pending"`
	Active    int       `json:"active"`
	Retry     int       `json:"retry"`
	Archived  int       `json:"archived"`
	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	Paused    bool      `json:"paused"`
	Time      time.Time `json:"time"`
}

// MessageResponse 简单消息响应
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToGinH 转换为Gin H格式（用于健康检查等简单响应）
func (h *HealthResponse) ToGinH() gin.H {
	return gin.H{
		"status": h.Status,
		"time":   h.Time,
	}
}
