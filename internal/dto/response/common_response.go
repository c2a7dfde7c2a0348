package response

import (
	"time"
)

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string    `json:"status"`
	NodeID string    `json:"node_id"`
	Time   time.Time `json:"time"`
}

// MessageResponse 简单消息响应
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse 统一错误响应
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
