package dto

import "time"

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// ListResponse 通用列表响应
type ListResponse[T any] struct {
	Total   int  `json:"total"`
	Items   []T  `json:"items"`
	HasMore bool `json:"has_more"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// RunSummary 运行记录摘要信息
type RunSummary struct {
	ID                string     `json:"id"`
	PlanName          string     `json:"plan_name"`
	Status            string     `json:"status"`
	TotalTasks        int        `json:"total_tasks"`
	Successful        int        `json:"successful"`
	Failed            int        `json:"failed"`
	Skipped           int        `json:"skipped"`
	TotalWallTime     string     `json:"total_wall_time"`
	ParallelTimeSaved string     `json:"parallel_time_saved"`
	StartedAt         time.Time  `json:"started_at"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
	ErrorMessage      string     `json:"error_message,omitempty"`
}

// RunDetail 运行记录详细信息
type RunDetail struct {
	RunSummary
	Tasks []TaskRunInfo `json:"tasks"`
}

// TaskRunInfo 单个任务的运行信息
type TaskRunInfo struct {
	TaskID   string `json:"task_id"`
	Name     string `json:"name,omitempty"`
	Wave     int    `json:"wave"`
	Status   string `json:"status"`
	Duration string `json:"duration,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandlerInfo 处理器信息
type HandlerInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
