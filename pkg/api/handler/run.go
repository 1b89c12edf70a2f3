package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stevelan1995/wave-engine/pkg/api/dto"
	"github.com/stevelan1995/wave-engine/pkg/core/plan"
	"github.com/stevelan1995/wave-engine/pkg/service"
	"github.com/stevelan1995/wave-engine/pkg/storage"
)

// RunHandler 计划执行API处理器
type RunHandler struct {
	svc *service.Service
}

// NewRunHandler 创建RunHandler
func NewRunHandler(svc *service.Service) *RunHandler {
	return &RunHandler{svc: svc}
}

// Submit 提交计划并同步执行
// POST /api/v1/runs
func (h *RunHandler) Submit(c *gin.Context) {
	var req dto.SubmitRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("请求格式错误: %v", err)))
		return
	}

	p, err := plan.Parse([]byte(req.Content))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("解析计划失败: %v", err)))
		return
	}

	report, err := h.svc.RunPlan(c.Request.Context(), p)
	if err != nil {
		// 构图失败（重复ID/未知依赖/循环依赖）
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(422, err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}

// List 查询运行历史列表
// GET /api/v1/runs
func (h *RunHandler) List(c *gin.Context) {
	var req dto.ListQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("查询参数错误: %v", err)))
		return
	}

	runs, err := h.svc.ListRuns(c.Request.Context(), req.GetDefaultLimit(), req.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询运行记录失败: %v", err)))
		return
	}

	items := make([]dto.RunSummary, 0, len(runs))
	for _, run := range runs {
		items = append(items, toRunSummary(run))
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[dto.RunSummary]{
		Total:   len(items),
		Items:   items,
		HasMore: len(items) == req.GetDefaultLimit(),
	}))
}

// Get 查询运行记录详情
// GET /api/v1/runs/:id
func (h *RunHandler) Get(c *gin.Context) {
	id := c.Param("id")

	run, err := h.svc.GetRun(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询运行记录失败: %v", err)))
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, fmt.Sprintf("运行记录 %s 不存在", id)))
		return
	}

	detail := dto.RunDetail{RunSummary: toRunSummary(run)}
	for _, t := range run.Tasks {
		detail.Tasks = append(detail.Tasks, dto.TaskRunInfo{
			TaskID:   t.TaskID,
			Name:     t.Name,
			Wave:     t.Wave,
			Status:   t.Status,
			Duration: t.Duration.String(),
			Error:    t.Error,
		})
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

// Tasks 查询某次运行的任务记录列表
// GET /api/v1/runs/:id/tasks
func (h *RunHandler) Tasks(c *gin.Context) {
	id := c.Param("id")

	run, err := h.svc.GetRun(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询任务记录失败: %v", err)))
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, fmt.Sprintf("运行记录 %s 不存在", id)))
		return
	}

	items := make([]dto.TaskRunInfo, 0, len(run.Tasks))
	for _, t := range run.Tasks {
		items = append(items, dto.TaskRunInfo{
			TaskID:   t.TaskID,
			Name:     t.Name,
			Wave:     t.Wave,
			Status:   t.Status,
			Duration: t.Duration.String(),
			Error:    t.Error,
		})
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[dto.TaskRunInfo]{
		Total: len(items),
		Items: items,
	}))
}

// Handlers 列出所有已注册处理器
// GET /api/v1/handlers
func (h *RunHandler) Handlers(c *gin.Context) {
	metas := h.svc.Registry().List()

	items := make([]dto.HandlerInfo, 0, len(metas))
	for _, m := range metas {
		items = append(items, dto.HandlerInfo{Name: m.Name, Description: m.Description})
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[dto.HandlerInfo]{
		Total: len(items),
		Items: items,
	}))
}

// toRunSummary 存储实体转DTO
func toRunSummary(run *storage.RunRecord) dto.RunSummary {
	return dto.RunSummary{
		ID:                run.ID,
		PlanName:          run.PlanName,
		Status:            run.Status,
		TotalTasks:        run.TotalTasks,
		Successful:        run.Successful,
		Failed:            run.Failed,
		Skipped:           run.Skipped,
		TotalWallTime:     run.TotalWallTime.String(),
		ParallelTimeSaved: run.ParallelTimeSaved.String(),
		StartedAt:         run.StartTime,
		FinishedAt:        run.EndTime,
		ErrorMessage:      run.ErrorMessage,
	}
}
