package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/validators/runner/internal/biz/execution"
	domainError "github.com/validators/runner/internal/domain/error"
	"github.com/validators/runner/internal/dto/mapper"
	"github.com/validators/runner/internal/dto/request"
	"github.com/validators/runner/internal/dto/response"
	"github.com/validators/runner/internal/service"
)

type IExecutionAPI interface {
	// Execute 提交脚本执行
	// 解析脚本定位参数，创建执行记录并投递队列任务
	// @POST(api/v1/executions)
	Execute(ctx *gin.Context, req request.ExecuteScriptRequest) (response.ExecuteScriptResponse, error)

	// List 获取执行记录列表
	// 分页，支持状态、脚本名、任务ID和时间范围过滤
	// @GET(api/v1/executions)
	List(ctx *gin.Context, req request.ListExecutionRequest) (response.ListExecutionResponse, error)

	// Stats 获取执行统计
	// 按状态聚合，支持时间范围和脚本名过滤
	// @GET(api/v1/executions/stats)
	Stats(ctx *gin.Context, req request.ExecutionStatsRequest) (response.ExecutionStatsResponse, error)

	// Get 获取执行记录详情
	// id 既可以是记录ID也可以是队列任务ID
	// @GET(api/v1/executions/{id})
	Get(ctx *gin.Context, id string) (response.TaskExecutionResponse, error)

	// Cancel 取消任务
	// 仅 PENDING/STARTED 可取消，终态返回400
	// @POST(api/v1/executions/{id}/cancel)
	Cancel(ctx *gin.Context, id uint64) (response.CancelExecutionResponse, error)
}

var _ IExecutionAPI = (*ExecutionAPI)(nil)

type ExecutionAPI struct {
	executionService service.IExecutionService
	mapper           *mapper.ExecutionMapper
	logger           *zap.Logger
}

func NewExecutionAPI(executionService service.IExecutionService, logger *zap.Logger) *ExecutionAPI {
	return &ExecutionAPI{
		executionService: executionService,
		mapper:           mapper.NewExecutionMapper(),
		logger:           logger,
	}
}

func (e *ExecutionAPI) Execute(ctx *gin.Context, req request.ExecuteScriptRequest) (response.ExecuteScriptResponse, error) {
	result, err := e.executionService.ExecuteScript(ctx.Request.Context(), service.ExecuteCommand{
		ScriptID:    req.ScriptID,
		ScriptName:  req.ScriptName,
		ScriptPath:  req.ScriptPath,
		Parameters:  req.Parameters,
		PageContext: req.PageContext,
		TriggeredBy: req.TriggeredBy,
	})
	if err != nil {
		return response.ExecuteScriptResponse{}, err
	}

	return response.ExecuteScriptResponse{
		Success:     true,
		TaskID:      result.TaskID,
		ExecutionID: result.ExecutionID,
		ScriptName:  result.ScriptName,
		Message:     "脚本执行已启动",
	}, nil
}

func (e *ExecutionAPI) List(ctx *gin.Context, req request.ListExecutionRequest) (response.ListExecutionResponse, error) {
	// 分页参数
	page := max(1, req.Page)
	pageSize := 20 // 默认每页20条
	if req.PageSize > 0 {
		pageSize = req.PageSize
	}

	filter := &execution.ExecutionFilter{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if err := applyExecutionFilter(filter, req.Status, req.ScriptName, req.TaskID, req.StartTime, req.EndTime); err != nil {
		return response.ListExecutionResponse{}, err
	}

	executions, total, err := e.executionService.ListExecutions(ctx.Request.Context(), filter)
	if err != nil {
		return response.ListExecutionResponse{}, err
	}

	return e.mapper.ToExecutionListResponse(executions, total, page, pageSize), nil
}

func (e *ExecutionAPI) Stats(ctx *gin.Context, req request.ExecutionStatsRequest) (response.ExecutionStatsResponse, error) {
	filter := &execution.ExecutionFilter{}
	if err := applyExecutionFilter(filter, "", req.ScriptName, "", req.StartTime, req.EndTime); err != nil {
		return response.ExecutionStatsResponse{}, err
	}

	stats, err := e.executionService.GetStats(ctx.Request.Context(), filter)
	if err != nil {
		return response.ExecutionStatsResponse{}, err
	}

	return e.mapper.ToExecutionStatsResponse(stats), nil
}

func (e *ExecutionAPI) Get(ctx *gin.Context, id string) (response.TaskExecutionResponse, error) {
	detail, err := e.executionService.GetExecution(ctx.Request.Context(), id)
	if err != nil {
		return response.TaskExecutionResponse{}, err
	}

	resp := e.mapper.ToExecutionResponse(detail.Execution)
	resp.QueueState = detail.QueueState
	return resp, nil
}

func (e *ExecutionAPI) Cancel(ctx *gin.Context, id uint64) (response.CancelExecutionResponse, error) {
	cancelled, err := e.executionService.CancelExecution(ctx.Request.Context(), id)
	if err != nil {
		return response.CancelExecutionResponse{}, err
	}

	return response.CancelExecutionResponse{
		Success:     true,
		ExecutionID: cancelled.ID,
		Status:      string(cancelled.Status),
		Message:     "任务已取消",
	}, nil
}

func applyExecutionFilter(filter *execution.ExecutionFilter, status, scriptName, taskID, startTime, endTime string) error {
	if status != "" {
		s := execution.ExecutionStatus(status)
		if !s.IsValid() {
			return fmt.Errorf("%w: 未知状态 %s", domainError.ErrInvalidInput, status)
		}
		filter.Status = mo.Some(s)
	}
	if scriptName != "" {
		filter.ScriptName = mo.Some(scriptName)
	}
	if taskID != "" {
		filter.TaskID = mo.Some(taskID)
	}
	if startTime != "" {
		t, err := parseTimeParam(startTime)
		if err != nil {
			return err
		}
		filter.CreatedAfter = mo.Some(t)
	}
	if endTime != "" {
		t, err := parseTimeParam(endTime)
		if err != nil {
			return err
		}
		filter.CreatedBefore = mo.Some(t)
	}
	return nil
}

var timeParamLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimeParam(value string) (time.Time, error) {
	for _, layout := range timeParamLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: 无法解析时间 %s", domainError.ErrInvalidInput, value)
}
