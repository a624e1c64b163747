package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/validators/runner/internal/dto/response"
	"github.com/validators/runner/internal/orm"
	"github.com/validators/runner/internal/service"
)

type ICommonAPI interface {
	// HealthCheck 健康检查
	// 检查数据库和redis连接是否健康
	// @GET(api/v1/health)
	HealthCheck(ctx *gin.Context) (gin.H, error)

	// QueueStats 获取队列统计
	// 队列里各状态任务的实时数量
	// @GET(api/v1/queue/stats)
	QueueStats(ctx *gin.Context) (response.QueueStatsResponse, error)
}

var _ ICommonAPI = (*CommonAPI)(nil)

type CommonAPI struct {
	storage          *orm.Storage
	rdb              *redis.Client
	executionService service.IExecutionService
}

func NewCommonAPI(storage *orm.Storage, rdb *redis.Client, executionService service.IExecutionService) *CommonAPI {
	return &CommonAPI{
		storage:          storage,
		rdb:              rdb,
		executionService: executionService,
	}
}

func (c *CommonAPI) HealthCheck(ctx *gin.Context) (gin.H, error) {
	if err := c.storage.Ping(); err != nil {
		return gin.H{}, err
	}
	if err := c.rdb.Ping(ctx.Request.Context()).Err(); err != nil {
		return gin.H{}, err
	}

	return gin.H{
		"status": "healthy",
		"time":   time.Now(),
	}, nil
}

func (c *CommonAPI) QueueStats(ctx *gin.Context) (response.QueueStatsResponse, error) {
	info, err := c.executionService.QueueStats(ctx.Request.Context())
	if err != nil {
		return response.QueueStatsResponse{}, err
	}

	return response.QueueStatsResponse{
		Queue:     info.Queue,
		Size:      info.Size,
		Pending:   info.Pending,
		Active:    info.Active,
		Retry:     info.Retry,
		Archived:  info.Archived,
		Processed: info.Processed,
		Failed:    info.Failed,
		Paused:    info.Paused,
		Time:      time.Now(),
	}, nil
}
