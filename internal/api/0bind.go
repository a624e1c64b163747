package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/validators/runner/internal/dto/request"
	"github.com/validators/runner/internal/dto/response"
)

// 路由绑定。方法注释里的 @GET/@POST 注解是路由的权威来源，
// 这里的绑定代码按注解手工保持同步。

type ExecutionAPIWrap struct {
	api IExecutionAPI
}

func NewExecutionAPIWrap(api IExecutionAPI) *ExecutionAPIWrap {
	return &ExecutionAPIWrap{api: api}
}

func (w *ExecutionAPIWrap) BindAll(r gin.IRouter) {
	r.POST("/api/v1/executions", func(c *gin.Context) {
		var req request.ExecuteScriptRequest
		if !onGinBind(c, &req, "JSON") {
			return
		}
		resp, err := w.api.Execute(c, req)
		onGinResponse[response.ExecuteScriptResponse](c, resp, err)
	})
	r.GET("/api/v1/executions", func(c *gin.Context) {
		var req request.ListExecutionRequest
		if !onGinBind(c, &req, "QUERY") {
			return
		}
		resp, err := w.api.List(c, req)
		onGinResponse[response.ListExecutionResponse](c, resp, err)
	})
	r.GET("/api/v1/executions/stats", func(c *gin.Context) {
		var req request.ExecutionStatsRequest
		if !onGinBind(c, &req, "QUERY") {
			return
		}
		resp, err := w.api.Stats(c, req)
		onGinResponse[response.ExecutionStatsResponse](c, resp, err)
	})
	r.GET("/api/v1/executions/:id", func(c *gin.Context) {
		resp, err := w.api.Get(c, c.Param("id"))
		onGinResponse[response.TaskExecutionResponse](c, resp, err)
	})
	r.POST("/api/v1/executions/:id/cancel", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		resp, err := w.api.Cancel(c, id)
		onGinResponse[response.CancelExecutionResponse](c, resp, err)
	})
}

type ScriptAPIWrap struct {
	api IScriptAPI
}

func NewScriptAPIWrap(api IScriptAPI) *ScriptAPIWrap {
	return &ScriptAPIWrap{api: api}
}

func (w *ScriptAPIWrap) BindAll(r gin.IRouter) {
	r.GET("/api/v1/scripts", func(c *gin.Context) {
		var req request.ListScriptRequest
		if !onGinBind(c, &req, "QUERY") {
			return
		}
		resp, err := w.api.List(c, req)
		onGinResponse[response.ListScriptResponse](c, resp, err)
	})
	r.GET("/api/v1/scripts/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		resp, err := w.api.Get(c, id)
		onGinResponse[response.ScriptResponse](c, resp, err)
	})
	r.POST("/api/v1/scripts", func(c *gin.Context) {
		var req request.CreateScriptRequest
		if !onGinBind(c, &req, "JSON") {
			return
		}
		resp, err := w.api.Create(c, req)
		onGinResponse[response.ScriptResponse](c, resp, err)
	})
}

type CommonAPIWrap struct {
	api ICommonAPI
}

func NewCommonAPIWrap(api ICommonAPI) *CommonAPIWrap {
	return &CommonAPIWrap{api: api}
}

func (w *CommonAPIWrap) BindAll(r gin.IRouter) {
	r.GET("/api/v1/health", func(c *gin.Context) {
		resp, err := w.api.HealthCheck(c)
		onGinResponse[gin.H](c, resp, err)
	})
	r.GET("/api/v1/queue/stats", func(c *gin.Context) {
		resp, err := w.api.QueueStats(c)
		onGinResponse[response.QueueStatsResponse](c, resp, err)
	})
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
