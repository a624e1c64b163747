package api

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/mo"

	"github.com/validators/runner/internal/biz/script"
	"github.com/validators/runner/internal/dto/mapper"
	"github.com/validators/runner/internal/dto/request"
	"github.com/validators/runner/internal/dto/response"
	"github.com/validators/runner/internal/service"
)

type IScriptAPI interface {
	// List 获取脚本列表
	// @GET(api/v1/scripts)
	List(ctx *gin.Context, req request.ListScriptRequest) (response.ListScriptResponse, error)

	// Get 获取脚本详情
	// @GET(api/v1/scripts/{id})
	Get(ctx *gin.Context, id uint64) (response.ScriptResponse, error)

	// Create 登记脚本
	// @POST(api/v1/scripts)
	Create(ctx *gin.Context, req request.CreateScriptRequest) (response.ScriptResponse, error)
}

var _ IScriptAPI = (*ScriptAPI)(nil)

type ScriptAPI struct {
	scriptService service.IScriptService
	mapper        *mapper.ScriptMapper
}

func NewScriptAPI(scriptService service.IScriptService) *ScriptAPI {
	return &ScriptAPI{
		scriptService: scriptService,
		mapper:        mapper.NewScriptMapper(),
	}
}

func (s *ScriptAPI) List(ctx *gin.Context, req request.ListScriptRequest) (response.ListScriptResponse, error) {
	filter := &script.ScriptFilter{}
	if req.IsActive != nil {
		filter.IsActive = mo.Some(*req.IsActive)
	}
	if req.ScriptType != "" {
		filter.Type = mo.Some(req.ScriptType)
	}

	scripts, err := s.scriptService.ListScripts(ctx.Request.Context(), filter)
	if err != nil {
		return response.ListScriptResponse{}, err
	}

	return s.mapper.ToScriptListResponse(scripts), nil
}

func (s *ScriptAPI) Get(ctx *gin.Context, id uint64) (response.ScriptResponse, error) {
	sc, err := s.scriptService.GetScript(ctx.Request.Context(), id)
	if err != nil {
		return response.ScriptResponse{}, err
	}
	return s.mapper.ToScriptResponse(sc), nil
}

func (s *ScriptAPI) Create(ctx *gin.Context, req request.CreateScriptRequest) (response.ScriptResponse, error) {
	sc, err := s.scriptService.CreateScript(ctx.Request.Context(), service.CreateScriptCommand{
		Name:             req.Name,
		DisplayTitle:     req.DisplayTitle,
		Description:      req.Description,
		ScriptPath:       req.ScriptPath,
		ScriptType:       req.ScriptType,
		ParametersSchema: req.ParametersSchema,
		IsActive:         req.IsActive,
	})
	if err != nil {
		return response.ScriptResponse{}, err
	}
	return s.mapper.ToScriptResponse(sc), nil
}
