package scanresultrepo

import (
	domain "github.com/validators/runner/internal/biz/scanresult"
	"github.com/validators/runner/internal/infra/persistence/commonrepo"
)

func (po *ScanResultPo) ToDomain() *domain.ScanResult {
	return &domain.ScanResult{
		ID:            po.ID,
		CreatedAt:     po.CreatedAt,
		Filename:      po.Filename,
		Director:      po.Director,
		Remark:        po.Remark,
		Status:        po.Status,
		Content:       po.Content,
		ResultType:    po.ResultType,
		ScriptName:    po.ScriptName,
		TaskID:        po.TaskID,
		ExecutionTime: po.ExecutionTime,
		ScriptOutput:  po.ScriptOutput,
		ErrorMessage:  po.ErrorMessage,
	}
}

func (po *ScanResultPo) FromDomain(in *domain.ScanResult) *ScanResultPo {
	return &ScanResultPo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
		},
		Filename:      in.Filename,
		Director:      in.Director,
		Remark:        in.Remark,
		Status:        in.Status,
		Content:       in.Content,
		ResultType:    in.ResultType,
		ScriptName:    in.ScriptName,
		TaskID:        in.TaskID,
		ExecutionTime: in.ExecutionTime,
		ScriptOutput:  in.ScriptOutput,
		ErrorMessage:  in.ErrorMessage,
	}
}
