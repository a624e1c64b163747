package scanresultrepo

import (
	"github.com/validators/runner/internal/infra/persistence/commonrepo"
)

type ScanResultPo struct {
	commonrepo.Mode
	Filename      string  `gorm:"column:filename;size:255;not null"`
	Director      string  `gorm:"column:director;size:191"`
	Remark        string  `gorm:"column:remark;size:512"`
	Status        string  `gorm:"column:status;size:10;not null;default:0"`
	Content       string  `gorm:"column:content;type:longtext"`
	ResultType    string  `gorm:"column:result_type;size:50;not null;index"`
	ScriptName    string  `gorm:"column:script_name;size:191;index"`
	TaskID        string  `gorm:"column:task_id;size:191;index"`
	ExecutionTime float64 `gorm:"column:execution_time"`
	ScriptOutput  string  `gorm:"column:script_output;type:longtext"`
	ErrorMessage  string  `gorm:"column:error_message;type:text"`
}

func (ScanResultPo) TableName() string {
	return "scan_results"
}
