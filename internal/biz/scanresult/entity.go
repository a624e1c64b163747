package scanresult

import "time"

// ScanResult 脚本执行结果归档，供前端历史页展示
// 由 mark_success 的旁路写入产生，写失败只记日志不影响主流程
type ScanResult struct {
	ID        uint64
	CreatedAt time.Time

	Filename      string
	Director      string
	Remark        string
	Status        string
	Content       string
	ResultType    string
	ScriptName    string
	TaskID        string
	ExecutionTime float64
	ScriptOutput  string
	ErrorMessage  string
}

const (
	StatusAvailable  = "0"
	ResultTypeScript = "script"
)
