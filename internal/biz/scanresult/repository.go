package scanresult

import "context"

type Repo interface {
	Create(ctx context.Context, result *ScanResult) error
	GetByTaskID(ctx context.Context, taskID string) (*ScanResult, error)
	ListRecent(ctx context.Context, limit int) ([]*ScanResult, error)
}
