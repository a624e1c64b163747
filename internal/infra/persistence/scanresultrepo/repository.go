package scanresultrepo

import (
	"context"
	"errors"

	"github.com/google/wire"
	"github.com/samber/lo"
	domain "github.com/validators/runner/internal/biz/scanresult"
	"github.com/validators/runner/internal/infra/persistence/commonrepo"
	"gorm.io/gorm"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.Repo {
	return &MysqlRepositoryImpl{
		DefaultRepo: commonrepo.NewDefaultRepo(db),
	}
}

func (r *MysqlRepositoryImpl) Create(ctx context.Context, result *domain.ScanResult) error {
	po := new(ScanResultPo).FromDomain(result)
	if err := r.Db(ctx).Create(po).Error; err != nil {
		return err
	}
	result.ID = po.ID
	result.CreatedAt = po.CreatedAt
	return nil
}

func (r *MysqlRepositoryImpl) GetByTaskID(ctx context.Context, taskID string) (*domain.ScanResult, error) {
	var po ScanResultPo
	if err := r.Db(ctx).Where("task_id = ?", taskID).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*domain.ScanResult, error) {
	if limit <= 0 {
		limit = 20
	}
	var pos []ScanResultPo
	if err := r.Db(ctx).
		Model(&ScanResultPo{}).
		Where("result_type = ?", domain.ResultTypeScript).
		Order("created_at DESC").
		Limit(limit).
		Find(&pos).Error; err != nil {
		return nil, err
	}
	return lo.Map(pos, func(po ScanResultPo, _ int) *domain.ScanResult {
		return po.ToDomain()
	}), nil
}
