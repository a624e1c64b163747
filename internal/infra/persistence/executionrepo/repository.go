package executionrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/wire"
	"github.com/samber/lo"
	domain "github.com/validators/runner/internal/biz/execution"
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

func (r *MysqlRepositoryImpl) Create(ctx context.Context, execution *domain.TaskExecution) error {
	po := new(TaskExecutionPo).FromDomain(execution)
	if err := r.Db(ctx).Create(po).Error; err != nil {
		return err
	}
	execution.ID = po.ID
	execution.CreatedAt = po.CreatedAt
	execution.UpdatedAt = po.UpdatedAt
	return nil
}

func (r *MysqlRepositoryImpl) GetByID(ctx context.Context, id uint64) (*domain.TaskExecution, error) {
	var po TaskExecutionPo
	if err := r.Db(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) GetByTaskID(ctx context.Context, taskID string) (*domain.TaskExecution, error) {
	var po TaskExecutionPo
	if err := r.Db(ctx).Where("task_id = ?", taskID).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) Update(ctx context.Context, id uint64, patch *domain.TaskExecutionPatch) error {
	values := patchToMap(patch)
	if len(values) == 0 {
		return nil
	}
	return r.Db(ctx).Model(&TaskExecutionPo{}).Where("id = ?", id).Updates(values).Error
}

func (r *MysqlRepositoryImpl) Count(ctx context.Context, filter *domain.ExecutionFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MysqlRepositoryImpl) List(ctx context.Context, filter *domain.ExecutionFilter) ([]*domain.TaskExecution, int64, error) {
	db := r.applyFilter(ctx, filter)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		db = db.Limit(filter.Limit).Offset(filter.Offset)
	}

	var pos []TaskExecutionPo
	if err := db.Order("created_at DESC").Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	return lo.Map(pos, func(po TaskExecutionPo, _ int) *domain.TaskExecution {
		return po.ToDomain()
	}), total, nil
}

func (r *MysqlRepositoryImpl) Stats(ctx context.Context, filter *domain.ExecutionFilter) (*domain.ExecutionStats, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.applyFilter(ctx, filter).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &domain.ExecutionStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch domain.ExecutionStatus(row.Status) {
		case domain.ExecutionStatusSuccess:
			stats.Success += row.Count
		case domain.ExecutionStatusFailure:
			stats.Failed += row.Count
		case domain.ExecutionStatusStarted, domain.ExecutionStatusRetry:
			stats.Running += row.Count
		case domain.ExecutionStatusPending:
			stats.Pending += row.Count
		case domain.ExecutionStatusRevoked:
			stats.Revoked += row.Count
		}
	}
	return stats, nil
}

func (r *MysqlRepositoryImpl) FindStale(ctx context.Context, statuses []domain.ExecutionStatus, olderThan time.Time) ([]*domain.TaskExecution, error) {
	var pos []TaskExecutionPo
	if err := r.Db(ctx).
		Where("status IN ?", statuses).
		Where("created_at < ?", olderThan).
		Find(&pos).Error; err != nil {
		return nil, err
	}
	return lo.Map(pos, func(po TaskExecutionPo, _ int) *domain.TaskExecution {
		return po.ToDomain()
	}), nil
}

func (r *MysqlRepositoryImpl) applyFilter(ctx context.Context, filter *domain.ExecutionFilter) *gorm.DB {
	db := r.Db(ctx).Model(&TaskExecutionPo{})
	if filter == nil {
		return db
	}
	if filter.Status.IsPresent() {
		db = db.Where("status = ?", filter.Status.MustGet())
	}
	if filter.ScriptName.IsPresent() {
		db = db.Where("script_name = ?", filter.ScriptName.MustGet())
	}
	if filter.TaskID.IsPresent() {
		db = db.Where("task_id = ?", filter.TaskID.MustGet())
	}
	if filter.CreatedAfter.IsPresent() {
		db = db.Where("created_at >= ?", filter.CreatedAfter.MustGet())
	}
	if filter.CreatedBefore.IsPresent() {
		db = db.Where("created_at <= ?", filter.CreatedBefore.MustGet())
	}
	return db
}
