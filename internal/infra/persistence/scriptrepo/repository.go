package scriptrepo

import (
	"context"
	"errors"

	"github.com/google/wire"
	"github.com/samber/lo"
	domain "github.com/validators/runner/internal/biz/script"
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

func (r *MysqlRepositoryImpl) Create(ctx context.Context, script *domain.Script) error {
	po := new(ScriptPo).FromDomain(script)
	if err := r.Db(ctx).Create(po).Error; err != nil {
		return err
	}
	script.ID = po.ID
	script.CreatedAt = po.CreatedAt
	script.UpdatedAt = po.UpdatedAt
	return nil
}

func (r *MysqlRepositoryImpl) GetByID(ctx context.Context, id uint64) (*domain.Script, error) {
	var po ScriptPo
	if err := r.Db(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) GetByName(ctx context.Context, name string) (*domain.Script, error) {
	var po ScriptPo
	if err := r.Db(ctx).Where("name = ?", name).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) List(ctx context.Context, filter *domain.ScriptFilter) ([]*domain.Script, error) {
	db := r.Db(ctx).Model(&ScriptPo{})
	if filter != nil {
		if filter.IsActive.IsPresent() {
			db = db.Where("is_active = ?", filter.IsActive.MustGet())
		}
		if filter.Type.IsPresent() {
			db = db.Where("script_type = ?", filter.Type.MustGet())
		}
	}
	var pos []ScriptPo
	if err := db.Order("name ASC").Find(&pos).Error; err != nil {
		return nil, err
	}
	return lo.Map(pos, func(po ScriptPo, _ int) *domain.Script {
		return po.ToDomain()
	}), nil
}

// GetOrCreateByName 名称带唯一索引，并发下重复创建会触发冲突，此时按已有记录重查一次
func (r *MysqlRepositoryImpl) GetOrCreateByName(ctx context.Context, name string, defaults *domain.Script) (*domain.Script, error) {
	var po ScriptPo
	attrs := new(ScriptPo).FromDomain(defaults)
	attrs.Name = name
	err := r.Db(ctx).Where("name = ?", name).Attrs(attrs).FirstOrCreate(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetByName(ctx, name)
		}
		return nil, err
	}
	return po.ToDomain(), nil
}
