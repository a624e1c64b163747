package commonrepo

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// DB gorm能力的最小抽象，事务内外共用同一套查询代码
type DB interface {
	Model(value any) (tx *gorm.DB)
	Create(value any) (tx *gorm.DB)
	Save(value any) (tx *gorm.DB)
	Where(query any, args ...any) (tx *gorm.DB)
	Delete(value any, conds ...any) (tx *gorm.DB)
	First(dest any, conds ...any) (tx *gorm.DB)
	FirstOrCreate(dest any, conds ...any) (tx *gorm.DB)
	Find(dest any, conds ...any) (tx *gorm.DB)
	Count(count *int64) *gorm.DB
	Updates(values any) *gorm.DB
	Order(value any) *gorm.DB
	Limit(limit int) *gorm.DB
	Offset(offset int) *gorm.DB
	Exec(sql string, values ...any) (tx *gorm.DB)
	Raw(sql string, values ...any) (tx *gorm.DB)
	Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
	AutoMigrate(table ...any) error
	WithContext(ctx context.Context) *gorm.DB
	DB() (*sql.DB, error)
}
