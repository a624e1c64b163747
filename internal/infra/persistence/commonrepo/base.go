package commonrepo

import "time"

// Mode 所有持久化对象的公共列
type Mode struct {
	ID        uint64    `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index;autoCreateTime"`
	UpdatedAt time.Time `gorm:"index;autoUpdateTime"`
}
