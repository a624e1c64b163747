package scriptrepo

import (
	"github.com/validators/runner/internal/infra/persistence/commonrepo"
	"gorm.io/datatypes"
)

type ScriptPo struct {
	commonrepo.Mode
	Name             string            `gorm:"column:name;size:191;not null;uniqueIndex"`
	DisplayTitle     string            `gorm:"column:display_title;size:191"`
	Description      string            `gorm:"column:description;type:text"`
	ScriptPath       string            `gorm:"column:script_path;size:512;not null"`
	ScriptType       string            `gorm:"column:script_type;size:50;not null;default:python"`
	ParametersSchema datatypes.JSONMap `gorm:"column:parameters_schema;type:json"`
	IsActive         bool              `gorm:"column:is_active;not null;default:true;index"`
}

func (ScriptPo) TableName() string {
	return "scripts"
}
