package script

import (
	"strings"
	"time"
)

const TypePython = "python"

// Script 注册的校验脚本
type Script struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	Name             string
	DisplayTitle     string
	Description      string
	ScriptPath       string
	ScriptType       string
	ParametersSchema map[string]any
	IsActive         bool
}

// DialogTitle 前端展示标题，未配置时回退到脚本名
func (s *Script) DialogTitle() string {
	if s.DisplayTitle != "" {
		return s.DisplayTitle
	}
	return s.Name
}

// Descriptor 执行器消费的最小脚本描述 {name, path}
type Descriptor struct {
	ID   uint64
	Name string
	Path string
}

func (s *Script) Descriptor() Descriptor {
	return Descriptor{ID: s.ID, Name: s.Name, Path: s.ScriptPath}
}

func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(d.Path) == "" {
		return ErrMissingPath
	}
	return nil
}
