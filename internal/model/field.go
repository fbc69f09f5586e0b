package model

import (
	"strings"
	"time"
)

// ProjectField 项目技术表字段
//
// 字段是否存在由项目上已激活的文档模板推导：UsedInTemplateIDs 为空时字段被删除。
type ProjectField struct {
	ID                    string    `json:"id" gorm:"primaryKey;size:64"`
	WorkspaceID           string    `json:"workspace_id" gorm:"size:64"`
	ProjectID             string    `json:"project_id" gorm:"size:64;index:idx_project_field_key,unique"`
	Key                   string    `json:"key" gorm:"size:255;index:idx_project_field_key,unique"`
	Label                 string    `json:"label" gorm:"size:255"`
	Value                 string    `json:"value" gorm:"type:text"`
	UsedInTemplateIDs     IDSet     `json:"used_in_template_ids" gorm:"type:text;serializer:json"`
	CreatedFromTemplateID string    `json:"created_from_template_id,omitempty" gorm:"size:64"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// FieldLabel 由变量名生成展示标签
func FieldLabel(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// LinkStatus 模板关联状态
type LinkStatus string

const (
	LinkActive   LinkStatus = "active"
	LinkInactive LinkStatus = "inactive"
)

// ProjectTemplateLink 项目与文档模板的激活关系
type ProjectTemplateLink struct {
	ID         string     `json:"id" gorm:"primaryKey;size:64"`
	ProjectID  string     `json:"project_id" gorm:"size:64;index"`
	TemplateID string     `json:"template_id" gorm:"size:64;index"`
	Status     LinkStatus `json:"status" gorm:"size:20"`
	CreatedAt  time.Time  `json:"created_at"`
}
