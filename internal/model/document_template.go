package model

import "time"

// TemplateType 文档模板分类
type TemplateType string

const (
	TemplateContract      TemplateType = "CONTRACT"
	TemplateOrderThermal  TemplateType = "ORDER_THERMAL"
	TemplateOrderSoil     TemplateType = "ORDER_SOIL"
	TemplateDORequest     TemplateType = "DO_REQUEST"
	TemplateBrokerContact TemplateType = "BROKER_CONTACT"
	TemplateOther         TemplateType = "OTHER"
)

// Valid 判断分类是否合法
func (t TemplateType) Valid() bool {
	switch t {
	case TemplateContract, TemplateOrderThermal, TemplateOrderSoil, TemplateDORequest, TemplateBrokerContact, TemplateOther:
		return true
	}
	return false
}

// AnalysisStatus 变量提取状态
type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisOK         AnalysisStatus = "ok"
	AnalysisError      AnalysisStatus = "error"
)

// DocumentTemplate 文档模板，Variables 为模板声明的变量名（去重、有序）
type DocumentTemplate struct {
	ID             string         `json:"id" gorm:"primaryKey;size:64"`
	WorkspaceID    string         `json:"workspace_id" gorm:"size:64;index"`
	TemplateName   string         `json:"template_name" gorm:"size:255;not null"`
	TemplateType   TemplateType   `json:"template_type" gorm:"size:50"`
	FileURL        string         `json:"file_url" gorm:"type:text"`
	Variables      []string       `json:"variables" gorm:"type:text;serializer:json"`
	IsActive       bool           `json:"is_active"`
	AnalysisStatus AnalysisStatus `json:"analysis_status" gorm:"size:20"`
	AnalysisError  string         `json:"analysis_error,omitempty" gorm:"size:500"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName 指定表名
func (DocumentTemplate) TableName() string {
	return "document_templates"
}

// StakeholderTemplate 干系人角色模板
type StakeholderTemplate struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	WorkspaceID  string    `json:"workspace_id" gorm:"size:64"`
	TemplateName string    `json:"name" gorm:"size:255;not null"`
	Roles        []string  `json:"roles" gorm:"type:text;serializer:json"`
	CreatedAt    time.Time `json:"created_at"`
}

// TradeLotTemplate 工程分包模板
type TradeLotTemplate struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	WorkspaceID  string    `json:"workspace_id" gorm:"size:64"`
	TemplateName string    `json:"name" gorm:"size:255;not null"`
	Lots         []string  `json:"lots" gorm:"type:text;serializer:json"`
	CreatedAt    time.Time `json:"created_at"`
}
