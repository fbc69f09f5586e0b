package model

// AppSettings 全局设置，仅一行
type AppSettings struct {
	ID             uint   `json:"-" gorm:"primaryKey"`
	MakeWebhookURL string `json:"make_webhook_url" gorm:"type:text"`
}

// UserPreferences 用户默认模板偏好，创建项目时使用
type UserPreferences struct {
	UserID                       string   `json:"user_id" gorm:"primaryKey;size:64"`
	DefaultTimelineTemplateID    string   `json:"default_timeline_template_id,omitempty" gorm:"size:64"`
	DefaultDocumentTemplateIDs   []string `json:"default_document_template_ids,omitempty" gorm:"type:text;serializer:json"`
	DefaultStakeholderTemplateID string   `json:"default_stakeholder_template_id,omitempty" gorm:"size:64"`
	DefaultTradeLotTemplateID    string   `json:"default_trade_lot_template_id,omitempty" gorm:"size:64"`
}
