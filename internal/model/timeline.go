package model

import "time"

// TimelineItemType 时间线条目类型
type TimelineItemType string

const (
	ItemTypeStage  TimelineItemType = "stage"
	ItemTypeTask   TimelineItemType = "task"
	ItemTypeReport TimelineItemType = "report"
)

// TimelineItem 项目时间线条目，Position 升序即展示顺序
type TimelineItem struct {
	ID          string           `json:"id" gorm:"primaryKey;size:64"`
	WorkspaceID string           `json:"workspace_id" gorm:"size:64"`
	ProjectID   string           `json:"project_id" gorm:"size:64;index"`
	ItemType    TimelineItemType `json:"item_type" gorm:"size:20;not null"`
	StageID     string           `json:"stage_id,omitempty" gorm:"size:64;index"`
	TaskID      string           `json:"task_id,omitempty" gorm:"size:64;index"`
	ReportID    string           `json:"report_id,omitempty" gorm:"size:64;index"`
	Position    int              `json:"position"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ContentID 返回条目引用的阶段/任务/报告 ID
func (i *TimelineItem) ContentID() string {
	switch i.ItemType {
	case ItemTypeStage:
		return i.StageID
	case ItemTypeTask:
		return i.TaskID
	case ItemTypeReport:
		return i.ReportID
	}
	return ""
}

// References 判断条目是否引用了给定内容
func (i *TimelineItem) References(contentID string) bool {
	if contentID == "" {
		return false
	}
	return i.StageID == contentID || i.TaskID == contentID || i.ReportID == contentID
}

// TimelineDescriptor 时间线模板中的一个条目，不含位置与内容 ID
type TimelineDescriptor struct {
	Name            string           `json:"name" yaml:"name"`
	ItemType        TimelineItemType `json:"item_type" yaml:"item_type"`
	TaskType        TaskType         `json:"task_type,omitempty" yaml:"task_type,omitempty"`
	SystemActionKey string           `json:"system_action_key,omitempty" yaml:"system_action_key,omitempty"`
}

// TimelineTemplate 时间线模板
type TimelineTemplate struct {
	ID           string               `json:"id" gorm:"primaryKey;size:64"`
	WorkspaceID  string               `json:"workspace_id" gorm:"size:64"`
	TemplateName string               `json:"template_name" gorm:"size:255;not null"`
	Items        []TimelineDescriptor `json:"items" gorm:"type:text;serializer:json"`
	CreatedAt    time.Time            `json:"created_at"`
}

// TableName 指定表名
func (TimelineTemplate) TableName() string {
	return "timeline_templates"
}
