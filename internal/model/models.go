package model

import (
	"time"
)

// ProjectCategory 项目商务分类
type ProjectCategory string

const (
	CategoryProspect ProjectCategory = "Prospect"
	CategoryClient   ProjectCategory = "Client"
)

// DefaultStatusGlobal 新建项目的技术阶段
const DefaultStatusGlobal = "Initialisation"

// ItemStatus 阶段/任务状态
type ItemStatus string

const (
	StatusNotStarted   ItemStatus = "pas commencé"
	StatusInProgress   ItemStatus = "en cours"
	StatusDone         ItemStatus = "terminé"
	StatusAbandoned    ItemStatus = "abandonné"
	StatusNotConcerned ItemStatus = "pas concerné"
	StatusOther        ItemStatus = "autre"
)

// Valid 判断状态是否合法
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDone, StatusAbandoned, StatusNotConcerned, StatusOther:
		return true
	}
	return false
}

// TaskType 任务类型，system 类型任务提供“生成文档”动作
type TaskType string

const (
	TaskTypeFree   TaskType = "free"
	TaskTypeSystem TaskType = "system"
	TaskTypeAuto   TaskType = "auto"
)

// Valid 判断任务类型是否合法
func (t TaskType) Valid() bool {
	return t == TaskTypeFree || t == TaskTypeSystem || t == TaskTypeAuto
}

type Project struct {
	ID             string          `json:"id" gorm:"primaryKey;size:64"`
	WorkspaceID    string          `json:"workspace_id" gorm:"size:64;index"`
	ProjectName    string          `json:"project_name" gorm:"size:255;not null"`
	ClientName     string          `json:"client_name" gorm:"size:255"`
	ClientEmail    string          `json:"client_email,omitempty" gorm:"size:255"`
	ProjectAddress string          `json:"project_address" gorm:"size:500"`
	StatusGlobal   string          `json:"status_global" gorm:"size:100"`
	Category       ProjectCategory `json:"category" gorm:"size:20"`
	AssignedUsers  []string        `json:"assigned_users" gorm:"type:text;serializer:json"`
	DriveFolderID  string          `json:"drive_folder_id,omitempty" gorm:"size:255"`
	DriveFolderURL string          `json:"drive_folder_url,omitempty" gorm:"size:500"`
	ImageURL       string          `json:"image_url,omitempty" gorm:"type:text"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Stage struct {
	ID          string     `json:"id" gorm:"primaryKey;size:64"`
	WorkspaceID string     `json:"workspace_id" gorm:"size:64"`
	ProjectID   string     `json:"project_id" gorm:"size:64;index"`
	StageName   string     `json:"stage_name" gorm:"size:255"`
	Status      ItemStatus `json:"status" gorm:"size:50"`
	Date        string     `json:"date,omitempty" gorm:"size:50"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Task struct {
	ID               string     `json:"id" gorm:"primaryKey;size:64"`
	WorkspaceID      string     `json:"workspace_id" gorm:"size:64"`
	ProjectID        string     `json:"project_id" gorm:"size:64;index"`
	TaskName         string     `json:"task_name" gorm:"size:255"`
	TaskType         TaskType   `json:"task_type" gorm:"size:20"`
	SystemActionKey  string     `json:"system_action_key,omitempty" gorm:"size:100"`
	Status           ItemStatus `json:"status" gorm:"size:50"`
	AssignedToUserID string     `json:"assigned_to_user_id,omitempty" gorm:"size:64"`
	DueDate          string     `json:"due_date,omitempty" gorm:"size:50"`
	IsAutoRelance    bool       `json:"is_auto_relance,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	DoneAt           *time.Time `json:"done_at,omitempty"`
}

// LotObservation 现场报告中某个工程分包的观察记录
type LotObservation struct {
	LotID        string   `json:"lot_id"`
	LotName      string   `json:"lot_name"`
	Observations string   `json:"observations"`
	Decisions    string   `json:"decisions"`
	Photos       []string `json:"photos"`
}

// ReportStatus 现场报告状态
type ReportStatus string

const (
	ReportDraft ReportStatus = "draft"
	ReportSent  ReportStatus = "sent"
)

type SiteReport struct {
	ID              string           `json:"id" gorm:"primaryKey;size:64"`
	ProjectID       string           `json:"project_id" gorm:"size:64;index"`
	ReportNumber    int              `json:"report_number"`
	VisitDate       string           `json:"visit_date" gorm:"size:50"`
	Summary         string           `json:"summary" gorm:"type:text"`
	LotObservations []LotObservation `json:"lot_observations" gorm:"type:text;serializer:json"`
	Attendances     []map[string]any `json:"attendances" gorm:"type:text;serializer:json"`
	Status          ReportStatus     `json:"status" gorm:"size:20"`
	CreatedAt       time.Time        `json:"created_at"`
}

type Comment struct {
	ID             string    `json:"id" gorm:"primaryKey;size:64"`
	WorkspaceID    string    `json:"workspace_id" gorm:"size:64"`
	ProjectID      string    `json:"project_id" gorm:"size:64;index"`
	AuthorUserID   string    `json:"author_user_id" gorm:"size:64"`
	Body           string    `json:"body" gorm:"type:text"`
	MentionUserIDs []string  `json:"mentions_user_ids" gorm:"type:text;serializer:json"`
	CreatedAt      time.Time `json:"created_at"`
}

type Stakeholder struct {
	ID                 string `json:"id" gorm:"primaryKey;size:64"`
	ProjectID          string `json:"project_id" gorm:"size:64;index"`
	Role               string `json:"role" gorm:"size:255"`
	CompanyName        string `json:"company_name" gorm:"size:255"`
	RepresentativeName string `json:"representative_name" gorm:"size:255"`
	Email              string `json:"email" gorm:"size:255"`
	Phone              string `json:"phone" gorm:"size:50"`
	IsFromTemplate     bool   `json:"is_from_template,omitempty"`
}

type TradeLot struct {
	ID        string `json:"id" gorm:"primaryKey;size:64"`
	ProjectID string `json:"project_id" gorm:"size:64;index"`
	LotName   string `json:"lot_name" gorm:"size:255"`
}
