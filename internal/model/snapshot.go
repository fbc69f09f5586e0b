package model

import "sort"

// SnapshotKey 整体快照在键值存储中的键名
const SnapshotKey = "maitrisea_db_v1"

// Snapshot 工作区完整实体集合，每次修改后整体持久化
type Snapshot struct {
	Projects             []Project             `json:"projects" yaml:"projects"`
	Stages               []Stage               `json:"stages" yaml:"stages"`
	Tasks                []Task                `json:"tasks" yaml:"tasks"`
	TimelineItems        []TimelineItem        `json:"timelineItems" yaml:"timelineItems"`
	TimelineTemplates    []TimelineTemplate    `json:"timelineTemplates" yaml:"timelineTemplates"`
	Templates            []DocumentTemplate    `json:"templates" yaml:"templates"`
	ProjectFields        []ProjectField        `json:"projectFields" yaml:"projectFields"`
	TemplateLinks        []ProjectTemplateLink `json:"templateLinks" yaml:"templateLinks"`
	Comments             []Comment             `json:"comments" yaml:"comments"`
	Settings             *AppSettings          `json:"settings" yaml:"settings"`
	UserPreferences      []UserPreferences     `json:"userPreferences" yaml:"userPreferences"`
	Stakeholders         []Stakeholder         `json:"stakeholders" yaml:"stakeholders"`
	TradeLots            []TradeLot            `json:"tradeLots" yaml:"tradeLots"`
	SiteReports          []SiteReport          `json:"siteReports" yaml:"siteReports"`
	StakeholderTemplates []StakeholderTemplate `json:"stakeholderTemplates" yaml:"stakeholderTemplates"`
	TradeLotTemplates    []TradeLotTemplate    `json:"tradeLotTemplates" yaml:"tradeLotTemplates"`
}

// NewSnapshot 创建空快照
func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.Normalize()
	return s
}

// Normalize 将缺失的集合补为空集合
func (s *Snapshot) Normalize() {
	if s.Projects == nil {
		s.Projects = []Project{}
	}
	if s.Stages == nil {
		s.Stages = []Stage{}
	}
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	if s.TimelineItems == nil {
		s.TimelineItems = []TimelineItem{}
	}
	if s.TimelineTemplates == nil {
		s.TimelineTemplates = []TimelineTemplate{}
	}
	if s.Templates == nil {
		s.Templates = []DocumentTemplate{}
	}
	if s.ProjectFields == nil {
		s.ProjectFields = []ProjectField{}
	}
	if s.TemplateLinks == nil {
		s.TemplateLinks = []ProjectTemplateLink{}
	}
	if s.Comments == nil {
		s.Comments = []Comment{}
	}
	if s.Settings == nil {
		s.Settings = &AppSettings{ID: 1}
	}
	if s.UserPreferences == nil {
		s.UserPreferences = []UserPreferences{}
	}
	if s.Stakeholders == nil {
		s.Stakeholders = []Stakeholder{}
	}
	if s.TradeLots == nil {
		s.TradeLots = []TradeLot{}
	}
	if s.SiteReports == nil {
		s.SiteReports = []SiteReport{}
	}
	if s.StakeholderTemplates == nil {
		s.StakeholderTemplates = []StakeholderTemplate{}
	}
	if s.TradeLotTemplates == nil {
		s.TradeLotTemplates = []TradeLotTemplate{}
	}
}

// AllModels 返回需要建表的全部模型
func AllModels() []any {
	return []any{
		&Project{}, &Stage{}, &Task{}, &TimelineItem{}, &TimelineTemplate{},
		&DocumentTemplate{}, &ProjectField{}, &ProjectTemplateLink{}, &Comment{},
		&AppSettings{}, &UserPreferences{}, &Stakeholder{}, &TradeLot{}, &SiteReport{},
		&StakeholderTemplate{}, &TradeLotTemplate{},
	}
}

func (s *Snapshot) FindProject(id string) *Project {
	for i := range s.Projects {
		if s.Projects[i].ID == id {
			return &s.Projects[i]
		}
	}
	return nil
}

func (s *Snapshot) FindTemplate(id string) *DocumentTemplate {
	for i := range s.Templates {
		if s.Templates[i].ID == id {
			return &s.Templates[i]
		}
	}
	return nil
}

func (s *Snapshot) FindTimelineTemplate(id string) *TimelineTemplate {
	for i := range s.TimelineTemplates {
		if s.TimelineTemplates[i].ID == id {
			return &s.TimelineTemplates[i]
		}
	}
	return nil
}

func (s *Snapshot) FindStakeholderTemplate(id string) *StakeholderTemplate {
	for i := range s.StakeholderTemplates {
		if s.StakeholderTemplates[i].ID == id {
			return &s.StakeholderTemplates[i]
		}
	}
	return nil
}

func (s *Snapshot) FindTradeLotTemplate(id string) *TradeLotTemplate {
	for i := range s.TradeLotTemplates {
		if s.TradeLotTemplates[i].ID == id {
			return &s.TradeLotTemplates[i]
		}
	}
	return nil
}

func (s *Snapshot) FindStage(id string) *Stage {
	for i := range s.Stages {
		if s.Stages[i].ID == id {
			return &s.Stages[i]
		}
	}
	return nil
}

func (s *Snapshot) FindTask(id string) *Task {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i]
		}
	}
	return nil
}

func (s *Snapshot) FindReport(id string) *SiteReport {
	for i := range s.SiteReports {
		if s.SiteReports[i].ID == id {
			return &s.SiteReports[i]
		}
	}
	return nil
}

func (s *Snapshot) FindField(id string) *ProjectField {
	for i := range s.ProjectFields {
		if s.ProjectFields[i].ID == id {
			return &s.ProjectFields[i]
		}
	}
	return nil
}

// FindFieldByKey 查找项目下指定变量名的字段
func (s *Snapshot) FindFieldByKey(projectID, key string) *ProjectField {
	for i := range s.ProjectFields {
		f := &s.ProjectFields[i]
		if f.ProjectID == projectID && f.Key == key {
			return f
		}
	}
	return nil
}

// FindActiveLink 查找项目与模板之间的激活关联
func (s *Snapshot) FindActiveLink(projectID, templateID string) *ProjectTemplateLink {
	for i := range s.TemplateLinks {
		l := &s.TemplateLinks[i]
		if l.ProjectID == projectID && l.TemplateID == templateID && l.Status == LinkActive {
			return l
		}
	}
	return nil
}

// Preferences 返回用户偏好，不存在时返回 nil
func (s *Snapshot) Preferences(userID string) *UserPreferences {
	for i := range s.UserPreferences {
		if s.UserPreferences[i].UserID == userID {
			return &s.UserPreferences[i]
		}
	}
	return nil
}

// ProjectTimeline 返回项目时间线条目副本，按 Position 升序
func (s *Snapshot) ProjectTimeline(projectID string) []TimelineItem {
	var items []TimelineItem
	for _, it := range s.TimelineItems {
		if it.ProjectID == projectID {
			items = append(items, it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
	return items
}

// ProjectFieldsOf 返回项目字段副本，按 Key 排序
func (s *Snapshot) ProjectFieldsOf(projectID string) []ProjectField {
	var fields []ProjectField
	for _, f := range s.ProjectFields {
		if f.ProjectID == projectID {
			fields = append(fields, f)
		}
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Key < fields[j].Key
	})
	return fields
}
