package service

import (
	"context"

	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/pkg/idgen"
	"github.com/maitrisea/backend/internal/repository"
	"k8s.io/klog/v2"
)

// CreateProjectRequest 创建项目请求
//
// InitialTemplateIDs 为 nil 时使用创建者的默认文档模板，空切片表示不激活任何模板。
// 其余模板 ID 为空时使用创建者偏好。
type CreateProjectRequest struct {
	ProjectName           string                `json:"project_name"`
	ClientName            string                `json:"client_name"`
	ClientEmail           string                `json:"client_email"`
	ProjectAddress        string                `json:"project_address"`
	ImageURL              string                `json:"image_url"`
	Category              model.ProjectCategory `json:"category"`
	AssignedUsers         []string              `json:"assigned_users"`
	InitialTemplateIDs    []string              `json:"initial_template_ids"`
	TimelineTemplateID    string                `json:"timeline_template_id"`
	StakeholderTemplateID string                `json:"stakeholder_template_id"`
	TradeLotTemplateID    string                `json:"trade_lot_template_id"`
}

// ScaffoldService 创建项目并一次性生成全部派生记录
type ScaffoldService struct {
	ws *repository.Workspace
	d  *deriver
}

func NewScaffoldService(ws *repository.Workspace, opts Options) *ScaffoldService {
	return &ScaffoldService{ws: ws, d: newDeriver(opts)}
}

// CreateProject 创建项目：文档字段、时间线、干系人、分包，最后整体保存一次
//
// 各子步骤独立尽力执行，无法解析的模板只跳过对应步骤，项目仍然创建。
func (s *ScaffoldService) CreateProject(ctx context.Context, req CreateProjectRequest, creatorID string) (*model.Project, error) {
	var project model.Project
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		project = s.newProject(req, creatorID)
		snap.Projects = append(snap.Projects, project)
		prefs := snap.Preferences(creatorID)

		s.applyDocumentTemplates(snap, project.ID, req.InitialTemplateIDs, prefs)
		s.applyTimeline(snap, project.ID, req.TimelineTemplateID, prefs)
		s.applyStakeholders(snap, project.ID, req.StakeholderTemplateID, prefs)
		s.applyTradeLots(snap, project.ID, req.TradeLotTemplateID, prefs)

		klog.V(6).Infof("项目已创建: id=%s, name=%s, creator=%s", project.ID, project.ProjectName, creatorID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ScaffoldService) newProject(req CreateProjectRequest, creatorID string) model.Project {
	now := s.d.now()
	p := model.Project{
		ID:             s.d.newID(idgen.PrefixProject),
		WorkspaceID:    s.d.workspaceID,
		ProjectName:    req.ProjectName,
		ClientName:     req.ClientName,
		ClientEmail:    req.ClientEmail,
		ProjectAddress: req.ProjectAddress,
		ImageURL:       req.ImageURL,
		StatusGlobal:   model.DefaultStatusGlobal,
		Category:       model.CategoryProspect,
		AssignedUsers:  append([]string(nil), req.AssignedUsers...),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.ProjectName == "" {
		p.ProjectName = "Nouveau Projet"
	}
	if p.ClientName == "" {
		p.ClientName = "Client"
	}
	if req.Category == model.CategoryClient {
		p.Category = model.CategoryClient
	}
	if len(p.AssignedUsers) == 0 && creatorID != "" {
		p.AssignedUsers = []string{creatorID}
	}
	return p
}

func (s *ScaffoldService) applyDocumentTemplates(snap *model.Snapshot, projectID string, selected []string, prefs *model.UserPreferences) {
	ids := selected
	if ids == nil && prefs != nil {
		ids = prefs.DefaultDocumentTemplateIDs
	}
	for _, id := range model.UniqueStrings(ids) {
		tpl := snap.FindTemplate(id)
		if tpl == nil {
			klog.Warningf("创建项目时跳过不存在的文档模板: project=%s, template=%s", projectID, id)
			continue
		}
		s.d.activateTemplate(snap, projectID, tpl)
	}
}

// resolveTimeline 显式选择 → 创建者默认 → 内置模板
func resolveTimeline(snap *model.Snapshot, explicitID string, prefs *model.UserPreferences) (*model.TimelineTemplate, bool) {
	id := explicitID
	if id == "" && prefs != nil {
		id = prefs.DefaultTimelineTemplateID
	}
	if id != "" {
		tt := snap.FindTimelineTemplate(id)
		return tt, tt != nil
	}
	if tt := snap.FindTimelineTemplate(DefaultTimelineTemplateID); tt != nil {
		return tt, true
	}
	baseline := BaselineTimelineTemplate()
	return &baseline, true
}

func (s *ScaffoldService) applyTimeline(snap *model.Snapshot, projectID, explicitID string, prefs *model.UserPreferences) {
	tt, ok := resolveTimeline(snap, explicitID, prefs)
	if !ok {
		klog.Warningf("创建项目时跳过不存在的时间线模板: project=%s, explicit=%s", projectID, explicitID)
		return
	}
	items := append([]model.TimelineDescriptor(nil), tt.Items...)
	s.d.materialize(snap, projectID, items)
}

func (s *ScaffoldService) applyStakeholders(snap *model.Snapshot, projectID, explicitID string, prefs *model.UserPreferences) {
	id := explicitID
	if id == "" && prefs != nil {
		id = prefs.DefaultStakeholderTemplateID
	}
	if id == "" {
		return
	}
	tpl := snap.FindStakeholderTemplate(id)
	if tpl == nil {
		klog.Warningf("创建项目时跳过不存在的干系人模板: project=%s, template=%s", projectID, id)
		return
	}
	s.d.addStakeholders(snap, projectID, append([]string(nil), tpl.Roles...), true)
}

func (s *ScaffoldService) applyTradeLots(snap *model.Snapshot, projectID, explicitID string, prefs *model.UserPreferences) {
	id := explicitID
	if id == "" && prefs != nil {
		id = prefs.DefaultTradeLotTemplateID
	}
	if id == "" {
		return
	}
	tpl := snap.FindTradeLotTemplate(id)
	if tpl == nil {
		klog.Warningf("创建项目时跳过不存在的分包模板: project=%s, template=%s", projectID, id)
		return
	}
	s.d.addTradeLots(snap, projectID, append([]string(nil), tpl.Lots...))
}
