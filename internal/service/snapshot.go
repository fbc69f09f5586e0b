package service

import (
	"context"
	"strings"

	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/pkg/idgen"
	"github.com/maitrisea/backend/internal/repository"
	"k8s.io/klog/v2"
)

// SnapshotService 项目内容与可复用模板之间的保存/加载
type SnapshotService struct {
	ws *repository.Workspace
	d  *deriver
}

func NewSnapshotService(ws *repository.Workspace, opts Options) *SnapshotService {
	return &SnapshotService{ws: ws, d: newDeriver(opts)}
}

// SaveTimelineAsTemplate 按位置顺序把项目时间线（不含报告）保存为新模板
func (s *SnapshotService) SaveTimelineAsTemplate(ctx context.Context, projectID, name string) (*model.TimelineTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTemplateData
	}
	var tt model.TimelineTemplate
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		tt = model.TimelineTemplate{
			ID:           s.d.newID(idgen.PrefixTimelineTemplate),
			WorkspaceID:  s.d.workspaceID,
			TemplateName: name,
			Items:        timelineDescriptors(snap, projectID),
			CreatedAt:    s.d.now(),
		}
		snap.TimelineTemplates = append(snap.TimelineTemplates, tt)
		klog.V(6).Infof("时间线已保存为模板: project=%s, template=%s, items=%d", projectID, tt.ID, len(tt.Items))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func timelineDescriptors(snap *model.Snapshot, projectID string) []model.TimelineDescriptor {
	items := make([]model.TimelineDescriptor, 0)
	for _, it := range snap.ProjectTimeline(projectID) {
		switch it.ItemType {
		case model.ItemTypeStage:
			name := DefaultStageName
			if st := snap.FindStage(it.StageID); st != nil {
				name = nameOr(st.StageName, DefaultStageName)
			}
			items = append(items, model.TimelineDescriptor{Name: name, ItemType: model.ItemTypeStage})
		case model.ItemTypeTask:
			desc := model.TimelineDescriptor{Name: DefaultTaskName, ItemType: model.ItemTypeTask, TaskType: model.TaskTypeFree}
			if t := snap.FindTask(it.TaskID); t != nil {
				desc.Name = nameOr(t.TaskName, DefaultTaskName)
				desc.TaskType = t.TaskType
				desc.SystemActionKey = t.SystemActionKey
			}
			items = append(items, desc)
		}
	}
	return items
}

// LoadTimelineTemplate 用模板替换项目时间线
//
// 删除项目全部非报告条目及其阶段、任务，然后从位置 100 起重新生成。报告条目原样保留。
// 模板不存在或为空时不做修改。
func (s *SnapshotService) LoadTimelineTemplate(ctx context.Context, projectID, templateID string) error {
	return s.ws.Update(ctx, func(snap *model.Snapshot) error {
		tt := snap.FindTimelineTemplate(templateID)
		if tt == nil || len(tt.Items) == 0 {
			klog.V(6).Infof("时间线模板不存在或为空，忽略加载: project=%s, template=%s", projectID, templateID)
			return repository.ErrUnchanged
		}
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		descriptors := append([]model.TimelineDescriptor(nil), tt.Items...)

		items := make([]model.TimelineItem, 0, len(snap.TimelineItems))
		for _, it := range snap.TimelineItems {
			if it.ProjectID == projectID && it.ItemType != model.ItemTypeReport {
				continue
			}
			items = append(items, it)
		}
		snap.TimelineItems = items

		stages := make([]model.Stage, 0, len(snap.Stages))
		for _, st := range snap.Stages {
			if st.ProjectID != projectID {
				stages = append(stages, st)
			}
		}
		snap.Stages = stages

		tasks := make([]model.Task, 0, len(snap.Tasks))
		for _, t := range snap.Tasks {
			if t.ProjectID != projectID {
				tasks = append(tasks, t)
			}
		}
		snap.Tasks = tasks

		s.d.materialize(snap, projectID, descriptors)
		klog.V(6).Infof("时间线模板已加载: project=%s, template=%s", projectID, templateID)
		return nil
	})
}

// SaveStakeholderTemplate 保存项目当前的干系人角色列表，没有干系人时拒绝
func (s *SnapshotService) SaveStakeholderTemplate(ctx context.Context, projectID, name string) (*model.StakeholderTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTemplateData
	}
	var tpl model.StakeholderTemplate
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		var roles []string
		for _, st := range snap.Stakeholders {
			if st.ProjectID == projectID {
				roles = append(roles, st.Role)
			}
		}
		if len(roles) == 0 {
			return ErrNothingToSnapshot
		}
		tpl = model.StakeholderTemplate{
			ID:           s.d.newID(idgen.PrefixStakeholderTemplate),
			WorkspaceID:  s.d.workspaceID,
			TemplateName: name,
			Roles:        roles,
			CreatedAt:    s.d.now(),
		}
		snap.StakeholderTemplates = append(snap.StakeholderTemplates, tpl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// SaveLotTemplate 保存项目当前的分包名称列表，没有分包时拒绝
func (s *SnapshotService) SaveLotTemplate(ctx context.Context, projectID, name string) (*model.TradeLotTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTemplateData
	}
	var tpl model.TradeLotTemplate
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		var lots []string
		for _, l := range snap.TradeLots {
			if l.ProjectID == projectID {
				lots = append(lots, l.LotName)
			}
		}
		if len(lots) == 0 {
			return ErrNothingToSnapshot
		}
		tpl = model.TradeLotTemplate{
			ID:           s.d.newID(idgen.PrefixTradeLotTemplate),
			WorkspaceID:  s.d.workspaceID,
			TemplateName: name,
			Lots:         lots,
			CreatedAt:    s.d.now(),
		}
		snap.TradeLotTemplates = append(snap.TradeLotTemplates, tpl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// LoadStakeholderTemplate 追加模板中的角色，不清除已有干系人，返回新增数量
func (s *SnapshotService) LoadStakeholderTemplate(ctx context.Context, projectID, templateID string) (int, error) {
	added := 0
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		tpl := snap.FindStakeholderTemplate(templateID)
		if tpl == nil || len(tpl.Roles) == 0 {
			return repository.ErrUnchanged
		}
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		added = s.d.addStakeholders(snap, projectID, append([]string(nil), tpl.Roles...), true)
		return nil
	})
	return added, err
}

// LoadLotTemplate 追加模板中的分包，不清除已有分包，返回新增数量
func (s *SnapshotService) LoadLotTemplate(ctx context.Context, projectID, templateID string) (int, error) {
	added := 0
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		tpl := snap.FindTradeLotTemplate(templateID)
		if tpl == nil || len(tpl.Lots) == 0 {
			return repository.ErrUnchanged
		}
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		added = s.d.addTradeLots(snap, projectID, append([]string(nil), tpl.Lots...))
		return nil
	})
	return added, err
}
