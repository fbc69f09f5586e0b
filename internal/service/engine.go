package service

import (
	"strings"
	"time"

	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/pkg/idgen"
	"k8s.io/klog/v2"
)

// PositionStep 时间线位置间隔
const PositionStep = 100

// 时间线模板中名称为空时使用的默认名称
const (
	DefaultStageName = "Étape"
	DefaultTaskName  = "Tâche"
)

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

// DefaultTimelineTemplateID 内置时间线模板 ID
const DefaultTimelineTemplateID = "tt_default"

// Options 各服务共用的依赖
type Options struct {
	WorkspaceID string
	IDs         idgen.Generator
	Clock       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.WorkspaceID == "" {
		o.WorkspaceID = "ws_1"
	}
	if o.IDs == nil {
		o.IDs = idgen.UUID()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// deriver 在快照上执行派生计算，所有服务共享同一套算法
type deriver struct {
	newID       idgen.Generator
	now         func() time.Time
	workspaceID string
}

func newDeriver(opts Options) *deriver {
	opts = opts.withDefaults()
	return &deriver{newID: opts.IDs, now: opts.Clock, workspaceID: opts.WorkspaceID}
}

// activateTemplate 建立激活关联，并为模板的每个变量创建字段或登记引用
func (d *deriver) activateTemplate(s *model.Snapshot, projectID string, tpl *model.DocumentTemplate) {
	now := d.now()
	s.TemplateLinks = append(s.TemplateLinks, model.ProjectTemplateLink{
		ID:         d.newID(idgen.PrefixLink),
		ProjectID:  projectID,
		TemplateID: tpl.ID,
		Status:     model.LinkActive,
		CreatedAt:  now,
	})

	d.addTemplateFields(s, projectID, tpl)
	klog.V(6).Infof("模板已激活: project=%s, template=%s, variables=%d", projectID, tpl.ID, len(tpl.Variables))
}

// addTemplateFields 为模板的每个变量创建字段，已存在的字段只登记引用，不改动值
func (d *deriver) addTemplateFields(s *model.Snapshot, projectID string, tpl *model.DocumentTemplate) {
	now := d.now()
	for _, key := range model.UniqueStrings(tpl.Variables) {
		if field := s.FindFieldByKey(projectID, key); field != nil {
			field.UsedInTemplateIDs = field.UsedInTemplateIDs.Add(tpl.ID)
			continue
		}
		s.ProjectFields = append(s.ProjectFields, model.ProjectField{
			ID:                    d.newID(idgen.PrefixField),
			WorkspaceID:           d.workspaceID,
			ProjectID:             projectID,
			Key:                   key,
			Label:                 model.FieldLabel(key),
			UsedInTemplateIDs:     model.NewIDSet(tpl.ID),
			CreatedFromTemplateID: tpl.ID,
			UpdatedAt:             now,
		})
	}
}

// syncTemplateFields 模板变量变化后，使已激活该模板的项目字段与新变量列表一致
func (d *deriver) syncTemplateFields(s *model.Snapshot, projectID string, tpl *model.DocumentTemplate) {
	declared := make(map[string]bool, len(tpl.Variables))
	for _, key := range model.UniqueStrings(tpl.Variables) {
		declared[key] = true
	}

	fields := make([]model.ProjectField, 0, len(s.ProjectFields))
	for _, f := range s.ProjectFields {
		if f.ProjectID == projectID && f.UsedInTemplateIDs.Has(tpl.ID) && !declared[f.Key] {
			f.UsedInTemplateIDs = f.UsedInTemplateIDs.Remove(tpl.ID)
			if f.UsedInTemplateIDs.IsEmpty() {
				continue
			}
		}
		fields = append(fields, f)
	}
	s.ProjectFields = fields
	d.addTemplateFields(s, projectID, tpl)
}

// deactivateTemplate 移除激活关联与字段引用，引用集合为空的字段被删除
func (d *deriver) deactivateTemplate(s *model.Snapshot, projectID, templateID string) {
	links := make([]model.ProjectTemplateLink, 0, len(s.TemplateLinks))
	for _, l := range s.TemplateLinks {
		if l.ProjectID == projectID && l.TemplateID == templateID {
			continue
		}
		links = append(links, l)
	}
	s.TemplateLinks = links

	removed := 0
	fields := make([]model.ProjectField, 0, len(s.ProjectFields))
	for _, f := range s.ProjectFields {
		if f.ProjectID == projectID && f.UsedInTemplateIDs.Has(templateID) {
			f.UsedInTemplateIDs = f.UsedInTemplateIDs.Remove(templateID)
			if f.UsedInTemplateIDs.IsEmpty() {
				removed++
				continue
			}
		}
		fields = append(fields, f)
	}
	s.ProjectFields = fields
	klog.V(6).Infof("模板已停用: project=%s, template=%s, removedFields=%d", projectID, templateID, removed)
}

// nextPosition 追加位置为 100*(条目数+1)，删除留下空洞时取最大位置之后的整百
func nextPosition(s *model.Snapshot, projectID string) int {
	count, maxPos := 0, 0
	for _, it := range s.TimelineItems {
		if it.ProjectID != projectID {
			continue
		}
		count++
		if it.Position > maxPos {
			maxPos = it.Position
		}
	}
	pos := PositionStep * (count + 1)
	if pos <= maxPos {
		pos = (maxPos/PositionStep + 1) * PositionStep
	}
	return pos
}

// appendItem 在项目时间线末尾追加条目
func (d *deriver) appendItem(s *model.Snapshot, projectID string, itemType model.TimelineItemType, refID string) model.TimelineItem {
	return d.insertItem(s, projectID, itemType, refID, nextPosition(s, projectID))
}

func (d *deriver) insertItem(s *model.Snapshot, projectID string, itemType model.TimelineItemType, refID string, position int) model.TimelineItem {
	now := d.now()
	item := model.TimelineItem{
		ID:          d.newID(idgen.PrefixTimelineItem),
		WorkspaceID: d.workspaceID,
		ProjectID:   projectID,
		ItemType:    itemType,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch itemType {
	case model.ItemTypeStage:
		item.StageID = refID
	case model.ItemTypeTask:
		item.TaskID = refID
	case model.ItemTypeReport:
		item.ReportID = refID
	}
	s.TimelineItems = append(s.TimelineItems, item)
	return item
}

func (d *deriver) newStage(s *model.Snapshot, projectID, name string) model.Stage {
	now := d.now()
	stage := model.Stage{
		ID:          d.newID(idgen.PrefixStage),
		WorkspaceID: d.workspaceID,
		ProjectID:   projectID,
		StageName:   name,
		Status:      model.StatusNotStarted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.Stages = append(s.Stages, stage)
	return stage
}

func (d *deriver) newTask(s *model.Snapshot, projectID, name string, taskType model.TaskType, actionKey string) model.Task {
	if taskType == "" {
		taskType = model.TaskTypeFree
	}
	task := model.Task{
		ID:              d.newID(idgen.PrefixTask),
		WorkspaceID:     d.workspaceID,
		ProjectID:       projectID,
		TaskName:        name,
		TaskType:        taskType,
		SystemActionKey: actionKey,
		Status:          model.StatusNotStarted,
		CreatedAt:       d.now(),
	}
	s.Tasks = append(s.Tasks, task)
	return task
}

// materialize 按描述顺序创建阶段/任务，位置从 100 开始，跳过已被占用的位置
func (d *deriver) materialize(s *model.Snapshot, projectID string, items []model.TimelineDescriptor) {
	taken := make(map[int]bool)
	for _, it := range s.TimelineItems {
		if it.ProjectID == projectID {
			taken[it.Position] = true
		}
	}

	pos := PositionStep
	for _, desc := range items {
		for taken[pos] {
			pos += PositionStep
		}
		switch desc.ItemType {
		case model.ItemTypeStage:
			stage := d.newStage(s, projectID, nameOr(desc.Name, DefaultStageName))
			d.insertItem(s, projectID, model.ItemTypeStage, stage.ID, pos)
		case model.ItemTypeTask:
			task := d.newTask(s, projectID, nameOr(desc.Name, DefaultTaskName), desc.TaskType, desc.SystemActionKey)
			d.insertItem(s, projectID, model.ItemTypeTask, task.ID, pos)
		default:
			klog.Warningf("忽略未知时间线条目类型: project=%s, type=%s", projectID, desc.ItemType)
			continue
		}
		pos += PositionStep
	}
}

func (d *deriver) addStakeholders(s *model.Snapshot, projectID string, roles []string, fromTemplate bool) int {
	for _, role := range roles {
		s.Stakeholders = append(s.Stakeholders, model.Stakeholder{
			ID:             d.newID(idgen.PrefixStakeholder),
			ProjectID:      projectID,
			Role:           role,
			IsFromTemplate: fromTemplate,
		})
	}
	return len(roles)
}

func (d *deriver) addTradeLots(s *model.Snapshot, projectID string, lots []string) int {
	for _, name := range lots {
		s.TradeLots = append(s.TradeLots, model.TradeLot{
			ID:        d.newID(idgen.PrefixTradeLot),
			ProjectID: projectID,
			LotName:   name,
		})
	}
	return len(lots)
}
