package service

import (
	"context"
	"fmt"

	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/repository"
	"k8s.io/klog/v2"
)

// OrderEntry 拖拽排序结果中的一项
type OrderEntry struct {
	ID       string `json:"id" binding:"required"`
	Position int    `json:"position"`
}

// TimelineEntry 时间线条目及其引用的内容
type TimelineEntry struct {
	model.TimelineItem
	Stage  *model.Stage      `json:"stage,omitempty"`
	Task   *model.Task       `json:"task,omitempty"`
	Report *model.SiteReport `json:"report,omitempty"`
}

// AddStageRequest 新增阶段请求
type AddStageRequest struct {
	StageName string `json:"stage_name" binding:"required,min=1,max=255"`
	Date      string `json:"date"`
}

// AddTaskRequest 新增任务请求
type AddTaskRequest struct {
	TaskName         string         `json:"task_name" binding:"required,min=1,max=255"`
	TaskType         model.TaskType `json:"task_type"`
	SystemActionKey  string         `json:"system_action_key"`
	AssignedToUserID string         `json:"assigned_to_user_id"`
	DueDate          string         `json:"due_date"`
}

// UpdateStageRequest 修改阶段，空指针表示不修改
type UpdateStageRequest struct {
	StageName *string           `json:"stage_name"`
	Status    *model.ItemStatus `json:"status"`
	Date      *string           `json:"date"`
}

// UpdateTaskRequest 修改任务，空指针表示不修改
type UpdateTaskRequest struct {
	TaskName         *string           `json:"task_name"`
	Status           *model.ItemStatus `json:"status"`
	AssignedToUserID *string           `json:"assigned_to_user_id"`
	DueDate          *string           `json:"due_date"`
	IsAutoRelance    *bool             `json:"is_auto_relance"`
}

// TimelineService 项目时间线：稀疏整数位置（步长 100）
type TimelineService struct {
	ws *repository.Workspace
	d  *deriver
}

func NewTimelineService(ws *repository.Workspace, opts Options) *TimelineService {
	return &TimelineService{ws: ws, d: newDeriver(opts)}
}

// Timeline 返回按位置排序的时间线
func (s *TimelineService) Timeline(ctx context.Context, projectID string) ([]TimelineEntry, error) {
	var entries []TimelineEntry
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		for _, it := range snap.ProjectTimeline(projectID) {
			entry := TimelineEntry{TimelineItem: it}
			switch it.ItemType {
			case model.ItemTypeStage:
				if st := snap.FindStage(it.StageID); st != nil {
					c := *st
					entry.Stage = &c
				}
			case model.ItemTypeTask:
				if t := snap.FindTask(it.TaskID); t != nil {
					c := *t
					entry.Task = &c
				}
			case model.ItemTypeReport:
				if r := snap.FindReport(it.ReportID); r != nil {
					c := *r
					entry.Report = &c
				}
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

// Append 将已有内容重新挂到时间线末尾，每个内容最多对应一个条目
func (s *TimelineService) Append(ctx context.Context, projectID string, itemType model.TimelineItemType, refID string) (*model.TimelineItem, error) {
	var item model.TimelineItem
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		if !contentExists(snap, projectID, itemType, refID) {
			return ErrContentNotFound
		}
		if onTimeline(snap, projectID, refID) {
			return fmt.Errorf("%w: %s %s", ErrAlreadyOnTimeline, itemType, refID)
		}
		item = s.d.appendItem(snap, projectID, itemType, refID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func onTimeline(snap *model.Snapshot, projectID, refID string) bool {
	for i := range snap.TimelineItems {
		it := &snap.TimelineItems[i]
		if it.ProjectID == projectID && it.References(refID) {
			return true
		}
	}
	return false
}

func contentExists(snap *model.Snapshot, projectID string, itemType model.TimelineItemType, refID string) bool {
	switch itemType {
	case model.ItemTypeStage:
		st := snap.FindStage(refID)
		return st != nil && st.ProjectID == projectID
	case model.ItemTypeTask:
		t := snap.FindTask(refID)
		return t != nil && t.ProjectID == projectID
	case model.ItemTypeReport:
		r := snap.FindReport(refID)
		return r != nil && r.ProjectID == projectID
	}
	return false
}

// AddStage 新建阶段并追加到时间线末尾
func (s *TimelineService) AddStage(ctx context.Context, projectID string, req AddStageRequest) (*model.Stage, error) {
	var stage model.Stage
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		stage = s.d.newStage(snap, projectID, req.StageName)
		if req.Date != "" {
			snap.FindStage(stage.ID).Date = req.Date
			stage.Date = req.Date
		}
		s.d.appendItem(snap, projectID, model.ItemTypeStage, stage.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// AddTask 新建任务并追加到时间线末尾
func (s *TimelineService) AddTask(ctx context.Context, projectID string, req AddTaskRequest) (*model.Task, error) {
	if req.TaskType != "" && !req.TaskType.Valid() {
		return nil, ErrInvalidTaskType
	}
	var task model.Task
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		task = s.d.newTask(snap, projectID, req.TaskName, req.TaskType, req.SystemActionKey)
		stored := snap.FindTask(task.ID)
		stored.AssignedToUserID = req.AssignedToUserID
		stored.DueDate = req.DueDate
		task = *stored
		s.d.appendItem(snap, projectID, model.ItemTypeTask, task.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStage 修改阶段
func (s *TimelineService) UpdateStage(ctx context.Context, stageID string, req UpdateStageRequest) (*model.Stage, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	var stage model.Stage
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		st := snap.FindStage(stageID)
		if st == nil {
			return ErrStageNotFound
		}
		if req.StageName != nil {
			st.StageName = *req.StageName
		}
		if req.Status != nil {
			st.Status = *req.Status
		}
		if req.Date != nil {
			st.Date = *req.Date
		}
		st.UpdatedAt = s.d.now()
		stage = *st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// UpdateTask 修改任务，状态变为已完成时记录完成时间
func (s *TimelineService) UpdateTask(ctx context.Context, taskID string, req UpdateTaskRequest) (*model.Task, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	var task model.Task
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		t := snap.FindTask(taskID)
		if t == nil {
			return ErrTaskNotFound
		}
		if req.TaskName != nil {
			t.TaskName = *req.TaskName
		}
		if req.Status != nil && *req.Status != t.Status {
			t.Status = *req.Status
			if t.Status == model.StatusDone {
				now := s.d.now()
				t.DoneAt = &now
			} else {
				t.DoneAt = nil
			}
		}
		if req.AssignedToUserID != nil {
			t.AssignedToUserID = *req.AssignedToUserID
		}
		if req.DueDate != nil {
			t.DueDate = *req.DueDate
		}
		if req.IsAutoRelance != nil {
			t.IsAutoRelance = *req.IsAutoRelance
		}
		task = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteStage 删除阶段及其时间线条目
func (s *TimelineService) DeleteStage(ctx context.Context, stageID string) error {
	return s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindStage(stageID) == nil {
			return ErrStageNotFound
		}
		stages := make([]model.Stage, 0, len(snap.Stages))
		for _, st := range snap.Stages {
			if st.ID != stageID {
				stages = append(stages, st)
			}
		}
		snap.Stages = stages
		removeByContent(snap, stageID)
		return nil
	})
}

// DeleteTask 删除任务及其时间线条目
func (s *TimelineService) DeleteTask(ctx context.Context, taskID string) error {
	return s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindTask(taskID) == nil {
			return ErrTaskNotFound
		}
		tasks := make([]model.Task, 0, len(snap.Tasks))
		for _, t := range snap.Tasks {
			if t.ID != taskID {
				tasks = append(tasks, t)
			}
		}
		snap.Tasks = tasks
		removeByContent(snap, taskID)
		return nil
	})
}

// RemoveByContent 删除引用给定内容的时间线条目，返回删除数量
func (s *TimelineService) RemoveByContent(ctx context.Context, contentID string) (int, error) {
	removed := 0
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		removed = removeByContent(snap, contentID)
		if removed == 0 {
			return repository.ErrUnchanged
		}
		return nil
	})
	return removed, err
}

func removeByContent(snap *model.Snapshot, contentID string) int {
	items := make([]model.TimelineItem, 0, len(snap.TimelineItems))
	for _, it := range snap.TimelineItems {
		if it.References(contentID) {
			continue
		}
		items = append(items, it)
	}
	removed := len(snap.TimelineItems) - len(items)
	snap.TimelineItems = items
	return removed
}

// ReplaceOrder 应用拖拽排序结果
//
// 只修改 entries 中能匹配到的条目位置，未知 ID 忽略，不会生成新位置。
// 结果中出现重复位置时拒绝整个请求。
func (s *TimelineService) ReplaceOrder(ctx context.Context, projectID string, entries []OrderEntry) error {
	for _, e := range entries {
		if e.Position <= 0 {
			return fmt.Errorf("%w: item %s position %d", ErrInvalidPosition, e.ID, e.Position)
		}
	}

	return s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}

		requested := make(map[string]int, len(entries))
		for _, e := range entries {
			requested[e.ID] = e.Position
		}

		next := make(map[int]int)
		seen := make(map[int]string)
		changed := 0
		for i, it := range snap.TimelineItems {
			if it.ProjectID != projectID {
				continue
			}
			pos := it.Position
			if p, ok := requested[it.ID]; ok && p != pos {
				pos = p
				next[i] = p
				changed++
			}
			if other, dup := seen[pos]; dup {
				return fmt.Errorf("%w: %s and %s at %d", ErrPositionConflict, other, it.ID, pos)
			}
			seen[pos] = it.ID
		}
		if changed == 0 {
			return repository.ErrUnchanged
		}

		now := s.d.now()
		for i, pos := range next {
			snap.TimelineItems[i].Position = pos
			snap.TimelineItems[i].UpdatedAt = now
		}
		klog.V(6).Infof("时间线已重排: project=%s, moved=%d", projectID, changed)
		return nil
	})
}
