package service

import (
	"context"
	"fmt"

	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/repository"
	"k8s.io/klog/v2"
)

// FieldService 维护项目技术表字段与已激活文档模板之间的引用计数
type FieldService struct {
	ws *repository.Workspace
	d  *deriver
}

func NewFieldService(ws *repository.Workspace, opts Options) *FieldService {
	return &FieldService{ws: ws, d: newDeriver(opts)}
}

// ToggleDocumentTemplate 切换模板在项目上的激活状态，返回切换后是否激活
//
// 模板不存在时不做任何修改。
func (s *FieldService) ToggleDocumentTemplate(ctx context.Context, projectID, templateID string) (bool, error) {
	active := false
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		tpl := snap.FindTemplate(templateID)
		if tpl == nil {
			klog.V(6).Infof("模板不存在，忽略切换: project=%s, template=%s", projectID, templateID)
			return repository.ErrUnchanged
		}
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}

		if snap.FindActiveLink(projectID, templateID) != nil {
			s.d.deactivateTemplate(snap, projectID, templateID)
			return nil
		}
		s.d.activateTemplate(snap, projectID, tpl)
		active = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return active, nil
}

// UpdateFieldValue 修改字段值
func (s *FieldService) UpdateFieldValue(ctx context.Context, fieldID, value string) (*model.ProjectField, error) {
	var updated model.ProjectField
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		field := snap.FindField(fieldID)
		if field == nil {
			return ErrFieldNotFound
		}
		if field.Value == value {
			updated = *field
			return repository.ErrUnchanged
		}
		field.Value = value
		field.UpdatedAt = s.d.now()
		updated = *field
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update field %s: %w", fieldID, err)
	}
	return &updated, nil
}

// ListFields 返回项目字段，按 key 排序
func (s *FieldService) ListFields(ctx context.Context, projectID string) ([]model.ProjectField, error) {
	var fields []model.ProjectField
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		fields = snap.ProjectFieldsOf(projectID)
		return nil
	})
	return fields, err
}

// ActiveTemplates 返回项目上已激活的文档模板
func (s *FieldService) ActiveTemplates(ctx context.Context, projectID string) ([]model.DocumentTemplate, error) {
	var templates []model.DocumentTemplate
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		for _, l := range snap.TemplateLinks {
			if l.ProjectID != projectID || l.Status != model.LinkActive {
				continue
			}
			if tpl := snap.FindTemplate(l.TemplateID); tpl != nil {
				templates = append(templates, *tpl)
			}
		}
		return nil
	})
	return templates, err
}

// fieldValues 返回项目字段的 key→value 映射
func fieldValues(snap *model.Snapshot, projectID string) map[string]string {
	vars := make(map[string]string)
	for _, f := range snap.ProjectFields {
		if f.ProjectID == projectID {
			vars[f.Key] = f.Value
		}
	}
	return vars
}
