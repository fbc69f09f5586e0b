package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/maitrisea/backend/internal/eventbus"
	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/pkg/idgen"
	"github.com/maitrisea/backend/internal/repository"
	"github.com/maitrisea/backend/internal/service/statemachine"
	"k8s.io/klog/v2"
)

// CreateTemplateRequest 创建文档模板请求
type CreateTemplateRequest struct {
	TemplateName string             `json:"template_name" binding:"required,min=1,max=255"`
	TemplateType model.TemplateType `json:"template_type"`
	FileURL      string             `json:"file_url"`
	Variables    []string           `json:"variables"`
}

// UpdateTemplateRequest 修改文档模板，空指针表示不修改
type UpdateTemplateRequest struct {
	TemplateName *string             `json:"template_name"`
	TemplateType *model.TemplateType `json:"template_type"`
	FileURL      *string             `json:"file_url"`
}

// CatalogService 模板目录：文档、时间线、干系人、分包模板
type CatalogService struct {
	ws  *repository.Workspace
	d   *deriver
	bus *eventbus.TemplateEventBus
	sm  *statemachine.AnalysisStateMachine
}

// NewCatalogService 创建服务实例，bus 为空时分析请求只更新状态
func NewCatalogService(ws *repository.Workspace, bus *eventbus.TemplateEventBus, opts Options) *CatalogService {
	return &CatalogService{ws: ws, d: newDeriver(opts), bus: bus, sm: statemachine.NewAnalysisStateMachine()}
}

// ListDocumentTemplates 获取文档模板列表，activeOnly 时只返回目录中启用的模板
func (s *CatalogService) ListDocumentTemplates(ctx context.Context, activeOnly bool) ([]model.DocumentTemplate, error) {
	var templates []model.DocumentTemplate
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		for _, t := range snap.Templates {
			if activeOnly && !t.IsActive {
				continue
			}
			templates = append(templates, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].TemplateName < templates[j].TemplateName
	})
	return templates, nil
}

// GetDocumentTemplate 获取模板详情
func (s *CatalogService) GetDocumentTemplate(ctx context.Context, id string) (*model.DocumentTemplate, error) {
	var tpl model.DocumentTemplate
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		t := snap.FindTemplate(id)
		if t == nil {
			return ErrTemplateNotFound
		}
		tpl = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// CreateDocumentTemplate 创建文档模板。带变量列表时直接为 ok 状态，否则等待分析
func (s *CatalogService) CreateDocumentTemplate(ctx context.Context, req CreateTemplateRequest) (*model.DocumentTemplate, error) {
	name := strings.TrimSpace(req.TemplateName)
	if name == "" {
		return nil, ErrInvalidTemplateData
	}
	if req.TemplateType == "" {
		req.TemplateType = model.TemplateOther
	}
	if !req.TemplateType.Valid() {
		return nil, fmt.Errorf("%w: unknown template type %q", ErrInvalidTemplateData, req.TemplateType)
	}

	now := s.d.now()
	tpl := model.DocumentTemplate{
		ID:             s.d.newID(idgen.PrefixDocumentTemplate),
		WorkspaceID:    s.d.workspaceID,
		TemplateName:   name,
		TemplateType:   req.TemplateType,
		FileURL:        req.FileURL,
		Variables:      model.UniqueStrings(req.Variables),
		IsActive:       true,
		AnalysisStatus: model.AnalysisPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if len(tpl.Variables) > 0 {
		tpl.AnalysisStatus = model.AnalysisOK
	}

	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		snap.Templates = append(snap.Templates, tpl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return &tpl, nil
}

// UpdateDocumentTemplate 修改模板名称、分类或文件
func (s *CatalogService) UpdateDocumentTemplate(ctx context.Context, id string, req UpdateTemplateRequest) (*model.DocumentTemplate, error) {
	if req.TemplateType != nil && !req.TemplateType.Valid() {
		return nil, fmt.Errorf("%w: unknown template type %q", ErrInvalidTemplateData, *req.TemplateType)
	}
	if req.TemplateName != nil && strings.TrimSpace(*req.TemplateName) == "" {
		return nil, ErrInvalidTemplateData
	}

	var tpl model.DocumentTemplate
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		t := snap.FindTemplate(id)
		if t == nil {
			return ErrTemplateNotFound
		}
		if req.TemplateName != nil {
			t.TemplateName = strings.TrimSpace(*req.TemplateName)
		}
		if req.TemplateType != nil {
			t.TemplateType = *req.TemplateType
		}
		if req.FileURL != nil {
			t.FileURL = *req.FileURL
		}
		t.UpdatedAt = s.d.now()
		tpl = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// SetTemplateActive 在目录中启用或停用模板，模板不会被物理删除
func (s *CatalogService) SetTemplateActive(ctx context.Context, id string, active bool) error {
	return s.ws.Update(ctx, func(snap *model.Snapshot) error {
		t := snap.FindTemplate(id)
		if t == nil {
			return ErrTemplateNotFound
		}
		if t.IsActive == active {
			return repository.ErrUnchanged
		}
		t.IsActive = active
		t.UpdatedAt = s.d.now()
		return nil
	})
}

// RequestAnalysis 标记为分析中，并发布分析事件；content 为空时按模板文件地址分析
func (s *CatalogService) RequestAnalysis(ctx context.Context, id string, content []byte) error {
	var fileURL string
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		t := snap.FindTemplate(id)
		if t == nil {
			return ErrTemplateNotFound
		}
		if err := s.sm.Transition(t.AnalysisStatus, model.AnalysisProcessing, id); err != nil {
			return err
		}
		t.AnalysisStatus = model.AnalysisProcessing
		t.AnalysisError = ""
		t.UpdatedAt = s.d.now()
		fileURL = t.FileURL
		return nil
	})
	if err != nil {
		return err
	}
	if s.bus == nil {
		return nil
	}

	event := eventbus.TemplateEvent{
		Type:       eventbus.TemplateEventAnalysisRequested,
		TemplateID: id,
		FileURL:    fileURL,
		Content:    content,
	}
	if err := s.bus.Publish(ctx, eventbus.TemplateEventAnalysisRequested, event); err != nil {
		klog.Errorf("发布模板分析事件失败: template=%s, err=%v", id, err)
		return s.FailAnalysis(ctx, id, err.Error())
	}
	return nil
}

// CompleteAnalysis 写入分析结果，并同步已激活该模板的项目字段
func (s *CatalogService) CompleteAnalysis(ctx context.Context, id string, variables []string) error {
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		t := snap.FindTemplate(id)
		if t == nil {
			return ErrTemplateNotFound
		}
		if err := s.sm.Transition(t.AnalysisStatus, model.AnalysisOK, id); err != nil {
			return err
		}
		t.Variables = model.UniqueStrings(variables)
		t.AnalysisStatus = model.AnalysisOK
		t.AnalysisError = ""
		t.UpdatedAt = s.d.now()

		tpl := *t
		synced := 0
		for _, l := range append([]model.ProjectTemplateLink(nil), snap.TemplateLinks...) {
			if l.TemplateID == id && l.Status == model.LinkActive {
				s.d.syncTemplateFields(snap, l.ProjectID, &tpl)
				synced++
			}
		}
		klog.V(6).Infof("模板分析完成: template=%s, variables=%d, syncedProjects=%d", id, len(tpl.Variables), synced)
		return nil
	})
	if err == nil && s.bus != nil {
		event := eventbus.TemplateEvent{Type: eventbus.TemplateEventAnalyzed, TemplateID: id}
		if perr := s.bus.Publish(ctx, eventbus.TemplateEventAnalyzed, event); perr != nil {
			klog.Errorf("发布模板分析完成事件失败: template=%s, err=%v", id, perr)
		}
	}
	return err
}

// maxAnalysisErrorLen 失败原因最多保留的字符数
const maxAnalysisErrorLen = 500

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// FailAnalysis 记录分析失败
func (s *CatalogService) FailAnalysis(ctx context.Context, id, reason string) error {
	reason = truncateRunes(reason, maxAnalysisErrorLen)
	return s.ws.Update(ctx, func(snap *model.Snapshot) error {
		t := snap.FindTemplate(id)
		if t == nil {
			return ErrTemplateNotFound
		}
		if err := s.sm.Transition(t.AnalysisStatus, model.AnalysisError, id); err != nil {
			return err
		}
		t.AnalysisStatus = model.AnalysisError
		t.AnalysisError = reason
		t.UpdatedAt = s.d.now()
		return nil
	})
}

// RecoverInterruptedAnalyses 启动时将上次进程遗留的 processing 状态标记为失败，返回处理数量
func (s *CatalogService) RecoverInterruptedAnalyses(ctx context.Context) (int, error) {
	recovered := 0
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		for i := range snap.Templates {
			t := &snap.Templates[i]
			if !statemachine.IsRunning(t.AnalysisStatus) {
				continue
			}
			if err := s.sm.Transition(t.AnalysisStatus, model.AnalysisError, t.ID); err != nil {
				return err
			}
			t.AnalysisStatus = model.AnalysisError
			t.AnalysisError = "analysis interrupted by restart"
			t.UpdatedAt = s.d.now()
			recovered++
		}
		if recovered == 0 {
			return repository.ErrUnchanged
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if recovered > 0 {
		klog.Warningf("已将 %d 个中断的模板分析标记为失败", recovered)
	}
	return recovered, nil
}

// ListTimelineTemplates 获取时间线模板列表
func (s *CatalogService) ListTimelineTemplates(ctx context.Context) ([]model.TimelineTemplate, error) {
	var templates []model.TimelineTemplate
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		templates = append(templates, snap.TimelineTemplates...)
		return nil
	})
	return templates, err
}

// ListStakeholderTemplates 获取干系人模板列表
func (s *CatalogService) ListStakeholderTemplates(ctx context.Context) ([]model.StakeholderTemplate, error) {
	var templates []model.StakeholderTemplate
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		templates = append(templates, snap.StakeholderTemplates...)
		return nil
	})
	return templates, err
}

// ListTradeLotTemplates 获取分包模板列表
func (s *CatalogService) ListTradeLotTemplates(ctx context.Context) ([]model.TradeLotTemplate, error) {
	var templates []model.TradeLotTemplate
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		templates = append(templates, snap.TradeLotTemplates...)
		return nil
	})
	return templates, err
}
