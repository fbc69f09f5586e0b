package service

import (
	"context"
	"fmt"

	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/pkg/dispatch"
	"github.com/maitrisea/backend/internal/pkg/webhook"
	"github.com/maitrisea/backend/internal/repository"
	"k8s.io/klog/v2"
)

// GenerationService 触发外部文档生成
//
// 请求提交到后台任务池后立即返回，不重试、不超时，结果只记录日志，不回写项目状态。
type GenerationService struct {
	ws          *repository.Workspace
	sender      webhook.Sender
	dispatcher  dispatch.Dispatcher
	fallbackURL string
}

// NewGenerationService 创建服务实例，fallbackURL 在设置中未配置 webhook 时使用
func NewGenerationService(ws *repository.Workspace, sender webhook.Sender, dispatcher dispatch.Dispatcher, fallbackURL string) *GenerationService {
	return &GenerationService{ws: ws, sender: sender, dispatcher: dispatcher, fallbackURL: fallbackURL}
}

// GenerateForTask 为 system 类型任务生成文档，文档名为任务名
func (s *GenerationService) GenerateForTask(ctx context.Context, taskID string) error {
	var payload webhook.GenerationPayload
	var url string
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		task := snap.FindTask(taskID)
		if task == nil {
			return ErrTaskNotFound
		}
		if task.TaskType != model.TaskTypeSystem {
			return fmt.Errorf("%w: task %s is %s", ErrNotGeneratable, taskID, task.TaskType)
		}
		var err error
		payload, err = buildPayload(snap, task.ProjectID, task.TaskName)
		if err != nil {
			return err
		}
		url = s.webhookURL(snap)
		return nil
	})
	if err != nil {
		return err
	}
	return s.submit(url, payload)
}

// GenerateForTemplate 为项目上已激活的文档模板生成文档，文档名为模板名
func (s *GenerationService) GenerateForTemplate(ctx context.Context, projectID, templateID string) error {
	var payload webhook.GenerationPayload
	var url string
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		if snap.FindProject(projectID) == nil {
			return ErrProjectNotFound
		}
		tpl := snap.FindTemplate(templateID)
		if tpl == nil {
			return ErrTemplateNotFound
		}
		if snap.FindActiveLink(projectID, templateID) == nil {
			return fmt.Errorf("%w: template %s is not active on project %s", ErrNotGeneratable, templateID, projectID)
		}
		var err error
		payload, err = buildPayload(snap, projectID, tpl.TemplateName)
		if err != nil {
			return err
		}
		url = s.webhookURL(snap)
		return nil
	})
	if err != nil {
		return err
	}
	return s.submit(url, payload)
}

func (s *GenerationService) webhookURL(snap *model.Snapshot) string {
	if snap.Settings != nil && snap.Settings.MakeWebhookURL != "" {
		return snap.Settings.MakeWebhookURL
	}
	return s.fallbackURL
}

func buildPayload(snap *model.Snapshot, projectID, documentName string) (webhook.GenerationPayload, error) {
	p := snap.FindProject(projectID)
	if p == nil {
		return webhook.GenerationPayload{}, ErrProjectNotFound
	}
	return webhook.GenerationPayload{
		ProjectID:    p.ID,
		ProjectName:  p.ProjectName,
		ClientName:   p.ClientName,
		Vars:         fieldValues(snap, projectID),
		DocumentName: documentName,
	}, nil
}

func (s *GenerationService) submit(url string, payload webhook.GenerationPayload) error {
	if url == "" {
		return ErrWebhookNotSet
	}
	err := s.dispatcher.Submit(func() {
		if err := s.sender.Send(context.Background(), url, payload); err != nil {
			klog.Errorf("文档生成请求失败: project=%s, document=%s, err=%v", payload.ProjectID, payload.DocumentName, err)
			return
		}
		klog.V(6).Infof("文档生成请求已发送: project=%s, document=%s", payload.ProjectID, payload.DocumentName)
	})
	if err != nil {
		return fmt.Errorf("failed to submit generation: %w", err)
	}
	return nil
}
