package subscriber

import (
	"context"

	"github.com/maitrisea/backend/internal/eventbus"
	"github.com/maitrisea/backend/internal/pkg/dispatch"
	"github.com/maitrisea/backend/internal/pkg/extractor"
	"k8s.io/klog/v2"
)

// TemplateAnalyzer 接收变量提取结果
type TemplateAnalyzer interface {
	CompleteAnalysis(ctx context.Context, templateID string, variables []string) error
	FailAnalysis(ctx context.Context, templateID, reason string) error
}

type TemplateEventSubscriber struct {
	extractor  extractor.Extractor
	analyzer   TemplateAnalyzer
	dispatcher dispatch.Dispatcher
}

func NewTemplateEventSubscriber(ex extractor.Extractor, analyzer TemplateAnalyzer, dispatcher dispatch.Dispatcher) *TemplateEventSubscriber {
	return &TemplateEventSubscriber{extractor: ex, analyzer: analyzer, dispatcher: dispatcher}
}

func (s *TemplateEventSubscriber) Register(bus *eventbus.TemplateEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.TemplateEventAnalysisRequested, s.handleAnalysisRequested)
	bus.Subscribe(eventbus.TemplateEventAnalyzed, s.handleAnalyzed)
}

// handleAnalysisRequested 在后台任务池中提取变量并回写结果
func (s *TemplateEventSubscriber) handleAnalysisRequested(ctx context.Context, event eventbus.TemplateEvent) error {
	return s.dispatcher.Submit(func() {
		bg := context.Background()
		vars, err := s.extractor.Extract(bg, event.FileURL, event.Content)
		if err != nil {
			klog.Warningf("模板变量提取失败: template=%s, err=%v", event.TemplateID, err)
			if ferr := s.analyzer.FailAnalysis(bg, event.TemplateID, err.Error()); ferr != nil {
				klog.Errorf("记录模板分析失败状态出错: template=%s, err=%v", event.TemplateID, ferr)
			}
			return
		}
		if err := s.analyzer.CompleteAnalysis(bg, event.TemplateID, vars); err != nil {
			klog.Errorf("写入模板分析结果失败: template=%s, err=%v", event.TemplateID, err)
		}
	})
}

func (s *TemplateEventSubscriber) handleAnalyzed(ctx context.Context, event eventbus.TemplateEvent) error {
	klog.V(6).Infof("模板分析事件处理成功: type=%s, template=%s", event.Type, event.TemplateID)
	return nil
}
