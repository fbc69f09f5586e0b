package statemachine

import (
	"errors"
	"fmt"

	"github.com/maitrisea/backend/internal/model"
	"k8s.io/klog/v2"
)

// ErrInvalidTransition 所有非法迁移错误都可用 errors.Is 匹配到它
var ErrInvalidTransition = errors.New("invalid analysis state transition")

// AnalysisTransition 定义变量提取状态迁移
type AnalysisTransition struct {
	From model.AnalysisStatus
	To   model.AnalysisStatus
}

// AnalysisStateMachine 文档模板变量提取状态机
type AnalysisStateMachine struct {
	allowedTransitions map[AnalysisTransition]bool
}

// NewAnalysisStateMachine 创建状态机
func NewAnalysisStateMachine() *AnalysisStateMachine {
	sm := &AnalysisStateMachine{
		allowedTransitions: make(map[AnalysisTransition]bool),
	}

	// pending -> processing -> ok/error
	// ok/error -> processing（重新上传后再次分析）
	transitions := []AnalysisTransition{
		{model.AnalysisPending, model.AnalysisProcessing},
		{model.AnalysisProcessing, model.AnalysisOK},
		{model.AnalysisProcessing, model.AnalysisError},

		{model.AnalysisOK, model.AnalysisProcessing},
		{model.AnalysisError, model.AnalysisProcessing},
	}

	for _, t := range transitions {
		sm.allowedTransitions[t] = true
	}

	return sm
}

// normalize 旧数据中未设置的状态视为 pending
func normalize(s model.AnalysisStatus) model.AnalysisStatus {
	if s == "" {
		return model.AnalysisPending
	}
	return s
}

// CanTransition 检查状态迁移是否合法
func (sm *AnalysisStateMachine) CanTransition(from, to model.AnalysisStatus) bool {
	from, to = normalize(from), normalize(to)
	if from == to {
		return false
	}
	return sm.allowedTransitions[AnalysisTransition{From: from, To: to}]
}

// ValidateTransition 验证状态迁移并返回错误
func (sm *AnalysisStateMachine) ValidateTransition(from, to model.AnalysisStatus) error {
	if !sm.CanTransition(from, to) {
		return &InvalidStateTransitionError{
			From: string(normalize(from)),
			To:   string(normalize(to)),
		}
	}
	return nil
}

// Transition 执行状态迁移（带日志）
func (sm *AnalysisStateMachine) Transition(from, to model.AnalysisStatus, templateID string) error {
	if err := sm.ValidateTransition(from, to); err != nil {
		klog.V(6).Infof("模板分析状态迁移被拒绝: template=%s, %s -> %s, error=%v",
			templateID, from, to, err)
		return err
	}

	klog.V(6).Infof("模板分析状态迁移成功: template=%s, %s -> %s", templateID, normalize(from), to)
	return nil
}

// InvalidStateTransitionError 无效的状态迁移错误
type InvalidStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid analysis state transition: %s -> %s", e.From, e.To)
}

func (e *InvalidStateTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// IsTerminal 判断是否为本轮分析的结束态
func IsTerminal(status model.AnalysisStatus) bool {
	return status == model.AnalysisOK || status == model.AnalysisError
}

// IsRunning 判断是否正在分析
func IsRunning(status model.AnalysisStatus) bool {
	return status == model.AnalysisProcessing
}
