package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/maitrisea/backend/internal/model"
	"k8s.io/klog/v2"
)

// Workspace 持有内存中的实体集合，串行执行每个操作的 读取→计算→持久化
//
// 持久化失败时内存状态保持已修改，错误返回给调用方，不做回滚或重试。
type Workspace struct {
	mu     sync.Mutex
	store  SnapshotStore
	state  *model.Snapshot
	loaded bool
}

func NewWorkspace(store SnapshotStore) *Workspace {
	return &Workspace{store: store}
}

// Load 从存储重新加载，覆盖内存状态
func (w *Workspace) Load(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(ctx)
}

func (w *Workspace) load(ctx context.Context) error {
	snap, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	snap.Normalize()
	w.state = snap
	w.loaded = true
	return nil
}

func (w *Workspace) ensureLoaded(ctx context.Context) error {
	if w.loaded {
		return nil
	}
	return w.load(ctx)
}

// View 只读访问。fn 不得保留 snapshot 内部的引用
func (w *Workspace) View(ctx context.Context, fn func(s *model.Snapshot) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureLoaded(ctx); err != nil {
		return err
	}
	return fn(w.state)
}

// Update 修改后整体保存。fn 返回 ErrUnchanged 时跳过保存，返回其他错误时不得已修改状态
func (w *Workspace) Update(ctx context.Context, fn func(s *model.Snapshot) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureLoaded(ctx); err != nil {
		return err
	}

	if err := fn(w.state); err != nil {
		if errors.Is(err, ErrUnchanged) {
			return nil
		}
		return err
	}

	if err := w.store.Save(ctx, w.state); err != nil {
		klog.Errorf("快照持久化失败，内存状态与存储不一致: %v", err)
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Replace 用给定快照整体替换当前状态并保存
func (w *Workspace) Replace(ctx context.Context, snap *model.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap.Normalize()
	w.state = snap
	w.loaded = true
	if err := w.store.Save(ctx, w.state); err != nil {
		klog.Errorf("快照持久化失败: %v", err)
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}
