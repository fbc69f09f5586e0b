package repository

import (
	"context"
	"errors"

	"github.com/maitrisea/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

// ErrUnchanged 由 Update 回调返回，表示状态未变化，跳过持久化
var ErrUnchanged = errors.New("snapshot unchanged")

// SnapshotStore 整体快照存储，每次保存覆盖全部集合
type SnapshotStore interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snapshot *model.Snapshot) error
}
