package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/maitrisea/backend/internal/model"
)

// MemoryStore 进程内快照存储，保存 JSON 副本
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int

	// SaveErr 非空时 Save 返回该错误
	SaveErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &model.Snapshot{}
	if len(s.data) > 0 {
		if err := json.Unmarshal(s.data, snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
	}
	snap.Normalize()
	return snap, nil
}

func (s *MemoryStore) Save(ctx context.Context, snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.data = data
	s.saves++
	return nil
}

// Saves 成功保存次数
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
