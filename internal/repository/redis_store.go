package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maitrisea/backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// redisStore 以单个键保存 JSON 快照
type redisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisStore 创建 Store 实例，key 为空时使用 model.SnapshotKey
func NewRedisStore(client redis.Cmdable, key string) SnapshotStore {
	if key == "" {
		key = model.SnapshotKey
	}
	return &redisStore{client: client, key: key}
}

func (s *redisStore) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	snap := &model.Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.Normalize()
	return snap, nil
}

func (s *redisStore) Save(ctx context.Context, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
