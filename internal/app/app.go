// Package app 根据配置装配存储、工作区、后台任务池与各服务
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maitrisea/backend/config"
	"github.com/maitrisea/backend/internal/eventbus"
	"github.com/maitrisea/backend/internal/pkg/database"
	"github.com/maitrisea/backend/internal/pkg/dispatch"
	"github.com/maitrisea/backend/internal/pkg/extractor"
	"github.com/maitrisea/backend/internal/pkg/webhook"
	"github.com/maitrisea/backend/internal/repository"
	"github.com/maitrisea/backend/internal/service"
	"github.com/maitrisea/backend/internal/subscriber"
	"github.com/redis/go-redis/v9"
	"k8s.io/klog/v2"
)

// App 进程内共享的依赖
type App struct {
	Config    *config.Config
	Workspace *repository.Workspace
	Options   service.Options
	Pool      *dispatch.Pool

	Fields     *service.FieldService
	Timeline   *service.TimelineService
	Scaffold   *service.ScaffoldService
	Snapshots  *service.SnapshotService
	Catalog    *service.CatalogService
	Settings   *service.SettingsService
	Projects   *service.ProjectService
	Generation *service.GenerationService

	closers []func() error
}

// New 打开存储并加载快照，装配各服务
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Workspace = repository.NewWorkspace(store)
	if err := a.Workspace.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	pool, err := dispatch.NewPool(cfg.Worker.PoolSize)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Pool = pool
	a.closers = append(a.closers, func() error { return pool.Release(5 * time.Second) })

	a.Options = service.Options{WorkspaceID: cfg.Workspace.ID}
	bus := eventbus.NewTemplateEventBus()

	a.Fields = service.NewFieldService(a.Workspace, a.Options)
	a.Timeline = service.NewTimelineService(a.Workspace, a.Options)
	a.Scaffold = service.NewScaffoldService(a.Workspace, a.Options)
	a.Snapshots = service.NewSnapshotService(a.Workspace, a.Options)
	a.Catalog = service.NewCatalogService(a.Workspace, bus, a.Options)
	a.Settings = service.NewSettingsService(a.Workspace)
	a.Projects = service.NewProjectService(a.Workspace, a.Options)
	a.Generation = service.NewGenerationService(a.Workspace, webhook.NewClient(http.DefaultClient), pool, cfg.Webhook.URL)

	timeout := cfg.Extractor.Timeout
	if timeout <= 0 {
		timeout = extractor.DefaultTimeout
	}
	textExtractor := extractor.NewTextExtractor(&http.Client{Timeout: timeout}, cfg.Extractor.MaxBytes)
	subscriber.NewTemplateEventSubscriber(textExtractor, a.Catalog, pool).Register(bus)
	return a, nil
}

// Seed 文档模板目录为空时写入预置模板，ownerID 为空时使用配置中的默认用户
func (a *App) Seed(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		ownerID = a.Config.Workspace.DefaultUserID
	}
	if err := service.InitDefaultTemplates(ctx, a.Workspace, a.Options, ownerID); err != nil {
		return fmt.Errorf("init default templates: %w", err)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (repository.SnapshotStore, error) {
	cfg := a.Config
	switch cfg.Storage.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		a.closers = append(a.closers, client.Close)
		klog.V(6).Infof("使用 redis 快照存储: addr=%s, key=%s", cfg.Redis.Addr, cfg.Redis.Key)
		return repository.NewRedisStore(client, cfg.Redis.Key), nil
	case "gorm", "":
		if err := ensureSQLiteDir(cfg.Database.Type, cfg.Database.DSN); err != nil {
			return nil, err
		}
		db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		return repository.NewGormStore(db), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func ensureSQLiteDir(dbType, dsn string) error {
	if dbType != "" && dbType != "sqlite" {
		return nil
	}
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return nil
}

// Close 释放后台任务池与存储连接，按打开的逆序执行
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			klog.Warningf("释放资源失败: %v", err)
		}
	}
	a.closers = nil
}
