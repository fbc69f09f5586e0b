package main

import (
	"context"
	"flag"
	"log"

	"k8s.io/klog/v2"

	"github.com/maitrisea/backend/config"
	"github.com/maitrisea/backend/internal/app"
	"github.com/maitrisea/backend/internal/handler"
	"github.com/maitrisea/backend/internal/router"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer a.Close()

	if err := a.Seed(context.Background(), cfg.Workspace.DefaultUserID); err != nil {
		log.Fatalf("Failed to seed default templates: %v", err)
	}
	if _, err := a.Catalog.RecoverInterruptedAnalyses(context.Background()); err != nil {
		klog.Errorf("恢复中断的模板分析失败: %v", err)
	}

	// 初始化 Handler
	projectHandler := handler.NewProjectHandler(a.Projects, a.Scaffold, a.Fields, a.Generation, cfg.Workspace.DefaultUserID)
	timelineHandler := handler.NewTimelineHandler(a.Timeline, a.Snapshots, a.Generation)
	templateHandler := handler.NewTemplateHandler(a.Catalog)
	settingsHandler := handler.NewSettingsHandler(a.Settings, cfg.Workspace.DefaultUserID)

	// 设置路由
	r := router.Setup(cfg, projectHandler, timelineHandler, templateHandler, settingsHandler)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
