package repository

import (
	"context"
	"fmt"

	"github.com/maitrisea/backend/internal/model"
	"gorm.io/gorm"
)

// gormStore 关系数据库快照存储，每张表整表替换
type gormStore struct {
	db *gorm.DB
}

// NewGormStore 创建 Store 实例，调用方负责建表
func NewGormStore(db *gorm.DB) SnapshotStore {
	return &gormStore{db: db}
}

func (s *gormStore) Load(ctx context.Context) (*model.Snapshot, error) {
	db := s.db.WithContext(ctx)
	snap := &model.Snapshot{}

	var err error
	if snap.Projects, err = loadAll[model.Project](db); err != nil {
		return nil, err
	}
	if snap.Stages, err = loadAll[model.Stage](db); err != nil {
		return nil, err
	}
	if snap.Tasks, err = loadAll[model.Task](db); err != nil {
		return nil, err
	}
	if snap.TimelineItems, err = loadAll[model.TimelineItem](db); err != nil {
		return nil, err
	}
	if snap.TimelineTemplates, err = loadAll[model.TimelineTemplate](db); err != nil {
		return nil, err
	}
	if snap.Templates, err = loadAll[model.DocumentTemplate](db); err != nil {
		return nil, err
	}
	if snap.ProjectFields, err = loadAll[model.ProjectField](db); err != nil {
		return nil, err
	}
	if snap.TemplateLinks, err = loadAll[model.ProjectTemplateLink](db); err != nil {
		return nil, err
	}
	if snap.Comments, err = loadAll[model.Comment](db); err != nil {
		return nil, err
	}
	if snap.UserPreferences, err = loadAll[model.UserPreferences](db); err != nil {
		return nil, err
	}
	if snap.Stakeholders, err = loadAll[model.Stakeholder](db); err != nil {
		return nil, err
	}
	if snap.TradeLots, err = loadAll[model.TradeLot](db); err != nil {
		return nil, err
	}
	if snap.SiteReports, err = loadAll[model.SiteReport](db); err != nil {
		return nil, err
	}
	if snap.StakeholderTemplates, err = loadAll[model.StakeholderTemplate](db); err != nil {
		return nil, err
	}
	if snap.TradeLotTemplates, err = loadAll[model.TradeLotTemplate](db); err != nil {
		return nil, err
	}
	settings, err := loadAll[model.AppSettings](db)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		snap.Settings = &settings[0]
	}

	snap.Normalize()
	return snap, nil
}

func (s *gormStore) Save(ctx context.Context, snap *model.Snapshot) error {
	snap.Normalize()
	settings := *snap.Settings
	settings.ID = 1

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []func(*gorm.DB) error{
			func(tx *gorm.DB) error { return replaceAll(tx, snap.Projects) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.Stages) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.Tasks) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.TimelineItems) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.TimelineTemplates) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.Templates) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.ProjectFields) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.TemplateLinks) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.Comments) },
			func(tx *gorm.DB) error { return replaceAll(tx, []model.AppSettings{settings}) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.UserPreferences) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.Stakeholders) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.TradeLots) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.SiteReports) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.StakeholderTemplates) },
			func(tx *gorm.DB) error { return replaceAll(tx, snap.TradeLotTemplates) },
		}
		for _, step := range steps {
			if err := step(tx); err != nil {
				return err
			}
		}
		return nil
	})
}

func loadAll[T any](db *gorm.DB) ([]T, error) {
	var rows []T
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %T: %w", rows, err)
	}
	return rows, nil
}

// replaceAll 清空表后批量写入
func replaceAll[T any](tx *gorm.DB, rows []T) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("clear %T: %w", rows, err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("insert %T: %w", rows, err)
	}
	return nil
}
