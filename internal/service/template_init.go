package service

import (
	"context"
	"time"

	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/repository"
	"k8s.io/klog/v2"
)

// 预置模板 ID
const (
	DefaultDocumentTemplateID    = "t_contract_v1"
	DefaultStakeholderTemplateID = "stt_default"
	DefaultTradeLotTemplateID    = "tlt_default"
)

// BaselineTimelineTemplate 内置的默认时间线，目录中缺少 tt_default 时使用
func BaselineTimelineTemplate() model.TimelineTemplate {
	return model.TimelineTemplate{
		ID:           DefaultTimelineTemplateID,
		TemplateName: "Modèle Standard Architecte",
		Items: []model.TimelineDescriptor{
			{Name: "APS", ItemType: model.ItemTypeStage},
			{Name: "APD", ItemType: model.ItemTypeStage},
			{Name: "Génération du document", ItemType: model.ItemTypeTask, TaskType: model.TaskTypeSystem},
			{Name: "PC", ItemType: model.ItemTypeStage},
			{Name: "Relancer devis", ItemType: model.ItemTypeTask, TaskType: model.TaskTypeFree},
		},
	}
}

// InitDefaultTemplates 文档模板目录为空时写入预置模板，并为 ownerID 设置默认偏好
func InitDefaultTemplates(ctx context.Context, ws *repository.Workspace, opts Options, ownerID string) error {
	opts = opts.withDefaults()
	return ws.Update(ctx, func(snap *model.Snapshot) error {
		if len(snap.Templates) > 0 {
			// 已存在，跳过初始化
			return repository.ErrUnchanged
		}
		seedBaseline(snap, opts.WorkspaceID, opts.Clock())
		if ownerID != "" && snap.Preferences(ownerID) == nil {
			snap.UserPreferences = append(snap.UserPreferences, model.UserPreferences{
				UserID:                       ownerID,
				DefaultTimelineTemplateID:    DefaultTimelineTemplateID,
				DefaultDocumentTemplateIDs:   []string{DefaultDocumentTemplateID},
				DefaultStakeholderTemplateID: DefaultStakeholderTemplateID,
				DefaultTradeLotTemplateID:    DefaultTradeLotTemplateID,
			})
		}
		klog.V(6).Infof("预置模板初始化完成: workspace=%s", opts.WorkspaceID)
		return nil
	})
}

func seedBaseline(snap *model.Snapshot, workspaceID string, now time.Time) {
	snap.Templates = append(snap.Templates, model.DocumentTemplate{
		ID:             DefaultDocumentTemplateID,
		WorkspaceID:    workspaceID,
		TemplateName:   "Contrat de Mission Architecte",
		TemplateType:   model.TemplateContract,
		FileURL:        "dummy",
		Variables:      []string{"client_nom", "client_adresse", "budget_travaux", "surface_m2"},
		IsActive:       true,
		AnalysisStatus: model.AnalysisOK,
		CreatedAt:      now,
		UpdatedAt:      now,
	})

	if snap.FindTimelineTemplate(DefaultTimelineTemplateID) == nil {
		tt := BaselineTimelineTemplate()
		tt.WorkspaceID = workspaceID
		tt.CreatedAt = now
		snap.TimelineTemplates = append(snap.TimelineTemplates, tt)
	}
	if snap.FindStakeholderTemplate(DefaultStakeholderTemplateID) == nil {
		snap.StakeholderTemplates = append(snap.StakeholderTemplates, model.StakeholderTemplate{
			ID:           DefaultStakeholderTemplateID,
			WorkspaceID:  workspaceID,
			TemplateName: "Equipe Standard Chantier",
			Roles:        []string{"Maître d'ouvrage", "Maître d'œuvre", "Bureau de Contrôle", "CSPS"},
			CreatedAt:    now,
		})
	}
	if snap.FindTradeLotTemplate(DefaultTradeLotTemplateID) == nil {
		snap.TradeLotTemplates = append(snap.TradeLotTemplates, model.TradeLotTemplate{
			ID:           DefaultTradeLotTemplateID,
			WorkspaceID:  workspaceID,
			TemplateName: "Lots Rénovation Classique",
			Lots:         []string{"Démolition", "Gros œuvre", "Menuiseries", "Plâtrerie", "Electricité", "Plomberie", "Carrelage", "Peinture"},
			CreatedAt:    now,
		})
	}
}
