package service

import (
	"context"

	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/repository"
)

// UpdatePreferencesRequest 用户默认模板偏好
type UpdatePreferencesRequest struct {
	DefaultTimelineTemplateID    string   `json:"default_timeline_template_id"`
	DefaultDocumentTemplateIDs   []string `json:"default_document_template_ids"`
	DefaultStakeholderTemplateID string   `json:"default_stakeholder_template_id"`
	DefaultTradeLotTemplateID    string   `json:"default_trade_lot_template_id"`
}

// SettingsService 全局设置与用户偏好
type SettingsService struct {
	ws *repository.Workspace
}

func NewSettingsService(ws *repository.Workspace) *SettingsService {
	return &SettingsService{ws: ws}
}

func (s *SettingsService) GetSettings(ctx context.Context) (*model.AppSettings, error) {
	var settings model.AppSettings
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		settings = *snap.Settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateWebhookURL 修改文档生成 webhook 地址
func (s *SettingsService) UpdateWebhookURL(ctx context.Context, url string) (*model.AppSettings, error) {
	var settings model.AppSettings
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if snap.Settings.MakeWebhookURL == url {
			settings = *snap.Settings
			return repository.ErrUnchanged
		}
		snap.Settings.MakeWebhookURL = url
		settings = *snap.Settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetPreferences 获取用户偏好，未设置时返回空偏好
func (s *SettingsService) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	prefs := model.UserPreferences{UserID: userID}
	err := s.ws.View(ctx, func(snap *model.Snapshot) error {
		if p := snap.Preferences(userID); p != nil {
			prefs = *p
			prefs.DefaultDocumentTemplateIDs = append([]string(nil), p.DefaultDocumentTemplateIDs...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpdatePreferences 整体替换用户偏好，不校验模板是否存在
func (s *SettingsService) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*model.UserPreferences, error) {
	prefs := model.UserPreferences{
		UserID:                       userID,
		DefaultTimelineTemplateID:    req.DefaultTimelineTemplateID,
		DefaultDocumentTemplateIDs:   model.UniqueStrings(req.DefaultDocumentTemplateIDs),
		DefaultStakeholderTemplateID: req.DefaultStakeholderTemplateID,
		DefaultTradeLotTemplateID:    req.DefaultTradeLotTemplateID,
	}
	err := s.ws.Update(ctx, func(snap *model.Snapshot) error {
		if p := snap.Preferences(userID); p != nil {
			*p = prefs
			return nil
		}
		snap.UserPreferences = append(snap.UserPreferences, prefs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}
