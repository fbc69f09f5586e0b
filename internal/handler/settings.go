package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maitrisea/backend/internal/service"
)

// SettingsHandler 全局设置与当前用户偏好
type SettingsHandler struct {
	settings      *service.SettingsService
	defaultUserID string
}

func NewSettingsHandler(settings *service.SettingsService, defaultUserID string) *SettingsHandler {
	return &SettingsHandler{settings: settings, defaultUserID: defaultUserID}
}

// RegisterRoutes 注册路由
func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/settings", h.GetSettings)
	router.PUT("/settings", h.UpdateSettings)
	router.GET("/preferences", h.GetPreferences)
	router.PUT("/preferences", h.UpdatePreferences)
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, "GetSettings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// UpdateSettingsRequest 全局设置
type UpdateSettingsRequest struct {
	MakeWebhookURL string `json:"make_webhook_url"`
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UpdateSettings", err)
		return
	}
	settings, err := h.settings.UpdateWebhookURL(c.Request.Context(), req.MakeWebhookURL)
	if err != nil {
		respondError(c, "UpdateSettings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (h *SettingsHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.settings.GetPreferences(c.Request.Context(), currentUser(c, h.defaultUserID))
	if err != nil {
		respondError(c, "GetPreferences", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prefs})
}

func (h *SettingsHandler) UpdatePreferences(c *gin.Context) {
	var req service.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UpdatePreferences", err)
		return
	}
	prefs, err := h.settings.UpdatePreferences(c.Request.Context(), currentUser(c, h.defaultUserID), req)
	if err != nil {
		respondError(c, "UpdatePreferences", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prefs})
}
