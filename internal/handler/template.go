package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maitrisea/backend/internal/service"
)

// TemplateHandler 模板目录
type TemplateHandler struct {
	catalog *service.CatalogService
}

func NewTemplateHandler(catalog *service.CatalogService) *TemplateHandler {
	return &TemplateHandler{catalog: catalog}
}

// RegisterRoutes 注册路由
func (h *TemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/templates")
	{
		templates.GET("", h.List)
		templates.POST("", h.Create)
		templates.GET("/:id", h.Get)
		templates.PUT("/:id", h.Update)
		templates.PATCH("/:id/status", h.SetActive)
		templates.POST("/:id/analyze", h.Analyze)
	}
	router.GET("/timeline-templates", h.ListTimelineTemplates)
	router.GET("/stakeholder-templates", h.ListStakeholderTemplates)
	router.GET("/lot-templates", h.ListTradeLotTemplates)
}

// List 获取文档模板列表，?active=true 只返回启用的模板
func (h *TemplateHandler) List(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))
	templates, err := h.catalog.ListDocumentTemplates(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, "ListTemplates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := h.catalog.GetDocumentTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetTemplate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tpl})
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "CreateTemplate", err)
		return
	}
	tpl, err := h.catalog.CreateDocumentTemplate(c.Request.Context(), req)
	if err != nil {
		respondError(c, "CreateTemplate", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": tpl})
}

func (h *TemplateHandler) Update(c *gin.Context) {
	var req service.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UpdateTemplate", err)
		return
	}
	tpl, err := h.catalog.UpdateDocumentTemplate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "UpdateTemplate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tpl})
}

// SetActiveRequest 目录启用状态
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (h *TemplateHandler) SetActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "SetTemplateActive", err)
		return
	}
	if err := h.catalog.SetTemplateActive(c.Request.Context(), c.Param("id"), *req.IsActive); err != nil {
		respondError(c, "SetTemplateActive", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// Analyze 请求变量提取。请求体为上传的原始文本，为空时按模板文件地址下载
func (h *TemplateHandler) Analyze(c *gin.Context) {
	content, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, "AnalyzeTemplate", err)
		return
	}
	if len(content) == 0 {
		content = nil
	}
	if err := h.catalog.RequestAnalysis(c.Request.Context(), c.Param("id"), content); err != nil {
		respondError(c, "AnalyzeTemplate", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "analysis requested"})
}

func (h *TemplateHandler) ListTimelineTemplates(c *gin.Context) {
	templates, err := h.catalog.ListTimelineTemplates(c.Request.Context())
	if err != nil {
		respondError(c, "ListTimelineTemplates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}

func (h *TemplateHandler) ListStakeholderTemplates(c *gin.Context) {
	templates, err := h.catalog.ListStakeholderTemplates(c.Request.Context())
	if err != nil {
		respondError(c, "ListStakeholderTemplates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}

func (h *TemplateHandler) ListTradeLotTemplates(c *gin.Context) {
	templates, err := h.catalog.ListTradeLotTemplates(c.Request.Context())
	if err != nil {
		respondError(c, "ListTradeLotTemplates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}
