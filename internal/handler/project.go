package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maitrisea/backend/internal/service"
)

// ProjectHandler 项目、技术表字段、评论、干系人、分包与现场报告
type ProjectHandler struct {
	projects      *service.ProjectService
	scaffold      *service.ScaffoldService
	fields        *service.FieldService
	generation    *service.GenerationService
	defaultUserID string
}

func NewProjectHandler(
	projects *service.ProjectService,
	scaffold *service.ScaffoldService,
	fields *service.FieldService,
	generation *service.GenerationService,
	defaultUserID string,
) *ProjectHandler {
	return &ProjectHandler{
		projects:      projects,
		scaffold:      scaffold,
		fields:        fields,
		generation:    generation,
		defaultUserID: defaultUserID,
	}
}

// RegisterRoutes 注册路由
func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", h.List)
		projects.POST("", h.Create)
		projects.GET("/:id", h.Get)
		projects.PUT("/:id", h.Update)
		projects.PUT("/:id/drive", h.SetDriveLink)
		projects.GET("/:id/fields", h.ListFields)
		projects.GET("/:id/templates", h.ActiveTemplates)
		projects.POST("/:id/templates/:templateId/toggle", h.ToggleTemplate)
		projects.POST("/:id/templates/:templateId/generate", h.GenerateForTemplate)
		projects.GET("/:id/comments", h.ListComments)
		projects.POST("/:id/comments", h.AddComment)
		projects.POST("/:id/stakeholders", h.AddStakeholder)
		projects.POST("/:id/lots", h.AddTradeLot)
		projects.POST("/:id/reports", h.AddReport)
	}

	router.PUT("/fields/:id", h.UpdateField)
	router.PUT("/stakeholders/:id", h.UpdateStakeholder)
	router.DELETE("/stakeholders/:id", h.DeleteStakeholder)
	router.DELETE("/lots/:id", h.DeleteTradeLot)
	router.PUT("/reports/:id", h.UpdateReport)
}

// List 获取项目列表
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		respondError(c, "ListProjects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projects})
}

// Create 创建项目并生成字段、时间线、干系人与分包
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "CreateProject", err)
		return
	}
	project, err := h.scaffold.CreateProject(c.Request.Context(), req, currentUser(c, h.defaultUserID))
	if err != nil {
		respondError(c, "CreateProject", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": project})
}

// Get 获取项目详情
func (h *ProjectHandler) Get(c *gin.Context) {
	detail, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetProject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UpdateProject", err)
		return
	}
	project, err := h.projects.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "UpdateProject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": project})
}

// DriveLinkRequest Google Drive 文件夹链接，空字符串清除
type DriveLinkRequest struct {
	URL string `json:"url"`
}

func (h *ProjectHandler) SetDriveLink(c *gin.Context) {
	var req DriveLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "SetDriveLink", err)
		return
	}
	project, err := h.projects.SetDriveLink(c.Request.Context(), c.Param("id"), req.URL)
	if err != nil {
		respondError(c, "SetDriveLink", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": project})
}

// ListFields 获取项目技术表字段
func (h *ProjectHandler) ListFields(c *gin.Context) {
	fields, err := h.fields.ListFields(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "ListFields", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": fields})
}

// FieldValueRequest 字段值
type FieldValueRequest struct {
	Value string `json:"value"`
}

func (h *ProjectHandler) UpdateField(c *gin.Context) {
	var req FieldValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UpdateField", err)
		return
	}
	field, err := h.fields.UpdateFieldValue(c.Request.Context(), c.Param("id"), req.Value)
	if err != nil {
		respondError(c, "UpdateField", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": field})
}

func (h *ProjectHandler) ActiveTemplates(c *gin.Context) {
	templates, err := h.fields.ActiveTemplates(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "ActiveTemplates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}

// ToggleTemplate 切换文档模板在项目上的激活状态
func (h *ProjectHandler) ToggleTemplate(c *gin.Context) {
	active, err := h.fields.ToggleDocumentTemplate(c.Request.Context(), c.Param("id"), c.Param("templateId"))
	if err != nil {
		respondError(c, "ToggleTemplate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"active": active}})
}

// GenerateForTemplate 提交文档生成请求，立即返回
func (h *ProjectHandler) GenerateForTemplate(c *gin.Context) {
	if err := h.generation.GenerateForTemplate(c.Request.Context(), c.Param("id"), c.Param("templateId")); err != nil {
		respondError(c, "GenerateForTemplate", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "generation submitted"})
}

func (h *ProjectHandler) ListComments(c *gin.Context) {
	comments, err := h.projects.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "ListComments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": comments})
}

// CommentRequest 新增评论
type CommentRequest struct {
	Body     string   `json:"body" binding:"required"`
	Mentions []string `json:"mentions_user_ids"`
}

func (h *ProjectHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "AddComment", err)
		return
	}
	comment, err := h.projects.AddComment(c.Request.Context(), c.Param("id"), currentUser(c, h.defaultUserID), req.Body, req.Mentions)
	if err != nil {
		respondError(c, "AddComment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": comment})
}

func (h *ProjectHandler) AddStakeholder(c *gin.Context) {
	var req service.StakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "AddStakeholder", err)
		return
	}
	st, err := h.projects.AddStakeholder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "AddStakeholder", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": st})
}

func (h *ProjectHandler) UpdateStakeholder(c *gin.Context) {
	var req service.StakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UpdateStakeholder", err)
		return
	}
	st, err := h.projects.UpdateStakeholder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "UpdateStakeholder", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": st})
}

func (h *ProjectHandler) DeleteStakeholder(c *gin.Context) {
	if err := h.projects.DeleteStakeholder(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteStakeholder", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// TradeLotRequest 新增分包
type TradeLotRequest struct {
	LotName string `json:"lot_name" binding:"required"`
}

func (h *ProjectHandler) AddTradeLot(c *gin.Context) {
	var req TradeLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "AddTradeLot", err)
		return
	}
	lot, err := h.projects.AddTradeLot(c.Request.Context(), c.Param("id"), req.LotName)
	if err != nil {
		respondError(c, "AddTradeLot", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": lot})
}

func (h *ProjectHandler) DeleteTradeLot(c *gin.Context) {
	if err := h.projects.DeleteTradeLot(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteTradeLot", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// AddReport 新增现场报告，请求体可为空
func (h *ProjectHandler) AddReport(c *gin.Context) {
	var req service.AddReportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "AddReport", err)
			return
		}
	}
	report, err := h.projects.AddReport(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "AddReport", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": report})
}

func (h *ProjectHandler) UpdateReport(c *gin.Context) {
	var req service.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UpdateReport", err)
		return
	}
	report, err := h.projects.UpdateReport(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "UpdateReport", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}
