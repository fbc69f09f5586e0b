package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/service"
)

// TimelineHandler 时间线、阶段、任务，以及时间线/干系人/分包模板的保存与加载
type TimelineHandler struct {
	timeline   *service.TimelineService
	snapshots  *service.SnapshotService
	generation *service.GenerationService
}

func NewTimelineHandler(timeline *service.TimelineService, snapshots *service.SnapshotService, generation *service.GenerationService) *TimelineHandler {
	return &TimelineHandler{timeline: timeline, snapshots: snapshots, generation: generation}
}

// RegisterRoutes 注册路由
func (h *TimelineHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects/:id")
	{
		projects.GET("/timeline", h.Timeline)
		projects.PUT("/timeline/order", h.ReplaceOrder)
		projects.POST("/timeline/items", h.AttachItem)
		projects.POST("/timeline/save-template", h.SaveTimelineTemplate)
		projects.POST("/timeline/load-template", h.LoadTimelineTemplate)
		projects.POST("/stakeholders/save-template", h.SaveStakeholderTemplate)
		projects.POST("/stakeholders/load-template", h.LoadStakeholderTemplate)
		projects.POST("/lots/save-template", h.SaveLotTemplate)
		projects.POST("/lots/load-template", h.LoadLotTemplate)
		projects.POST("/stages", h.AddStage)
		projects.POST("/tasks", h.AddTask)
	}

	router.DELETE("/timeline/items/:contentId", h.DetachItem)
	router.PUT("/stages/:id", h.UpdateStage)
	router.DELETE("/stages/:id", h.DeleteStage)
	router.PUT("/tasks/:id", h.UpdateTask)
	router.DELETE("/tasks/:id", h.DeleteTask)
	router.POST("/tasks/:id/generate", h.GenerateForTask)
}

// Timeline 获取按位置排序的时间线
func (h *TimelineHandler) Timeline(c *gin.Context) {
	entries, err := h.timeline.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Timeline", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// ReorderRequest 拖拽排序结果
type ReorderRequest struct {
	Items []service.OrderEntry `json:"items" binding:"dive"`
}

func (h *TimelineHandler) ReplaceOrder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ReplaceOrder", err)
		return
	}
	if err := h.timeline.ReplaceOrder(c.Request.Context(), c.Param("id"), req.Items); err != nil {
		respondError(c, "ReplaceOrder", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reordered"})
}

// AttachItemRequest 将已有阶段/任务/报告挂回时间线
type AttachItemRequest struct {
	ItemType model.TimelineItemType `json:"item_type" binding:"required,oneof=stage task report"`
	RefID    string                 `json:"ref_id" binding:"required"`
}

func (h *TimelineHandler) AttachItem(c *gin.Context) {
	var req AttachItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "AttachItem", err)
		return
	}
	item, err := h.timeline.Append(c.Request.Context(), c.Param("id"), req.ItemType, req.RefID)
	if err != nil {
		respondError(c, "AttachItem", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

// DetachItem 从时间线移除引用该内容的条目，内容本身保留
func (h *TimelineHandler) DetachItem(c *gin.Context) {
	removed, err := h.timeline.RemoveByContent(c.Request.Context(), c.Param("contentId"))
	if err != nil {
		respondError(c, "DetachItem", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"removed": removed}})
}

func (h *TimelineHandler) AddStage(c *gin.Context) {
	var req service.AddStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "AddStage", err)
		return
	}
	stage, err := h.timeline.AddStage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "AddStage", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": stage})
}

func (h *TimelineHandler) AddTask(c *gin.Context) {
	var req service.AddTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "AddTask", err)
		return
	}
	task, err := h.timeline.AddTask(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "AddTask", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": task})
}

func (h *TimelineHandler) UpdateStage(c *gin.Context) {
	var req service.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UpdateStage", err)
		return
	}
	stage, err := h.timeline.UpdateStage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "UpdateStage", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stage})
}

func (h *TimelineHandler) UpdateTask(c *gin.Context) {
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UpdateTask", err)
		return
	}
	task, err := h.timeline.UpdateTask(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "UpdateTask", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (h *TimelineHandler) DeleteStage(c *gin.Context) {
	if err := h.timeline.DeleteStage(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteStage", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *TimelineHandler) DeleteTask(c *gin.Context) {
	if err := h.timeline.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteTask", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// GenerateForTask 为 system 任务提交文档生成请求
func (h *TimelineHandler) GenerateForTask(c *gin.Context) {
	if err := h.generation.GenerateForTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "GenerateForTask", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "generation submitted"})
}

// SaveTemplateRequest 保存为模板
type SaveTemplateRequest struct {
	Name string `json:"name" binding:"required"`
}

// LoadTemplateRequest 从模板加载
type LoadTemplateRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
}

func (h *TimelineHandler) SaveTimelineTemplate(c *gin.Context) {
	var req SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "SaveTimelineTemplate", err)
		return
	}
	tt, err := h.snapshots.SaveTimelineAsTemplate(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, "SaveTimelineTemplate", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": tt})
}

// LoadTimelineTemplate 用模板替换项目时间线，现场报告保留
func (h *TimelineHandler) LoadTimelineTemplate(c *gin.Context) {
	var req LoadTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "LoadTimelineTemplate", err)
		return
	}
	if err := h.snapshots.LoadTimelineTemplate(c.Request.Context(), c.Param("id"), req.TemplateID); err != nil {
		respondError(c, "LoadTimelineTemplate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "loaded"})
}

func (h *TimelineHandler) SaveStakeholderTemplate(c *gin.Context) {
	var req SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "SaveStakeholderTemplate", err)
		return
	}
	tpl, err := h.snapshots.SaveStakeholderTemplate(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, "SaveStakeholderTemplate", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": tpl})
}

func (h *TimelineHandler) LoadStakeholderTemplate(c *gin.Context) {
	var req LoadTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "LoadStakeholderTemplate", err)
		return
	}
	added, err := h.snapshots.LoadStakeholderTemplate(c.Request.Context(), c.Param("id"), req.TemplateID)
	if err != nil {
		respondError(c, "LoadStakeholderTemplate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"added": added}})
}

func (h *TimelineHandler) SaveLotTemplate(c *gin.Context) {
	var req SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "SaveLotTemplate", err)
		return
	}
	tpl, err := h.snapshots.SaveLotTemplate(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, "SaveLotTemplate", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": tpl})
}

func (h *TimelineHandler) LoadLotTemplate(c *gin.Context) {
	var req LoadTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "LoadLotTemplate", err)
		return
	}
	added, err := h.snapshots.LoadLotTemplate(c.Request.Context(), c.Param("id"), req.TemplateID)
	if err != nil {
		respondError(c, "LoadLotTemplate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"added": added}})
}
