package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maitrisea/backend/internal/pkg/dispatch"
	"github.com/maitrisea/backend/internal/service"
	"github.com/maitrisea/backend/internal/service/statemachine"
	"k8s.io/klog/v2"
)

// UserHeader 请求头中的当前用户 ID，未提供时使用配置中的默认用户
const UserHeader = "X-User-ID"

func currentUser(c *gin.Context, defaultUserID string) string {
	if id := c.GetHeader(UserHeader); id != "" {
		return id
	}
	return defaultUserID
}

// errorStatus 将服务层错误映射为 HTTP 状态码
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrFieldNotFound),
		errors.Is(err, service.ErrStageNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrReportNotFound),
		errors.Is(err, service.ErrStakeholderNotFound),
		errors.Is(err, service.ErrTradeLotNotFound),
		errors.Is(err, service.ErrContentNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTemplateData),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTaskType),
		errors.Is(err, service.ErrInvalidPosition),
		errors.Is(err, service.ErrInvalidDriveLink):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPositionConflict),
		errors.Is(err, service.ErrAlreadyOnTimeline),
		errors.Is(err, statemachine.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrNothingToSnapshot),
		errors.Is(err, service.ErrNotGeneratable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrWebhookNotSet),
		errors.Is(err, dispatch.ErrPoolClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, action string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		klog.Errorf("%s: failed: %v", action, err)
	} else {
		klog.V(6).Infof("%s: rejected: %v", action, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, action string, err error) {
	klog.V(6).Infof("%s: invalid request: %v", action, err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
