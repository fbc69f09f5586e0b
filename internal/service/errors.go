package service

import "errors"

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrInvalidTemplateData = errors.New("invalid template data")
	ErrFieldNotFound       = errors.New("project field not found")
	ErrStageNotFound       = errors.New("stage not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrReportNotFound      = errors.New("site report not found")
	ErrStakeholderNotFound = errors.New("stakeholder not found")
	ErrTradeLotNotFound    = errors.New("trade lot not found")
	ErrContentNotFound     = errors.New("timeline content not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidTaskType     = errors.New("invalid task type")
	ErrInvalidPosition     = errors.New("timeline position must be positive")
	ErrPositionConflict    = errors.New("timeline positions would collide")
	ErrAlreadyOnTimeline   = errors.New("content is already on the timeline")
	ErrNothingToSnapshot   = errors.New("project has nothing to save as template")
	ErrInvalidDriveLink    = errors.New("invalid google drive link")
	ErrNotGeneratable      = errors.New("document generation not available for this item")
	ErrWebhookNotSet       = errors.New("generation webhook url is not configured")
)
