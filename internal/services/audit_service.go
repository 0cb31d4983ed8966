package services

import (
	"encoding/json"

	"gorm.io/gorm"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/logger"
	"budgetly/internal/models"
	"budgetly/internal/pagination"
)

// Audit actions and resource types.
const (
	AuditActionCreate     = "create"
	AuditActionUpdate     = "update"
	AuditActionActivate   = "activate"
	AuditActionDeactivate = "deactivate"
	AuditActionDelete     = "delete"
	AuditActionRegister   = "register"
	AuditActionLogin      = "login"

	AuditResourceBudget   = "budget"
	AuditResourceExpense  = "expense"
	AuditResourceCategory = "category"
	AuditResourceUser     = "user"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// GetUserAuditLogs returns the user's audit trail, newest first.
func (s *auditService) GetUserAuditLogs(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	page.Defaults()

	base := s.db.Model(&models.AuditLog{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var logs []models.AuditLog
	if err := base.Order("created_at DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&logs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(logs, page, totalItems)
	return &result, nil
}
