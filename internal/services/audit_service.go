package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"kopilka/internal/logger"
	"kopilka/internal/models"
)

// auditService appends mutations of users, budgets, categories,
// transactions, goals and savings to the audit log.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

func knownAuditResource(resource models.AuditResource) bool {
	switch resource {
	case models.AuditResourceUser,
		models.AuditResourceBudget,
		models.AuditResourceCategory,
		models.AuditResourceTransaction,
		models.AuditResourceGoal,
		models.AuditResourceSavings:
		return true
	}
	return false
}

// Log records a mutation. Money values in changes keep their decimal string
// form. Entries for unknown resources are dropped; write failures are logged
// and never returned, so auditing cannot fail a committed request.
func (s *auditService) Log(userID string, action models.AuditAction, resource models.AuditResource, resourceID, ipAddress string, changes map[string]interface{}) {
	log := logger.Get()

	if !knownAuditResource(resource) {
		log.Warnw("dropping audit entry for unknown resource",
			"action", action,
			"resource_type", resource,
			"resource_id", resourceID,
		)
		return
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
	}
	if len(changes) > 0 {
		data, err := json.Marshal(changes)
		if err != nil {
			log.Errorw("failed to encode audit changes", "error", err, "action", action)
			data = []byte("{}")
		}
		entry.Changes = string(data)
	}

	if err := s.db.Create(entry).Error; err != nil {
		log.Errorw("failed to write audit entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resource,
			"resource_id", resourceID,
		)
	}
}
