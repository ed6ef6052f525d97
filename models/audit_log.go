package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions. One record is written per state-changing call.
const (
	AuditActionCreate        = "create"
	AuditActionUpdate        = "update"
	AuditActionDelete        = "delete"
	AuditActionApprove       = "approve"
	AuditActionReject        = "reject"
	AuditActionStatusChange  = "status_change"
	AuditActionFlagToggle    = "flag_toggle"
	AuditActionExport        = "export"
	AuditActionLogin         = "login"
	AuditActionLogout        = "logout"
	AuditActionAccessRequest = "access_request"
)

// Pseudo-module names for audit records that do not belong to a togglable
// module.
const (
	AuditModuleAuth   = "auth"
	AuditModuleSystem = "system"
)

// AuditLog is an immutable record of one state-changing action. Rows are
// never updated or deleted.
//
// Details holds a JSON object whose keys depend on the action:
//
//	create:         reference_number
//	status_change:  previous_status, new_status, reference_number
//	flag_toggle:    previous_state, new_state, reason
//	access_request: requested_role, outcome
type AuditLog struct {
	ID         string         `gorm:"primaryKey;column:id;size:64" json:"id"`
	UserID     string         `gorm:"column:user_id;size:64;index" json:"user_id"`
	UserEmail  string         `gorm:"column:user_email" json:"user_email"`
	Role       string         `gorm:"column:role;size:32" json:"role"`
	Module     string         `gorm:"column:module;size:64;index" json:"module"`
	Action     string         `gorm:"column:action;size:32;index" json:"action"`
	EntityID   *string        `gorm:"column:entity_id;size:64" json:"entity_id,omitempty"`
	EntityType *string        `gorm:"column:entity_type;size:64" json:"entity_type,omitempty"`
	Details    datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
	Notes      *string        `gorm:"column:notes" json:"notes,omitempty"`
	Timestamp  time.Time      `gorm:"column:timestamp;index" json:"timestamp"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
