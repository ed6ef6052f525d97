package services

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dealer-portal-api/models"
)

// AuditEntry is the caller-supplied part of an audit record. ID and
// timestamp are stamped by the recorder.
type AuditEntry struct {
	UserID     string
	UserEmail  string
	Role       string
	Module     string
	Action     string
	EntityID   string
	EntityType string
	Details    any
	Notes      string
}

// Detail payloads per action. Each shape is serialized into the record's
// JSON details column with the keys documented on models.AuditLog.
type (
	CreateDetails struct {
		ReferenceNumber string `json:"reference_number"`
	}

	StatusChangeDetails struct {
		PreviousStatus  string `json:"previous_status"`
		NewStatus       string `json:"new_status"`
		ReferenceNumber string `json:"reference_number"`
	}

	FlagToggleDetails struct {
		PreviousState bool   `json:"previous_state"`
		NewState      bool   `json:"new_state"`
		Reason        string `json:"reason,omitempty"`
	}

	AccessRequestDetails struct {
		RequestedRole string `json:"requested_role"`
		Outcome       string `json:"outcome"`
	}
)

// AuditService appends immutable event records for every state-changing
// action across the portal.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log stamps and stores an audit record. Writes are best-effort: a storage
// failure is logged and never surfaced, so auditing cannot block the
// primary operation.
func (s *AuditService) Log(entry AuditEntry) *models.AuditLog {
	record := &models.AuditLog{
		UserID:    entry.UserID,
		UserEmail: entry.UserEmail,
		Role:      entry.Role,
		Module:    entry.Module,
		Action:    entry.Action,
		Timestamp: time.Now().UTC(),
	}
	if entry.EntityID != "" {
		record.EntityID = &entry.EntityID
	}
	if entry.EntityType != "" {
		record.EntityType = &entry.EntityType
	}
	if entry.Notes != "" {
		record.Notes = &entry.Notes
	}
	if entry.Details != nil {
		payload, err := json.Marshal(entry.Details)
		if err != nil {
			log.Printf("audit: failed to encode details for %s/%s: %v", entry.Module, entry.Action, err)
		} else {
			record.Details = datatypes.JSON(payload)
		}
	}

	if err := s.db.Create(record).Error; err != nil {
		log.Printf("audit: failed to persist %s/%s record: %v", entry.Module, entry.Action, err)
	}
	return record
}

// GetAll returns every audit record, newest first.
func (s *AuditService) GetAll() ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := s.db.Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, storageErr("audit list", err)
	}
	return logs, nil
}

// GetByUser returns records written by one user, newest first.
func (s *AuditService) GetByUser(userID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := s.db.Where("user_id = ?", userID).Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, storageErr("audit by user", err)
	}
	return logs, nil
}

// GetByModule returns records for one module, newest first.
func (s *AuditService) GetByModule(module string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := s.db.Where("module = ?", module).Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, storageErr("audit by module", err)
	}
	return logs, nil
}

// GetByAction returns records for one action kind, newest first.
func (s *AuditService) GetByAction(action string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := s.db.Where("action = ?", action).Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, storageErr("audit by action", err)
	}
	return logs, nil
}

// GetByDateRange returns records with start <= timestamp <= end, newest first.
func (s *AuditService) GetByDateRange(start, end time.Time) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := s.db.Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp DESC").Find(&logs).Error
	if err != nil {
		return nil, storageErr("audit by date range", err)
	}
	return logs, nil
}

// GetByEntity returns records touching one entity, newest first.
func (s *AuditService) GetByEntity(entityType, entityID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := s.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("timestamp DESC").Find(&logs).Error
	if err != nil {
		return nil, storageErr("audit by entity", err)
	}
	return logs, nil
}
