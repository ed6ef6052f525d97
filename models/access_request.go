package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Access request outcomes.
const (
	AccessRequestPending  = "pending"
	AccessRequestApproved = "approved"
	AccessRequestRejected = "rejected"
)

// AccessRequest is a dealer-side onboarding request, filed without a session
// and processed by manufacturer staff.
type AccessRequest struct {
	ID            string     `gorm:"primaryKey;column:id;size:64" json:"id"`
	DealerCode    string     `gorm:"column:dealer_code" json:"dealer_code"`
	DealerName    string     `gorm:"column:dealer_name" json:"dealer_name"`
	City          string     `gorm:"column:city" json:"city"`
	ContactPerson string     `gorm:"column:contact_person" json:"contact_person"`
	Email         string     `gorm:"column:email" json:"email"`
	Phone         string     `gorm:"column:phone" json:"phone"`
	RequestedRole string     `gorm:"column:requested_role;size:32" json:"requested_role"`
	EmployeeID    string     `gorm:"column:employee_id" json:"employee_id"`
	Status        string     `gorm:"column:status;size:16" json:"status"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	ProcessedBy   *string    `gorm:"column:processed_by;size:64" json:"processed_by,omitempty"`
	ProcessedAt   *time.Time `gorm:"column:processed_at" json:"processed_at,omitempty"`
	Notes         *string    `gorm:"column:notes" json:"notes,omitempty"`
}

func (r *AccessRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (AccessRequest) TableName() string {
	return "access_requests"
}
