package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PCC submission statuses. A submission always enters the workflow at
// StatusSubmitted; StatusDraft exists for forward compatibility with saved
// drafts but is never produced by the creation path.
const (
	StatusDraft            = "draft"
	StatusSubmitted        = "submitted"
	StatusUnderReview      = "under_review"
	StatusApproved         = "approved"
	StatusRejected         = "rejected"
	StatusMoreInfoRequired = "more_info_required"
)

// PCCStatuses lists every workflow status.
var PCCStatuses = []string{
	StatusDraft,
	StatusSubmitted,
	StatusUnderReview,
	StatusApproved,
	StatusRejected,
	StatusMoreInfoRequired,
}

// Condition types. Each type carries its own claim threshold and set of
// conditionally required fields, validated by the PCC service.
const (
	ConditionWarrantyCases       = "warranty_cases"
	ConditionPostWarrantyCases   = "post_warranty_cases"
	ConditionAfterCountermeasure = "after_countermeasure"
	ConditionNewModelLaunch      = "new_model_launch"
	ConditionBreakdownCases      = "breakdown_cases"
	ConditionRepeatRepairs       = "repeat_repairs"
	ConditionTPIUnavailable      = "tpi_unavailable"
)

// ConditionTypes lists the seven qualifying categories.
var ConditionTypes = []string{
	ConditionWarrantyCases,
	ConditionPostWarrantyCases,
	ConditionAfterCountermeasure,
	ConditionNewModelLaunch,
	ConditionBreakdownCases,
	ConditionRepeatRepairs,
	ConditionTPIUnavailable,
}

// Warranty period classifiers used by the warranty condition types.
const (
	WarrantyPeriodWithin = "lte_2_years"
	WarrantyPeriodBeyond = "gt_2_years"
	WarrantyPeriodAny    = "any"
)

const (
	BrandVolkswagen = "volkswagen"
	BrandSkoda      = "skoda"
)

const (
	TopicDealerPCC   = "dealer_pcc"
	TopicLongTermPCC = "long_term_pcc"
)

// PCCSubtopics lists the defect areas used for dashboard grouping.
var PCCSubtopics = []string{
	"engine", "transmission", "electrical", "suspension",
	"brakes", "body", "interior", "other",
}

// Attachment is file metadata carried on a submission. The file payloads
// themselves live outside the portal; only the metadata is persisted.
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// PCCSubmission is one dealer-reported vehicle concern. Submissions are
// never deleted; status changes append to the history table.
type PCCSubmission struct {
	ID              string `gorm:"primaryKey;column:id;size:64" json:"id"`
	ReferenceNumber string `gorm:"column:reference_number;unique" json:"reference_number"`
	Status          string `gorm:"column:status;size:32" json:"status"`

	// Dealer info
	DealerID      string `gorm:"column:dealer_id;size:64;index" json:"dealer_id"`
	DealerCode    string `gorm:"column:dealer_code" json:"dealer_code"`
	DealerName    string `gorm:"column:dealer_name" json:"dealer_name"`
	ContactPerson string `gorm:"column:contact_person" json:"contact_person"`
	Email         string `gorm:"column:email" json:"email"`

	// Vehicle info
	Brand          string    `gorm:"column:brand;size:32" json:"brand"`
	Model          string    `gorm:"column:model" json:"model"`
	VIN            string    `gorm:"column:vin;size:17" json:"vin"`
	RegistrationNo string    `gorm:"column:registration_no" json:"registration_no"`
	ProductionDate time.Time `gorm:"column:production_date" json:"production_date"`

	// Classification
	ConditionType      string     `gorm:"column:condition_type;size:32" json:"condition_type"`
	WarrantyPeriod     string     `gorm:"column:warranty_period;size:16" json:"warranty_period"`
	NumberOfClaims     int        `gorm:"column:number_of_claims" json:"number_of_claims"`
	FaultCode          string     `gorm:"column:fault_code" json:"fault_code"`
	NumberOfRepairs    int        `gorm:"column:number_of_repairs" json:"number_of_repairs"`
	CountermeasureDate *time.Time `gorm:"column:countermeasure_date" json:"countermeasure_date,omitempty"`
	SaleDate           *time.Time `gorm:"column:sale_date" json:"sale_date,omitempty"`
	TPIResult          *int       `gorm:"column:tpi_result" json:"tpi_result,omitempty"`
	RepairSuccess      *int       `gorm:"column:repair_success" json:"repair_success,omitempty"`

	// Details
	Topic            string  `gorm:"column:topic;size:32" json:"topic"`
	Subtopic         string  `gorm:"column:subtopic;size:32" json:"subtopic"`
	EscalatedToBrand bool    `gorm:"column:escalated_to_brand" json:"escalated_to_brand"`
	EscalationNotes  *string `gorm:"column:escalation_notes" json:"escalation_notes,omitempty"`

	// Engine & technical
	EngineCode  string    `gorm:"column:engine_code" json:"engine_code"`
	GearboxCode string    `gorm:"column:gearbox_code" json:"gearbox_code"`
	Mileage     int       `gorm:"column:mileage" json:"mileage"`
	RepairDate  time.Time `gorm:"column:repair_date" json:"repair_date"`

	// Complaint & breakdown
	DISSTicketNo     *string `gorm:"column:diss_ticket_no" json:"diss_ticket_no,omitempty"`
	WarrantyClaimNo  *string `gorm:"column:warranty_claim_no" json:"warranty_claim_no,omitempty"`
	PartDescription  string  `gorm:"column:part_description" json:"part_description"`
	DamagePartNumber string  `gorm:"column:damage_part_number" json:"damage_part_number"`
	RepeatedRepair   bool    `gorm:"column:repeated_repair" json:"repeated_repair"`
	Breakdown        bool    `gorm:"column:breakdown" json:"breakdown"`

	Attachments datatypes.JSONSlice[Attachment] `gorm:"column:attachments" json:"attachments"`

	DeclarationAccepted bool `gorm:"column:declaration_accepted" json:"declaration_accepted"`

	// Metadata
	CreatedBy     string    `gorm:"column:created_by;size:64" json:"created_by"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
	LastUpdatedBy *string   `gorm:"column:last_updated_by;size:64" json:"last_updated_by,omitempty"`

	StatusHistory []PCCStatusHistory `gorm:"foreignKey:SubmissionID" json:"status_history"`
}

// PCCStatusHistory is one append-only workflow step for a submission.
// Rows are never updated or deleted.
type PCCStatusHistory struct {
	ID           uint      `gorm:"primaryKey;column:id" json:"-"`
	SubmissionID string    `gorm:"column:submission_id;size:64;index" json:"-"`
	Status       string    `gorm:"column:status;size:32" json:"status"`
	ChangedBy    string    `gorm:"column:changed_by;size:64" json:"changed_by"`
	ChangedAt    time.Time `gorm:"column:changed_at" json:"changed_at"`
	Notes        *string   `gorm:"column:notes" json:"notes,omitempty"`
}

// PCCReferenceSequence backs reference-number generation: one row per year,
// incremented transactionally so numbers never collide or repeat.
type PCCReferenceSequence struct {
	Year         int `gorm:"primaryKey;column:year" json:"year"`
	LastSequence int `gorm:"column:last_sequence" json:"last_sequence"`
}

func (s *PCCSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (PCCSubmission) TableName() string {
	return "pcc_submissions"
}

func (PCCStatusHistory) TableName() string {
	return "pcc_status_history"
}

func (PCCReferenceSequence) TableName() string {
	return "pcc_reference_sequences"
}

// IsValidStatus reports whether status is a known workflow status.
func IsValidStatus(status string) bool {
	for _, s := range PCCStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether status ends the review workflow.
func IsTerminalStatus(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// IsValidConditionType reports whether ct is one of the seven categories.
func IsValidConditionType(ct string) bool {
	for _, c := range ConditionTypes {
		if c == ct {
			return true
		}
	}
	return false
}
