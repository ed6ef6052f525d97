package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"dealer-portal-api/models"
	"dealer-portal-api/utils"
)

// referenceSeqStart keeps printed reference numbers at four digits from the
// first allocation of each year.
const referenceSeqStart = 1000

// PCCInput is the dealer-supplied part of a submission. Identity, status and
// history are assigned by the service.
type PCCInput struct {
	DealerID      string `json:"dealer_id"`
	DealerCode    string `json:"dealer_code"`
	DealerName    string `json:"dealer_name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`

	Brand          string    `json:"brand"`
	Model          string    `json:"model"`
	VIN            string    `json:"vin"`
	RegistrationNo string    `json:"registration_no"`
	ProductionDate time.Time `json:"production_date"`

	ConditionType      string     `json:"condition_type"`
	WarrantyPeriod     string     `json:"warranty_period"`
	NumberOfClaims     int        `json:"number_of_claims"`
	FaultCode          string     `json:"fault_code"`
	NumberOfRepairs    int        `json:"number_of_repairs"`
	CountermeasureDate *time.Time `json:"countermeasure_date,omitempty"`
	SaleDate           *time.Time `json:"sale_date,omitempty"`
	TPIResult          *int       `json:"tpi_result,omitempty"`
	RepairSuccess      *int       `json:"repair_success,omitempty"`

	Topic            string  `json:"topic"`
	Subtopic         string  `json:"subtopic"`
	EscalatedToBrand bool    `json:"escalated_to_brand"`
	EscalationNotes  *string `json:"escalation_notes,omitempty"`

	EngineCode  string    `json:"engine_code"`
	GearboxCode string    `json:"gearbox_code"`
	Mileage     int       `json:"mileage"`
	RepairDate  time.Time `json:"repair_date"`

	DISSTicketNo     *string `json:"diss_ticket_no,omitempty"`
	WarrantyClaimNo  *string `json:"warranty_claim_no,omitempty"`
	PartDescription  string  `json:"part_description"`
	DamagePartNumber string  `json:"damage_part_number"`
	RepeatedRepair   bool    `json:"repeated_repair"`
	Breakdown        bool    `json:"breakdown"`

	Attachments []models.Attachment `json:"attachments,omitempty"`

	DeclarationAccepted bool `json:"declaration_accepted"`
}

// DashboardStats aggregates the submission population for the dashboard.
type DashboardStats struct {
	Total             int                    `json:"total"`
	ByStatus          map[string]int         `json:"by_status"`
	BySubtopic        map[string]int         `json:"by_subtopic"`
	ApprovalRate      float64                `json:"approval_rate"`
	AverageTAT        float64                `json:"average_tat"`
	RecentSubmissions []models.PCCSubmission `json:"recent_submissions"`
	MoreInfoQueue     []models.PCCSubmission `json:"more_info_queue"`
}

// PCCServiceOptions tunes workflow policy.
type PCCServiceOptions struct {
	// LockTerminalStatuses forbids transitions out of approved/rejected.
	// Off by default: the portal has always allowed reopening, and the
	// stricter policy is opt-in (PCC_LOCK_TERMINAL_STATUSES).
	LockTerminalStatuses bool
}

// PCCService runs the Product Concern Capture workflow.
type PCCService struct {
	db    *gorm.DB
	audit *AuditService
	opts  PCCServiceOptions

	// now is swappable in tests.
	now func() time.Time
}

func NewPCCService(db *gorm.DB, audit *AuditService, opts PCCServiceOptions) *PCCService {
	return &PCCService{db: db, audit: audit, opts: opts, now: time.Now}
}

// Create validates and stores a new submission for a dealer-role actor.
// Any failed rule produces a field-scoped validation error and the creation
// aborts with no side effects and no audit record.
func (s *PCCService) Create(actor *models.User, input PCCInput) (*models.PCCSubmission, error) {
	if actor == nil {
		return nil, ErrAuthenticationRequired
	}
	// Role is re-checked here, not only at the route gate: a multi-client
	// backend cannot trust that every caller went through the UI gate.
	if !actor.IsDealer() {
		return nil, ErrForbidden
	}

	s.applyConditionOverrides(&input)
	if verrs := s.validate(input); len(verrs) > 0 {
		return nil, verrs
	}

	now := s.now()
	submission := &models.PCCSubmission{
		Status: models.StatusSubmitted,

		DealerID:      input.DealerID,
		DealerCode:    input.DealerCode,
		DealerName:    input.DealerName,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,

		Brand:          input.Brand,
		Model:          input.Model,
		VIN:            strings.ToUpper(input.VIN),
		RegistrationNo: strings.ToUpper(strings.ReplaceAll(input.RegistrationNo, " ", "")),
		ProductionDate: input.ProductionDate,

		ConditionType:      input.ConditionType,
		WarrantyPeriod:     input.WarrantyPeriod,
		NumberOfClaims:     input.NumberOfClaims,
		FaultCode:          input.FaultCode,
		NumberOfRepairs:    input.NumberOfRepairs,
		CountermeasureDate: input.CountermeasureDate,
		SaleDate:           input.SaleDate,
		TPIResult:          input.TPIResult,
		RepairSuccess:      input.RepairSuccess,

		Topic:            input.Topic,
		Subtopic:         input.Subtopic,
		EscalatedToBrand: input.EscalatedToBrand,
		EscalationNotes:  input.EscalationNotes,

		EngineCode:  input.EngineCode,
		GearboxCode: input.GearboxCode,
		Mileage:     input.Mileage,
		RepairDate:  input.RepairDate,

		DISSTicketNo:     input.DISSTicketNo,
		WarrantyClaimNo:  input.WarrantyClaimNo,
		PartDescription:  input.PartDescription,
		DamagePartNumber: strings.ToUpper(input.DamagePartNumber),
		RepeatedRepair:   input.RepeatedRepair,
		Breakdown:        input.Breakdown,

		Attachments: input.Attachments,

		DeclarationAccepted: input.DeclarationAccepted,

		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	initialNotes := "Initial submission"
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ref, err := nextReferenceNumber(tx, now.Year())
		if err != nil {
			return err
		}
		submission.ReferenceNumber = ref
		if err := tx.Create(submission).Error; err != nil {
			return err
		}
		history := models.PCCStatusHistory{
			SubmissionID: submission.ID,
			Status:       models.StatusSubmitted,
			ChangedBy:    actor.ID,
			ChangedAt:    now,
			Notes:        &initialNotes,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, storageErr("submission create", err)
	}

	s.audit.Log(AuditEntry{
		UserID:     actor.ID,
		UserEmail:  actor.Email,
		Role:       actor.Role,
		Module:     models.ModuleDealerPCC,
		Action:     models.AuditActionCreate,
		EntityID:   submission.ID,
		EntityType: "pcc_submission",
		Details:    CreateDetails{ReferenceNumber: submission.ReferenceNumber},
		Notes:      "Created PCC submission " + submission.ReferenceNumber,
	})

	return s.GetByID(submission.ID)
}

// nextReferenceNumber allocates the next per-year sequence inside the
// caller's transaction. The in-place increment takes the row lock, so two
// concurrent creations can never hand out the same number.
func nextReferenceNumber(tx *gorm.DB, year int) (string, error) {
	res := tx.Model(&models.PCCReferenceSequence{}).
		Where("year = ?", year).
		Update("last_sequence", gorm.Expr("last_sequence + 1"))
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		seq := models.PCCReferenceSequence{Year: year, LastSequence: referenceSeqStart}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("PCC-IN-%d-%04d", year, seq.LastSequence), nil
	}
	var seq models.PCCReferenceSequence
	if err := tx.Where("year = ?", year).First(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("PCC-IN-%d-%04d", year, seq.LastSequence), nil
}

// applyConditionOverrides forces the fields a condition type fixes by
// definition, mirroring the submission form's behavior.
func (s *PCCService) applyConditionOverrides(input *PCCInput) {
	switch input.ConditionType {
	case models.ConditionWarrantyCases:
		input.WarrantyPeriod = models.WarrantyPeriodWithin
	case models.ConditionPostWarrantyCases:
		input.WarrantyPeriod = models.WarrantyPeriodBeyond
	case models.ConditionBreakdownCases:
		input.Breakdown = true
	case models.ConditionRepeatRepairs:
		input.RepeatedRepair = true
	}
}

func (s *PCCService) validate(input PCCInput) ValidationErrors {
	errs := ValidationErrors{}

	if input.Brand != models.BrandVolkswagen && input.Brand != models.BrandSkoda {
		errs["brand"] = "Brand is required"
	}
	if input.Model == "" {
		errs["model"] = "Model is required"
	}
	if input.VIN == "" {
		errs["vin"] = "VIN is required"
	} else if !utils.IsValidVIN(input.VIN) {
		errs["vin"] = "Invalid VIN format (17 alphanumeric characters)"
	}
	if input.RegistrationNo == "" {
		errs["registration_no"] = "Registration No is required"
	} else if !utils.IsValidRegistrationNo(input.RegistrationNo) {
		errs["registration_no"] = "Invalid registration format"
	}
	if input.ProductionDate.IsZero() {
		errs["production_date"] = "Production date is required"
	} else if !utils.IsDateInPast(input.ProductionDate) {
		errs["production_date"] = "Production date must be in the past"
	}

	if input.Subtopic == "" {
		errs["subtopic"] = "Subtopic is required"
	}

	if input.EngineCode == "" {
		errs["engine_code"] = "Engine code is required"
	}
	if input.GearboxCode == "" {
		errs["gearbox_code"] = "Gearbox code is required"
	}
	if input.Mileage <= 0 {
		errs["mileage"] = "Mileage must be a positive number"
	}
	if input.RepairDate.IsZero() {
		errs["repair_date"] = "Repair date is required"
	} else if !utils.IsDateNotFuture(input.RepairDate) {
		errs["repair_date"] = "Repair date cannot be in the future"
	}

	if input.DISSTicketNo != nil && *input.DISSTicketNo != "" && !utils.IsValidDISSTicket(*input.DISSTicketNo) {
		errs["diss_ticket_no"] = "DISS Ticket must be numeric"
	}
	if input.PartDescription == "" {
		errs["part_description"] = "Part description is required"
	}
	if input.DamagePartNumber == "" {
		errs["damage_part_number"] = "Damage part number is required"
	} else if !utils.IsValidPartNumber(input.DamagePartNumber) {
		errs["damage_part_number"] = "Part number can only contain letters and numbers"
	}

	if !input.DeclarationAccepted {
		errs["declaration_accepted"] = "You must accept the declaration"
	}

	s.validateCondition(input, errs)
	return errs
}

// validateCondition applies the acceptance thresholds of the qualifying
// category. Every category requires a fault code.
func (s *PCCService) validateCondition(input PCCInput, errs ValidationErrors) {
	if !models.IsValidConditionType(input.ConditionType) {
		errs["condition_type"] = "Condition type is required"
		return
	}
	if input.FaultCode == "" {
		errs["fault_code"] = "Fault code is required"
	}

	requireClaims := func(min int) {
		if input.NumberOfClaims < min {
			errs["number_of_claims"] = fmt.Sprintf("At least %d claims are required for this condition type", min)
		}
	}

	switch input.ConditionType {
	case models.ConditionWarrantyCases:
		requireClaims(5)
	case models.ConditionPostWarrantyCases:
		requireClaims(10)
	case models.ConditionAfterCountermeasure:
		requireClaims(3)
		if input.CountermeasureDate == nil {
			errs["countermeasure_date"] = "Countermeasure date is required"
		}
	case models.ConditionNewModelLaunch:
		requireClaims(3)
		if input.SaleDate == nil {
			errs["sale_date"] = "Sale date is required"
		} else if !input.RepairDate.IsZero() {
			window := input.SaleDate.AddDate(0, 3, 0)
			if input.RepairDate.Before(*input.SaleDate) || input.RepairDate.After(window) {
				errs["repair_date"] = "Repair date must fall within 3 months of the sale date"
			}
		}
	case models.ConditionBreakdownCases:
		requireClaims(3)
	case models.ConditionRepeatRepairs:
		if input.NumberOfRepairs < 2 {
			errs["number_of_repairs"] = "At least 2 repairs on the same VIN are required"
		}
	case models.ConditionTPIUnavailable:
		tpiZero := input.TPIResult != nil && *input.TPIResult == 0
		repairZero := input.RepairSuccess != nil && *input.RepairSuccess == 0
		if !tpiZero && !repairZero {
			errs["tpi_result"] = "TPI result or repair success must be 0"
		}
	}
}

// UpdateStatus appends a workflow step for a manufacturer-role actor.
// Unknown ids return ErrSubmissionNotFound and write no audit record.
func (s *PCCService) UpdateStatus(actor *models.User, id, newStatus, notes string) (*models.PCCSubmission, error) {
	if actor == nil {
		return nil, ErrAuthenticationRequired
	}
	if !actor.IsManufacturer() {
		return nil, ErrForbidden
	}
	if !models.IsValidStatus(newStatus) {
		return nil, ValidationErrors{"status": "Unknown status"}
	}
	if newStatus == models.StatusMoreInfoRequired && strings.TrimSpace(notes) == "" {
		return nil, ValidationErrors{"notes": "Notes are required when requesting more information"}
	}

	var submission models.PCCSubmission
	if err := s.db.Where("id = ?", id).First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, storageErr("submission load", err)
	}

	if s.opts.LockTerminalStatuses && models.IsTerminalStatus(submission.Status) {
		return nil, ValidationErrors{"status": "Submission is already " + submission.Status + " and locked"}
	}

	now := s.now()
	previousStatus := submission.Status
	err := s.db.Transaction(func(tx *gorm.DB) error {
		history := models.PCCStatusHistory{
			SubmissionID: submission.ID,
			Status:       newStatus,
			ChangedBy:    actor.ID,
			ChangedAt:    now,
		}
		if notes != "" {
			history.Notes = &notes
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		updates := map[string]any{
			"status":          newStatus,
			"updated_at":      now,
			"last_updated_by": actor.ID,
		}
		return tx.Model(&models.PCCSubmission{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, storageErr("status update", err)
	}

	auditNotes := notes
	if auditNotes == "" {
		auditNotes = "Status changed from " + previousStatus + " to " + newStatus
	}
	s.audit.Log(AuditEntry{
		UserID:     actor.ID,
		UserEmail:  actor.Email,
		Role:       actor.Role,
		Module:     models.ModuleDealerPCC,
		Action:     models.AuditActionStatusChange,
		EntityID:   submission.ID,
		EntityType: "pcc_submission",
		Details: StatusChangeDetails{
			PreviousStatus:  previousStatus,
			NewStatus:       newStatus,
			ReferenceNumber: submission.ReferenceNumber,
		},
		Notes: auditNotes,
	})

	return s.GetByID(id)
}

// GetByID loads one submission with its full history, oldest step first.
func (s *PCCService) GetByID(id string) (*models.PCCSubmission, error) {
	var submission models.PCCSubmission
	err := s.db.Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("changed_at ASC, id ASC")
	}).Where("id = ?", id).First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, storageErr("submission load", err)
	}
	return &submission, nil
}

// GetByReference looks a submission up by its human-facing reference number.
// The match is exact after uppercasing.
func (s *PCCService) GetByReference(ref string) (*models.PCCSubmission, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	var submission models.PCCSubmission
	err := s.db.Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("changed_at ASC, id ASC")
	}).Where("reference_number = ?", ref).First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, storageErr("submission load", err)
	}
	return &submission, nil
}

// GetByDealer lists a dealer's submissions, newest first.
func (s *PCCService) GetByDealer(dealerID string) ([]models.PCCSubmission, error) {
	var submissions []models.PCCSubmission
	err := s.db.Where("dealer_id = ?", dealerID).
		Order("created_at DESC").Find(&submissions).Error
	if err != nil {
		return nil, storageErr("submission list", err)
	}
	return submissions, nil
}

// GetAll lists every submission, newest first.
func (s *PCCService) GetAll() ([]models.PCCSubmission, error) {
	var submissions []models.PCCSubmission
	if err := s.db.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, storageErr("submission list", err)
	}
	return submissions, nil
}

// DashboardStats aggregates counts, approval rate, turnaround time, the five
// most recent submissions and the more-info queue. A dealer id narrows the
// population to that dealer.
func (s *PCCService) DashboardStats(dealerID string) (*DashboardStats, error) {
	query := s.db.Order("created_at DESC")
	if dealerID != "" {
		query = query.Where("dealer_id = ?", dealerID)
	}
	var submissions []models.PCCSubmission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, storageErr("submission list", err)
	}

	stats := &DashboardStats{
		ByStatus:   make(map[string]int, len(models.PCCStatuses)),
		BySubtopic: make(map[string]int, len(models.PCCSubtopics)),
	}
	for _, st := range models.PCCStatuses {
		stats.ByStatus[st] = 0
	}
	for _, sub := range models.PCCSubtopics {
		stats.BySubtopic[sub] = 0
	}

	var totalTAT float64
	var completed int
	for _, sub := range submissions {
		stats.ByStatus[sub.Status]++
		stats.BySubtopic[sub.Subtopic]++
		if models.IsTerminalStatus(sub.Status) {
			totalTAT += sub.UpdatedAt.Sub(sub.CreatedAt).Hours() / 24
			completed++
		}
		if sub.Status == models.StatusMoreInfoRequired {
			stats.MoreInfoQueue = append(stats.MoreInfoQueue, sub)
		}
	}

	stats.Total = len(submissions)
	if stats.Total > 0 {
		stats.ApprovalRate = float64(stats.ByStatus[models.StatusApproved]) / float64(stats.Total) * 100
	}
	if completed > 0 {
		stats.AverageTAT = totalTAT / float64(completed)
	}

	sort.SliceStable(submissions, func(i, j int) bool {
		return submissions[i].CreatedAt.After(submissions[j].CreatedAt)
	})
	if len(submissions) > 5 {
		stats.RecentSubmissions = submissions[:5]
	} else {
		stats.RecentSubmissions = submissions
	}

	return stats, nil
}
