package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dealer-portal-api/config"
	"dealer-portal-api/models"
	"dealer-portal-api/utils"
)

// ErrAccessRequestNotFound is returned for unknown access request ids.
var ErrAccessRequestNotFound = errors.New("access request not found")

// ErrAccessRequestProcessed is returned when approving or rejecting a
// request that is no longer pending.
var ErrAccessRequestProcessed = errors.New("access request already processed")

// AccessRequestInput is a dealer-side onboarding request, filed without a
// session.
type AccessRequestInput struct {
	DealerCode    string `json:"dealer_code"`
	DealerName    string `json:"dealer_name"`
	City          string `json:"city"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	RequestedRole string `json:"requested_role"`
	EmployeeID    string `json:"employee_id"`
}

// AccessRequestService takes onboarding requests and lets manufacturer
// staff approve or reject them.
type AccessRequestService struct {
	db    *gorm.DB
	audit *AuditService

	sendMail func(to []string, subject, html string) error
}

func NewAccessRequestService(db *gorm.DB, audit *AuditService) *AccessRequestService {
	return &AccessRequestService{db: db, audit: audit, sendMail: config.SendMail}
}

// Submit files a pending request after field validation.
func (s *AccessRequestService) Submit(input AccessRequestInput) (*models.AccessRequest, error) {
	errs := ValidationErrors{}
	if input.DealerCode == "" {
		errs["dealer_code"] = "Dealer code is required"
	}
	if input.DealerName == "" {
		errs["dealer_name"] = "Dealer name is required"
	}
	if input.ContactPerson == "" {
		errs["contact_person"] = "Contact person is required"
	}
	if !utils.ValidateEmail(input.Email) {
		errs["email"] = "Invalid email address"
	}
	if !models.IsDealerRole(input.RequestedRole) {
		errs["requested_role"] = "Requested role must be a dealer role"
	}
	if input.EmployeeID == "" {
		errs["employee_id"] = "Employee ID is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	request := &models.AccessRequest{
		DealerCode:    input.DealerCode,
		DealerName:    input.DealerName,
		City:          input.City,
		ContactPerson: input.ContactPerson,
		Email:         strings.ToLower(input.Email),
		Phone:         input.Phone,
		RequestedRole: input.RequestedRole,
		EmployeeID:    input.EmployeeID,
		Status:        models.AccessRequestPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.db.Create(request).Error; err != nil {
		return nil, storageErr("access request create", err)
	}
	return request, nil
}

// GetPending lists unprocessed requests, oldest first.
func (s *AccessRequestService) GetPending() ([]models.AccessRequest, error) {
	var requests []models.AccessRequest
	err := s.db.Where("status = ?", models.AccessRequestPending).
		Order("created_at ASC").Find(&requests).Error
	if err != nil {
		return nil, storageErr("access request list", err)
	}
	return requests, nil
}

// Approve creates an active user for the requested role with a temporary
// password, mails the credentials best-effort and audits the outcome.
func (s *AccessRequestService) Approve(actor *models.User, id, notes string) (*models.User, error) {
	request, err := s.takePending(actor, id)
	if err != nil {
		return nil, err
	}

	tempPassword, err := randomPassword()
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	dealerName := request.DealerName
	user := &models.User{
		Email:        request.Email,
		EmployeeID:   request.EmployeeID,
		Name:         request.ContactPerson,
		Role:         request.RequestedRole,
		DealerName:   &dealerName,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		updates := map[string]any{
			"status":       models.AccessRequestApproved,
			"processed_by": actor.ID,
			"processed_at": now,
		}
		if notes != "" {
			updates["notes"] = notes
		}
		return tx.Model(&models.AccessRequest{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, storageErr("access request approve", err)
	}

	body := fmt.Sprintf("<p>Your dealer portal access was approved.</p><p>Temporary password: <b>%s</b></p>", tempPassword)
	if err := s.sendMail([]string{request.Email}, "Dealer Portal access approved", body); err != nil {
		log.Printf("access request: failed to mail credentials to %s: %v", request.Email, err)
	}

	s.audit.Log(AuditEntry{
		UserID:     actor.ID,
		UserEmail:  actor.Email,
		Role:       actor.Role,
		Module:     models.AuditModuleSystem,
		Action:     models.AuditActionAccessRequest,
		EntityID:   request.ID,
		EntityType: "access_request",
		Details: AccessRequestDetails{
			RequestedRole: request.RequestedRole,
			Outcome:       models.AccessRequestApproved,
		},
		Notes: "Approved access request for " + request.Email,
	})

	return user, nil
}

// Reject closes a pending request without creating a user.
func (s *AccessRequestService) Reject(actor *models.User, id, notes string) error {
	request, err := s.takePending(actor, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":       models.AccessRequestRejected,
		"processed_by": actor.ID,
		"processed_at": now,
	}
	if notes != "" {
		updates["notes"] = notes
	}
	if err := s.db.Model(&models.AccessRequest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return storageErr("access request reject", err)
	}

	s.audit.Log(AuditEntry{
		UserID:     actor.ID,
		UserEmail:  actor.Email,
		Role:       actor.Role,
		Module:     models.AuditModuleSystem,
		Action:     models.AuditActionAccessRequest,
		EntityID:   request.ID,
		EntityType: "access_request",
		Details: AccessRequestDetails{
			RequestedRole: request.RequestedRole,
			Outcome:       models.AccessRequestRejected,
		},
		Notes: "Rejected access request for " + request.Email,
	})

	return nil
}

func (s *AccessRequestService) takePending(actor *models.User, id string) (*models.AccessRequest, error) {
	if actor == nil {
		return nil, ErrAuthenticationRequired
	}
	if !actor.IsManufacturer() {
		return nil, ErrForbidden
	}

	var request models.AccessRequest
	if err := s.db.Where("id = ?", id).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessRequestNotFound
		}
		return nil, storageErr("access request load", err)
	}
	if request.Status != models.AccessRequestPending {
		return nil, ErrAccessRequestProcessed
	}
	return &request, nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
