package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealer-portal-api/middleware"
	"dealer-portal-api/models"
	"dealer-portal-api/services"
)

type SubmissionController struct {
	pcc *services.PCCService
}

func NewSubmissionController(pcc *services.PCCService) *SubmissionController {
	return &SubmissionController{pcc: pcc}
}

// Create files a new PCC submission for the session's dealer user.
func (ctl *SubmissionController) Create(c *gin.Context) {
	var input services.PCCInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	// Dealer identity comes from the session, not the payload.
	if user != nil && user.DealerID != nil {
		input.DealerID = *user.DealerID
	}

	submission, err := ctl.pcc.Create(user, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"submission": submission,
		"message":    "PCC submission created",
	})
}

// List returns submissions. Dealer users see their own dealer's
// submissions; manufacturer staff see everything.
func (ctl *SubmissionController) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var (
		submissions []models.PCCSubmission
		err         error
	)
	if user.IsDealer() && user.DealerID != nil {
		submissions, err = ctl.pcc.GetByDealer(*user.DealerID)
	} else {
		submissions, err = ctl.pcc.GetAll()
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// Get returns one submission by id, with its full status history.
func (ctl *SubmissionController) Get(c *gin.Context) {
	submission, err := ctl.pcc.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// GetByReference tracks a submission by its reference number.
func (ctl *SubmissionController) GetByReference(c *gin.Context) {
	submission, err := ctl.pcc.GetByReference(c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateStatus moves a submission through the review workflow.
func (ctl *SubmissionController) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := ctl.pcc.UpdateStatus(middleware.CurrentUser(c), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submission": submission,
		"message":    "Status updated",
	})
}
