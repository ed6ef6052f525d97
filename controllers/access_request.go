package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealer-portal-api/middleware"
	"dealer-portal-api/services"
)

type AccessRequestController struct {
	requests *services.AccessRequestService
}

func NewAccessRequestController(requests *services.AccessRequestService) *AccessRequestController {
	return &AccessRequestController{requests: requests}
}

// Submit files a dealer onboarding request. This is the one unauthenticated
// write endpoint in the portal.
func (ctl *AccessRequestController) Submit(c *gin.Context) {
	var input services.AccessRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := ctl.requests.Submit(input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"request": request,
		"message": "Access request submitted",
	})
}

// ListPending returns unprocessed requests, oldest first.
func (ctl *AccessRequestController) ListPending(c *gin.Context) {
	requests, err := ctl.requests.GetPending()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    len(requests),
	})
}

type ProcessAccessRequest struct {
	Notes string `json:"notes"`
}

// Approve creates a user for the request and mails credentials.
func (ctl *AccessRequestController) Approve(c *gin.Context) {
	var req ProcessAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ctl.requests.Approve(middleware.CurrentUser(c), c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"message": "Access request approved",
	})
}

// Reject closes the request without creating a user.
func (ctl *AccessRequestController) Reject(c *gin.Context) {
	var req ProcessAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctl.requests.Reject(middleware.CurrentUser(c), c.Param("id"), req.Notes); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Access request rejected"})
}
