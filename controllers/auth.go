package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealer-portal-api/middleware"
	"dealer-portal-api/services"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyOTPRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
	Code        string `json:"code" binding:"required,len=6"`
}

// Login handles user authentication. Elevated roles receive an OTP
// challenge id instead of a token.
func (ctl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ctl.auth.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.RequiresOTP {
		c.JSON(http.StatusOK, gin.H{
			"requires_otp": true,
			"challenge_id": result.ChallengeID,
			"message":      "OTP sent to registered email",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   result.Token,
		"user":    result.User,
		"message": "Login successful",
	})
}

// VerifyOTP completes an elevated-role login.
func (ctl *AuthController) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ctl.auth.VerifyOTP(req.ChallengeID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   result.Token,
		"user":    result.User,
		"message": "Login successful",
	})
}

// Logout ends the session for audit purposes.
func (ctl *AuthController) Logout(c *gin.Context) {
	if err := ctl.auth.Logout(middleware.CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile returns the current session user.
func (ctl *AuthController) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}
