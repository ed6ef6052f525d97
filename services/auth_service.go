package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dealer-portal-api/config"
	"dealer-portal-api/models"
)

const otpTTL = 5 * time.Minute

// Claims is the JWT payload carried by portal sessions.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult is the outcome of a successful credential check. Elevated
// roles get an OTP challenge instead of an immediate session.
type LoginResult struct {
	Token       string       `json:"token,omitempty"`
	User        *models.User `json:"user,omitempty"`
	RequiresOTP bool         `json:"requires_otp"`
	ChallengeID string       `json:"challenge_id,omitempty"`
}

// AuthService checks credentials, runs the second-factor step for elevated
// roles and issues JWT sessions.
type AuthService struct {
	db    *gorm.DB
	audit *AuditService

	// sendMail and now are swappable in tests.
	sendMail func(to []string, subject, html string) error
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, audit *AuditService) *AuthService {
	return &AuthService{
		db:       db,
		audit:    audit,
		sendMail: config.SendMail,
		now:      time.Now,
	}
}

// Login verifies credentials. Dealer roles get a session immediately;
// admin and super_admin get a mailed OTP challenge and no token yet.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr("user load", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if user.IsManufacturer() {
		challenge, err := s.issueChallenge(&user)
		if err != nil {
			return nil, err
		}
		return &LoginResult{RequiresOTP: true, ChallengeID: challenge.ID}, nil
	}

	return s.openSession(&user, "User logged in successfully")
}

// VerifyOTP completes an elevated-role login. Challenges are single use and
// expire after five minutes.
func (s *AuthService) VerifyOTP(challengeID, code string) (*LoginResult, error) {
	var challenge models.OTPChallenge
	if err := s.db.Where("id = ?", challengeID).First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPInvalid
		}
		return nil, storageErr("otp load", err)
	}

	now := s.now()
	if challenge.Consumed() || challenge.Expired(now) || challenge.Code != code {
		return nil, ErrOTPInvalid
	}

	if err := s.db.Model(&models.OTPChallenge{}).
		Where("id = ?", challenge.ID).
		Update("consumed_at", now).Error; err != nil {
		return nil, storageErr("otp consume", err)
	}

	var user models.User
	if err := s.db.Where("id = ?", challenge.UserID).First(&user).Error; err != nil {
		return nil, storageErr("user load", err)
	}

	return s.openSession(&user, "User logged in with OTP verification")
}

// Logout records the end of a session. Tokens are stateless, so the audit
// record is the only state change.
func (s *AuthService) Logout(actor *models.User) error {
	if actor == nil {
		return ErrAuthenticationRequired
	}
	s.audit.Log(AuditEntry{
		UserID:    actor.ID,
		UserEmail: actor.Email,
		Role:      actor.Role,
		Module:    models.AuditModuleAuth,
		Action:    models.AuditActionLogout,
		Notes:     "User logged out",
	})
	return nil
}

func (s *AuthService) openSession(user *models.User, auditNotes string) (*LoginResult, error) {
	token, err := GenerateToken(user, s.now())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := s.now()
	if err := s.db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("last_login_at", now).Error; err != nil {
		return nil, storageErr("last login update", err)
	}
	user.LastLoginAt = &now

	s.audit.Log(AuditEntry{
		UserID:    user.ID,
		UserEmail: user.Email,
		Role:      user.Role,
		Module:    models.AuditModuleAuth,
		Action:    models.AuditActionLogin,
		Notes:     auditNotes,
	})

	return &LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) issueChallenge(user *models.User) (*models.OTPChallenge, error) {
	code, err := randomOTP()
	if err != nil {
		return nil, err
	}
	challenge := &models.OTPChallenge{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: s.now().Add(otpTTL),
		CreatedAt: s.now(),
	}
	if err := s.db.Create(challenge).Error; err != nil {
		return nil, storageErr("otp create", err)
	}

	body := fmt.Sprintf("<p>Your dealer portal verification code is <b>%s</b>. It expires in 5 minutes.</p>", code)
	if err := s.sendMail([]string{user.Email}, "Dealer Portal verification code", body); err != nil {
		return nil, fmt.Errorf("send otp mail: %w", err)
	}
	return challenge, nil
}

func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateToken signs a session JWT for the user. Expiry defaults to 24
// hours, overridable via JWT_EXPIRE_HOURS.
func GenerateToken(user *models.User, issuedAt time.Time) (string, error) {
	expireHours, err := strconv.Atoi(os.Getenv("JWT_EXPIRE_HOURS"))
	if err != nil || expireHours <= 0 {
		expireHours = 24
	}

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Duration(expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
