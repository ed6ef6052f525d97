package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dealer-side roles.
const (
	RoleMasterTechnician = "master_technician"
	RoleServiceManager   = "service_manager"
	RoleServiceHead      = "service_head"
	RoleWarrantyManager  = "warranty_manager"
)

// Manufacturer-side roles.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// DealerRoles lists every role a dealer-side user can hold.
var DealerRoles = []string{
	RoleMasterTechnician,
	RoleServiceManager,
	RoleServiceHead,
	RoleWarrantyManager,
}

// ManufacturerRoles lists every manufacturer-side role.
var ManufacturerRoles = []string{RoleAdmin, RoleSuperAdmin}

type User struct {
	ID           string     `gorm:"primaryKey;column:id;size:64" json:"id"`
	Email        string     `gorm:"column:email;unique" json:"email"`
	EmployeeID   string     `gorm:"column:employee_id" json:"employee_id"`
	Name         string     `gorm:"column:name" json:"name"`
	Role         string     `gorm:"column:role;size:32" json:"role"`
	DealerID     *string    `gorm:"column:dealer_id;size:64" json:"dealer_id,omitempty"`
	DealerName   *string    `gorm:"column:dealer_name" json:"dealer_name,omitempty"`
	PasswordHash string     `gorm:"column:password_hash" json:"-"`
	IsActive     bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
}

type Dealer struct {
	ID            string    `gorm:"primaryKey;column:id;size:64" json:"id"`
	Code          string    `gorm:"column:code;unique" json:"code"`
	Name          string    `gorm:"column:name" json:"name"`
	City          string    `gorm:"column:city" json:"city"`
	ContactPerson string    `gorm:"column:contact_person" json:"contact_person"`
	Email         string    `gorm:"column:email" json:"email"`
	Phone         string    `gorm:"column:phone" json:"phone"`
	IsActive      bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (d *Dealer) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

func (Dealer) TableName() string {
	return "dealers"
}

// IsDealerRole reports whether the role belongs to the dealer side of the network.
func IsDealerRole(role string) bool {
	for _, r := range DealerRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsManufacturerRole reports whether the role belongs to manufacturer staff.
func IsManufacturerRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// IsValidRole reports whether the role is one of the six portal roles.
func IsValidRole(role string) bool {
	return IsDealerRole(role) || IsManufacturerRole(role)
}

// IsDealer reports whether the user holds a dealer-side role.
func (u User) IsDealer() bool {
	return IsDealerRole(u.Role)
}

// IsManufacturer reports whether the user holds a manufacturer-side role.
func (u User) IsManufacturer() bool {
	return IsManufacturerRole(u.Role)
}
