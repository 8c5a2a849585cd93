package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer         Role = "customer"
	RoleAccountExecutive Role = "account_executive"
	RoleTeller           Role = "teller"
	RoleBranchManager    Role = "branch_manager"
)

// Can reports whether the role satisfies the required role. Staff roles never
// stand in for each other; only an exact match grants access.
func (r Role) Can(required Role) bool {
	return r == required
}

// IsStaff reports whether the role belongs to bank personnel rather than a customer.
func (r Role) IsStaff() bool {
	return r == RoleAccountExecutive || r == RoleTeller || r == RoleBranchManager
}

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusLocked AccountStatus = "locked"
)

type SecurityQuestion string

const (
	SecurityQuestionMaidenName      SecurityQuestion = "maiden_name"
	SecurityQuestionFavoriteColor   SecurityQuestion = "favorite_color"
	SecurityQuestionBirthCity       SecurityQuestion = "birth_city"
	SecurityQuestionChildhoodFriend SecurityQuestion = "childhood_friend"
)

type User struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Username         string           `gorm:"size:12;uniqueIndex;not null" json:"username"`
	Email            string           `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash     string           `gorm:"size:255;not null" json:"-"`
	FirstName        string           `gorm:"size:30;not null" json:"first_name"`
	MiddleName       *string          `gorm:"size:30" json:"middle_name,omitempty"`
	LastName         string           `gorm:"size:30;not null" json:"last_name"`
	IDNo             int64            `gorm:"uniqueIndex;not null" json:"id_no"`
	SecurityQuestion SecurityQuestion `gorm:"size:30;not null" json:"-"`
	SecurityAnswer   string           `gorm:"size:30;not null" json:"-"`
	Role             Role             `gorm:"size:20;not null;default:customer" json:"role"`
	AccountStatus    AccountStatus    `gorm:"size:10;not null;default:active" json:"account_status"`

	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LastFailedLogin     *time.Time `json:"-"`
	OTP                 string     `gorm:"size:6" json:"-"`
	OTPExpiryTime       *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Profile *Profile `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsLockedOut reports whether the account is still inside its lockout window.
// A locked account whose window has elapsed is NOT considered locked; callers
// are expected to reset the lockout fields and persist (see AuthService).
func (u *User) IsLockedOut(now time.Time, lockoutDuration time.Duration) bool {
	if u.AccountStatus != AccountStatusLocked {
		return false
	}
	if u.LastFailedLogin != nil && now.Sub(*u.LastFailedLogin) > lockoutDuration {
		return false
	}
	return true
}

// LockoutRemaining returns how long until the lockout window elapses.
func (u *User) LockoutRemaining(now time.Time, lockoutDuration time.Duration) time.Duration {
	if u.LastFailedLogin == nil {
		return lockoutDuration
	}
	remaining := lockoutDuration - now.Sub(*u.LastFailedLogin)
	if remaining < 0 {
		return 0
	}
	return remaining
}
