package dto

import (
	"io"
	"time"

	"github.com/nextgenbank/onboarding-api/internal/model"
)

// DateLayout is the wire format for date-only fields.
const DateLayout = "2006-01-02"

// UpdateProfileInput accepts partial or full payloads; nil pointers leave the
// stored value untouched. Email and username are deliberately absent: user
// identity is immutable through this path.
type UpdateProfileInput struct {
	FirstName  *string `json:"first_name" form:"first_name"`
	MiddleName *string `json:"middle_name" form:"middle_name"`
	LastName   *string `json:"last_name" form:"last_name"`

	Title                 *string  `json:"title" form:"title"`
	Gender                *string  `json:"gender" form:"gender"`
	DateOfBirth           *string  `json:"date_of_birth" form:"date_of_birth"`
	CountryOfBirth        *string  `json:"country_of_birth" form:"country_of_birth"`
	PlaceOfBirth          *string  `json:"place_of_birth" form:"place_of_birth"`
	MaritalStatus         *string  `json:"marital_status" form:"marital_status"`
	MeansOfIdentification *string  `json:"means_of_identification" form:"means_of_identification"`
	IDIssueDate           *string  `json:"id_issue_date" form:"id_issue_date"`
	IDExpiryDate          *string  `json:"id_expiry_date" form:"id_expiry_date"`
	PassportNumber        *string  `json:"passport_number" form:"passport_number"`
	Nationality           *string  `json:"nationality" form:"nationality"`
	PhoneNumber           *string  `json:"phone_number" form:"phone_number"`
	Address               *string  `json:"address" form:"address"`
	City                  *string  `json:"city" form:"city"`
	Country               *string  `json:"country" form:"country"`
	EmploymentStatus      *string  `json:"employment_status" form:"employment_status"`
	EmployerName          *string  `json:"employer_name" form:"employer_name"`
	AnnualIncome          *float64 `json:"annual_income" form:"annual_income"`
	DateOfEmployment      *string  `json:"date_of_employment" form:"date_of_employment"`
	EmployerAddress       *string  `json:"employer_address" form:"employer_address"`
	EmployerCity          *string  `json:"employer_city" form:"employer_city"`
	EmployerState         *string  `json:"employer_state" form:"employer_state"`
}

// PhotoFile is an incoming image attached to a profile update.
type PhotoFile struct {
	Field    string
	FileName string
	Size     int64
	Reader   io.Reader
}

type ProfileResponse struct {
	model.Profile

	FirstName  string    `json:"first_name"`
	MiddleName *string   `json:"middle_name,omitempty"`
	LastName   string    `json:"last_name"`
	FullName   string    `json:"full_name"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IDNo       int64     `json:"id_no"`
	DateJoined time.Time `json:"date_joined"`

	IsComplete bool  `json:"is_complete"`
	ViewCount  int64 `json:"view_count"`
}

type ProfileListItem struct {
	FullName       string  `json:"full_name"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Gender         string  `json:"gender"`
	Nationality    string  `json:"nationality"`
	CountryOfBirth string  `json:"country_of_birth"`
	PhoneNumber    string  `json:"phone_number"`
	PhotoURL       *string `json:"photo_url,omitempty"`
}

type ProfileListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type NextOfKinInput struct {
	Title        *string `json:"title" binding:"omitempty,oneof=mr mrs miss"`
	FirstName    *string `json:"first_name" binding:"omitempty,max=50"`
	LastName     *string `json:"last_name" binding:"omitempty,max=50"`
	OtherNames   *string `json:"other_names" binding:"omitempty,max=50"`
	DateOfBirth  *string `json:"date_of_birth"`
	Gender       *string `json:"gender" binding:"omitempty,oneof=male female"`
	Relationship *string `json:"relationship" binding:"omitempty,max=50"`
	EmailAddress *string `json:"email_address" binding:"omitempty,email"`
	PhoneNumber  *string `json:"phone_number" binding:"omitempty,max=30"`
	Address      *string `json:"address" binding:"omitempty,max=100"`
	City         *string `json:"city" binding:"omitempty,max=50"`
	Country      *string `json:"country" binding:"omitempty,len=2"`
	IsPrimary    *bool   `json:"is_primary"`
}
