package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Salutation string

const (
	SalutationMr   Salutation = "mr"
	SalutationMrs  Salutation = "mrs"
	SalutationMiss Salutation = "miss"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type MaritalStatus string

const (
	MaritalStatusMarried   MaritalStatus = "married"
	MaritalStatusSingle    MaritalStatus = "single"
	MaritalStatusDivorced  MaritalStatus = "divorced"
	MaritalStatusWidowed   MaritalStatus = "widowed"
	MaritalStatusSeparated MaritalStatus = "separated"
	MaritalStatusUnknown   MaritalStatus = "unknown"
)

type IdentificationMeans string

const (
	IdentificationDriversLicense IdentificationMeans = "drivers_license"
	IdentificationNationalID     IdentificationMeans = "national_id"
	IdentificationPassport       IdentificationMeans = "passport"
)

type EmploymentStatus string

const (
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
	EmploymentRetired      EmploymentStatus = "retired"
	EmploymentStudent      EmploymentStatus = "student"
)

// Placeholder defaults a freshly registered profile carries until the customer
// fills in their real data. A profile still holding them counts as incomplete
// for fields the completeness check inspects.
var (
	DefaultBirthDate    = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	DefaultIDIssueDate  = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	DefaultIDExpiryDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
)

const (
	DefaultCountry     = "US"
	DefaultPhoneNumber = "+16048616603"
	DefaultPlace       = "Unknown"
)

type Profile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Title                 Salutation          `gorm:"size:5;not null;default:mr" json:"title"`
	Gender                Gender              `gorm:"size:8;not null;default:male" json:"gender"`
	DateOfBirth           time.Time           `gorm:"type:date;not null" json:"date_of_birth"`
	CountryOfBirth        string              `gorm:"size:2;not null;default:US" json:"country_of_birth"`
	PlaceOfBirth          string              `gorm:"size:50;not null;default:Unknown" json:"place_of_birth"`
	MaritalStatus         MaritalStatus       `gorm:"size:20;not null;default:unknown" json:"marital_status"`
	MeansOfIdentification IdentificationMeans `gorm:"size:20;not null;default:drivers_license" json:"means_of_identification"`
	IDIssueDate           time.Time           `gorm:"type:date;not null" json:"id_issue_date"`
	IDExpiryDate          time.Time           `gorm:"type:date;not null" json:"id_expiry_date"`
	PassportNumber        *string             `gorm:"size:20" json:"passport_number,omitempty"`
	Nationality           string              `gorm:"size:30;not null;default:Unknown" json:"nationality"`
	PhoneNumber           string              `gorm:"size:30;not null" json:"phone_number"`
	Address               string              `gorm:"size:100;not null;default:Unknown" json:"address"`
	City                  string              `gorm:"size:50;not null;default:Unknown" json:"city"`
	Country               string              `gorm:"size:2;not null;default:US" json:"country"`
	EmploymentStatus      EmploymentStatus    `gorm:"size:20;not null;default:self_employed" json:"employment_status"`
	EmployerName          *string             `gorm:"size:50" json:"employer_name,omitempty"`
	AnnualIncome          float64             `gorm:"type:numeric(15,2);not null;default:0" json:"annual_income"`
	DateOfEmployment      *time.Time          `gorm:"type:date" json:"date_of_employment,omitempty"`
	EmployerAddress       *string             `gorm:"size:100" json:"employer_address,omitempty"`
	EmployerCity          *string             `gorm:"size:50" json:"employer_city,omitempty"`
	EmployerState         *string             `gorm:"size:50" json:"employer_state,omitempty"`

	// Photo fields hold the storage public id; the matching *_url field holds
	// the resolved CDN URL. Both are written by the upload worker, never by
	// the update endpoint directly.
	Photo             *string `gorm:"size:255" json:"photo,omitempty"`
	PhotoURL          *string `gorm:"type:text" json:"photo_url,omitempty"`
	IDPhoto           *string `gorm:"size:255" json:"id_photo,omitempty"`
	IDPhotoURL        *string `gorm:"type:text" json:"id_photo_url,omitempty"`
	SignaturePhoto    *string `gorm:"size:255" json:"signature_photo,omitempty"`
	SignaturePhotoURL *string `gorm:"type:text" json:"signature_photo_url,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	NextOfKin []NextOfKin `gorm:"constraint:OnDelete:CASCADE" json:"next_of_kin,omitempty"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewDefaultProfile builds the placeholder profile created alongside a user at
// registration time.
func NewDefaultProfile(userID uuid.UUID) *Profile {
	return &Profile{
		UserID:                userID,
		Title:                 SalutationMr,
		Gender:                GenderMale,
		DateOfBirth:           DefaultBirthDate,
		CountryOfBirth:        DefaultCountry,
		PlaceOfBirth:          DefaultPlace,
		MaritalStatus:         MaritalStatusUnknown,
		MeansOfIdentification: IdentificationDriversLicense,
		IDIssueDate:           DefaultIDIssueDate,
		IDExpiryDate:          DefaultIDExpiryDate,
		Nationality:           DefaultPlace,
		PhoneNumber:           DefaultPhoneNumber,
		Address:               DefaultPlace,
		City:                  DefaultPlace,
		Country:               DefaultCountry,
		EmploymentStatus:      EmploymentSelfEmployed,
	}
}

// IsComplete reports whether every required field is filled in, all three
// photos are uploaded and at least one next of kin is on file.
func (p *Profile) IsComplete() bool {
	required := []string{
		string(p.Title),
		string(p.Gender),
		p.CountryOfBirth,
		p.PlaceOfBirth,
		string(p.MaritalStatus),
		string(p.MeansOfIdentification),
		p.Nationality,
		p.PhoneNumber,
		p.Address,
		p.City,
		p.Country,
		string(p.EmploymentStatus),
	}
	for _, field := range required {
		if field == "" {
			return false
		}
	}
	if p.DateOfBirth.IsZero() || p.IDIssueDate.IsZero() || p.IDExpiryDate.IsZero() {
		return false
	}
	if p.Photo == nil || p.IDPhoto == nil || p.SignaturePhoto == nil {
		return false
	}
	return len(p.NextOfKin) > 0
}

type NextOfKin struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`

	Title        Salutation `gorm:"size:5;not null;default:mr" json:"title"`
	FirstName    string     `gorm:"size:50;not null" json:"first_name"`
	LastName     string     `gorm:"size:50;not null" json:"last_name"`
	OtherNames   *string    `gorm:"size:50" json:"other_names,omitempty"`
	DateOfBirth  time.Time  `gorm:"type:date;not null" json:"date_of_birth"`
	Gender       Gender     `gorm:"size:8;not null;default:male" json:"gender"`
	Relationship string     `gorm:"size:50;not null" json:"relationship"`
	EmailAddress string     `gorm:"size:100;index;not null" json:"email_address"`
	PhoneNumber  string     `gorm:"size:30;not null" json:"phone_number"`
	Address      string     `gorm:"size:100;not null" json:"address"`
	City         string     `gorm:"size:50;not null" json:"city"`
	Country      string     `gorm:"size:2;not null" json:"country"`
	IsPrimary    bool       `gorm:"not null;default:false" json:"is_primary"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *NextOfKin) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
