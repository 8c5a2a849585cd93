package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewDefaultProfile(t *testing.T) {
	userID := uuid.New()
	p := NewDefaultProfile(userID)

	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, DefaultBirthDate, p.DateOfBirth)
	assert.Equal(t, DefaultIDIssueDate, p.IDIssueDate)
	assert.Equal(t, DefaultIDExpiryDate, p.IDExpiryDate)
	assert.Equal(t, DefaultCountry, p.Country)
	assert.Equal(t, DefaultPhoneNumber, p.PhoneNumber)
	assert.Equal(t, DefaultPlace, p.City)
	assert.Equal(t, MaritalStatusUnknown, p.MaritalStatus)
}

func TestIsComplete(t *testing.T) {
	photo := "public-id"
	complete := func() *Profile {
		p := NewDefaultProfile(uuid.New())
		p.Photo = &photo
		p.IDPhoto = &photo
		p.SignaturePhoto = &photo
		p.NextOfKin = []NextOfKin{{FirstName: "John"}}
		return p
	}

	t.Run("fresh profile is incomplete", func(t *testing.T) {
		assert.False(t, NewDefaultProfile(uuid.New()).IsComplete())
	})

	t.Run("all fields, photos and a kin make it complete", func(t *testing.T) {
		assert.True(t, complete().IsComplete())
	})

	t.Run("a missing photo keeps it incomplete", func(t *testing.T) {
		p := complete()
		p.SignaturePhoto = nil
		assert.False(t, p.IsComplete())
	})

	t.Run("no next of kin keeps it incomplete", func(t *testing.T) {
		p := complete()
		p.NextOfKin = nil
		assert.False(t, p.IsComplete())
	})

	t.Run("an emptied required field keeps it incomplete", func(t *testing.T) {
		p := complete()
		p.PhoneNumber = ""
		assert.False(t, p.IsComplete())
	})
}
