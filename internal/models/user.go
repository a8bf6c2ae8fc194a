// Package models contains the domain structs shared between the business
// logic and the storage layer, plus helper types for accepting data from
// JSON requests before validation.
package models

import "time"

// User represents a registered gym member.
type User struct {
	ID                int64     // Internal identifier
	FirstName         string    // Given name
	LastName          string    // Family name
	Email             string    // Unique e-mail address
	PhoneNumber       string    // Contact phone
	Gender            string    // Free-form gender field
	BirthDate         time.Time // Date of birth
	DocType           string    // Identity document type
	DocNumber         string    // Identity document number
	NIF               string    // Unique tax identification number
	Address           string    // Street address
	Address2          string    // Address complement (optional)
	Zipcode           string    // Postal code
	Country           string    // Country code
	City              string    // City name
	MembershipNumber  string    // Unique member number, YY + 4 digits
	PasswordHash      string    // bcrypt hash of the password
	StripeCustomerID  string    // Customer reference at the payment gateway
	Role              string    // Account role, member or admin
	ProfilePictureURL string    // Avatar location (optional)
	CreatedAt         time.Time // Registration timestamp
}

// UserSummary is the account payload returned after login, refresh and
// registration. MemberSince is pre-formatted for display.
type UserSummary struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	MemberSince       string `json:"memberSince"`
	MembershipNumber  string `json:"membershipNumber"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// DummyRegister carries the registration form. Dates arrive as strings so
// they can be validated and parsed manually.
type DummyRegister struct {
	FirstName   string `json:"fname" validate:"required,max=50"`
	LastName    string `json:"lname" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Gender      string `json:"gender" validate:"required"`
	BirthDate   string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	DocType     string `json:"docType" validate:"required"`
	DocNumber   string `json:"docNumber" validate:"required"`
	Password    string `json:"password" validate:"required,min=8,max=80"`
	NIF         string `json:"nif" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Address2    string `json:"address2" validate:"omitempty"`
	Zipcode     string `json:"zipcode" validate:"required"`
	Country     string `json:"country" validate:"required"`
	City        string `json:"city" validate:"required"`
	GymPlanID   int64  `json:"gymPlanId" validate:"required,gt=0"`
	EndDate     string `json:"signatureEndDate" validate:"omitempty,datetime=2006-01-02"`
}

// DummyLogin carries the login form.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
