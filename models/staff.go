package models

import "time"

// StaffMember is a doula or admin on the agency roster.
type StaffMember struct {
	Id             uint      `json:"id" gorm:"primaryKey"`
	FirstName      string    `json:"first_name" gorm:"not null"`
	LastName       string    `json:"last_name" gorm:"not null"`
	Email          string    `json:"email" gorm:"unique;not null"`
	PhoneNumber    string    `json:"phone_number"`
	Certifications string    `json:"certifications"`
	HourlyRate     float64   `json:"hourly_rate" gorm:"type:numeric(12,2)"`
	OnCall         bool      `json:"on_call"`
	Active         bool      `json:"-" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
}
