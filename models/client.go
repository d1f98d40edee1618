package models

import "time"

// Client is a family that came through intake. PHI-adjacent fields live here
// on the primary instance; only billing projections get mirrored out.
type Client struct {
	Id               uint       `json:"id" gorm:"primaryKey"`
	FirstName        string     `json:"first_name" gorm:"not null"`
	LastName         string     `json:"last_name" gorm:"not null"`
	Email            string     `json:"email" gorm:"unique;not null"`
	PhoneNumber      string     `json:"phone_number"`
	Address          string     `json:"address"`
	City             string     `json:"city"`
	Zip              string     `json:"zip"`
	PartnerName      string     `json:"partner_name"`
	DueDate          *time.Time `json:"due_date"`
	Hospital         string     `json:"hospital"`
	ReferralSource   string     `json:"referral_source"`
	BirthPreferences string     `json:"birth_preferences" gorm:"type:text"`
	Active           bool       `json:"-" gorm:"default:true"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
