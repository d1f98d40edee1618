package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ContractDraft    = "draft"
	ContractSent     = "sent"
	ContractSigned   = "signed"
	ContractDeclined = "declined"
)

// Contract tracks one service agreement through the e-signature flow.
// Snapshot freezes the terms as sent; later edits create a new contract.
type Contract struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	ClientID       uint    `json:"-" gorm:"index"`
	Client         Client  `json:"client" gorm:"foreignKey:ClientID;references:Id"`
	ServicePackage string  `json:"service_package" gorm:"not null"`
	TotalFee       float64 `json:"total_fee" gorm:"type:numeric(12,2)"`

	Status     string         `json:"status" gorm:"type:VARCHAR(20);default:draft"`
	Provider   string         `json:"provider" gorm:"type:VARCHAR(20)"` // "signnow" | "docusign"
	EnvelopeID string         `json:"envelope_id" gorm:"index"`
	Snapshot   datatypes.JSON `json:"snapshot" gorm:"type:jsonb"`

	SentAt    *time.Time `json:"sent_at"`
	SignedAt  *time.Time `json:"signed_at"`
	CreatedAt time.Time  `json:"created_at"`
}
