package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// InvestorRequest is one run of the onboarding state machine for a
// (user, kandang) pair: pending -> accepted | rejected.
// RespondedAt on a rejected request anchors the re-request cooldown.
type InvestorRequest struct {
	BaseModel
	KandangID      uuid.UUID     `gorm:"type:uuid;not null;index:idx_request_kandang_user" json:"kandang_id"`
	Kandang        *Kandang      `gorm:"foreignKey:KandangID" json:"kandang,omitempty"`
	UserID         uuid.UUID     `gorm:"type:uuid;not null;index:idx_request_kandang_user" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status         RequestStatus `gorm:"type:varchar(10);not null;index" json:"status"`
	NotificationID uuid.UUID     `gorm:"type:uuid" json:"notification_id"` // notifikasi ke head owner
	RespondedAt    *time.Time    `json:"responded_at,omitempty"`
}
