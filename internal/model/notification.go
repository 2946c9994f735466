package model

import "github.com/google/uuid"

type NotificationType string

const (
	NotifInvestorRequest NotificationType = "investor_request"
	NotifRequestAccepted NotificationType = "request_accepted"
	NotifRequestRejected NotificationType = "request_rejected"
)

// Notification is a one-way message between users, scoped to a kandang.
// It carries NO workflow state: the investor onboarding state lives on
// InvestorRequest, so marking a notification read for UI reasons can never
// terminate a pending request.
type Notification struct {
	BaseModel
	FromUserID uuid.UUID        `gorm:"type:uuid;not null" json:"from_user_id"`
	FromUser   *User            `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUserID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"to_user_id"`
	ToUser     *User            `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
	KandangID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"kandang_id"`
	Kandang    *Kandang         `gorm:"foreignKey:KandangID" json:"kandang,omitempty"`
	Type       NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Message    string           `gorm:"type:text" json:"message"`
	IsRead     bool             `gorm:"default:false;index" json:"is_read"`
}
