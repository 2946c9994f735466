package model

import (
	"time"

	"github.com/google/uuid"
)

// Market is the top-level tenant. Every kandang lives inside a market.
// OwnerID is the head owner (creator); co-owners live in market_members.
type Market struct {
	BaseModel
	Name        string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Handle      string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"handle"` // stored normalized: lowercase, no @
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Logo        string    `gorm:"type:text" json:"logo,omitempty"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
}

// MarketMember adalah co-owner di level market.
// Head owner tidak pernah masuk sini, dia sudah ada di markets.owner_id.
type MarketMember struct {
	BaseModel
	MarketID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_market_member" json:"market_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_market_member" json:"user_id"`
	Role     Role      `gorm:"type:varchar(20);not null" json:"role"` // always co_owner at market level
	AddedAt  time.Time `json:"added_at"`
	Market   *Market   `gorm:"foreignKey:MarketID" json:"market,omitempty"`
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
