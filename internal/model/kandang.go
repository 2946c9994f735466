package model

import (
	"time"

	"github.com/google/uuid"
)

// Kandang is a single farm unit and the unit of financial tracking.
// It always belongs to exactly one market.
type Kandang struct {
	BaseModel
	MarketID    uuid.UUID `gorm:"type:uuid;not null;index" json:"market_id" validate:"uuid_required"`
	Market      *Market   `gorm:"foreignKey:MarketID" json:"market,omitempty" validate:"-"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Avatar      string    `gorm:"type:text" json:"avatar,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
}

// KandangInvestor tracks capital per (kandang, user) pair.
// Repeated investment INCREMENTS investment_amount on the existing row,
// it never creates a second row. This is the accumulation invariant the
// whole ledger leans on.
type KandangInvestor struct {
	BaseModel
	KandangID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_kandang_investor" json:"kandang_id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_kandang_investor" json:"user_id"`
	InvestmentAmount float64   `gorm:"not null;default:0" json:"investment_amount"`
	InvestedAt       time.Time `json:"invested_at"`
	Kandang          *Kandang  `gorm:"foreignKey:KandangID" json:"kandang,omitempty"`
	User             *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
