package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TxIncome  TransactionType = "income"
	TxExpense TransactionType = "expense"
)

// Transaction is one income/expense entry in a kandang's ledger.
// CategoryName is denormalized at write time as a display cache; aggregation
// always prefers the live category record and this field is never
// auto-corrected on category rename.
type Transaction struct {
	BaseModel
	KandangID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"kandang_id" validate:"uuid_required"`
	Kandang      *Kandang        `gorm:"foreignKey:KandangID" json:"kandang,omitempty" validate:"-"`
	CategoryID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id" validate:"uuid_required"`
	Category     *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty" validate:"-"`
	CategoryName string          `gorm:"type:varchar(100)" json:"category_name"` // display cache
	CreatedByID  uuid.UUID       `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy    *User           `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty" validate:"-"`
	Amount       float64         `gorm:"not null" json:"amount" validate:"required,gt=0"` // amount harus > 0
	Type         TransactionType `gorm:"type:varchar(10);not null" json:"type" validate:"required,oneof=income expense"`
	Description  string          `gorm:"type:text" json:"description"`
	Date         time.Time       `gorm:"not null;index" json:"date"` // effective date, bukan created_at
}
