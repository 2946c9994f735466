package repository

import (
	"strings"
	"time"

	"github.com/notbx57/peternakantelur/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilter narrows a kandang's ledger listing.
type TransactionFilter struct {
	CategoryID *uuid.UUID
	Type       *model.TransactionType
	StartDate  *time.Time
	EndDate    *time.Time
	Search     string
	Limit      int
}

type TransactionRepository interface {
	FindByID(id uuid.UUID) (*model.Transaction, error)
	FindByKandang(kandangID uuid.UUID) ([]model.Transaction, error)
	List(kandangID uuid.UUID, filter TransactionFilter) ([]model.Transaction, error)
	Create(tx *model.Transaction) error
	Update(tx *model.Transaction) error
	Delete(id uuid.UUID) error
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	err := r.db.Preload("Category").Preload("CreatedBy").First(&tx, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindByKandang loads the FULL transaction set of a kandang with live
// categories. The ledger aggregator recomputes everything from this set on
// every read; no running totals are trusted.
func (r *transactionRepo) FindByKandang(kandangID uuid.UUID) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.Preload("Category").Where("kandang_id = ?", kandangID).Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) List(kandangID uuid.UUID, filter TransactionFilter) ([]model.Transaction, error) {
	query := r.db.Preload("Category").Preload("CreatedBy").
		Where("kandang_id = ?", kandangID).
		Order("date DESC")

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var transactions []model.Transaction
	err := query.Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) Create(tx *model.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *transactionRepo) Update(tx *model.Transaction) error {
	return r.db.Save(tx).Error
}

func (r *transactionRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Transaction{}, "id = ?", id).Error
}
