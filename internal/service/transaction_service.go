package service

import (
	"errors"
	"time"

	"github.com/notbx57/peternakantelur/internal/apperror"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"
	"github.com/notbx57/peternakantelur/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateTransactionRequest struct {
	KandangID   uuid.UUID             `json:"kandang_id" validate:"uuid_required"`
	CategoryID  uuid.UUID             `json:"category_id" validate:"uuid_required"`
	Amount      float64               `json:"amount" validate:"required,gt=0"`
	Type        model.TransactionType `json:"type" validate:"required,oneof=income expense"`
	Description string                `json:"description"`
	Date        time.Time             `json:"date"`
}

type UpdateTransactionRequest struct {
	CategoryID  *uuid.UUID             `json:"category_id"`
	Amount      *float64               `json:"amount"`
	Type        *model.TransactionType `json:"type"`
	Description *string                `json:"description"`
	Date        *time.Time             `json:"date"`
}

type TransactionService interface {
	Create(userID uuid.UUID, req *CreateTransactionRequest) (uuid.UUID, error)
	Update(txID, userID uuid.UUID, req *UpdateTransactionRequest) error
	Delete(txID, userID uuid.UUID) error
	Get(txID uuid.UUID) (*model.Transaction, error)
	List(kandangID uuid.UUID, filter repository.TransactionFilter) ([]model.Transaction, error)
}

type transactionService struct {
	db     *gorm.DB
	txRepo repository.TransactionRepository
}

func NewTransactionService(db *gorm.DB, txRepo repository.TransactionRepository) TransactionService {
	return &transactionService{db: db, txRepo: txRepo}
}

// requireLedgerWriter gates ledger writes: only the head owner or a co-owner
// of the kandang's market may record or change entries.
func requireLedgerWriter(tx *gorm.DB, kandang *model.Kandang, userID uuid.UUID) error {
	role, err := resolveKandangRole(tx, kandang, userID)
	if err != nil {
		return err
	}
	if role != model.RoleHeadOwner && role != model.RoleCoOwner {
		return apperror.Unauthorized("only the head owner or a co-owner can record transactions")
	}
	return nil
}

// Create appends one ledger entry. The category's name is denormalized onto
// the row at write time as a display cache.
func (s *transactionService) Create(userID uuid.UUID, req *CreateTransactionRequest) (uuid.UUID, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return uuid.Nil, apperror.Validation("field '%s' failed on '%s'", errs[0].FailedField, errs[0].Tag)
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	entry := &model.Transaction{
		KandangID:   req.KandangID,
		CategoryID:  req.CategoryID,
		CreatedByID: userID,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Date:        date,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var kandang model.Kandang
		if err := tx.First(&kandang, "id = ?", req.KandangID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("kandang not found")
			}
			return err
		}

		if err := requireLedgerWriter(tx, &kandang, userID); err != nil {
			return err
		}

		var category model.Category
		if err := tx.First(&category, "id = ?", req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("category not found")
			}
			return err
		}
		entry.CategoryName = category.Name

		return tx.Create(entry).Error
	})
	if err != nil {
		return uuid.Nil, err
	}

	return entry.ID, nil
}

func (s *transactionService) Update(txID, userID uuid.UUID, req *UpdateTransactionRequest) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var entry model.Transaction
		if err := tx.First(&entry, "id = ?", txID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("transaction not found")
			}
			return err
		}

		var kandang model.Kandang
		if err := tx.First(&kandang, "id = ?", entry.KandangID).Error; err != nil {
			return err
		}
		if err := requireLedgerWriter(tx, &kandang, userID); err != nil {
			return err
		}

		if req.CategoryID != nil {
			var category model.Category
			if err := tx.First(&category, "id = ?", *req.CategoryID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.NotFound("category not found")
				}
				return err
			}
			entry.CategoryID = category.ID
			entry.CategoryName = category.Name
		}
		if req.Amount != nil {
			if *req.Amount <= 0 {
				return apperror.Validation("amount must be greater than zero")
			}
			entry.Amount = *req.Amount
		}
		if req.Type != nil {
			if *req.Type != model.TxIncome && *req.Type != model.TxExpense {
				return apperror.Validation("type must be income or expense")
			}
			entry.Type = *req.Type
		}
		if req.Description != nil {
			entry.Description = *req.Description
		}
		if req.Date != nil {
			entry.Date = *req.Date
		}

		return tx.Save(&entry).Error
	})
}

func (s *transactionService) Delete(txID, userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var entry model.Transaction
		if err := tx.First(&entry, "id = ?", txID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("transaction not found")
			}
			return err
		}

		var kandang model.Kandang
		if err := tx.First(&kandang, "id = ?", entry.KandangID).Error; err != nil {
			return err
		}
		if err := requireLedgerWriter(tx, &kandang, userID); err != nil {
			return err
		}

		return tx.Delete(&entry).Error
	})
}

func (s *transactionService) Get(txID uuid.UUID) (*model.Transaction, error) {
	entry, err := s.txRepo.FindByID(txID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("transaction not found")
		}
		return nil, err
	}
	return entry, nil
}

func (s *transactionService) List(kandangID uuid.UUID, filter repository.TransactionFilter) ([]model.Transaction, error) {
	return s.txRepo.List(kandangID, filter)
}
