package service

import (
	"errors"

	"github.com/notbx57/peternakantelur/internal/apperror"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"
	"github.com/notbx57/peternakantelur/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateKandangRequest struct {
	MarketID    uuid.UUID `json:"market_id" validate:"uuid_required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Avatar      string    `json:"avatar"`
}

type UpdateKandangRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Avatar      *string `json:"avatar"`
	IsActive    *bool   `json:"is_active"`
}

// KandangView is a kandang annotated with its derived financials for listings.
type KandangView struct {
	model.Kandang
	KandangFinancials
}

// KandangDetailView is one kandang with its market and investor headline.
type KandangDetailView struct {
	model.Kandang
	InvestorCount   int     `json:"investor_count"`
	TotalInvestment float64 `json:"total_investment"`
}

type KandangService interface {
	Create(userID uuid.UUID, req *CreateKandangRequest) (uuid.UUID, error)
	Update(kandangID, userID uuid.UUID, req *UpdateKandangRequest) error
	Remove(kandangID, userID uuid.UUID) error
	GetByID(kandangID uuid.UUID) (*model.Kandang, error)
	GetWithMarket(kandangID uuid.UUID) (*KandangDetailView, error)
	ListByMarket(marketID uuid.UUID) ([]KandangView, error)
}

type kandangService struct {
	db          *gorm.DB
	kandangRepo repository.KandangRepository
	marketRepo  repository.MarketRepository
	ledger      LedgerService
}

func NewKandangService(db *gorm.DB, kandangRepo repository.KandangRepository, marketRepo repository.MarketRepository, ledger LedgerService) KandangService {
	return &kandangService{
		db:          db,
		kandangRepo: kandangRepo,
		marketRepo:  marketRepo,
		ledger:      ledger,
	}
}

// Create adds a kandang inside an active market. Only the market's head owner
// or a co-owner may create one.
func (s *kandangService) Create(userID uuid.UUID, req *CreateKandangRequest) (uuid.UUID, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return uuid.Nil, apperror.Validation("field '%s' failed on '%s'", errs[0].FailedField, errs[0].Tag)
	}

	kandang := &model.Kandang{
		MarketID:    req.MarketID,
		Name:        req.Name,
		Description: req.Description,
		Avatar:      req.Avatar,
		IsActive:    true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var market model.Market
		if err := tx.First(&market, "id = ?", req.MarketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("market not found")
			}
			return err
		}
		if !market.IsActive {
			return apperror.NotFound("market not found or inactive")
		}

		role, err := resolveMarketRole(tx, &market, userID)
		if err != nil {
			return err
		}
		if role != model.RoleHeadOwner && role != model.RoleCoOwner {
			return apperror.Unauthorized("only the head owner or a co-owner can create a kandang")
		}

		return tx.Create(kandang).Error
	})
	if err != nil {
		return uuid.Nil, err
	}

	return kandang.ID, nil
}

func (s *kandangService) Update(kandangID, userID uuid.UUID, req *UpdateKandangRequest) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var kandang model.Kandang
		if err := tx.First(&kandang, "id = ?", kandangID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("kandang not found")
			}
			return err
		}

		role, err := resolveKandangRole(tx, &kandang, userID)
		if err != nil {
			return err
		}
		if role != model.RoleHeadOwner && role != model.RoleCoOwner {
			return apperror.Unauthorized("only the head owner or a co-owner can edit this kandang")
		}

		if req.Name != nil {
			kandang.Name = *req.Name
		}
		if req.Description != nil {
			kandang.Description = *req.Description
		}
		if req.Avatar != nil {
			kandang.Avatar = *req.Avatar
		}
		if req.IsActive != nil {
			kandang.IsActive = *req.IsActive
		}

		return tx.Save(&kandang).Error
	})
}

// Remove deletes a kandang along with its investor rows.
func (s *kandangService) Remove(kandangID, userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var kandang model.Kandang
		if err := tx.First(&kandang, "id = ?", kandangID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("kandang not found")
			}
			return err
		}

		var market model.Market
		if err := tx.First(&market, "id = ?", kandang.MarketID).Error; err != nil {
			return err
		}
		if market.OwnerID != userID {
			return apperror.Unauthorized("only the head owner can delete this kandang")
		}

		if err := tx.Where("kandang_id = ?", kandangID).Delete(&model.KandangInvestor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&kandang).Error
	})
}

func (s *kandangService) GetByID(kandangID uuid.UUID) (*model.Kandang, error) {
	kandang, err := s.kandangRepo.FindByID(kandangID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("kandang not found")
		}
		return nil, err
	}
	return kandang, nil
}

func (s *kandangService) GetWithMarket(kandangID uuid.UUID) (*KandangDetailView, error) {
	kandang, err := s.kandangRepo.FindWithMarket(kandangID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("kandang not found")
		}
		return nil, err
	}

	investors, err := s.kandangRepo.FindInvestorsByKandang(kandangID)
	if err != nil {
		return nil, err
	}

	var totalInvestment float64
	for _, inv := range investors {
		totalInvestment += inv.InvestmentAmount
	}

	return &KandangDetailView{
		Kandang:         *kandang,
		InvestorCount:   len(investors),
		TotalInvestment: totalInvestment,
	}, nil
}

// ListByMarket returns every kandang of a market with its ROI figures, each
// recomputed from the live ledger.
func (s *kandangService) ListByMarket(marketID uuid.UUID) ([]KandangView, error) {
	kandangList, err := s.kandangRepo.FindByMarket(marketID)
	if err != nil {
		return nil, err
	}

	views := make([]KandangView, 0, len(kandangList))
	for _, k := range kandangList {
		fin, err := s.ledger.Financials(k.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, KandangView{Kandang: k, KandangFinancials: *fin})
	}

	return views, nil
}
