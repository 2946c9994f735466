package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/notbx57/peternakantelur/internal/apperror"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"
	"github.com/notbx57/peternakantelur/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Max market yang boleh dimiliki satu user (dihitung dari owned rows,
// deactivate tidak membebaskan slot)
const maxOwnedMarkets = 2

var handleRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

// NormalizeHandle lowercases and strips a leading @ so @FooBar and foobar
// collide as the same handle.
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(handle)), "@")
}

func validateHandle(handle string) error {
	if len(handle) < 3 {
		return apperror.Validation("handle must be at least 3 characters")
	}
	if len(handle) > 30 {
		return apperror.Validation("handle must be at most 30 characters")
	}
	if !handleRegex.MatchString(handle) {
		return apperror.Validation("handle may only contain lowercase letters, numbers and underscores")
	}
	return nil
}

type CreateMarketRequest struct {
	Name        string `json:"name" validate:"required"`
	Handle      string `json:"handle" validate:"required"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

type UpdateMarketRequest struct {
	Name        *string `json:"name"`
	Handle      *string `json:"handle"`
	Description *string `json:"description"`
	Logo        *string `json:"logo"`
	IsActive    *bool   `json:"is_active"`
}

// MarketView is a market enriched with listing figures.
type MarketView struct {
	model.Market
	KandangCount    int     `json:"kandang_count"`
	Prediction      float64 `json:"prediction"` // ROI kandang terbaik
	BestKandangName string  `json:"best_kandang_name,omitempty"`
}

type HandleCheck struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type MarketCount struct {
	Count     int  `json:"count"`
	CanCreate bool `json:"can_create"`
}

type MarketService interface {
	CreateMarket(ownerID uuid.UUID, req *CreateMarketRequest) (uuid.UUID, error)
	UpdateMarket(marketID, userID uuid.UUID, req *UpdateMarketRequest) error
	DeleteMarket(marketID, userID uuid.UUID) error
	GetMarkets() ([]MarketView, error)
	GetMyMarkets(userID uuid.UUID) ([]model.Market, error)
	GetMarketByID(marketID uuid.UUID) (*MarketView, error)
	GetMarketByHandle(handle string) (*MarketView, error)
	CheckHandleAvailable(handle string) (*HandleCheck, error)
	GetMarketCount(userID uuid.UUID) (*MarketCount, error)
	AddCoOwner(marketID, userID, invitedBy uuid.UUID) (uuid.UUID, error)
	RemoveCoOwner(marketID, userID, removedBy uuid.UUID) error
}

type marketService struct {
	db          *gorm.DB
	marketRepo  repository.MarketRepository
	kandangRepo repository.KandangRepository
	userRepo    repository.UserRepository
	ledger      LedgerService
}

func NewMarketService(db *gorm.DB, marketRepo repository.MarketRepository, kandangRepo repository.KandangRepository, userRepo repository.UserRepository, ledger LedgerService) MarketService {
	return &marketService{
		db:          db,
		marketRepo:  marketRepo,
		kandangRepo: kandangRepo,
		userRepo:    userRepo,
		ledger:      ledger,
	}
}

// CreateMarket creates a market owned by ownerID. The quota and handle checks
// run inside the same transaction as the insert so concurrent creations
// cannot both slip past them.
func (s *marketService) CreateMarket(ownerID uuid.UUID, req *CreateMarketRequest) (uuid.UUID, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return uuid.Nil, apperror.Validation("field '%s' failed on '%s'", errs[0].FailedField, errs[0].Tag)
	}

	handle := NormalizeHandle(req.Handle)
	if err := validateHandle(handle); err != nil {
		return uuid.Nil, err
	}

	market := &model.Market{
		Name:        req.Name,
		Handle:      handle,
		Description: req.Description,
		Logo:        req.Logo,
		OwnerID:     ownerID,
		IsActive:    true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&model.Market{}).Where("owner_id = ?", ownerID).Count(&owned).Error; err != nil {
			return err
		}
		if owned >= maxOwnedMarkets {
			return apperror.QuotaExceeded("you already own %d markets, the maximum per user", maxOwnedMarkets)
		}

		var existing model.Market
		err := tx.Where("handle = ?", handle).First(&existing).Error
		if err == nil {
			return apperror.Conflict("handle @%s is already taken", handle)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(market).Error
	})
	if err != nil {
		return uuid.Nil, err
	}

	return market.ID, nil
}

func (s *marketService) UpdateMarket(marketID, userID uuid.UUID, req *UpdateMarketRequest) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var market model.Market
		if err := tx.First(&market, "id = ?", marketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("market not found")
			}
			return err
		}

		role, err := resolveMarketRole(tx, &market, userID)
		if err != nil {
			return err
		}
		if role != model.RoleHeadOwner && role != model.RoleCoOwner {
			return apperror.Unauthorized("only the head owner or a co-owner can edit this market")
		}

		if req.Name != nil {
			market.Name = *req.Name
		}
		if req.Description != nil {
			market.Description = *req.Description
		}
		if req.Logo != nil {
			market.Logo = *req.Logo
		}
		if req.IsActive != nil {
			market.IsActive = *req.IsActive
		}

		if req.Handle != nil {
			handle := NormalizeHandle(*req.Handle)
			if handle != market.Handle {
				if err := validateHandle(handle); err != nil {
					return err
				}
				var existing model.Market
				err := tx.Where("handle = ? AND id <> ?", handle, marketID).First(&existing).Error
				if err == nil {
					return apperror.Conflict("handle @%s is already taken", handle)
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				market.Handle = handle
			}
		}

		return tx.Save(&market).Error
	})
}

// DeleteMarket soft-deletes: markets are never hard-deleted, only flagged
// inactive.
func (s *marketService) DeleteMarket(marketID, userID uuid.UUID) error {
	market, err := s.marketRepo.FindByID(marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("market not found")
		}
		return err
	}

	if market.OwnerID != userID {
		return apperror.Unauthorized("only the head owner can delete this market")
	}

	market.IsActive = false
	return s.marketRepo.Update(market)
}

// GetMarkets lists active markets annotated with kandang count and the best
// kandang's ROI as the listing's headline prediction.
func (s *marketService) GetMarkets() ([]MarketView, error) {
	markets, err := s.marketRepo.FindActive()
	if err != nil {
		return nil, err
	}

	views := make([]MarketView, 0, len(markets))
	for _, market := range markets {
		kandangList, err := s.kandangRepo.FindByMarket(market.ID)
		if err != nil {
			return nil, err
		}

		bestROI := 0.0
		bestName := ""
		for _, k := range kandangList {
			fin, err := s.ledger.Financials(k.ID)
			if err != nil {
				return nil, err
			}
			if fin.ROI > bestROI || bestName == "" {
				bestROI = fin.ROI
				bestName = k.Name
			}
		}

		views = append(views, MarketView{
			Market:          market,
			KandangCount:    len(kandangList),
			Prediction:      bestROI,
			BestKandangName: bestName,
		})
	}

	return views, nil
}

// GetMyMarkets returns markets the user heads plus active markets the user
// co-owns.
func (s *marketService) GetMyMarkets(userID uuid.UUID) ([]model.Market, error) {
	owned, err := s.marketRepo.FindByOwner(userID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.marketRepo.FindMembershipsByUser(userID)
	if err != nil {
		return nil, err
	}

	result := owned
	for _, m := range memberships {
		if m.Role != model.RoleCoOwner || m.Market == nil {
			continue
		}
		if m.Market.IsActive {
			result = append(result, *m.Market)
		}
	}

	return result, nil
}

func (s *marketService) marketView(market *model.Market) (*MarketView, error) {
	kandangList, err := s.kandangRepo.FindByMarket(market.ID)
	if err != nil {
		return nil, err
	}
	return &MarketView{
		Market:       *market,
		KandangCount: len(kandangList),
	}, nil
}

func (s *marketService) GetMarketByID(marketID uuid.UUID) (*MarketView, error) {
	market, err := s.marketRepo.FindByID(marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("market not found")
		}
		return nil, err
	}
	return s.marketView(market)
}

func (s *marketService) GetMarketByHandle(handle string) (*MarketView, error) {
	market, err := s.marketRepo.FindByHandle(NormalizeHandle(handle))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("market not found")
		}
		return nil, err
	}
	return s.marketView(market)
}

func (s *marketService) CheckHandleAvailable(handle string) (*HandleCheck, error) {
	normalized := NormalizeHandle(handle)
	if err := validateHandle(normalized); err != nil {
		return &HandleCheck{Available: false, Message: err.Error()}, nil
	}

	_, err := s.marketRepo.FindByHandle(normalized)
	if err == nil {
		return &HandleCheck{Available: false, Message: fmt.Sprintf("handle @%s is already taken", normalized)}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &HandleCheck{Available: true, Message: fmt.Sprintf("handle @%s is available", normalized)}, nil
}

func (s *marketService) GetMarketCount(userID uuid.UUID) (*MarketCount, error) {
	owned, err := s.marketRepo.CountOwnedBy(userID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.marketRepo.FindMembershipsByUser(userID)
	if err != nil {
		return nil, err
	}
	coOwned := 0
	for _, m := range memberships {
		if m.Role == model.RoleCoOwner {
			coOwned++
		}
	}

	return &MarketCount{
		Count:     int(owned) + coOwned,
		CanCreate: owned < maxOwnedMarkets,
	}, nil
}

// AddCoOwner invites a user straight into co-ownership. Only the head owner
// can invite.
func (s *marketService) AddCoOwner(marketID, userID, invitedBy uuid.UUID) (uuid.UUID, error) {
	var memberID uuid.UUID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var market model.Market
		if err := tx.First(&market, "id = ?", marketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("market not found")
			}
			return err
		}

		if market.OwnerID != invitedBy {
			return apperror.Unauthorized("only the head owner can invite members")
		}
		if userID == invitedBy {
			return apperror.Validation("you cannot invite yourself")
		}

		var user model.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("user not found")
			}
			return err
		}

		var existing model.MarketMember
		err := tx.Where("market_id = ? AND user_id = ?", marketID, userID).First(&existing).Error
		if err == nil {
			return apperror.Conflict("user is already a co-owner of this market")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		member := &model.MarketMember{
			MarketID: marketID,
			UserID:   userID,
			Role:     model.RoleCoOwner,
			AddedAt:  time.Now(),
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		memberID = member.ID
		return nil
	})

	return memberID, err
}

func (s *marketService) RemoveCoOwner(marketID, userID, removedBy uuid.UUID) error {
	market, err := s.marketRepo.FindByID(marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("market not found")
		}
		return err
	}

	if market.OwnerID != removedBy {
		return apperror.Unauthorized("only the head owner can remove members")
	}

	if _, err := s.marketRepo.FindMember(marketID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user is not a co-owner of this market")
		}
		return err
	}

	return s.marketRepo.RemoveMember(marketID, userID)
}
