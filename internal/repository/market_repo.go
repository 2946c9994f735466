package repository

import (
	"github.com/notbx57/peternakantelur/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MarketRepository interface {
	FindByID(id uuid.UUID) (*model.Market, error)
	FindByHandle(handle string) (*model.Market, error)
	FindActive() ([]model.Market, error)
	FindByOwner(ownerID uuid.UUID) ([]model.Market, error)
	CountOwnedBy(ownerID uuid.UUID) (int64, error)
	Create(market *model.Market) error
	Update(market *model.Market) error

	FindMember(marketID, userID uuid.UUID) (*model.MarketMember, error)
	FindMembersByMarket(marketID uuid.UUID) ([]model.MarketMember, error)
	FindMembershipsByUser(userID uuid.UUID) ([]model.MarketMember, error)
	AddMember(member *model.MarketMember) error
	RemoveMember(marketID, userID uuid.UUID) error
}

type marketRepo struct {
	db *gorm.DB
}

func NewMarketRepo(db *gorm.DB) MarketRepository {
	return &marketRepo{db}
}

func (r *marketRepo) FindByID(id uuid.UUID) (*model.Market, error) {
	var market model.Market
	if err := r.db.Preload("Owner").First(&market, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &market, nil
}

// FindByHandle expects an already-normalized handle (lowercase, no @).
func (r *marketRepo) FindByHandle(handle string) (*model.Market, error) {
	var market model.Market
	if err := r.db.Preload("Owner").Where("handle = ?", handle).First(&market).Error; err != nil {
		return nil, err
	}
	return &market, nil
}

func (r *marketRepo) FindActive() ([]model.Market, error) {
	var markets []model.Market
	err := r.db.Preload("Owner").Where("is_active = ?", true).Order("created_at DESC").Find(&markets).Error
	return markets, err
}

func (r *marketRepo) FindByOwner(ownerID uuid.UUID) ([]model.Market, error) {
	var markets []model.Market
	err := r.db.Where("owner_id = ?", ownerID).Find(&markets).Error
	return markets, err
}

// CountOwnedBy counts every market row the user owns, active or not.
// Deactivating a market does not free a creation slot.
func (r *marketRepo) CountOwnedBy(ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Market{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

func (r *marketRepo) Create(market *model.Market) error {
	return r.db.Create(market).Error
}

func (r *marketRepo) Update(market *model.Market) error {
	return r.db.Save(market).Error
}

func (r *marketRepo) FindMember(marketID, userID uuid.UUID) (*model.MarketMember, error) {
	var member model.MarketMember
	err := r.db.Where("market_id = ? AND user_id = ?", marketID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *marketRepo) FindMembersByMarket(marketID uuid.UUID) ([]model.MarketMember, error) {
	var members []model.MarketMember
	err := r.db.Preload("User").Where("market_id = ?", marketID).Find(&members).Error
	return members, err
}

func (r *marketRepo) FindMembershipsByUser(userID uuid.UUID) ([]model.MarketMember, error) {
	var members []model.MarketMember
	err := r.db.Preload("Market").Where("user_id = ?", userID).Find(&members).Error
	return members, err
}

func (r *marketRepo) AddMember(member *model.MarketMember) error {
	return r.db.Create(member).Error
}

func (r *marketRepo) RemoveMember(marketID, userID uuid.UUID) error {
	return r.db.Where("market_id = ? AND user_id = ?", marketID, userID).Delete(&model.MarketMember{}).Error
}
