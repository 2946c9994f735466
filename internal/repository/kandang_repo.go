package repository

import (
	"github.com/notbx57/peternakantelur/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KandangRepository interface {
	FindByID(id uuid.UUID) (*model.Kandang, error)
	FindWithMarket(id uuid.UUID) (*model.Kandang, error)
	FindByMarket(marketID uuid.UUID) ([]model.Kandang, error)
	Create(kandang *model.Kandang) error
	Update(kandang *model.Kandang) error
	Delete(id uuid.UUID) error

	FindInvestor(kandangID, userID uuid.UUID) (*model.KandangInvestor, error)
	FindInvestorsByKandang(kandangID uuid.UUID) ([]model.KandangInvestor, error)
	FindInvestmentsByUser(userID uuid.UUID) ([]model.KandangInvestor, error)
	HasInvestmentInMarket(marketID, userID uuid.UUID) (bool, error)
	DeleteInvestor(kandangID, userID uuid.UUID) error
	DeleteInvestorsByKandang(kandangID uuid.UUID) error
}

type kandangRepo struct {
	db *gorm.DB
}

func NewKandangRepo(db *gorm.DB) KandangRepository {
	return &kandangRepo{db}
}

func (r *kandangRepo) FindByID(id uuid.UUID) (*model.Kandang, error) {
	var kandang model.Kandang
	if err := r.db.First(&kandang, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &kandang, nil
}

func (r *kandangRepo) FindWithMarket(id uuid.UUID) (*model.Kandang, error) {
	var kandang model.Kandang
	if err := r.db.Preload("Market").First(&kandang, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &kandang, nil
}

func (r *kandangRepo) FindByMarket(marketID uuid.UUID) ([]model.Kandang, error) {
	var list []model.Kandang
	err := r.db.Where("market_id = ?", marketID).Find(&list).Error
	return list, err
}

func (r *kandangRepo) Create(kandang *model.Kandang) error {
	return r.db.Create(kandang).Error
}

func (r *kandangRepo) Update(kandang *model.Kandang) error {
	return r.db.Save(kandang).Error
}

func (r *kandangRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Kandang{}, "id = ?", id).Error
}

func (r *kandangRepo) FindInvestor(kandangID, userID uuid.UUID) (*model.KandangInvestor, error) {
	var investor model.KandangInvestor
	err := r.db.Where("kandang_id = ? AND user_id = ?", kandangID, userID).First(&investor).Error
	if err != nil {
		return nil, err
	}
	return &investor, nil
}

func (r *kandangRepo) FindInvestorsByKandang(kandangID uuid.UUID) ([]model.KandangInvestor, error) {
	var investors []model.KandangInvestor
	err := r.db.Preload("User").Where("kandang_id = ?", kandangID).Find(&investors).Error
	return investors, err
}

func (r *kandangRepo) FindInvestmentsByUser(userID uuid.UUID) ([]model.KandangInvestor, error) {
	var investments []model.KandangInvestor
	err := r.db.Preload("Kandang").Preload("Kandang.Market").Where("user_id = ?", userID).Find(&investments).Error
	return investments, err
}

// HasInvestmentInMarket checks investor status at market granularity:
// an investment in ANY kandang of the market counts.
func (r *kandangRepo) HasInvestmentInMarket(marketID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.KandangInvestor{}).
		Joins("JOIN kandangs ON kandangs.id = kandang_investors.kandang_id").
		Where("kandangs.market_id = ? AND kandang_investors.user_id = ?", marketID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *kandangRepo) DeleteInvestor(kandangID, userID uuid.UUID) error {
	return r.db.Where("kandang_id = ? AND user_id = ?", kandangID, userID).Delete(&model.KandangInvestor{}).Error
}

func (r *kandangRepo) DeleteInvestorsByKandang(kandangID uuid.UUID) error {
	return r.db.Where("kandang_id = ?", kandangID).Delete(&model.KandangInvestor{}).Error
}
