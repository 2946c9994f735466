package repository

import (
	"github.com/notbx57/peternakantelur/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvestorRequestRepository interface {
	FindByID(id uuid.UUID) (*model.InvestorRequest, error)
	FindPending(kandangID, userID uuid.UUID) (*model.InvestorRequest, error)
	FindLatestRejected(kandangID, userID uuid.UUID) (*model.InvestorRequest, error)
	FindPendingByKandang(kandangID uuid.UUID) ([]model.InvestorRequest, error)
	Create(request *model.InvestorRequest) error
	Update(request *model.InvestorRequest) error
}

type investorRequestRepo struct {
	db *gorm.DB
}

func NewInvestorRequestRepo(db *gorm.DB) InvestorRequestRepository {
	return &investorRequestRepo{db}
}

func (r *investorRequestRepo) FindByID(id uuid.UUID) (*model.InvestorRequest, error) {
	var request model.InvestorRequest
	if err := r.db.First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *investorRequestRepo) FindPending(kandangID, userID uuid.UUID) (*model.InvestorRequest, error) {
	var request model.InvestorRequest
	err := r.db.Where("kandang_id = ? AND user_id = ? AND status = ?",
		kandangID, userID, model.RequestPending).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindLatestRejected returns the most recently responded rejection for the
// pair; its responded_at anchors the re-request cooldown.
func (r *investorRequestRepo) FindLatestRejected(kandangID, userID uuid.UUID) (*model.InvestorRequest, error) {
	var request model.InvestorRequest
	err := r.db.Where("kandang_id = ? AND user_id = ? AND status = ?",
		kandangID, userID, model.RequestRejected).
		Order("responded_at DESC").First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *investorRequestRepo) FindPendingByKandang(kandangID uuid.UUID) ([]model.InvestorRequest, error) {
	var requests []model.InvestorRequest
	err := r.db.Preload("User").
		Where("kandang_id = ? AND status = ?", kandangID, model.RequestPending).
		Order("created_at ASC").Find(&requests).Error
	return requests, err
}

func (r *investorRequestRepo) Create(request *model.InvestorRequest) error {
	return r.db.Create(request).Error
}

func (r *investorRequestRepo) Update(request *model.InvestorRequest) error {
	return r.db.Save(request).Error
}
