package repository

import (
	"github.com/notbx57/peternakantelur/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindAll() ([]model.Category, error)
	FindByType(txType model.TransactionType) ([]model.Category, error)
	FindByID(id uuid.UUID) (*model.Category, error)
	FindByName(name string) (*model.Category, error)
	Create(category *model.Category) error
	SeedDefaults() error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) FindAll() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) FindByType(txType model.TransactionType) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Where("type = ?", txType).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) FindByID(id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) FindByName(name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

// SeedDefaults inserts the default category set once. Kalo udah ada, skip.
func (r *categoryRepo) SeedDefaults() error {
	var count int64
	if err := r.db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	categories := make([]model.Category, len(model.DefaultCategories))
	copy(categories, model.DefaultCategories)
	return r.db.Create(&categories).Error
}
