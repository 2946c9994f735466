package service

import (
	"testing"
	"time"

	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with the full schema and
// the default category set.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Market{},
		&model.MarketMember{},
		&model.Kandang{},
		&model.KandangInvestor{},
		&model.Category{},
		&model.Transaction{},
		&model.Notification{},
		&model.InvestorRequest{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	if err := repository.NewCategoryRepo(db).SeedDefaults(); err != nil {
		t.Fatalf("Failed to seed categories: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		Email:        username + "@example.com",
		Username:     username,
		Name:         username,
		TokenVersion: uuid.New().String(),
	}
	if err := user.SetPassword("secret123"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func createTestMarket(t *testing.T, db *gorm.DB, ownerID uuid.UUID, handle string) *model.Market {
	t.Helper()

	market := &model.Market{
		Name:     "Market " + handle,
		Handle:   handle,
		OwnerID:  ownerID,
		IsActive: true,
	}
	if err := db.Create(market).Error; err != nil {
		t.Fatalf("Failed to create market %s: %v", handle, err)
	}
	return market
}

func createTestKandang(t *testing.T, db *gorm.DB, marketID uuid.UUID, name string) *model.Kandang {
	t.Helper()

	kandang := &model.Kandang{
		MarketID: marketID,
		Name:     name,
		IsActive: true,
	}
	if err := db.Create(kandang).Error; err != nil {
		t.Fatalf("Failed to create kandang %s: %v", name, err)
	}
	return kandang
}

func addTestCoOwner(t *testing.T, db *gorm.DB, marketID, userID uuid.UUID) {
	t.Helper()

	member := &model.MarketMember{
		MarketID: marketID,
		UserID:   userID,
		Role:     model.RoleCoOwner,
		AddedAt:  time.Now(),
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("Failed to add co-owner: %v", err)
	}
}

func addTestInvestor(t *testing.T, db *gorm.DB, kandangID, userID uuid.UUID, amount float64) {
	t.Helper()

	investor := &model.KandangInvestor{
		KandangID:        kandangID,
		UserID:           userID,
		InvestmentAmount: amount,
		InvestedAt:       time.Now(),
	}
	if err := db.Create(investor).Error; err != nil {
		t.Fatalf("Failed to add investor: %v", err)
	}
}

func addTestTransaction(t *testing.T, db *gorm.DB, kandangID, userID uuid.UUID, amount float64, txType model.TransactionType, date time.Time) {
	t.Helper()

	var category model.Category
	wantType := txType
	if err := db.Where("type = ?", wantType).First(&category).Error; err != nil {
		t.Fatalf("Failed to find %s category: %v", wantType, err)
	}

	entry := &model.Transaction{
		KandangID:    kandangID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		CreatedByID:  userID,
		Amount:       amount,
		Type:         txType,
		Date:         date,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}
}
