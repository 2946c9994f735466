package service

import (
	"testing"
	"time"

	"github.com/notbx57/peternakantelur/internal/apperror"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTransactionService(db *gorm.DB) TransactionService {
	return NewTransactionService(db, repository.NewTransactionRepo(db))
}

func incomeCategory(t *testing.T, db *gorm.DB) *model.Category {
	t.Helper()
	var category model.Category
	if err := db.Where("name = ?", "Penjualan Telur").First(&category).Error; err != nil {
		t.Fatalf("seed category missing: %v", err)
	}
	return &category
}

func TestCreateTransactionDenormalizesCategoryName(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionService(db)

	owner := createTestUser(t, db, "owner")
	market := createTestMarket(t, db, owner.ID, "txcreate")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")
	category := incomeCategory(t, db)

	txID, err := svc.Create(owner.ID, &CreateTransactionRequest{
		KandangID:   kandang.ID,
		CategoryID:  category.ID,
		Amount:      250,
		Type:        model.TxIncome,
		Description: "Penjualan telur hari ini",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var entry model.Transaction
	db.First(&entry, "id = ?", txID)
	if entry.CategoryName != category.Name {
		t.Errorf("category name = %q, want %q", entry.CategoryName, category.Name)
	}
	if entry.Date.IsZero() {
		t.Error("effective date not defaulted")
	}
	if entry.CreatedByID != owner.ID {
		t.Errorf("created by = %s, want %s", entry.CreatedByID, owner.ID)
	}
}

func TestCreateTransactionWriterGate(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionService(db)

	owner := createTestUser(t, db, "owner")
	coOwner := createTestUser(t, db, "coowner")
	investor := createTestUser(t, db, "investor")
	stranger := createTestUser(t, db, "stranger")
	market := createTestMarket(t, db, owner.ID, "txgate")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")
	addTestCoOwner(t, db, market.ID, coOwner.ID)
	addTestInvestor(t, db, kandang.ID, investor.ID, 100)
	category := incomeCategory(t, db)

	req := func() *CreateTransactionRequest {
		return &CreateTransactionRequest{
			KandangID:  kandang.ID,
			CategoryID: category.ID,
			Amount:     100,
			Type:       model.TxIncome,
		}
	}

	if _, err := svc.Create(owner.ID, req()); err != nil {
		t.Errorf("owner create failed: %v", err)
	}
	if _, err := svc.Create(coOwner.ID, req()); err != nil {
		t.Errorf("co-owner create failed: %v", err)
	}

	// Investors read the ledger but never write it
	if _, err := svc.Create(investor.ID, req()); !apperror.IsKind(err, apperror.KindUnauthorized) {
		t.Errorf("investor create: got %v, want unauthorized", err)
	}
	if _, err := svc.Create(stranger.ID, req()); !apperror.IsKind(err, apperror.KindUnauthorized) {
		t.Errorf("stranger create: got %v, want unauthorized", err)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionService(db)

	owner := createTestUser(t, db, "owner")
	market := createTestMarket(t, db, owner.ID, "txvalid")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")
	category := incomeCategory(t, db)

	// Zero amount
	_, err := svc.Create(owner.ID, &CreateTransactionRequest{
		KandangID:  kandang.ID,
		CategoryID: category.ID,
		Amount:     0,
		Type:       model.TxIncome,
	})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("zero amount: got %v, want validation error", err)
	}

	// Unknown category
	_, err = svc.Create(owner.ID, &CreateTransactionRequest{
		KandangID:  kandang.ID,
		CategoryID: uuid.New(),
		Amount:     100,
		Type:       model.TxIncome,
	})
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("unknown category: got %v, want not_found", err)
	}
}

func TestUpdateTransaction(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionService(db)

	owner := createTestUser(t, db, "owner")
	market := createTestMarket(t, db, owner.ID, "txupdate")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")
	category := incomeCategory(t, db)

	txID, err := svc.Create(owner.ID, &CreateTransactionRequest{
		KandangID:  kandang.ID,
		CategoryID: category.ID,
		Amount:     100,
		Type:       model.TxIncome,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var pakan model.Category
	if err := db.Where("name = ?", "Pakan").First(&pakan).Error; err != nil {
		t.Fatalf("seed category missing: %v", err)
	}

	newAmount := 175.0
	newType := model.TxExpense
	if err := svc.Update(txID, owner.ID, &UpdateTransactionRequest{
		CategoryID: &pakan.ID,
		Amount:     &newAmount,
		Type:       &newType,
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var entry model.Transaction
	db.First(&entry, "id = ?", txID)
	if entry.Amount != 175 || entry.Type != model.TxExpense {
		t.Errorf("entry = amount %v type %q, want 175 expense", entry.Amount, entry.Type)
	}
	// Category swap refreshes the denormalized name
	if entry.CategoryName != "Pakan" {
		t.Errorf("category name = %q, want Pakan", entry.CategoryName)
	}

	badAmount := -5.0
	if err := svc.Update(txID, owner.ID, &UpdateTransactionRequest{Amount: &badAmount}); !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("negative amount: got %v, want validation error", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionService(db)

	owner := createTestUser(t, db, "owner")
	stranger := createTestUser(t, db, "stranger")
	market := createTestMarket(t, db, owner.ID, "txdelete")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")
	category := incomeCategory(t, db)

	txID, err := svc.Create(owner.ID, &CreateTransactionRequest{
		KandangID:  kandang.ID,
		CategoryID: category.ID,
		Amount:     100,
		Type:       model.TxIncome,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(txID, stranger.ID); !apperror.IsKind(err, apperror.KindUnauthorized) {
		t.Errorf("stranger delete: got %v, want unauthorized", err)
	}

	if err := svc.Delete(txID, owner.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(txID); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("get after delete: got %v, want not_found", err)
	}
}

func TestListTransactionFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := newTransactionService(db)

	owner := createTestUser(t, db, "owner")
	market := createTestMarket(t, db, owner.ID, "txfilter")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")
	category := incomeCategory(t, db)

	var pakan model.Category
	if err := db.Where("name = ?", "Pakan").First(&pakan).Error; err != nil {
		t.Fatalf("seed category missing: %v", err)
	}

	now := time.Now()
	mk := func(categoryID uuid.UUID, amount float64, txType model.TransactionType, desc string, daysAgo int) {
		if _, err := svc.Create(owner.ID, &CreateTransactionRequest{
			KandangID:   kandang.ID,
			CategoryID:  categoryID,
			Amount:      amount,
			Type:        txType,
			Description: desc,
			Date:        now.AddDate(0, 0, -daysAgo),
		}); err != nil {
			t.Fatalf("create %q failed: %v", desc, err)
		}
	}
	mk(category.ID, 500, model.TxIncome, "penjualan minggu ini", 1)
	mk(category.ID, 700, model.TxIncome, "penjualan bulan lalu", 20)
	mk(pakan.ID, 200, model.TxExpense, "beli pakan jagung", 2)

	// By type
	income := model.TxIncome
	got, err := svc.List(kandang.ID, repository.TransactionFilter{Type: &income})
	if err != nil {
		t.Fatalf("List by type failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("income filter: got %d, want 2", len(got))
	}

	// By category
	got, err = svc.List(kandang.ID, repository.TransactionFilter{CategoryID: &pakan.ID})
	if err != nil {
		t.Fatalf("List by category failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("category filter: got %d, want 1", len(got))
	}

	// By date range
	start := now.AddDate(0, 0, -7)
	got, err = svc.List(kandang.ID, repository.TransactionFilter{StartDate: &start})
	if err != nil {
		t.Fatalf("List by date failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("date filter: got %d, want 2", len(got))
	}

	// Case-insensitive description search
	got, err = svc.List(kandang.ID, repository.TransactionFilter{Search: "PAKAN"})
	if err != nil {
		t.Fatalf("List by search failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("search filter: got %d, want 1", len(got))
	}

	// Limit
	got, err = svc.List(kandang.ID, repository.TransactionFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List with limit failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("limit: got %d, want 2", len(got))
	}
}
