package service

import (
	"errors"
	"testing"
	"time"

	"github.com/notbx57/peternakantelur/internal/apperror"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newInvestorService(db *gorm.DB) InvestorService {
	return NewInvestorService(db,
		repository.NewKandangRepo(db),
		repository.NewInvestorRequestRepo(db),
		nil, // no websocket hub in tests
	)
}

func TestRequestInvestorCreatesPendingRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	requester := createTestUser(t, db, "requester")
	market := createTestMarket(t, db, owner.ID, "reqtest")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	if err := svc.RequestInvestor(requester.ID, kandang.ID); err != nil {
		t.Fatalf("RequestInvestor failed: %v", err)
	}

	var request model.InvestorRequest
	if err := db.Where("kandang_id = ? AND user_id = ?", kandang.ID, requester.ID).First(&request).Error; err != nil {
		t.Fatalf("request row not created: %v", err)
	}
	if request.Status != model.RequestPending {
		t.Errorf("status = %q, want pending", request.Status)
	}

	// Notification goes to the head owner
	var notif model.Notification
	if err := db.First(&notif, "id = ?", request.NotificationID).Error; err != nil {
		t.Fatalf("notification not created: %v", err)
	}
	if notif.ToUserID != owner.ID {
		t.Errorf("notification addressed to %s, want owner %s", notif.ToUserID, owner.ID)
	}
	if notif.Type != model.NotifInvestorRequest {
		t.Errorf("notification type = %q, want investor_request", notif.Type)
	}
}

func TestRequestInvestorRejectsDuplicatePending(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	requester := createTestUser(t, db, "requester")
	market := createTestMarket(t, db, owner.ID, "duptest")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	if err := svc.RequestInvestor(requester.ID, kandang.ID); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	err := svc.RequestInvestor(requester.ID, kandang.ID)
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Errorf("second request: got %v, want conflict", err)
	}
}

func TestRequestInvestorRejectsExistingMember(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	investor := createTestUser(t, db, "investor")
	market := createTestMarket(t, db, owner.ID, "memtest")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")
	addTestInvestor(t, db, kandang.ID, investor.ID, 100)

	// Head owner requesting own kandang
	err := svc.RequestInvestor(owner.ID, kandang.ID)
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Errorf("owner request: got %v, want conflict", err)
	}

	// Existing investor requesting again
	err = svc.RequestInvestor(investor.ID, kandang.ID)
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Errorf("investor request: got %v, want conflict", err)
	}
}

func TestRequestInvestorCooldown(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	requester := createTestUser(t, db, "requester")
	market := createTestMarket(t, db, owner.ID, "cooltest")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	rejectedAt := time.Now().Add(-4*time.Minute - 59*time.Second)
	rejected := &model.InvestorRequest{
		KandangID:   kandang.ID,
		UserID:      requester.ID,
		Status:      model.RequestRejected,
		RespondedAt: &rejectedAt,
	}
	if err := db.Create(rejected).Error; err != nil {
		t.Fatalf("failed to seed rejected request: %v", err)
	}

	// 1s of the 5 minute cooldown remains: blocked, rounded up to 1 minute
	err := svc.RequestInvestor(requester.ID, kandang.ID)
	if !apperror.IsKind(err, apperror.KindCooldownActive) {
		t.Fatalf("got %v, want cooldown_active", err)
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.RemainingMinutes != 1 {
		t.Errorf("remaining minutes = %d, want 1", appErr.RemainingMinutes)
	}
}

func TestRequestInvestorAfterCooldownExpires(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	requester := createTestUser(t, db, "requester")
	market := createTestMarket(t, db, owner.ID, "coolexp")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	rejectedAt := time.Now().Add(-5*time.Minute - 1*time.Second)
	rejected := &model.InvestorRequest{
		KandangID:   kandang.ID,
		UserID:      requester.ID,
		Status:      model.RequestRejected,
		RespondedAt: &rejectedAt,
	}
	if err := db.Create(rejected).Error; err != nil {
		t.Fatalf("failed to seed rejected request: %v", err)
	}

	if err := svc.RequestInvestor(requester.ID, kandang.ID); err != nil {
		t.Errorf("request after cooldown expiry failed: %v", err)
	}
}

func TestAcceptRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	requester := createTestUser(t, db, "requester")
	market := createTestMarket(t, db, owner.ID, "accept")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	if err := svc.RequestInvestor(requester.ID, kandang.ID); err != nil {
		t.Fatalf("RequestInvestor failed: %v", err)
	}
	var request model.InvestorRequest
	db.Where("kandang_id = ? AND user_id = ?", kandang.ID, requester.ID).First(&request)

	if err := svc.AcceptRequest(request.ID, owner.ID); err != nil {
		t.Fatalf("AcceptRequest failed: %v", err)
	}

	// Membership row exists with zero capital
	var investor model.KandangInvestor
	if err := db.Where("kandang_id = ? AND user_id = ?", kandang.ID, requester.ID).First(&investor).Error; err != nil {
		t.Fatalf("investor row not created: %v", err)
	}
	if investor.InvestmentAmount != 0 {
		t.Errorf("investment amount = %v, want 0 (capital arrives separately)", investor.InvestmentAmount)
	}

	// Request transitioned, origin notification marked read
	db.First(&request, "id = ?", request.ID)
	if request.Status != model.RequestAccepted {
		t.Errorf("status = %q, want accepted", request.Status)
	}
	if request.RespondedAt == nil {
		t.Error("responded_at not set")
	}
	var origin model.Notification
	db.First(&origin, "id = ?", request.NotificationID)
	if !origin.IsRead {
		t.Error("origin notification not marked read")
	}

	// Requester is told
	var accepted model.Notification
	err := db.Where("to_user_id = ? AND type = ?", requester.ID, model.NotifRequestAccepted).First(&accepted).Error
	if err != nil {
		t.Errorf("accepted notification not created: %v", err)
	}

	// Replay is rejected
	err = svc.AcceptRequest(request.ID, owner.ID)
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Errorf("replay: got %v, want conflict", err)
	}
}

func TestAcceptRequestOnlyHeadOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	coOwner := createTestUser(t, db, "coowner")
	requester := createTestUser(t, db, "requester")
	market := createTestMarket(t, db, owner.ID, "onlyhead")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")
	addTestCoOwner(t, db, market.ID, coOwner.ID)

	if err := svc.RequestInvestor(requester.ID, kandang.ID); err != nil {
		t.Fatalf("RequestInvestor failed: %v", err)
	}
	var request model.InvestorRequest
	db.Where("kandang_id = ? AND user_id = ?", kandang.ID, requester.ID).First(&request)

	// Even a co-owner cannot respond
	err := svc.AcceptRequest(request.ID, coOwner.ID)
	if !apperror.IsKind(err, apperror.KindUnauthorized) {
		t.Errorf("co-owner accept: got %v, want unauthorized", err)
	}

	err = svc.RejectRequest(request.ID, requester.ID)
	if !apperror.IsKind(err, apperror.KindUnauthorized) {
		t.Errorf("requester reject: got %v, want unauthorized", err)
	}
}

func TestRejectRequestStartsCooldown(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	requester := createTestUser(t, db, "requester")
	market := createTestMarket(t, db, owner.ID, "reject")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	if err := svc.RequestInvestor(requester.ID, kandang.ID); err != nil {
		t.Fatalf("RequestInvestor failed: %v", err)
	}
	var request model.InvestorRequest
	db.Where("kandang_id = ? AND user_id = ?", kandang.ID, requester.ID).First(&request)

	if err := svc.RejectRequest(request.ID, owner.ID); err != nil {
		t.Fatalf("RejectRequest failed: %v", err)
	}

	db.First(&request, "id = ?", request.ID)
	if request.Status != model.RequestRejected {
		t.Errorf("status = %q, want rejected", request.Status)
	}

	// No membership was created
	var count int64
	db.Model(&model.KandangInvestor{}).Where("kandang_id = ? AND user_id = ?", kandang.ID, requester.ID).Count(&count)
	if count != 0 {
		t.Error("rejected request must not create an investor row")
	}

	// Immediate re-request hits the full cooldown
	err := svc.RequestInvestor(requester.ID, kandang.ID)
	if !apperror.IsKind(err, apperror.KindCooldownActive) {
		t.Fatalf("got %v, want cooldown_active", err)
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.RemainingMinutes != 5 {
		t.Errorf("remaining minutes = %d, want 5", appErr.RemainingMinutes)
	}
}

func TestAddInvestorAccumulates(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	investor := createTestUser(t, db, "investor")
	market := createTestMarket(t, db, owner.ID, "accum")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	for _, amount := range []float64{100, 100, 50} {
		if _, err := svc.AddInvestor(kandang.ID, investor.ID, amount); err != nil {
			t.Fatalf("AddInvestor(%v) failed: %v", amount, err)
		}
	}

	// One row, accumulated
	var investors []model.KandangInvestor
	db.Where("kandang_id = ? AND user_id = ?", kandang.ID, investor.ID).Find(&investors)
	if len(investors) != 1 {
		t.Fatalf("got %d investor rows, want 1", len(investors))
	}
	if investors[0].InvestmentAmount != 250 {
		t.Errorf("investment amount = %v, want 250", investors[0].InvestmentAmount)
	}

	// Each contribution mirrored as an income transaction
	var transactions []model.Transaction
	db.Where("kandang_id = ?", kandang.ID).Find(&transactions)
	if len(transactions) != 3 {
		t.Fatalf("got %d transactions, want 3", len(transactions))
	}
	var total float64
	for _, tx := range transactions {
		if tx.Type != model.TxIncome {
			t.Errorf("transaction type = %q, want income", tx.Type)
		}
		if tx.CategoryName != model.CategoryInvestasi {
			t.Errorf("category name = %q, want %q", tx.CategoryName, model.CategoryInvestasi)
		}
		total += tx.Amount
	}
	if total != 250 {
		t.Errorf("mirrored ledger total = %v, want 250", total)
	}
}

func TestAddInvestorRejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	market := createTestMarket(t, db, owner.ID, "badamount")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	for _, amount := range []float64{0, -100} {
		_, err := svc.AddInvestor(kandang.ID, owner.ID, amount)
		if !apperror.IsKind(err, apperror.KindValidation) {
			t.Errorf("AddInvestor(%v): got %v, want validation error", amount, err)
		}
	}
}

func TestGetPendingRequests(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	a := createTestUser(t, db, "alpha")
	b := createTestUser(t, db, "bravo")
	market := createTestMarket(t, db, owner.ID, "pendinglist")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	if err := svc.RequestInvestor(a.ID, kandang.ID); err != nil {
		t.Fatalf("request a: %v", err)
	}
	if err := svc.RequestInvestor(b.ID, kandang.ID); err != nil {
		t.Fatalf("request b: %v", err)
	}

	var request model.InvestorRequest
	db.Where("kandang_id = ? AND user_id = ?", kandang.ID, a.ID).First(&request)
	if err := svc.RejectRequest(request.ID, owner.ID); err != nil {
		t.Fatalf("reject a: %v", err)
	}

	pending, err := svc.GetPendingRequests(kandang.ID)
	if err != nil {
		t.Fatalf("GetPendingRequests failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("got %d pending, want 1", len(pending))
	}
	if pending[0].UserID != b.ID {
		t.Errorf("pending user = %s, want %s", pending[0].UserID, b.ID)
	}
}

func TestRemoveInvestor(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	investor := createTestUser(t, db, "investor")
	market := createTestMarket(t, db, owner.ID, "removal")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")
	addTestInvestor(t, db, kandang.ID, investor.ID, 500)

	if err := svc.RemoveInvestor(kandang.ID, investor.ID); err != nil {
		t.Fatalf("RemoveInvestor failed: %v", err)
	}

	var count int64
	db.Model(&model.KandangInvestor{}).Where("kandang_id = ? AND user_id = ?", kandang.ID, investor.ID).Count(&count)
	if count != 0 {
		t.Error("investor row still present after removal")
	}
}

func TestGetUserInvestments(t *testing.T) {
	db := setupTestDB(t)
	svc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	investor := createTestUser(t, db, "investor")
	market := createTestMarket(t, db, owner.ID, "portfolio")
	kandangA := createTestKandang(t, db, market.ID, "Kandang A")
	kandangB := createTestKandang(t, db, market.ID, "Kandang B")
	addTestInvestor(t, db, kandangA.ID, investor.ID, 100)
	addTestInvestor(t, db, kandangB.ID, investor.ID, 200)

	investments, err := svc.GetUserInvestments(investor.ID)
	if err != nil {
		t.Fatalf("GetUserInvestments failed: %v", err)
	}
	if len(investments) != 2 {
		t.Fatalf("got %d investments, want 2", len(investments))
	}
	seen := map[uuid.UUID]float64{}
	for _, inv := range investments {
		seen[inv.KandangID] = inv.InvestmentAmount
	}
	if seen[kandangA.ID] != 100 || seen[kandangB.ID] != 200 {
		t.Errorf("unexpected portfolio: %v", seen)
	}
}
