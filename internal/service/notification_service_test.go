package service

import (
	"testing"

	"github.com/notbx57/peternakantelur/internal/apperror"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newNotificationService(db *gorm.DB) NotificationService {
	return NewNotificationService(repository.NewNotificationRepo(db))
}

func createTestNotification(t *testing.T, db *gorm.DB, from, to, kandangID uuid.UUID) *model.Notification {
	t.Helper()
	notif := &model.Notification{
		FromUserID: from,
		ToUserID:   to,
		KandangID:  kandangID,
		Type:       model.NotifInvestorRequest,
		Message:    "test",
	}
	if err := db.Create(notif).Error; err != nil {
		t.Fatalf("failed to create notification: %v", err)
	}
	return notif
}

func TestMarkAsReadRecipientOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)

	owner := createTestUser(t, db, "owner")
	requester := createTestUser(t, db, "requester")
	market := createTestMarket(t, db, owner.ID, "notif")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	notif := createTestNotification(t, db, requester.ID, owner.ID, kandang.ID)

	// Sender cannot mark the recipient's notification
	err := svc.MarkAsRead(notif.ID, requester.ID)
	if !apperror.IsKind(err, apperror.KindUnauthorized) {
		t.Errorf("sender mark: got %v, want unauthorized", err)
	}

	if err := svc.MarkAsRead(notif.ID, owner.ID); err != nil {
		t.Fatalf("MarkAsRead failed: %v", err)
	}

	var reloaded model.Notification
	db.First(&reloaded, "id = ?", notif.ID)
	if !reloaded.IsRead {
		t.Error("notification not marked read")
	}

	err = svc.MarkAsRead(uuid.New(), owner.ID)
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("missing notification: got %v, want not_found", err)
	}
}

func TestMarkAsReadDoesNotTouchRequestState(t *testing.T) {
	db := setupTestDB(t)
	notifSvc := newNotificationService(db)
	invSvc := newInvestorService(db)

	owner := createTestUser(t, db, "owner")
	requester := createTestUser(t, db, "requester")
	market := createTestMarket(t, db, owner.ID, "decoupled")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	if err := invSvc.RequestInvestor(requester.ID, kandang.ID); err != nil {
		t.Fatalf("RequestInvestor failed: %v", err)
	}
	var request model.InvestorRequest
	db.Where("kandang_id = ? AND user_id = ?", kandang.ID, requester.ID).First(&request)

	// Owner reads the notification without acting on the request
	if err := notifSvc.MarkAsRead(request.NotificationID, owner.ID); err != nil {
		t.Fatalf("MarkAsRead failed: %v", err)
	}

	// The request is still pending and still actionable
	db.First(&request, "id = ?", request.ID)
	if request.Status != model.RequestPending {
		t.Errorf("status = %q, want pending after read", request.Status)
	}
	if err := invSvc.AcceptRequest(request.ID, owner.ID); err != nil {
		t.Errorf("accept after read failed: %v", err)
	}
}

func TestCountUnreadAndMarkAll(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)

	owner := createTestUser(t, db, "owner")
	sender := createTestUser(t, db, "sender")
	market := createTestMarket(t, db, owner.ID, "counts")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	for i := 0; i < 3; i++ {
		createTestNotification(t, db, sender.ID, owner.ID, kandang.ID)
	}
	// One for someone else
	createTestNotification(t, db, owner.ID, sender.ID, kandang.ID)

	count, err := svc.CountUnread(owner.ID)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if count != 3 {
		t.Errorf("unread = %d, want 3", count)
	}

	updated, err := svc.MarkAllAsRead(owner.ID)
	if err != nil {
		t.Fatalf("MarkAllAsRead failed: %v", err)
	}
	if updated != 3 {
		t.Errorf("marked = %d, want 3", updated)
	}

	count, _ = svc.CountUnread(owner.ID)
	if count != 0 {
		t.Errorf("unread after mark-all = %d, want 0", count)
	}

	// Other user's notification untouched
	other, _ := svc.CountUnread(sender.ID)
	if other != 1 {
		t.Errorf("sender unread = %d, want 1", other)
	}
}

func TestListForUserNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)

	owner := createTestUser(t, db, "owner")
	sender := createTestUser(t, db, "sender")
	market := createTestMarket(t, db, owner.ID, "ordering")
	kandang := createTestKandang(t, db, market.ID, "Kandang A")

	for i := 0; i < 3; i++ {
		createTestNotification(t, db, sender.ID, owner.ID, kandang.ID)
	}

	list, err := svc.ListForUser(owner.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d notifications, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Error("notifications not ordered newest first")
		}
	}
}
