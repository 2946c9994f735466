package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/notbx57/peternakantelur/internal/apperror"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"
	"github.com/notbx57/peternakantelur/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cooldown setelah request ditolak sebelum boleh request lagi
const investorRequestCooldown = 5 * time.Minute

// InvestorService runs the onboarding state machine
// (none -> pending -> accepted|rejected -> cooldown) and is the ONLY writer
// of kandang_investors together with its mirrored ledger entry.
type InvestorService interface {
	RequestInvestor(userID, kandangID uuid.UUID) error
	AcceptRequest(requestID, headOwnerID uuid.UUID) error
	RejectRequest(requestID, headOwnerID uuid.UUID) error

	AddInvestor(kandangID, userID uuid.UUID, amount float64) (uuid.UUID, error)
	RemoveInvestor(kandangID, userID uuid.UUID) error

	GetInvestors(kandangID uuid.UUID) ([]model.KandangInvestor, error)
	GetUserInvestments(userID uuid.UUID) ([]model.KandangInvestor, error)
	GetPendingRequests(kandangID uuid.UUID) ([]model.InvestorRequest, error)
}

type investorService struct {
	db          *gorm.DB
	kandangRepo repository.KandangRepository
	requestRepo repository.InvestorRequestRepository
	wsHub       *ws.Hub
}

func NewInvestorService(db *gorm.DB, kandangRepo repository.KandangRepository, requestRepo repository.InvestorRequestRepository, hub *ws.Hub) InvestorService {
	return &investorService{
		db:          db,
		kandangRepo: kandangRepo,
		requestRepo: requestRepo,
		wsHub:       hub,
	}
}

func (s *investorService) publish(notif *model.Notification) {
	if s.wsHub != nil {
		s.wsHub.PublishNotification(notif)
	}
}

// RequestInvestor moves (user, kandang) from none to pending.
// All precondition reads and both writes happen inside one transaction so two
// concurrent requests from the same user cannot both pass the pending check.
func (s *investorService) RequestInvestor(userID, kandangID uuid.UUID) error {
	var created *model.Notification

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var kandang model.Kandang
		if err := tx.First(&kandang, "id = ?", kandangID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("kandang not found")
			}
			return err
		}

		// Sudah member (role apapun) ga boleh request lagi
		role, err := resolveKandangRole(tx, &kandang, userID)
		if err != nil {
			return err
		}
		if role != model.RoleNone {
			return apperror.Conflict("you are already a member of this kandang")
		}

		// Masih ada request pending?
		var pending model.InvestorRequest
		err = tx.Where("kandang_id = ? AND user_id = ? AND status = ?",
			kandangID, userID, model.RequestPending).First(&pending).Error
		if err == nil {
			return apperror.Conflict("request already sent, wait for the head owner's response")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Cooldown: anchored on the responded_at of the latest rejection
		var rejected model.InvestorRequest
		err = tx.Where("kandang_id = ? AND user_id = ? AND status = ?",
			kandangID, userID, model.RequestRejected).
			Order("responded_at DESC").First(&rejected).Error
		if err == nil && rejected.RespondedAt != nil {
			elapsed := time.Since(*rejected.RespondedAt)
			if elapsed < investorRequestCooldown {
				remaining := investorRequestCooldown - elapsed
				return apperror.CooldownActive(int(math.Ceil(remaining.Minutes())))
			}
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var market model.Market
		if err := tx.First(&market, "id = ?", kandang.MarketID).Error; err != nil {
			return err
		}
		var user model.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("user not found")
			}
			return err
		}

		notif := &model.Notification{
			FromUserID: userID,
			ToUserID:   market.OwnerID,
			KandangID:  kandangID,
			Type:       model.NotifInvestorRequest,
			Message:    fmt.Sprintf("%s ingin menjadi investor di kandang %s", user.Name, kandang.Name),
		}
		if err := tx.Create(notif).Error; err != nil {
			return err
		}

		request := &model.InvestorRequest{
			KandangID:      kandangID,
			UserID:         userID,
			Status:         model.RequestPending,
			NotificationID: notif.ID,
		}
		if err := tx.Create(request).Error; err != nil {
			return err
		}

		created = notif
		return nil
	})

	if err != nil {
		return err
	}
	s.publish(created)
	return nil
}

// AcceptRequest is the pending -> accepted transition. The head owner is
// re-derived from the kandang's market, not taken from the caller.
func (s *investorService) AcceptRequest(requestID, headOwnerID uuid.UUID) error {
	var created *model.Notification

	err := s.db.Transaction(func(tx *gorm.DB) error {
		request, kandang, err := s.loadPendingRequest(tx, requestID, headOwnerID)
		if err != nil {
			return err
		}

		// Membership: zero-amount investor row. The role resolver reads this
		// table, so the requester resolves to investor immediately; capital
		// arrives later via AddInvestor.
		var investor model.KandangInvestor
		err = tx.Where("kandang_id = ? AND user_id = ?", request.KandangID, request.UserID).
			First(&investor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			investor = model.KandangInvestor{
				KandangID:        request.KandangID,
				UserID:           request.UserID,
				InvestmentAmount: 0,
				InvestedAt:       time.Now(),
			}
			if err := tx.Create(&investor).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		now := time.Now()
		request.Status = model.RequestAccepted
		request.RespondedAt = &now
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Notification{}).
			Where("id = ?", request.NotificationID).
			Update("is_read", true).Error; err != nil {
			return err
		}

		notif := &model.Notification{
			FromUserID: headOwnerID,
			ToUserID:   request.UserID,
			KandangID:  request.KandangID,
			Type:       model.NotifRequestAccepted,
			Message:    fmt.Sprintf("Selamat! Request kamu untuk menjadi investor di %s telah diterima 🎉", kandang.Name),
		}
		if err := tx.Create(notif).Error; err != nil {
			return err
		}

		created = notif
		return nil
	})

	if err != nil {
		return err
	}
	s.publish(created)
	return nil
}

// RejectRequest is the pending -> rejected transition; responded_at becomes
// the cooldown anchor for the next request.
func (s *investorService) RejectRequest(requestID, headOwnerID uuid.UUID) error {
	var created *model.Notification

	err := s.db.Transaction(func(tx *gorm.DB) error {
		request, kandang, err := s.loadPendingRequest(tx, requestID, headOwnerID)
		if err != nil {
			return err
		}

		now := time.Now()
		request.Status = model.RequestRejected
		request.RespondedAt = &now
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Notification{}).
			Where("id = ?", request.NotificationID).
			Update("is_read", true).Error; err != nil {
			return err
		}

		notif := &model.Notification{
			FromUserID: headOwnerID,
			ToUserID:   request.UserID,
			KandangID:  request.KandangID,
			Type:       model.NotifRequestRejected,
			Message:    fmt.Sprintf("Maaf, request kamu untuk menjadi investor di %s ditolak", kandang.Name),
		}
		if err := tx.Create(notif).Error; err != nil {
			return err
		}

		created = notif
		return nil
	})

	if err != nil {
		return err
	}
	s.publish(created)
	return nil
}

// loadPendingRequest loads a request, rejects replays on responded requests
// and verifies the caller is the head owner of the kandang's market.
func (s *investorService) loadPendingRequest(tx *gorm.DB, requestID, headOwnerID uuid.UUID) (*model.InvestorRequest, *model.Kandang, error) {
	var request model.InvestorRequest
	if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.NotFound("investor request not found")
		}
		return nil, nil, err
	}

	if request.Status != model.RequestPending {
		return nil, nil, apperror.Conflict("request has already been responded to")
	}

	var kandang model.Kandang
	if err := tx.First(&kandang, "id = ?", request.KandangID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.NotFound("kandang not found")
		}
		return nil, nil, err
	}

	var market model.Market
	if err := tx.First(&market, "id = ?", kandang.MarketID).Error; err != nil {
		return nil, nil, err
	}
	if market.OwnerID != headOwnerID {
		return nil, nil, apperror.Unauthorized("only the head owner of this kandang can respond to requests")
	}

	return &request, &kandang, nil
}

// AddInvestor records a capital contribution: it upserts the accumulating
// investor row AND appends the mirrored "Investasi" income transaction.
// Both writes commit together or not at all; a partial application would
// break sum(investments) == sum(Investasi income) for the kandang.
func (s *investorService) AddInvestor(kandangID, userID uuid.UUID, amount float64) (uuid.UUID, error) {
	if amount <= 0 {
		return uuid.Nil, apperror.Validation("investment amount must be greater than zero")
	}

	var investorID uuid.UUID
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var kandang model.Kandang
		if err := tx.First(&kandang, "id = ?", kandangID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("kandang not found")
			}
			return err
		}

		now := time.Now()

		var investor model.KandangInvestor
		err := tx.Where("kandang_id = ? AND user_id = ?", kandangID, userID).First(&investor).Error
		switch {
		case err == nil:
			// Udah pernah invest: tambahin ke record yang ada
			investor.InvestmentAmount += amount
			investor.InvestedAt = now
			if err := tx.Save(&investor).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			investor = model.KandangInvestor{
				KandangID:        kandangID,
				UserID:           userID,
				InvestmentAmount: amount,
				InvestedAt:       now,
			}
			if err := tx.Create(&investor).Error; err != nil {
				return err
			}
		default:
			return err
		}

		var category model.Category
		if err := tx.Where("name = ?", model.CategoryInvestasi).First(&category).Error; err != nil {
			return fmt.Errorf("lookup %q category: %w", model.CategoryInvestasi, err)
		}

		entry := &model.Transaction{
			KandangID:    kandangID,
			CategoryID:   category.ID,
			CategoryName: category.Name,
			CreatedByID:  userID,
			Amount:       amount,
			Type:         model.TxIncome,
			Description:  "Investasi Modal",
			Date:         now,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		investorID = investor.ID
		return nil
	})

	return investorID, err
}

func (s *investorService) RemoveInvestor(kandangID, userID uuid.UUID) error {
	return s.kandangRepo.DeleteInvestor(kandangID, userID)
}

func (s *investorService) GetInvestors(kandangID uuid.UUID) ([]model.KandangInvestor, error) {
	return s.kandangRepo.FindInvestorsByKandang(kandangID)
}

func (s *investorService) GetUserInvestments(userID uuid.UUID) ([]model.KandangInvestor, error) {
	return s.kandangRepo.FindInvestmentsByUser(userID)
}

func (s *investorService) GetPendingRequests(kandangID uuid.UUID) ([]model.InvestorRequest, error) {
	return s.requestRepo.FindPendingByKandang(kandangID)
}
