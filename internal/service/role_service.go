package service

import (
	"errors"

	"github.com/notbx57/peternakantelur/internal/apperror"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleService resolves a user's contextual role inside a market or kandang.
// Resolution always re-reads live membership state: a promotion, demotion or
// kick takes effect on the very next check with no cache to invalidate.
type RoleService interface {
	ResolveMarketRole(marketID, userID uuid.UUID) (model.Role, error)
	ResolveKandangRole(kandangID, userID uuid.UUID) (model.Role, error)
	GetMarketMembers(marketID uuid.UUID) ([]model.MemberView, error)
}

type roleService struct {
	db          *gorm.DB
	marketRepo  repository.MarketRepository
	kandangRepo repository.KandangRepository
	userRepo    repository.UserRepository
}

func NewRoleService(db *gorm.DB, marketRepo repository.MarketRepository, kandangRepo repository.KandangRepository, userRepo repository.UserRepository) RoleService {
	return &roleService{
		db:          db,
		marketRepo:  marketRepo,
		kandangRepo: kandangRepo,
		userRepo:    userRepo,
	}
}

// resolveMarketRole applies the precedence order at market scope:
// owner > co_owner membership > investor in any kandang of the market > none.
// First match wins, so an owner incorrectly listed as co-owner still resolves
// to head_owner.
func resolveMarketRole(db *gorm.DB, market *model.Market, userID uuid.UUID) (model.Role, error) {
	if market.OwnerID == userID {
		return model.RoleHeadOwner, nil
	}

	var member model.MarketMember
	err := db.Where("market_id = ? AND user_id = ?", market.ID, userID).First(&member).Error
	if err == nil {
		return member.Role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.RoleNone, err
	}

	// Investor status is market-wide: an investment in ANY kandang counts.
	var count int64
	err = db.Model(&model.KandangInvestor{}).
		Joins("JOIN kandangs ON kandangs.id = kandang_investors.kandang_id").
		Where("kandangs.market_id = ? AND kandang_investors.user_id = ?", market.ID, userID).
		Count(&count).Error
	if err != nil {
		return model.RoleNone, err
	}
	if count > 0 {
		return model.RoleInvestor, nil
	}

	return model.RoleNone, nil
}

// resolveKandangRole applies the precedence order at kandang scope. The head
// owner is derived from the owning market, never from caller-supplied claims.
func resolveKandangRole(db *gorm.DB, kandang *model.Kandang, userID uuid.UUID) (model.Role, error) {
	var market model.Market
	if err := db.First(&market, "id = ?", kandang.MarketID).Error; err != nil {
		return model.RoleNone, err
	}

	if market.OwnerID == userID {
		return model.RoleHeadOwner, nil
	}

	var member model.MarketMember
	err := db.Where("market_id = ? AND user_id = ?", market.ID, userID).First(&member).Error
	if err == nil {
		return member.Role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.RoleNone, err
	}

	var investor model.KandangInvestor
	err = db.Where("kandang_id = ? AND user_id = ?", kandang.ID, userID).First(&investor).Error
	if err == nil {
		return model.RoleInvestor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.RoleNone, err
	}

	return model.RoleNone, nil
}

func (s *roleService) ResolveMarketRole(marketID, userID uuid.UUID) (model.Role, error) {
	market, err := s.marketRepo.FindByID(marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.RoleNone, apperror.NotFound("market not found")
		}
		return model.RoleNone, err
	}
	return resolveMarketRole(s.db, market, userID)
}

func (s *roleService) ResolveKandangRole(kandangID, userID uuid.UUID) (model.Role, error) {
	kandang, err := s.kandangRepo.FindByID(kandangID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.RoleNone, apperror.NotFound("kandang not found")
		}
		return model.RoleNone, err
	}
	return resolveKandangRole(s.db, kandang, userID)
}

// GetMarketMembers lists everyone with a role in the market: the head owner,
// co-owners, and every investor across the market's kandang, deduplicated in
// precedence order.
func (s *roleService) GetMarketMembers(marketID uuid.UUID) ([]model.MemberView, error) {
	market, err := s.marketRepo.FindByID(marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("market not found")
		}
		return nil, err
	}

	members := []model.MemberView{}
	seen := map[uuid.UUID]bool{}

	// 1. Head Owner
	owner, err := s.userRepo.FindByID(market.OwnerID)
	if err == nil {
		members = append(members, model.MemberView{
			UserID:   owner.ID,
			Name:     owner.Name,
			Username: owner.Username,
			Avatar:   owner.Avatar,
			Role:     model.RoleHeadOwner,
		})
		seen[owner.ID] = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. Co-owners
	coOwners, err := s.marketRepo.FindMembersByMarket(marketID)
	if err != nil {
		return nil, err
	}
	for _, co := range coOwners {
		if seen[co.UserID] || co.User == nil {
			continue
		}
		members = append(members, model.MemberView{
			UserID:   co.UserID,
			Name:     co.User.Name,
			Username: co.User.Username,
			Avatar:   co.User.Avatar,
			Role:     model.RoleCoOwner,
		})
		seen[co.UserID] = true
	}

	// 3. Investors dari semua kandang di market ini
	kandangList, err := s.kandangRepo.FindByMarket(marketID)
	if err != nil {
		return nil, err
	}
	for _, k := range kandangList {
		investors, err := s.kandangRepo.FindInvestorsByKandang(k.ID)
		if err != nil {
			return nil, err
		}
		for _, inv := range investors {
			if seen[inv.UserID] || inv.User == nil {
				continue
			}
			members = append(members, model.MemberView{
				UserID:   inv.UserID,
				Name:     inv.User.Name,
				Username: inv.User.Username,
				Avatar:   inv.User.Avatar,
				Role:     model.RoleInvestor,
			})
			seen[inv.UserID] = true
		}
	}

	return members, nil
}
