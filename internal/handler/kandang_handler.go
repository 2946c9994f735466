package handler

import (
	"github.com/notbx57/peternakantelur/internal/service"

	"github.com/gofiber/fiber/v2"
)

type KandangHandler struct {
	service     service.KandangService
	ledger      service.LedgerService
	investors   service.InvestorService
	roleService service.RoleService
}

func NewKandangHandler(s service.KandangService, ledger service.LedgerService, investors service.InvestorService, roles service.RoleService) *KandangHandler {
	return &KandangHandler{
		service:     s,
		ledger:      ledger,
		investors:   investors,
		roleService: roles,
	}
}

func (h *KandangHandler) ListByMarket(c *fiber.Ctx) error {
	marketID, err := parseUUID(c.Params("marketId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid market ID"})
	}

	kandangList, err := h.service.ListByMarket(marketID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(kandangList)
}

func (h *KandangHandler) GetKandang(c *fiber.Ctx) error {
	kandangID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}

	detail, err := h.service.GetWithMarket(kandangID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

func (h *KandangHandler) CreateKandang(c *fiber.Ctx) error {
	var req service.CreateKandangRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	kandangID, err := h.service.Create(getUserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Kandang created", "id": kandangID})
}

func (h *KandangHandler) UpdateKandang(c *fiber.Ctx) error {
	kandangID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}

	var req service.UpdateKandangRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.Update(kandangID, getUserID(c), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Kandang updated"})
}

func (h *KandangHandler) DeleteKandang(c *fiber.Ctx) error {
	kandangID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}

	if err := h.service.Remove(kandangID, getUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Kandang deleted"})
}

func (h *KandangHandler) GetDashboard(c *fiber.Ctx) error {
	kandangID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}

	dashboard, err := h.ledger.GetDashboard(kandangID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dashboard)
}

func (h *KandangHandler) GetStats(c *fiber.Ctx) error {
	kandangID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}

	stats, err := h.ledger.GetKandangStats(kandangID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *KandangHandler) GetMyRole(c *fiber.Ctx) error {
	kandangID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}

	role, err := h.roleService.ResolveKandangRole(kandangID, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"role": role})
}

func (h *KandangHandler) GetInvestors(c *fiber.Ctx) error {
	kandangID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}

	investors, err := h.investors.GetInvestors(kandangID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(investors)
}

func (h *KandangHandler) AddInvestor(c *fiber.Ctx) error {
	kandangID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}

	var req struct {
		UserID string  `json:"user_id"`
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	userID, err := parseUUID(req.UserID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	investorID, err := h.investors.AddInvestor(kandangID, userID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Investment recorded", "id": investorID})
}

func (h *KandangHandler) RemoveInvestor(c *fiber.Ctx) error {
	kandangID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}
	userID, err := parseUUID(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	if err := h.investors.RemoveInvestor(kandangID, userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Investor removed"})
}

func (h *KandangHandler) GetPendingRequests(c *fiber.Ctx) error {
	kandangID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}

	requests, err := h.investors.GetPendingRequests(kandangID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requests)
}

// GetMyInvestments lists every kandang the caller has invested in.
func (h *KandangHandler) GetMyInvestments(c *fiber.Ctx) error {
	investments, err := h.investors.GetUserInvestments(getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(investments)
}
