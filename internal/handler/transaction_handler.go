package handler

import (
	"strconv"
	"time"

	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"
	"github.com/notbx57/peternakantelur/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	service      service.TransactionService
	categoryRepo repository.CategoryRepository
}

func NewTransactionHandler(s service.TransactionService, categoryRepo repository.CategoryRepository) *TransactionHandler {
	return &TransactionHandler{service: s, categoryRepo: categoryRepo}
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	kandangID, err := parseUUID(c.Params("kandangId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}

	var filter repository.TransactionFilter

	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := parseUUID(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
		}
		filter.CategoryID = &categoryID
	}
	if raw := c.Query("type"); raw != "" {
		txType := model.TransactionType(raw)
		if txType != model.TxIncome && txType != model.TxExpense {
			return c.Status(400).JSON(fiber.Map{"error": "type must be income or expense"})
		}
		filter.Type = &txType
	}
	if raw := c.Query("start_date"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "start_date must be RFC3339"})
		}
		filter.StartDate = &start
	}
	if raw := c.Query("end_date"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "end_date must be RFC3339"})
		}
		filter.EndDate = &end
	}
	filter.Search = c.Query("search")
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "limit must be a non-negative number"})
		}
		filter.Limit = limit
	}

	transactions, err := h.service.List(kandangID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	txID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	entry, err := h.service.Get(txID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var req service.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	txID, err := h.service.Create(getUserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Transaction recorded", "id": txID})
}

func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	txID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var req service.UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.Update(txID, getUserID(c), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Transaction updated"})
}

func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	txID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	if err := h.service.Delete(txID, getUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}

func (h *TransactionHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categoryRepo.FindAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}
