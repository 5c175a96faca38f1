package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jairoandre/maggie/internal/core/domain"
)

type TransactionHandler struct {
	Repo Ledger
}

// TransacaoRequest defines what the client sends us
type TransacaoRequest struct {
	Valor     int64  `json:"valor"` // Cents!
	Tipo      string `json:"tipo"`
	Descricao string `json:"descricao"`
}

type TransacaoResult struct {
	Limite int64 `json:"limite"`
	Saldo  int64 `json:"saldo"`
}

// PostTransaction handles POST /clientes/:id/transacoes.
func (h *TransactionHandler) PostTransaction(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
	}

	// A non-integer valor (e.g. 1.2) fails to parse, which is an
	// unprocessable request here rather than a bad one.
	var req TransacaoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "invalid request body"})
	}

	tr := domain.TransactionRequest{
		Amount:      req.Valor,
		Kind:        req.Tipo,
		Description: req.Descricao,
	}
	if err := tr.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	balance, err := h.Repo.PostTransaction(c.Context(), id, tr)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
	case errors.Is(err, domain.ErrOverdraftLimit):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		slog.Error("Transaction post failed", "error", err, "account_id", id)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(TransacaoResult{Limite: balance.CreditLimit, Saldo: balance.Total})
}
