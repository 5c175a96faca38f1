package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jairoandre/maggie/internal/core/domain"
)

type AccountHandler struct {
	Repo Ledger
}

type SaldoResponse struct {
	Total       int64  `json:"total"`
	DataExtrato string `json:"data_extrato"`
	Limite      int64  `json:"limite"`
}

type TransacaoResponse struct {
	Valor       int64  `json:"valor"`
	Tipo        string `json:"tipo"`
	Descricao   string `json:"descricao"`
	RealizadaEm string `json:"realizada_em"`
}

type ExtratoResponse struct {
	Saldo             SaldoResponse       `json:"saldo"`
	UltimasTransacoes []TransacaoResponse `json:"ultimas_transacoes"`
}

// GetStatement handles GET /clientes/:id/extrato.
func (h *AccountHandler) GetStatement(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
	}

	statement, err := h.Repo.Statement(c.Context(), id)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
	}
	if err != nil {
		slog.Error("Statement read failed", "error", err, "account_id", id)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	ultimas := make([]TransacaoResponse, 0, len(statement.Transactions))
	for _, t := range statement.Transactions {
		ultimas = append(ultimas, TransacaoResponse{
			Valor:       t.Amount,
			Tipo:        t.Kind,
			Descricao:   t.Description,
			RealizadaEm: domain.FormatTimestamp(t.CreatedAt),
		})
	}

	return c.JSON(ExtratoResponse{
		Saldo: SaldoResponse{
			Total:       statement.Balance.Total,
			DataExtrato: domain.FormatTimestamp(statement.GeneratedAt),
			Limite:      statement.Balance.CreditLimit,
		},
		UltimasTransacoes: ultimas,
	})
}
