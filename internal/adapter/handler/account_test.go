package handler_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jairoandre/maggie/internal/adapter/handler/mocks"
	"github.com/jairoandre/maggie/internal/core/domain"
)

func getStatement(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestGetStatement_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generatedAt := time.Date(2024, 2, 13, 10, 0, 0, 123_000_000, time.UTC)
	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().
		Statement(gomock.Any(), int64(1)).
		Return(domain.Statement{
			Balance:     domain.Balance{Total: -500, CreditLimit: 1000},
			GeneratedAt: generatedAt,
			Transactions: []domain.Transaction{
				{Amount: -1000, Kind: "d", Description: "aluguel", CreatedAt: generatedAt.Add(-time.Minute)},
				{Amount: 500, Kind: "c", Description: "pix", CreatedAt: generatedAt.Add(-2 * time.Minute)},
			},
		}, nil)

	status, body := getStatement(t, newApp(ledger), "/clientes/1/extrato")

	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{
		"saldo": {"total": -500, "data_extrato": "2024-02-13T10:00:00.123Z", "limite": 1000},
		"ultimas_transacoes": [
			{"valor": -1000, "tipo": "d", "descricao": "aluguel", "realizada_em": "2024-02-13T09:59:00.123Z"},
			{"valor": 500, "tipo": "c", "descricao": "pix", "realizada_em": "2024-02-13T09:58:00.123Z"}
		]
	}`, body)
}

func TestGetStatement_NoTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().
		Statement(gomock.Any(), int64(2)).
		Return(domain.Statement{
			Balance:      domain.Balance{Total: 0, CreditLimit: 80000},
			GeneratedAt:  time.Date(2024, 2, 13, 10, 0, 0, 0, time.UTC),
			Transactions: []domain.Transaction{},
		}, nil)

	status, body := getStatement(t, newApp(ledger), "/clientes/2/extrato")

	assert.Equal(t, fiber.StatusOK, status)
	// An account with no history still gets an empty array, not null.
	assert.Contains(t, body, `"ultimas_transacoes":[]`)
}

func TestGetStatement_AccountNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().
		Statement(gomock.Any(), int64(999)).
		Return(domain.Statement{}, domain.ErrAccountNotFound)

	status, _ := getStatement(t, newApp(ledger), "/clientes/999/extrato")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestGetStatement_NonNumericID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)

	status, _ := getStatement(t, newApp(ledger), "/clientes/abc/extrato")
	assert.Equal(t, fiber.StatusNotFound, status)
}
