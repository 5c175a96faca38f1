package handler_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jairoandre/maggie/internal/adapter/handler"
	"github.com/jairoandre/maggie/internal/adapter/handler/mocks"
	"github.com/jairoandre/maggie/internal/core/domain"
)

func newApp(l handler.Ledger) *fiber.App {
	app := fiber.New()
	accountHandler := &handler.AccountHandler{Repo: l}
	transactionHandler := &handler.TransactionHandler{Repo: l}
	app.Get("/clientes/:id/extrato", accountHandler.GetStatement)
	app.Post("/clientes/:id/transacoes", transactionHandler.PostTransaction)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestPostTransaction_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().
		PostTransaction(gomock.Any(), int64(1), domain.TransactionRequest{
			Amount:      1000,
			Kind:        "d",
			Description: "test",
		}).
		Return(domain.Balance{Total: -1000, CreditLimit: 1000}, nil)

	status, body := postJSON(t, newApp(ledger),
		"/clientes/1/transacoes", `{"valor":1000,"tipo":"d","descricao":"test"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"limite":1000,"saldo":-1000}`, body)
}

func TestPostTransaction_ValidationFailuresNeverTouchTheStore(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty description", `{"valor":100,"tipo":"c","descricao":""}`},
		{"missing description", `{"valor":100,"tipo":"c"}`},
		{"description too long", `{"valor":100,"tipo":"c","descricao":"abcdefghijk"}`},
		{"bad tipo", `{"valor":100,"tipo":"x","descricao":"test"}`},
		{"zero valor", `{"valor":0,"tipo":"c","descricao":"test"}`},
		{"negative valor", `{"valor":-10,"tipo":"d","descricao":"test"}`},
		{"fractional valor", `{"valor":1.2,"tipo":"c","descricao":"test"}`},
		{"string valor", `{"valor":"abc","tipo":"c","descricao":"test"}`},
		{"not json", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No EXPECT: any call to the ledger fails the test.
			ledger := mocks.NewMockLedger(ctrl)

			status, _ := postJSON(t, newApp(ledger), "/clientes/1/transacoes", tt.body)
			assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		})
	}
}

func TestPostTransaction_AccountNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().
		PostTransaction(gomock.Any(), int64(999), gomock.Any()).
		Return(domain.Balance{}, domain.ErrAccountNotFound)

	status, _ := postJSON(t, newApp(ledger),
		"/clientes/999/transacoes", `{"valor":100,"tipo":"c","descricao":"test"}`)

	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestPostTransaction_NonNumericID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)

	status, _ := postJSON(t, newApp(ledger),
		"/clientes/abc/transacoes", `{"valor":100,"tipo":"c","descricao":"test"}`)

	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestPostTransaction_OverdraftLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().
		PostTransaction(gomock.Any(), int64(1), gomock.Any()).
		Return(domain.Balance{}, domain.ErrOverdraftLimit)

	status, _ := postJSON(t, newApp(ledger),
		"/clientes/1/transacoes", `{"valor":1,"tipo":"d","descricao":"x"}`)

	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestPostTransaction_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().
		PostTransaction(gomock.Any(), int64(1), gomock.Any()).
		Return(domain.Balance{}, &domain.StoreError{Op: "commit", Err: errors.New("connection reset")})

	status, body := postJSON(t, newApp(ledger),
		"/clientes/1/transacoes", `{"valor":100,"tipo":"c","descricao":"test"}`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	// Driver error text must not leak to the caller.
	assert.NotContains(t, body, "connection reset")
}
