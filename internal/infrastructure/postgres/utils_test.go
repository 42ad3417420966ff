package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	for _, code := range []string{codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable} {
		err := fmt.Errorf("get balance for update: %w", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, mapError(err), domain.ErrConflict, code)
	}

	other := fmt.Errorf("x: %w", &pgconn.PgError{Code: "42P01"})
	assert.NotErrorIs(t, mapError(other), domain.ErrConflict)
	assert.NoError(t, mapError(nil))

	overflow := fmt.Errorf("increment balance: %w", &pgconn.PgError{Code: codeNumericOutOfRange})
	assert.ErrorIs(t, mapError(overflow), domain.ErrInvalidInput)
	assert.NotErrorIs(t, mapError(overflow), domain.ErrConflict)

	stock := domain.NewInsufficientStock("s", "l", 1, 2)
	assert.Same(t, stock, mapError(stock))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(errors.New("otro")))
}

func TestAppendPage(t *testing.T) {
	q, args := appendPage("SELECT 1 WHERE a = $1", []any{"x"}, 10, 20)
	assert.Equal(t, "SELECT 1 WHERE a = $1 LIMIT $2 OFFSET $3", q)
	assert.Equal(t, []any{"x", 10, 20}, args)

	q, args = appendPage("SELECT 1", nil, 0, 0)
	assert.Equal(t, "SELECT 1", q)
	assert.Empty(t, args)
}

func TestPayloadCodec(t *testing.T) {
	req := &entity.ApprovalRequest{
		Type: entity.RequestTypeExitApproval,
		Exit: &entity.ExitPayload{SKUID: "sku-1", LocationID: "loc-a", Quantity: 3, MovementTypeID: "t"},
	}
	raw, err := encodePayload(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sku_id":"sku-1","location_id":"loc-a","quantity":3,"movement_type_id":"t"}`, string(raw))

	decoded := &entity.ApprovalRequest{Type: entity.RequestTypeExitApproval}
	require.NoError(t, decodePayload(decoded, raw))
	assert.Equal(t, req.Exit, decoded.Exit)
	assert.Nil(t, decoded.Reversal)

	_, err = encodePayload(&entity.ApprovalRequest{Type: "OTRO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRedactedHost(t *testing.T) {
	assert.Equal(t, "db:5432", redactedHost("postgres://u:secreto@db:5432/x"))
	assert.NotContains(t, redactedHost("postgres://u:secreto@db:5432/x"), "secreto")
}
