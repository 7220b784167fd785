package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestKindsMatchSentinels(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("vale %s no encontrado", "x"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Equal(t, "vale x no encontrado", Message(err))
}

func TestInsufficientBalance(t *testing.T) {
	err := &InsufficientBalanceError{
		Disponible: decimal.NewFromInt(50),
		Solicitado: decimal.NewFromInt(40),
		Msg:        "monto insuficiente",
	}
	assert.True(t, errors.Is(err, ErrInsufficientBalance))
	assert.Equal(t, KindInsufficientBalance, KindOf(err))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(err))
	assert.Contains(t, err.Error(), "disponible 50.00")
}

func TestPersistenceHidesCause(t *testing.T) {
	assert.Nil(t, Persistence("guardar vale", nil))

	err := Persistence("guardar vale", errors.New("pq: connection refused"))
	assert.True(t, errors.Is(err, ErrPersistence))
	env := From(err)
	assert.Equal(t, "Error interno del servidor", env.Detail)
	assert.Equal(t, KindPersistence, env.Kind)

	// typed errors pass through untouched
	v := Validation("monto requerido")
	assert.Same(t, v, Persistence("x", v))
}

func TestPersistenceKeepsInsufficientBalance(t *testing.T) {
	ib := &InsufficientBalanceError{Disponible: decimal.NewFromInt(40), Solicitado: decimal.NewFromInt(50), Msg: "pago insuficiente"}
	err := Persistence("procesar pago", fmt.Errorf("tx: %w", ib))
	assert.Equal(t, KindInsufficientBalance, KindOf(err))
	assert.Equal(t, "pago insuficiente (disponible 40.00, solicitado 50.00)", Message(err))
}
