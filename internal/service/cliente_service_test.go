package service

import (
	"context"
	"testing"

	"aguaya/internal/apierror"
	"aguaya/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClienteCrearYActualizar(t *testing.T) {
	l := nuevoLedger(t)
	svc := NewClienteService(l.clientes, l.distritos)
	ctx := context.Background()

	c, err := svc.Crear(ctx, dto.CrearClienteRequest{Documento: "10203040", Nombre: "Rosa Ramírez", Distrito: "Callería"})
	require.NoError(t, err)
	assert.True(t, c.Activo)

	_, err = svc.Crear(ctx, dto.CrearClienteRequest{Documento: "10203040", Nombre: "Otra"})
	assertKind(t, err, apierror.KindConflict)

	id := uuid.MustParse(c.ID)
	inactivo := false
	distrito := "Yarinacocha"
	c, err = svc.Actualizar(ctx, id, dto.ActualizarClienteRequest{Activo: &inactivo, Distrito: &distrito})
	require.NoError(t, err)
	assert.False(t, c.Activo)

	stored, err := svc.ObtenerPorID(ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.Activo)
	assert.Equal(t, "Yarinacocha", stored.Distrito)

	activos, err := svc.Listar(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, activos)
	todos, err := svc.Listar(ctx, false)
	require.NoError(t, err)
	assert.Len(t, todos, 1)

	_, err = svc.ObtenerPorID(ctx, uuid.New())
	assertKind(t, err, apierror.KindNotFound)
}

func TestGuardarDistritoUpsert(t *testing.T) {
	l := nuevoLedger(t)
	svc := NewClienteService(l.clientes, l.distritos)
	ctx := context.Background()

	d, err := svc.GuardarDistrito(ctx, dto.GuardarDistritoRequest{Nombre: "Callería", TarifaDelivery: dec("1.50")})
	require.NoError(t, err)
	assert.True(t, d.Activo)

	inactivo := false
	d2, err := svc.GuardarDistrito(ctx, dto.GuardarDistritoRequest{Nombre: "Callería", TarifaDelivery: dec("2.00"), Activo: &inactivo})
	require.NoError(t, err)
	assert.Equal(t, d.ID, d2.ID)
	assert.True(t, d2.TarifaDelivery.Equal(dec("2.00")))
	assert.False(t, d2.Activo)

	_, err = l.distritos.FindActivoPorNombre(ctx, nil, "Callería")
	assert.Error(t, err)

	nuevoInactivo, err := svc.GuardarDistrito(ctx, dto.GuardarDistritoRequest{Nombre: "Manantay", TarifaDelivery: dec("3"), Activo: &inactivo})
	require.NoError(t, err)
	assert.False(t, nuevoInactivo.Activo)

	_, err = svc.GuardarDistrito(ctx, dto.GuardarDistritoRequest{Nombre: "Masisea", TarifaDelivery: dec("-1")})
	assertKind(t, err, apierror.KindValidation)

	_, err = svc.GuardarDistrito(ctx, dto.GuardarDistritoRequest{Nombre: "Masisea", TarifaDelivery: dec("1.005")})
	assertKind(t, err, apierror.KindValidation)

	lista, err := svc.ListarDistritos(ctx)
	require.NoError(t, err)
	assert.Len(t, lista, 2)
}
