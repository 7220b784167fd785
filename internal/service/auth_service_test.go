package service

import (
	"context"
	"testing"

	"aguaya/internal/apierror"
	"aguaya/internal/config"
	"aguaya/internal/dto"
	"aguaya/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthLoginYRefresh(t *testing.T) {
	l := nuevoLedger(t)
	cfg := &config.Config{JWTSecret: "secreto-de-prueba", JWTExpirationHours: 1, JWTRefreshHours: 2}
	svc := NewAuthService(l.usuarios, cfg)
	ctx := context.Background()

	u, err := svc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "admin", Nombre: "Administrador", Password: "clave-segura", Rol: model.RolAdministrador,
	})
	require.NoError(t, err)
	assert.True(t, u.Activo)

	_, err = svc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "admin", Nombre: "Otro", Password: "clave-segura", Rol: model.RolRepartidor,
	})
	assertKind(t, err, apierror.KindConflict)

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "clave-segura"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, 3600, login.ExpiresIn)
	assert.Equal(t, model.RolAdministrador, login.User.Rol)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "incorrecta"})
	assert.ErrorIs(t, err, ErrCredenciales)
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "clave-segura"})
	assert.ErrorIs(t, err, ErrCredenciales)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, refreshed.User.ID)

	_, err = svc.Refresh(ctx, "no-es-un-token")
	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestAuthDesactivarYReactivarUsuario(t *testing.T) {
	l := nuevoLedger(t)
	svc := NewAuthService(l.usuarios, &config.Config{JWTSecret: "x", JWTExpirationHours: 1, JWTRefreshHours: 1})
	ctx := context.Background()

	u, err := svc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "moto1", Nombre: "Repartidor", Password: "clave-segura", Rol: model.RolRepartidor,
	})
	require.NoError(t, err)
	id := uuid.MustParse(u.ID)

	require.NoError(t, svc.DesactivarUsuario(ctx, id))
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "moto1", Password: "clave-segura"})
	assert.ErrorIs(t, err, ErrCredenciales)

	activos, err := svc.ListarUsuarios(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, activos)
	todos, err := svc.ListarUsuarios(ctx, true)
	require.NoError(t, err)
	assert.Len(t, todos, 1)

	require.NoError(t, svc.ReactivarUsuario(ctx, id))
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "moto1", Password: "clave-segura"})
	assert.NoError(t, err)

	assertKind(t, svc.DesactivarUsuario(ctx, uuid.New()), apierror.KindNotFound)
}
