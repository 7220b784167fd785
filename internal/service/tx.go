package service

import (
	"context"
	"errors"

	"aguaya/internal/apierror"
	"aguaya/internal/infra"
	"aguaya/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// withClienteLock serializes settlements of one client across instances.
func withClienteLock(ctx context.Context, locker infra.Locker, clienteID uuid.UUID, fn func() error) error {
	release, err := locker.Obtain(ctx, infra.ClienteLockKey(clienteID.String()))
	if errors.Is(err, infra.ErrLockNotObtained) {
		return apierror.Conflict("hay otro pago en curso para el cliente %s", clienteID)
	}
	if err != nil {
		return apierror.Persistence("obtener lock del cliente", err)
	}
	defer release()
	return fn()
}

// storeErr maps a repository error: record-not-found becomes notFound,
// a lost compare-and-swap becomes a conflict, anything else a persistence error.
func storeErr(err error, notFound *apierror.Error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, repository.ErrVersionConflict):
		return apierror.Conflict("el registro fue modificado concurrentemente, reintente la operación")
	default:
		return apierror.Persistence(op, err)
	}
}

// validarMonto rejects amounts finer than a cent.
func validarMonto(campo string, m decimal.Decimal) error {
	if !m.Equal(m.Round(2)) {
		return apierror.Validation("%s admite como máximo 2 decimales", campo)
	}
	return nil
}

// parseID parses a required uuid field of a request.
func parseID(campo, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, apierror.Validation("%s es requerido", campo)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierror.Validation("%s inválido", campo)
	}
	return id, nil
}

func ptrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
