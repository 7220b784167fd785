package repository

import (
	"context"
	"time"

	"aguaya/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ValeEstadistica aggregates vales sharing one status.
type ValeEstadistica struct {
	Estado        string
	Cantidad      int64
	Monto         decimal.Decimal
	MontoUsado    decimal.Decimal
	MontoRestante decimal.Decimal
}

type ValeRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Vale) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Vale, error)
	// FindByIDForUpdate locks the row until tx ends (postgres).
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Vale, error)
	// UpdateTx writes v only if its Version is still current, then bumps it.
	// Returns ErrVersionConflict when another writer got there first.
	UpdateTx(ctx context.Context, tx *gorm.DB, v *model.Vale) error
	ListActivosPorClienteFIFO(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, lock bool) ([]model.Vale, error)
	ListPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]model.Vale, error)
	ListActivosVencenEntre(ctx context.Context, desde, hasta time.Time) ([]model.Vale, error)
	ListActivosVencidosAntes(ctx context.Context, t time.Time) ([]model.Vale, error)
	EstadisticasPorEstado(ctx context.Context) ([]ValeEstadistica, error)
	DB() *gorm.DB
}

type valeRepo struct{ db *gorm.DB }

func NewValeRepository(db *gorm.DB) ValeRepository { return &valeRepo{db: db} }

func (r *valeRepo) DB() *gorm.DB { return r.db }

func (r *valeRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Vale) error {
	return conn(ctx, r.db, tx).Create(v).Error
}

func (r *valeRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Vale, error) {
	var v model.Vale
	err := conn(ctx, r.db, tx).Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *valeRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Vale, error) {
	var v model.Vale
	err := forUpdate(conn(ctx, r.db, tx)).Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *valeRepo) UpdateTx(ctx context.Context, tx *gorm.DB, v *model.Vale) error {
	now := time.Now()
	res := conn(ctx, r.db, tx).Model(&model.Vale{}).
		Where("id = ? AND version = ?", v.ID, v.Version).
		Updates(map[string]interface{}{
			"monto":             v.Monto,
			"monto_usado":       v.MontoUsado,
			"monto_restante":    v.MontoRestante,
			"estado":            v.Estado,
			"fecha_vencimiento": v.FechaVencimiento,
			"descripcion":       v.Descripcion,
			"version":           v.Version + 1,
			"updated_at":        now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	v.Version++
	v.UpdatedAt = now
	return nil
}

func (r *valeRepo) ListActivosPorClienteFIFO(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, lock bool) ([]model.Vale, error) {
	var vales []model.Vale
	q := conn(ctx, r.db, tx)
	if lock {
		q = forUpdate(q)
	}
	err := q.Where("cliente_id = ? AND estado = ?", clienteID, model.ValeActivo).
		Order("created_at ASC").Order("id ASC").
		Find(&vales).Error
	return vales, err
}

func (r *valeRepo) ListPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]model.Vale, error) {
	var vales []model.Vale
	q := r.db.WithContext(ctx).Where("cliente_id = ?", clienteID)
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	err := q.Order("created_at DESC").Find(&vales).Error
	return vales, err
}

func (r *valeRepo) ListActivosVencenEntre(ctx context.Context, desde, hasta time.Time) ([]model.Vale, error) {
	var vales []model.Vale
	err := r.db.WithContext(ctx).
		Where("estado = ? AND fecha_vencimiento >= ? AND fecha_vencimiento <= ?", model.ValeActivo, desde, hasta).
		Order("fecha_vencimiento ASC").
		Find(&vales).Error
	return vales, err
}

func (r *valeRepo) ListActivosVencidosAntes(ctx context.Context, t time.Time) ([]model.Vale, error) {
	var vales []model.Vale
	err := r.db.WithContext(ctx).
		Where("estado = ? AND fecha_vencimiento < ?", model.ValeActivo, t).
		Order("fecha_vencimiento ASC").
		Find(&vales).Error
	return vales, err
}

func (r *valeRepo) EstadisticasPorEstado(ctx context.Context) ([]ValeEstadistica, error) {
	var stats []ValeEstadistica
	err := r.db.WithContext(ctx).Model(&model.Vale{}).
		Select("estado, COUNT(*) AS cantidad, COALESCE(SUM(monto), 0) AS monto, " +
			"COALESCE(SUM(monto_usado), 0) AS monto_usado, COALESCE(SUM(monto_restante), 0) AS monto_restante").
		Group("estado").
		Order("estado ASC").
		Scan(&stats).Error
	return stats, err
}
