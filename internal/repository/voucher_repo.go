package repository

import (
	"context"
	"time"

	"aguaya/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoucherRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Voucher) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Voucher, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Voucher, error)
	// UpdateEstadoTx moves v from estadoPrevio to v.Estado guarded by Version.
	UpdateEstadoTx(ctx context.Context, tx *gorm.DB, v *model.Voucher, estadoPrevio string) error
	// ListEnVentana returns a client's vouchers created in [desde, hasta), oldest first.
	// An empty estado matches every status.
	ListEnVentana(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, desde, hasta time.Time, estado string, lock bool) ([]model.Voucher, error)
	// MarcarPagadosTx settles the given vouchers; only rows still "entregado" are touched.
	MarcarPagadosTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, metodo string, referencia *string, at time.Time) (int64, error)
	ListPagadosPorCliente(ctx context.Context, clienteID uuid.UUID) ([]model.Voucher, error)
	ListPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]model.Voucher, error)
	DB() *gorm.DB
}

type voucherRepo struct{ db *gorm.DB }

func NewVoucherRepository(db *gorm.DB) VoucherRepository { return &voucherRepo{db: db} }

func (r *voucherRepo) DB() *gorm.DB { return r.db }

func (r *voucherRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Voucher) error {
	return conn(ctx, r.db, tx).Create(v).Error
}

func (r *voucherRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Voucher, error) {
	var v model.Voucher
	err := conn(ctx, r.db, tx).Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *voucherRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Voucher, error) {
	var v model.Voucher
	err := forUpdate(conn(ctx, r.db, tx)).Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *voucherRepo) UpdateEstadoTx(ctx context.Context, tx *gorm.DB, v *model.Voucher, estadoPrevio string) error {
	now := time.Now()
	res := conn(ctx, r.db, tx).Model(&model.Voucher{}).
		Where("id = ? AND version = ? AND estado = ?", v.ID, v.Version, estadoPrevio).
		Updates(map[string]interface{}{
			"estado":          v.Estado,
			"entregado_at":    v.EntregadoAt,
			"pagado_at":       v.PagadoAt,
			"metodo_pago":     v.MetodoPago,
			"referencia_pago": v.ReferenciaPago,
			"version":         v.Version + 1,
			"updated_at":      now,
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

func (r *voucherRepo) ListEnVentana(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, desde, hasta time.Time, estado string, lock bool) ([]model.Voucher, error) {
	var vouchers []model.Voucher
	q := conn(ctx, r.db, tx)
	if lock {
		q = forUpdate(q)
	}
	q = q.Where("cliente_id = ? AND created_at >= ? AND created_at < ?", clienteID, desde, hasta)
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	err := q.Order("created_at ASC").Order("id ASC").Find(&vouchers).Error
	return vouchers, err
}

func (r *voucherRepo) MarcarPagadosTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, metodo string, referencia *string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := conn(ctx, r.db, tx).Model(&model.Voucher{}).
		Where("id IN ? AND estado = ?", ids, model.VoucherEntregado).
		Updates(map[string]interface{}{
			"estado":          model.VoucherPagado,
			"pagado_at":       at,
			"metodo_pago":     metodo,
			"referencia_pago": referencia,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      at,
		})
	return res.RowsAffected, res.Error
}

func (r *voucherRepo) ListPagadosPorCliente(ctx context.Context, clienteID uuid.UUID) ([]model.Voucher, error) {
	var vouchers []model.Voucher
	err := r.db.WithContext(ctx).
		Where("cliente_id = ? AND estado = ? AND pagado_at IS NOT NULL", clienteID, model.VoucherPagado).
		Order("pagado_at DESC").
		Find(&vouchers).Error
	return vouchers, err
}

func (r *voucherRepo) ListPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]model.Voucher, error) {
	var vouchers []model.Voucher
	q := r.db.WithContext(ctx).Where("cliente_id = ?", clienteID)
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	err := q.Order("created_at DESC").Find(&vouchers).Error
	return vouchers, err
}
