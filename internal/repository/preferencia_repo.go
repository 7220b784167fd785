package repository

import (
	"context"
	"time"

	"aguaya/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PreferenciaRepository interface {
	FindActivaPorCliente(ctx context.Context, clienteID uuid.UUID) (*model.PreferenciaCliente, error)
	DesactivarPorDocumentoTx(ctx context.Context, tx *gorm.DB, documento string) error
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.PreferenciaCliente) error
	ListVencenEntre(ctx context.Context, desde, hasta time.Time) ([]model.PreferenciaCliente, error)
	DB() *gorm.DB
}

type preferenciaRepo struct{ db *gorm.DB }

func NewPreferenciaRepository(db *gorm.DB) PreferenciaRepository { return &preferenciaRepo{db: db} }

func (r *preferenciaRepo) DB() *gorm.DB { return r.db }

func (r *preferenciaRepo) FindActivaPorCliente(ctx context.Context, clienteID uuid.UUID) (*model.PreferenciaCliente, error) {
	var p model.PreferenciaCliente
	err := r.db.WithContext(ctx).
		Where("cliente_id = ? AND activo = ?", clienteID, true).
		Order("created_at DESC").
		First(&p).Error
	return &p, err
}

func (r *preferenciaRepo) DesactivarPorDocumentoTx(ctx context.Context, tx *gorm.DB, documento string) error {
	return conn(ctx, r.db, tx).Model(&model.PreferenciaCliente{}).
		Where("documento = ? AND activo = ?", documento, true).
		Updates(map[string]interface{}{"activo": false, "updated_at": time.Now()}).Error
}

func (r *preferenciaRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.PreferenciaCliente) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *preferenciaRepo) ListVencenEntre(ctx context.Context, desde, hasta time.Time) ([]model.PreferenciaCliente, error) {
	var prefs []model.PreferenciaCliente
	err := r.db.WithContext(ctx).
		Where("activo = ? AND valido_hasta >= ? AND valido_hasta <= ?", true, desde, hasta).
		Order("valido_hasta ASC").
		Find(&prefs).Error
	return prefs, err
}
