package repository

import (
	"context"
	"time"

	"aguaya/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SuscripcionRepository interface {
	CreatePlan(ctx context.Context, p *model.PlanSuscripcion) error
	FindPlanByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PlanSuscripcion, error)
	ListPlanes(ctx context.Context, soloActivos bool) ([]model.PlanSuscripcion, error)

	CreateTx(ctx context.Context, tx *gorm.DB, s *model.Suscripcion) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Suscripcion, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Suscripcion, error)
	// UpdateTx is a compare-and-swap on Version, like ValeRepository.UpdateTx.
	UpdateTx(ctx context.Context, tx *gorm.DB, s *model.Suscripcion) error
	ListPorCliente(ctx context.Context, clienteID uuid.UUID) ([]model.Suscripcion, error)
	ListActivasPorCliente(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID) ([]model.Suscripcion, error)
	DB() *gorm.DB
}

type suscripcionRepo struct{ db *gorm.DB }

func NewSuscripcionRepository(db *gorm.DB) SuscripcionRepository { return &suscripcionRepo{db: db} }

func (r *suscripcionRepo) DB() *gorm.DB { return r.db }

func (r *suscripcionRepo) CreatePlan(ctx context.Context, p *model.PlanSuscripcion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *suscripcionRepo) FindPlanByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PlanSuscripcion, error) {
	var p model.PlanSuscripcion
	err := conn(ctx, r.db, tx).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *suscripcionRepo) ListPlanes(ctx context.Context, soloActivos bool) ([]model.PlanSuscripcion, error) {
	var planes []model.PlanSuscripcion
	q := r.db.WithContext(ctx).Order("precio_mensual ASC")
	if soloActivos {
		q = q.Where("activo = ?", true)
	}
	err := q.Find(&planes).Error
	return planes, err
}

func (r *suscripcionRepo) CreateTx(ctx context.Context, tx *gorm.DB, s *model.Suscripcion) error {
	return conn(ctx, r.db, tx).Omit("Plan").Create(s).Error
}

func (r *suscripcionRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Suscripcion, error) {
	var s model.Suscripcion
	err := conn(ctx, r.db, tx).Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *suscripcionRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Suscripcion, error) {
	var s model.Suscripcion
	err := forUpdate(conn(ctx, r.db, tx)).Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *suscripcionRepo) UpdateTx(ctx context.Context, tx *gorm.DB, s *model.Suscripcion) error {
	now := time.Now()
	res := conn(ctx, r.db, tx).Model(&model.Suscripcion{}).
		Where("id = ? AND version = ?", s.ID, s.Version).
		Updates(map[string]interface{}{
			"botellas_entregadas": s.BotellasEntregadas,
			"botellas_restantes":  s.BotellasRestantes,
			"entregadas_dia":      s.EntregadasDia,
			"ultima_entrega_at":   s.UltimaEntregaAt,
			"fecha_fin":           s.FechaFin,
			"estado":              s.Estado,
			"version":             s.Version + 1,
			"updated_at":          now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	s.Version++
	s.UpdatedAt = now
	return nil
}

func (r *suscripcionRepo) ListPorCliente(ctx context.Context, clienteID uuid.UUID) ([]model.Suscripcion, error) {
	var subs []model.Suscripcion
	err := r.db.WithContext(ctx).Where("cliente_id = ?", clienteID).Order("fecha_inicio DESC").Find(&subs).Error
	return subs, err
}

func (r *suscripcionRepo) ListActivasPorCliente(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID) ([]model.Suscripcion, error) {
	var subs []model.Suscripcion
	err := conn(ctx, r.db, tx).
		Where("cliente_id = ? AND estado IN ?", clienteID, []string{model.SuscripcionActiva, model.SuscripcionPausada}).
		Find(&subs).Error
	return subs, err
}
