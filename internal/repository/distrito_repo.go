package repository

import (
	"context"

	"aguaya/internal/model"

	"gorm.io/gorm"
)

type DistritoRepository interface {
	Create(ctx context.Context, d *model.Distrito) error
	Update(ctx context.Context, d *model.Distrito) error
	FindByNombre(ctx context.Context, nombre string) (*model.Distrito, error)
	// FindActivoPorNombre only resolves active districts; inactive ones count as unknown.
	FindActivoPorNombre(ctx context.Context, tx *gorm.DB, nombre string) (*model.Distrito, error)
	List(ctx context.Context) ([]model.Distrito, error)
}

type distritoRepo struct{ db *gorm.DB }

func NewDistritoRepository(db *gorm.DB) DistritoRepository { return &distritoRepo{db: db} }

func (r *distritoRepo) Create(ctx context.Context, d *model.Distrito) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *distritoRepo) Update(ctx context.Context, d *model.Distrito) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *distritoRepo) FindByNombre(ctx context.Context, nombre string) (*model.Distrito, error) {
	var d model.Distrito
	err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&d).Error
	return &d, err
}

func (r *distritoRepo) FindActivoPorNombre(ctx context.Context, tx *gorm.DB, nombre string) (*model.Distrito, error) {
	var d model.Distrito
	err := conn(ctx, r.db, tx).Where("nombre = ? AND activo = ?", nombre, true).First(&d).Error
	return &d, err
}

func (r *distritoRepo) List(ctx context.Context) ([]model.Distrito, error) {
	var distritos []model.Distrito
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&distritos).Error
	return distritos, err
}
