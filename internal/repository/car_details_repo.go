package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"avtosalon/internal/entity"
)

type CarDetailsRepository interface {
	Create(ctx context.Context, details *entity.CarDetails) error
	FindAll(ctx context.Context) ([]entity.CarDetails, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CarDetails, error)
	Update(ctx context.Context, details *entity.CarDetails) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type carDetailsRepository struct {
	db *gorm.DB
}

func NewCarDetailsRepository(db *gorm.DB) CarDetailsRepository {
	return &carDetailsRepository{db: db}
}

func (r *carDetailsRepository) Create(ctx context.Context, details *entity.CarDetails) error {
	return r.db.WithContext(ctx).Create(details).Error
}

func (r *carDetailsRepository) FindAll(ctx context.Context) ([]entity.CarDetails, error) {
	var details []entity.CarDetails
	err := r.db.WithContext(ctx).
		Preload("Car").
		Order("created_at DESC").
		Find(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *carDetailsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CarDetails, error) {
	var details entity.CarDetails
	err := r.db.WithContext(ctx).
		Preload("Car").
		Where("id = ?", id).
		First(&details).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (r *carDetailsRepository) Update(ctx context.Context, details *entity.CarDetails) error {
	return r.db.WithContext(ctx).Save(details).Error
}

func (r *carDetailsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.CarDetails{}, "id = ?", id).Error
}
