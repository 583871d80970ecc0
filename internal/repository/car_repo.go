package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"avtosalon/internal/entity"
)

type CarRepository interface {
	Create(ctx context.Context, car *entity.Car) error
	FindAll(ctx context.Context) ([]entity.Car, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Car, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error)
	Update(ctx context.Context, car *entity.Car) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type carRepository struct {
	db *gorm.DB
}

func NewCarRepository(db *gorm.DB) CarRepository {
	return &carRepository{db: db}
}

func (r *carRepository) Create(ctx context.Context, car *entity.Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

func (r *carRepository) FindAll(ctx context.Context) ([]entity.Car, error) {
	var cars []entity.Car
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Find(&cars).Error
	if err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *carRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Car, error) {
	var cars []entity.Car
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Find(&cars).Error
	if err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *carRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	var car entity.Car
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", id).
		First(&car).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *carRepository) Update(ctx context.Context, car *entity.Car) error {
	return r.db.WithContext(ctx).Save(car).Error
}

func (r *carRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Car{}, "id = ?", id).Error
}
