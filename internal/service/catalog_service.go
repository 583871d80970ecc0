package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"avtosalon/internal/cache"
	"avtosalon/internal/entity"
	"avtosalon/internal/repository"
	"avtosalon/internal/storage"
)

const (
	cacheKeyCategories = "catalog:categories"
	cacheKeyCars       = "catalog:cars"
	cacheKeyCarDetails = "catalog:car_details"

	catalogCacheTTL = 5 * time.Minute
)

const (
	uploadDirCategories = "categories"
	uploadDirCars       = "cars"
)

// CatalogService backs the category / car / car-details controllers. The
// operations are plain store round-trips with image side effects; listings
// go through the redis cache when one is configured.
type CatalogService struct {
	categories repository.CategoryRepository
	cars       repository.CarRepository
	details    repository.CarDetailsRepository
	images     *storage.ImageStore
	cache      *cache.Cache
	log        *logrus.Logger
}

func NewCatalogService(
	categories repository.CategoryRepository,
	cars repository.CarRepository,
	details repository.CarDetailsRepository,
	images *storage.ImageStore,
	c *cache.Cache,
	log *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		cars:       cars,
		details:    details,
		images:     images,
		cache:      c,
		log:        log,
	}
}

// ---- categories ----

func (s *CatalogService) CreateCategory(ctx context.Context, brand string, image *multipart.FileHeader) (*entity.Category, error) {
	if image == nil {
		return nil, ErrImageRequired
	}
	path, err := s.images.Save(image, uploadDirCategories)
	if err != nil {
		return nil, err
	}

	category := &entity.Category{Brand: brand, Image: path}
	if err := s.categories.Create(ctx, category); err != nil {
		s.removeImage(path)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBrandTaken
		}
		return nil, err
	}
	s.invalidate(ctx, cacheKeyCategories)
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	if s.cached(ctx, cacheKeyCategories, &categories) {
		return categories, nil
	}
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cacheKeyCategories, categories)
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, brand string, image *multipart.FileHeader) (*entity.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if brand != "" {
		category.Brand = brand
	}
	oldImage := ""
	if image != nil {
		path, err := s.images.Save(image, uploadDirCategories)
		if err != nil {
			return nil, err
		}
		oldImage = category.Image
		category.Image = path
	}

	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBrandTaken
		}
		return nil, err
	}
	if oldImage != "" {
		s.removeImage(oldImage)
	}
	s.invalidate(ctx, cacheKeyCategories)
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.removeImage(category.Image)
	// cascade may have taken cars and details with it
	s.invalidate(ctx, cacheKeyCategories, cacheKeyCars, cacheKeyCarDetails)
	return category, nil
}

// ---- cars ----

type CarInput struct {
	CategoryID uuid.UUID
	Model      string
	Price      float64
}

func (s *CatalogService) CreateCar(ctx context.Context, input CarInput, image *multipart.FileHeader) (*entity.Car, error) {
	if image == nil {
		return nil, ErrImageRequired
	}
	category, err := s.categories.FindByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	path, err := s.images.Save(image, uploadDirCars)
	if err != nil {
		return nil, err
	}
	car := &entity.Car{
		CategoryID: input.CategoryID,
		Model:      input.Model,
		Price:      input.Price,
		Image:      path,
	}
	if err := s.cars.Create(ctx, car); err != nil {
		s.removeImage(path)
		return nil, err
	}
	s.invalidate(ctx, cacheKeyCars)
	return s.cars.FindByID(ctx, car.ID)
}

func (s *CatalogService) ListCars(ctx context.Context) ([]entity.Car, error) {
	var cars []entity.Car
	if s.cached(ctx, cacheKeyCars, &cars) {
		return cars, nil
	}
	cars, err := s.cars.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cacheKeyCars, cars)
	return cars, nil
}

func (s *CatalogService) ListCarsByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Car, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return s.cars.FindByCategory(ctx, categoryID)
}

func (s *CatalogService) GetCar(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, ErrCarNotFound
	}
	return car, nil
}

type CarUpdate struct {
	CategoryID *uuid.UUID
	Model      *string
	Price      *float64
	Available  *bool
}

func (s *CatalogService) UpdateCar(ctx context.Context, id uuid.UUID, update CarUpdate, image *multipart.FileHeader) (*entity.Car, error) {
	car, err := s.GetCar(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *update.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
		car.CategoryID = *update.CategoryID
	}
	if update.Model != nil {
		car.Model = *update.Model
	}
	if update.Price != nil {
		car.Price = *update.Price
	}
	if update.Available != nil {
		car.Available = *update.Available
	}

	oldImage := ""
	if image != nil {
		path, err := s.images.Save(image, uploadDirCars)
		if err != nil {
			return nil, err
		}
		oldImage = car.Image
		car.Image = path
	}

	car.Category = entity.Category{}
	if err := s.cars.Update(ctx, car); err != nil {
		return nil, err
	}
	if oldImage != "" {
		s.removeImage(oldImage)
	}
	s.invalidate(ctx, cacheKeyCars)
	return s.cars.FindByID(ctx, id)
}

func (s *CatalogService) DeleteCar(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	car, err := s.GetCar(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cars.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.removeImage(car.Image)
	s.invalidate(ctx, cacheKeyCars, cacheKeyCarDetails)
	return car, nil
}

// ---- car details ----

type CarDetailsInput struct {
	CarID       uuid.UUID
	Tinting     string
	Motor       string
	Year        int
	Color       string
	Distance    int
	Gearbox     string
	Description string
}

// CreateCarDetails derives marka and price from the referenced car and its
// category, matching what the catalog promises about denormalized fields.
func (s *CatalogService) CreateCarDetails(
	ctx context.Context,
	input CarDetailsInput,
	exterior []*multipart.FileHeader,
	interior []*multipart.FileHeader,
) (*entity.CarDetails, error) {
	if len(exterior) == 0 || len(interior) == 0 {
		return nil, ErrImageRequired
	}

	car, err := s.cars.FindByID(ctx, input.CarID)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, ErrCarNotFound
	}

	exteriorPaths, err := s.saveAll(exterior)
	if err != nil {
		return nil, err
	}
	interiorPaths, err := s.saveAll(interior)
	if err != nil {
		s.removeImages(exteriorPaths)
		return nil, err
	}

	tinting := input.Tinting
	if tinting == "" {
		tinting = entity.TintingNone
	}

	details := &entity.CarDetails{
		CarID:          car.ID,
		Marka:          car.Category.Brand,
		Price:          car.Price,
		Tinting:        tinting,
		Motor:          input.Motor,
		Year:           input.Year,
		Color:          input.Color,
		Distance:       input.Distance,
		Gearbox:        input.Gearbox,
		ExteriorImages: datatypes.NewJSONSlice(exteriorPaths),
		InteriorImages: datatypes.NewJSONSlice(interiorPaths),
		Description:    input.Description,
	}
	if err := s.details.Create(ctx, details); err != nil {
		s.removeImages(exteriorPaths)
		s.removeImages(interiorPaths)
		return nil, err
	}
	s.invalidate(ctx, cacheKeyCarDetails)
	return s.details.FindByID(ctx, details.ID)
}

func (s *CatalogService) ListCarDetails(ctx context.Context) ([]entity.CarDetails, error) {
	var details []entity.CarDetails
	if s.cached(ctx, cacheKeyCarDetails, &details) {
		return details, nil
	}
	details, err := s.details.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cacheKeyCarDetails, details)
	return details, nil
}

func (s *CatalogService) GetCarDetails(ctx context.Context, id uuid.UUID) (*entity.CarDetails, error) {
	details, err := s.details.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, ErrCarDetailsNotFound
	}
	return details, nil
}

type CarDetailsUpdate struct {
	Tinting     *string
	Motor       *string
	Year        *int
	Color       *string
	Distance    *int
	Gearbox     *string
	Description *string
}

func (s *CatalogService) UpdateCarDetails(
	ctx context.Context,
	id uuid.UUID,
	update CarDetailsUpdate,
	exterior []*multipart.FileHeader,
	interior []*multipart.FileHeader,
) (*entity.CarDetails, error) {
	details, err := s.GetCarDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Tinting != nil {
		details.Tinting = *update.Tinting
	}
	if update.Motor != nil {
		details.Motor = *update.Motor
	}
	if update.Year != nil {
		details.Year = *update.Year
	}
	if update.Color != nil {
		details.Color = *update.Color
	}
	if update.Distance != nil {
		details.Distance = *update.Distance
	}
	if update.Gearbox != nil {
		details.Gearbox = *update.Gearbox
	}
	if update.Description != nil {
		details.Description = *update.Description
	}

	var replaced []string
	if len(exterior) > 0 {
		paths, err := s.saveAll(exterior)
		if err != nil {
			return nil, err
		}
		replaced = append(replaced, details.ExteriorImages...)
		details.ExteriorImages = datatypes.NewJSONSlice(paths)
	}
	if len(interior) > 0 {
		paths, err := s.saveAll(interior)
		if err != nil {
			return nil, err
		}
		replaced = append(replaced, details.InteriorImages...)
		details.InteriorImages = datatypes.NewJSONSlice(paths)
	}

	details.Car = entity.Car{}
	if err := s.details.Update(ctx, details); err != nil {
		return nil, err
	}
	s.removeImages(replaced)
	s.invalidate(ctx, cacheKeyCarDetails)
	return s.details.FindByID(ctx, id)
}

func (s *CatalogService) DeleteCarDetails(ctx context.Context, id uuid.UUID) (*entity.CarDetails, error) {
	details, err := s.GetCarDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.details.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.removeImages(details.ExteriorImages)
	s.removeImages(details.InteriorImages)
	s.invalidate(ctx, cacheKeyCarDetails)
	return details, nil
}

// ---- helpers ----

func (s *CatalogService) saveAll(files []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		path, err := s.images.Save(file, uploadDirCars)
		if err != nil {
			s.removeImages(paths)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *CatalogService) removeImage(path string) {
	if path == "" {
		return
	}
	if err := s.images.Remove(path); err != nil {
		s.logger().WithError(err).WithField("path", path).Warn("image cleanup failed")
	}
}

func (s *CatalogService) removeImages(paths []string) {
	for _, path := range paths {
		s.removeImage(path)
	}
}

func (s *CatalogService) cached(ctx context.Context, key string, result any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, result)
	if err != nil {
		s.logger().WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	return ok
}

func (s *CatalogService) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, catalogCacheTTL); err != nil {
		s.logger().WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func (s *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger().WithError(err).Warn("cache invalidation failed")
	}
}

func (s *CatalogService) logger() *logrus.Logger {
	if s.log == nil {
		return logrus.StandardLogger()
	}
	return s.log
}
