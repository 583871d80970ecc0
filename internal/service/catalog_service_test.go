package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avtosalon/config"
	"avtosalon/internal/cache"
	"avtosalon/internal/entity"
	"avtosalon/internal/repository"
	"avtosalon/internal/storage"
)

func uploadFile(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["image"][0]
}

type catalogFixture struct {
	root    string
	service *CatalogService
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	db := newTestDB(t)
	root := t.TempDir()
	svc := NewCatalogService(
		repository.NewCategoryRepository(db),
		repository.NewCarRepository(db),
		repository.NewCarDetailsRepository(db),
		&storage.ImageStore{Root: root},
		nil,
		quietLogger(),
	)
	return &catalogFixture{root: root, service: svc}
}

// diskPath maps a public /uploads path back onto the fixture's temp root.
func (f *catalogFixture) diskPath(publicPath string) string {
	return filepath.Join(f.root, strings.TrimPrefix(publicPath, "/uploads/"))
}

func (f *catalogFixture) createCategory(t *testing.T, brand string) *entity.Category {
	t.Helper()
	category, err := f.service.CreateCategory(context.Background(), brand, uploadFile(t, "brand.png"))
	require.NoError(t, err)
	return category
}

func (f *catalogFixture) createCar(t *testing.T, categoryID uuid.UUID, model string, price float64) *entity.Car {
	t.Helper()
	car, err := f.service.CreateCar(context.Background(), CarInput{
		CategoryID: categoryID,
		Model:      model,
		Price:      price,
	}, uploadFile(t, "car.png"))
	require.NoError(t, err)
	return car
}

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	category := f.createCategory(t, "BMW")
	assert.True(t, strings.HasPrefix(category.Image, "/uploads/categories/"))
	assert.FileExists(t, f.diskPath(category.Image))

	_, err := f.service.CreateCategory(ctx, "BMW", uploadFile(t, "dup.png"))
	assert.ErrorIs(t, err, ErrBrandTaken)

	_, err = f.service.CreateCategory(ctx, "Audi", nil)
	assert.ErrorIs(t, err, ErrImageRequired)

	list, err := f.service.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	updated, err := f.service.UpdateCategory(ctx, category.ID, "BMW Group", uploadFile(t, "new.png"))
	require.NoError(t, err)
	assert.Equal(t, "BMW Group", updated.Brand)
	assert.NotEqual(t, category.Image, updated.Image)
	assert.NoFileExists(t, f.diskPath(category.Image))
	assert.FileExists(t, f.diskPath(updated.Image))

	deleted, err := f.service.DeleteCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.NoFileExists(t, f.diskPath(deleted.Image))

	_, err = f.service.GetCategory(ctx, category.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCarCRUD(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	category := f.createCategory(t, "BMW")

	_, err := f.service.CreateCar(ctx, CarInput{CategoryID: uuid.New(), Model: "X5", Price: 50000}, uploadFile(t, "car.png"))
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	car := f.createCar(t, category.ID, "X5", 50000)
	assert.Equal(t, "BMW", car.Category.Brand)
	assert.True(t, car.Available)
	assert.FileExists(t, f.diskPath(car.Image))

	byCategory, err := f.service.ListCarsByCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	_, err = f.service.ListCarsByCategory(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	newPrice := 45000.0
	unavailable := false
	updated, err := f.service.UpdateCar(ctx, car.ID, CarUpdate{Price: &newPrice, Available: &unavailable}, nil)
	require.NoError(t, err)
	assert.Equal(t, 45000.0, updated.Price)
	assert.False(t, updated.Available)
	assert.Equal(t, "X5", updated.Model)
	assert.Equal(t, "BMW", updated.Category.Brand)

	deleted, err := f.service.DeleteCar(ctx, car.ID)
	require.NoError(t, err)
	assert.NoFileExists(t, f.diskPath(deleted.Image))

	_, err = f.service.GetCar(ctx, car.ID)
	assert.ErrorIs(t, err, ErrCarNotFound)
}

func TestCarDetailsDerivesMarkaAndPrice(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	category := f.createCategory(t, "Chevrolet")
	car := f.createCar(t, category.ID, "Malibu", 30000)

	details, err := f.service.CreateCarDetails(ctx, CarDetailsInput{
		CarID:    car.ID,
		Motor:    "2.0",
		Year:     2023,
		Color:    "black",
		Distance: 15000,
		Gearbox:  entity.GearboxAutomatic,
	},
		[]*multipart.FileHeader{uploadFile(t, "ext1.png"), uploadFile(t, "ext2.png")},
		[]*multipart.FileHeader{uploadFile(t, "int1.png")},
	)
	require.NoError(t, err)
	assert.Equal(t, "Chevrolet", details.Marka)
	assert.Equal(t, 30000.0, details.Price)
	assert.Equal(t, entity.TintingNone, details.Tinting)
	assert.Len(t, details.ExteriorImages, 2)
	assert.Len(t, details.InteriorImages, 1)
	for _, path := range details.ExteriorImages {
		assert.FileExists(t, f.diskPath(path))
	}
}

func TestCarDetailsRequiresBothImageSets(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	category := f.createCategory(t, "BMW")
	car := f.createCar(t, category.ID, "X5", 50000)

	_, err := f.service.CreateCarDetails(ctx, CarDetailsInput{CarID: car.ID},
		[]*multipart.FileHeader{uploadFile(t, "ext.png")}, nil)
	assert.ErrorIs(t, err, ErrImageRequired)

	_, err = f.service.CreateCarDetails(ctx, CarDetailsInput{CarID: car.ID},
		nil, []*multipart.FileHeader{uploadFile(t, "int.png")})
	assert.ErrorIs(t, err, ErrImageRequired)
}

func TestCarDetailsUpdateReplacesImageSets(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	category := f.createCategory(t, "BMW")
	car := f.createCar(t, category.ID, "X5", 50000)

	details, err := f.service.CreateCarDetails(ctx, CarDetailsInput{CarID: car.ID, Year: 2022},
		[]*multipart.FileHeader{uploadFile(t, "ext.png")},
		[]*multipart.FileHeader{uploadFile(t, "int.png")},
	)
	require.NoError(t, err)
	oldExterior := append([]string(nil), details.ExteriorImages...)

	tinting := entity.TintingHas
	updated, err := f.service.UpdateCarDetails(ctx, details.ID, CarDetailsUpdate{Tinting: &tinting},
		[]*multipart.FileHeader{uploadFile(t, "ext-new-1.png"), uploadFile(t, "ext-new-2.png")}, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.TintingHas, updated.Tinting)
	assert.Equal(t, 2022, updated.Year)
	assert.Len(t, updated.ExteriorImages, 2)
	assert.Len(t, updated.InteriorImages, 1)
	for _, path := range oldExterior {
		assert.NoFileExists(t, f.diskPath(path))
	}

	deleted, err := f.service.DeleteCarDetails(ctx, details.ID)
	require.NoError(t, err)
	for _, path := range append(deleted.ExteriorImages, deleted.InteriorImages...) {
		assert.NoFileExists(t, f.diskPath(path))
	}
	_, err = f.service.GetCarDetails(ctx, details.ID)
	assert.ErrorIs(t, err, ErrCarDetailsNotFound)
}

func TestListingsCacheInvalidatedOnMutation(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	root := t.TempDir()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	c, err := cache.New(ctx, config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)

	svc := NewCatalogService(
		repository.NewCategoryRepository(db),
		repository.NewCarRepository(db),
		repository.NewCarDetailsRepository(db),
		&storage.ImageStore{Root: root},
		c,
		quietLogger(),
	)

	_, err = svc.CreateCategory(ctx, "BMW", uploadFile(t, "bmw.png"))
	require.NoError(t, err)

	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, mr.Exists("catalog:categories"))

	// a second listing is served from the cache, not the table
	require.NoError(t, db.Delete(&entity.Category{}, "brand = ?", "BMW").Error)
	list, err = svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// a mutation drops the key so the next read sees fresh rows
	_, err = svc.CreateCategory(ctx, "Audi", uploadFile(t, "audi.png"))
	require.NoError(t, err)
	assert.False(t, mr.Exists("catalog:categories"))

	list, err = svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Audi", list[0].Brand)
}

func TestImageStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	store := &storage.ImageStore{Root: root}

	path, err := store.Save(uploadFile(t, "photo.jpg"), "cars")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/uploads/cars/"))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	onDisk := filepath.Join(root, strings.TrimPrefix(path, "/uploads/"))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))

	require.NoError(t, store.Remove(path))
	assert.NoFileExists(t, onDisk)

	// removing twice and removing foreign paths are both harmless
	assert.NoError(t, store.Remove(path))
	assert.NoError(t, store.Remove("/etc/passwd"))
}
