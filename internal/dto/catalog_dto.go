package dto

import (
	"time"

	"github.com/google/uuid"

	"avtosalon/internal/entity"
)

type CategoryResponse struct {
	ID        string    `json:"id"`
	Brand     string    `json:"brand"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CarResponse struct {
	ID        string            `json:"id"`
	Category  *CategoryResponse `json:"category,omitempty"`
	Model     string            `json:"model"`
	Price     float64           `json:"price"`
	Image     string            `json:"image"`
	Available bool              `json:"available"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type CarDetailsResponse struct {
	ID             string       `json:"id"`
	Car            *CarResponse `json:"car,omitempty"`
	Marka          string       `json:"marka"`
	Price          float64      `json:"price"`
	Tinting        string       `json:"tinting"`
	Motor          string       `json:"motor"`
	Year           int          `json:"year"`
	Color          string       `json:"color"`
	Distance       int          `json:"distance"`
	Gearbox        string       `json:"gearbox"`
	ExteriorImages []string     `json:"exteriorImages"`
	InteriorImages []string     `json:"interiorImages"`
	Description    string       `json:"description"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// absolutize turns a stored /uploads path into a client-usable URL.
func absolutize(baseURL, path string) string {
	if path == "" {
		return ""
	}
	return baseURL + path
}

func CategoryResponseFromEntity(category *entity.Category, baseURL string) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID.String(),
		Brand:     category.Brand,
		Image:     absolutize(baseURL, category.Image),
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

func CategoryResponsesFromEntities(categories []entity.Category, baseURL string) []CategoryResponse {
	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, CategoryResponseFromEntity(&categories[i], baseURL))
	}
	return responses
}

func CarResponseFromEntity(car *entity.Car, baseURL string) CarResponse {
	response := CarResponse{
		ID:        car.ID.String(),
		Model:     car.Model,
		Price:     car.Price,
		Image:     absolutize(baseURL, car.Image),
		Available: car.Available,
		CreatedAt: car.CreatedAt,
		UpdatedAt: car.UpdatedAt,
	}
	if car.Category.ID != uuid.Nil {
		category := CategoryResponseFromEntity(&car.Category, baseURL)
		response.Category = &category
	}
	return response
}

func CarResponsesFromEntities(cars []entity.Car, baseURL string) []CarResponse {
	responses := make([]CarResponse, 0, len(cars))
	for i := range cars {
		responses = append(responses, CarResponseFromEntity(&cars[i], baseURL))
	}
	return responses
}

func CarDetailsResponseFromEntity(details *entity.CarDetails, baseURL string) CarDetailsResponse {
	response := CarDetailsResponse{
		ID:             details.ID.String(),
		Marka:          details.Marka,
		Price:          details.Price,
		Tinting:        details.Tinting,
		Motor:          details.Motor,
		Year:           details.Year,
		Color:          details.Color,
		Distance:       details.Distance,
		Gearbox:        details.Gearbox,
		ExteriorImages: absolutizeAll(baseURL, details.ExteriorImages),
		InteriorImages: absolutizeAll(baseURL, details.InteriorImages),
		Description:    details.Description,
		CreatedAt:      details.CreatedAt,
		UpdatedAt:      details.UpdatedAt,
	}
	if details.Car.ID != uuid.Nil {
		car := CarResponseFromEntity(&details.Car, baseURL)
		response.Car = &car
	}
	return response
}

func CarDetailsResponsesFromEntities(details []entity.CarDetails, baseURL string) []CarDetailsResponse {
	responses := make([]CarDetailsResponse, 0, len(details))
	for i := range details {
		responses = append(responses, CarDetailsResponseFromEntity(&details[i], baseURL))
	}
	return responses
}

func absolutizeAll(baseURL string, paths []string) []string {
	urls := make([]string, 0, len(paths))
	for _, path := range paths {
		urls = append(urls, absolutize(baseURL, path))
	}
	return urls
}
