package routes

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"avtosalon/api/handler"
	"avtosalon/api/middleware"
)

type Router struct {
	Echo       *echo.Echo
	Auth       *handler.AuthHandler
	Categories *handler.CategoryHandler
	Cars       *handler.CarHandler
	CarDetails *handler.CarDetailsHandler
	Guard      middleware.AccessGuard
	UploadDir  string

	authRate  *middleware.RateLimiter
	loginRate *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	auth *handler.AuthHandler,
	categories *handler.CategoryHandler,
	cars *handler.CarHandler,
	carDetails *handler.CarDetailsHandler,
	guard middleware.AccessGuard,
	uploadDir string,
) *Router {
	return &Router{
		Echo:       e,
		Auth:       auth,
		Categories: categories,
		Cars:       cars,
		CarDetails: carDetails,
		Guard:      guard,
		UploadDir:  uploadDir,
		authRate:   middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		loginRate:  middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	admin := []echo.MiddlewareFunc{r.Guard.RequireAuth, middleware.RequireRole("admin")}

	e.Static("/uploads", r.UploadDir)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// auth
	e.POST("/register", r.Auth.Register, r.authRate.Middleware())
	e.POST("/login", r.Auth.Login, r.loginRate.Middleware())
	e.POST("/verify", r.Auth.Verify, r.authRate.Middleware())
	e.POST("/refresh", r.Auth.Refresh, r.authRate.Middleware())
	e.POST("/logout", r.Auth.Logout, r.Guard.RequireAuth)

	// brand categories
	e.POST("/add_brand", r.Categories.Create, admin...)
	e.GET("/getall_brand", r.Categories.GetAll)
	e.GET("/getone_brand/:id", r.Categories.GetOne)
	e.PUT("/update_brand/:id", r.Categories.Update, admin...)
	e.DELETE("/delete_brand/:id", r.Categories.Delete, admin...)

	// cars
	e.POST("/add_cars", r.Cars.Create, admin...)
	e.GET("/getall_cars", r.Cars.GetAll)
	e.GET("/get_cars_by_category/:categoryId", r.Cars.GetByCategory)
	e.GET("/get_car_by_id/:id", r.Cars.GetOne)
	e.PUT("/update_cars/:id", r.Cars.Update, admin...)
	e.DELETE("/delete_cars/:id", r.Cars.Delete, admin...)

	// car details
	e.POST("/add_car_details", r.CarDetails.Create, admin...)
	e.GET("/get_all_car_details", r.CarDetails.GetAll)
	e.GET("/get_car_details/:id", r.CarDetails.GetOne)
	e.GET("/get_exterior_details/:id", r.CarDetails.GetExterior)
	e.GET("/get_interior_details/:id", r.CarDetails.GetInterior)
	e.PUT("/update_car_details/:id", r.CarDetails.Update, admin...)
	e.DELETE("/delete_car_details/:id", r.CarDetails.Delete, admin...)
}
