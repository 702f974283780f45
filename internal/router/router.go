// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/moviedesk/cinema-booking/internal/handler"
	"github.com/moviedesk/cinema-booking/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication:
// the health check, auth endpoints and the public browse surface.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler, t *handler.TheaterHandler, b *handler.BookingHandler) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Account creation and login live under /v1/auth.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	// Public browsing: theaters, their screens, movie search and seat
	// availability.  Guests can inspect availability before registering.
	e.GET("/v1/theaters", t.ListTheaters)
	e.GET("/v1/theaters/:id/screens", b.ScreensForTheater)
	e.GET("/v1/screens/search", b.SearchScreens)
	e.GET("/v1/screens/:id/seats", b.GetAvailableSeats)
}

// RegisterProtected registers the authenticated booking surface and the
// admin-only management endpoints.  rateLimit guards the write-heavy
// booking route; when rate limiting is disabled it is a passthrough.
func RegisterProtected(e *echo.Echo, a *handler.AuthHandler, t *handler.TheaterHandler, b *handler.BookingHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	// Customer endpoints: any authenticated role may book and cancel.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("CUSTOMER", "ADMIN"))
	auth.GET("/me", a.Me)
	auth.GET("/my-bookings", b.ListMyBookings)
	auth.POST("/screens/:id/bookings", b.BookSeats, rateLimit)
	auth.DELETE("/bookings/:id", b.CancelBooking)

	// Admin endpoints: theater and screen management plus the raw
	// booking delete.
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.POST("/theaters", t.CreateTheater)
	admin.POST("/theaters/:id/screens", t.CreateScreen)
	admin.DELETE("/admin/bookings/:id", b.AdminDeleteBooking)
}
