package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviedesk/cinema-booking/internal/model"
	"github.com/moviedesk/cinema-booking/internal/repository"
	"github.com/moviedesk/cinema-booking/internal/seats"
	"github.com/moviedesk/cinema-booking/internal/service"
)

// BookingAPI is the slice of the reservation engine the HTTP layer
// consumes.  *service.BookingService satisfies it; tests substitute a
// stub.
type BookingAPI interface {
	GetAvailableSeats(ctx context.Context, screenID uint64) ([]string, error)
	BookSeats(ctx context.Context, userID, screenID uint64, seatLabels []string) (*model.Booking, error)
	CancelBooking(ctx context.Context, bookingID uint64) error
	GetScreensForTheater(ctx context.Context, theaterID uint64) ([]model.Screen, error)
	GetScreensForMovie(ctx context.Context, movieName string) ([]model.Screen, error)
	GetUserBookings(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// BookingHandler exposes the reservation workflow: availability reads,
// booking, cancellation, listings and the administrative hard delete.
type BookingHandler struct {
	Svc      BookingAPI
	Bookings *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler.  Bookings may be nil in
// tests that do not touch the admin path.
func NewBookingHandler(svc BookingAPI, bookings *repository.BookingRepo) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc, Bookings: bookings}
}

type screenResp struct {
	ID             uint64   `json:"id"`
	TheaterID      uint64   `json:"theater_id"`
	MovieName      string   `json:"movie_name"`
	ShowTime       string   `json:"show_time"`
	AvailableSeats []string `json:"available_seats"`
}

type bookingResp struct {
	ID            uint64   `json:"id"`
	UserID        uint64   `json:"user_id"`
	ScreenID      uint64   `json:"screen_id"`
	BookingTime   string   `json:"booking_time"`
	ReservedSeats []string `json:"reserved_seats"`
	TotalPrice    float64  `json:"total_price"`
}

func toScreenResp(s model.Screen) screenResp {
	return screenResp{
		ID:             s.ID,
		TheaterID:      s.TheaterID,
		MovieName:      s.MovieName,
		ShowTime:       s.ShowTime.Format(time.RFC3339),
		AvailableSeats: seats.Labels(s.AvailableSeats),
	}
}

func toBookingResp(b model.Booking) bookingResp {
	return bookingResp{
		ID:            b.ID,
		UserID:        b.UserID,
		ScreenID:      b.ScreenID,
		BookingTime:   b.BookingTime.Format(time.RFC3339),
		ReservedSeats: seats.Labels(b.ReservedSeats),
		TotalPrice:    b.TotalPrice,
	}
}

// GetAvailableSeats handles GET /v1/screens/:id/seats.  It returns the
// screen's currently available seat labels, sorted.
func (h *BookingHandler) GetAvailableSeats(c echo.Context) error {
	screenID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screen id"})
	}
	labels, err := h.Svc.GetAvailableSeats(c.Request().Context(), screenID)
	if err != nil {
		if errors.Is(err, repository.ErrScreenNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "screen not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"screen_id": screenID, "available_seats": labels})
}

// BookSeats handles POST /v1/screens/:id/bookings.  The body carries a
// "seats" array of labels.  On success it returns 201 with the created
// booking.  Overlapping or unknown seats yield 409; an empty selection
// yields 400.
func (h *BookingHandler) BookSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	screenID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screen id"})
	}
	var body struct {
		Seats []string `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	booking, err := h.Svc.BookSeats(c.Request().Context(), userID, screenID, body.Seats)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSeatsSelected):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case errors.Is(err, repository.ErrScreenNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "screen not found"})
		case errors.Is(err, service.ErrSeatUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, toBookingResp(*booking))
}

// CancelBooking handles DELETE /v1/bookings/:id.  Within one hour of
// booking time the booking is removed and its seats return to
// availability; afterwards the request fails with 409.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Svc.CancelBooking(c.Request().Context(), bookingID); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, service.ErrCancellationWindowExpired):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMyBookings handles GET /v1/my-bookings.  It returns the
// authenticated user's active bookings, newest first.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Svc.GetUserBookings(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]bookingResp, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ScreensForTheater handles GET /v1/theaters/:id/screens.  Screens are
// ordered by show time ascending.
func (h *BookingHandler) ScreensForTheater(c echo.Context) error {
	theaterID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theater id"})
	}
	screens, err := h.Svc.GetScreensForTheater(c.Request().Context(), theaterID)
	if err != nil {
		if errors.Is(err, repository.ErrTheaterNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toScreenList(screens)})
}

// SearchScreens handles GET /v1/screens/search?movie=...  The movie
// parameter is matched as a substring of the movie name.
func (h *BookingHandler) SearchScreens(c echo.Context) error {
	movie := strings.TrimSpace(c.QueryParam("movie"))
	if movie == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie query parameter is required"})
	}
	screens, err := h.Svc.GetScreensForMovie(c.Request().Context(), movie)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toScreenList(screens)})
}

// AdminDeleteBooking handles DELETE /v1/admin/bookings/:id.  This is the
// raw record delete: unlike cancellation it does NOT return the seats to
// availability, mirroring the behavior of the system this replaces.  The
// resulting inventory leak is deliberate pending a product decision; see
// DESIGN.md.
func (h *BookingHandler) AdminDeleteBooking(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Bookings.Delete(c.Request().Context(), bookingID); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

func toScreenList(screens []model.Screen) []screenResp {
	items := make([]screenResp, 0, len(screens))
	for _, s := range screens {
		items = append(items, toScreenResp(s))
	}
	return items
}
