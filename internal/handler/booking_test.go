package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviedesk/cinema-booking/internal/model"
	"github.com/moviedesk/cinema-booking/internal/repository"
	"github.com/moviedesk/cinema-booking/internal/seats"
	"github.com/moviedesk/cinema-booking/internal/service"
)

// stubBookingAPI implements BookingAPI with overridable func fields so
// each test controls exactly the calls it expects.
type stubBookingAPI struct {
	getAvailableSeats    func(ctx context.Context, screenID uint64) ([]string, error)
	bookSeats            func(ctx context.Context, userID, screenID uint64, seatLabels []string) (*model.Booking, error)
	cancelBooking        func(ctx context.Context, bookingID uint64) error
	getScreensForTheater func(ctx context.Context, theaterID uint64) ([]model.Screen, error)
	getScreensForMovie   func(ctx context.Context, movieName string) ([]model.Screen, error)
	getUserBookings      func(ctx context.Context, userID uint64) ([]model.Booking, error)
}

func (s *stubBookingAPI) GetAvailableSeats(ctx context.Context, screenID uint64) ([]string, error) {
	return s.getAvailableSeats(ctx, screenID)
}

func (s *stubBookingAPI) BookSeats(ctx context.Context, userID, screenID uint64, seatLabels []string) (*model.Booking, error) {
	return s.bookSeats(ctx, userID, screenID, seatLabels)
}

func (s *stubBookingAPI) CancelBooking(ctx context.Context, bookingID uint64) error {
	return s.cancelBooking(ctx, bookingID)
}

func (s *stubBookingAPI) GetScreensForTheater(ctx context.Context, theaterID uint64) ([]model.Screen, error) {
	return s.getScreensForTheater(ctx, theaterID)
}

func (s *stubBookingAPI) GetScreensForMovie(ctx context.Context, movieName string) ([]model.Screen, error) {
	return s.getScreensForMovie(ctx, movieName)
}

func (s *stubBookingAPI) GetUserBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.getUserBookings(ctx, userID)
}

func newBookingContext(t *testing.T, method, target, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	return c, rec
}

func TestGetAvailableSeats(t *testing.T) {
	stub := &stubBookingAPI{
		getAvailableSeats: func(_ context.Context, screenID uint64) ([]string, error) {
			assert.Equal(t, uint64(10), screenID)
			return []string{"A1", "A3"}, nil
		},
	}
	h := NewBookingHandler(stub, nil)

	c, rec := newBookingContext(t, http.MethodGet, "/v1/screens/10/seats", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("10")

	require.NoError(t, h.GetAvailableSeats(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"screen_id":10,"available_seats":["A1","A3"]}`, rec.Body.String())
}

func TestGetAvailableSeatsUnknownScreen(t *testing.T) {
	stub := &stubBookingAPI{
		getAvailableSeats: func(context.Context, uint64) ([]string, error) {
			return nil, repository.ErrScreenNotFound
		},
	}
	h := NewBookingHandler(stub, nil)

	c, rec := newBookingContext(t, http.MethodGet, "/v1/screens/99/seats", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("99")

	require.NoError(t, h.GetAvailableSeats(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookSeatsCreated(t *testing.T) {
	bookedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubBookingAPI{
		bookSeats: func(_ context.Context, userID, screenID uint64, seatLabels []string) (*model.Booking, error) {
			assert.Equal(t, uint64(1), userID)
			assert.Equal(t, uint64(10), screenID)
			assert.Equal(t, []string{"A1", "A2"}, seatLabels)
			return &model.Booking{
				ID:            7,
				UserID:        userID,
				ScreenID:      screenID,
				BookingTime:   bookedAt,
				ReservedSeats: seats.New(seatLabels...),
				TotalPrice:    20.0,
			}, nil
		},
	}
	h := NewBookingHandler(stub, nil)

	c, rec := newBookingContext(t, http.MethodPost, "/v1/screens/10/bookings", `{"seats":["A1","A2"]}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("10")

	require.NoError(t, h.BookSeats(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{
		"id": 7,
		"user_id": 1,
		"screen_id": 10,
		"booking_time": "2026-03-01T12:00:00Z",
		"reserved_seats": ["A1","A2"],
		"total_price": 20.0
	}`, rec.Body.String())
}

func TestBookSeatsErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		svcErr   error
		wantCode int
	}{
		{"empty selection", service.ErrNoSeatsSelected, http.StatusBadRequest},
		{"unknown user", repository.ErrUserNotFound, http.StatusNotFound},
		{"unknown screen", repository.ErrScreenNotFound, http.StatusNotFound},
		{"seats taken", service.ErrSeatUnavailable, http.StatusConflict},
		{"store failure", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubBookingAPI{
				bookSeats: func(context.Context, uint64, uint64, []string) (*model.Booking, error) {
					return nil, tc.svcErr
				},
			}
			h := NewBookingHandler(stub, nil)

			c, rec := newBookingContext(t, http.MethodPost, "/v1/screens/10/bookings", `{"seats":["A1"]}`, 1)
			c.SetParamNames("id")
			c.SetParamValues("10")

			require.NoError(t, h.BookSeats(c))
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestBookSeatsUnauthenticated(t *testing.T) {
	h := NewBookingHandler(&stubBookingAPI{}, nil)

	c, rec := newBookingContext(t, http.MethodPost, "/v1/screens/10/bookings", `{"seats":["A1"]}`, 0)
	c.SetParamNames("id")
	c.SetParamValues("10")

	require.NoError(t, h.BookSeats(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCancelBooking(t *testing.T) {
	cases := []struct {
		name     string
		svcErr   error
		wantCode int
	}{
		{"success", nil, http.StatusNoContent},
		{"unknown booking", repository.ErrBookingNotFound, http.StatusNotFound},
		{"window expired", service.ErrCancellationWindowExpired, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubBookingAPI{
				cancelBooking: func(_ context.Context, bookingID uint64) error {
					assert.Equal(t, uint64(7), bookingID)
					return tc.svcErr
				},
			}
			h := NewBookingHandler(stub, nil)

			c, rec := newBookingContext(t, http.MethodDelete, "/v1/bookings/7", "", 1)
			c.SetParamNames("id")
			c.SetParamValues("7")

			require.NoError(t, h.CancelBooking(c))
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestListMyBookings(t *testing.T) {
	stub := &stubBookingAPI{
		getUserBookings: func(_ context.Context, userID uint64) ([]model.Booking, error) {
			assert.Equal(t, uint64(1), userID)
			return []model.Booking{{
				ID:            7,
				UserID:        1,
				ScreenID:      10,
				BookingTime:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
				ReservedSeats: seats.New("A1"),
				TotalPrice:    10.0,
			}}, nil
		},
	}
	h := NewBookingHandler(stub, nil)

	c, rec := newBookingContext(t, http.MethodGet, "/v1/my-bookings", "", 1)

	require.NoError(t, h.ListMyBookings(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reserved_seats":["A1"]`)
}

func TestSearchScreensRequiresMovie(t *testing.T) {
	h := NewBookingHandler(&stubBookingAPI{}, nil)

	c, rec := newBookingContext(t, http.MethodGet, "/v1/screens/search", "", 0)

	require.NoError(t, h.SearchScreens(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScreensForTheaterUnknown(t *testing.T) {
	stub := &stubBookingAPI{
		getScreensForTheater: func(context.Context, uint64) ([]model.Screen, error) {
			return nil, repository.ErrTheaterNotFound
		},
	}
	h := NewBookingHandler(stub, nil)

	c, rec := newBookingContext(t, http.MethodGet, "/v1/theaters/5/screens", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.ScreensForTheater(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
