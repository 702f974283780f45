package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviedesk/cinema-booking/internal/model"
	"github.com/moviedesk/cinema-booking/internal/repository"
	"github.com/moviedesk/cinema-booking/internal/seats"
)

// TheaterHandler exposes administrative management of theaters and
// screens plus the public theater listing.
type TheaterHandler struct {
	Theaters *repository.TheaterRepo
	Screens  *repository.ScreenRepo
}

// NewTheaterHandler constructs a TheaterHandler.
func NewTheaterHandler(theaters *repository.TheaterRepo, screens *repository.ScreenRepo) *TheaterHandler {
	if theaters == nil || screens == nil {
		panic("nil repository passed to NewTheaterHandler")
	}
	return &TheaterHandler{Theaters: theaters, Screens: screens}
}

type theaterResp struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ListTheaters handles GET /v1/theaters.  It returns every theater
// ordered by name.
func (h *TheaterHandler) ListTheaters(c echo.Context) error {
	ts, err := h.Theaters.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]theaterResp, 0, len(ts))
	for _, t := range ts {
		items = append(items, theaterResp{ID: t.ID, Name: t.Name, Address: t.Address})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateTheater handles POST /v1/theaters (ADMIN).  The body must carry
// a non-empty name and address.
func (h *TheaterHandler) CreateTheater(c echo.Context) error {
	var body struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Address = strings.TrimSpace(body.Address)
	if body.Name == "" || body.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and address are required"})
	}
	t := &model.Theater{Name: body.Name, Address: body.Address}
	if err := h.Theaters.Create(c.Request().Context(), t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, theaterResp{ID: t.ID, Name: t.Name, Address: t.Address})
}

// CreateScreen handles POST /v1/theaters/:id/screens (ADMIN).  It
// creates a screening with its fixed seat layout; the layout doubles as
// the initial availability.
func (h *TheaterHandler) CreateScreen(c echo.Context) error {
	theaterID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theater id"})
	}
	var body struct {
		MovieName string   `json:"movie_name"`
		ShowTime  string   `json:"show_time"` // RFC3339
		Seats     []string `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.MovieName = strings.TrimSpace(body.MovieName)
	if body.MovieName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_name is required"})
	}
	showTime, err := time.Parse(time.RFC3339, body.ShowTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_time must be RFC3339"})
	}
	layout := seats.New(body.Seats...)
	if layout.Cardinality() == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats must not be empty"})
	}

	// Reject screens for theaters that do not exist.
	if _, err := h.Theaters.GetByID(c.Request().Context(), theaterID); err != nil {
		if errors.Is(err, repository.ErrTheaterNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	s := &model.Screen{
		TheaterID:  theaterID,
		MovieName:  body.MovieName,
		ShowTime:   showTime.UTC(),
		SeatLayout: layout,
	}
	if err := h.Screens.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, toScreenResp(*s))
}
