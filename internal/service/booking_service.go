package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moviedesk/cinema-booking/internal/model"
	"github.com/moviedesk/cinema-booking/internal/queue"
	"github.com/moviedesk/cinema-booking/internal/repository"
	"github.com/moviedesk/cinema-booking/internal/seats"
)

// UnitPrice is the flat per-seat rate.  Pricing strategies are out of
// scope; every seat costs the same.
const UnitPrice = 10.0

// CancellationWindow is how long after creation a booking may still be
// cancelled.  At the window boundary and beyond, cancellation fails.
const CancellationWindow = time.Hour

// seatCacheTTL bounds how stale a cached availability read can be.  The
// cache is invalidated on every book and cancel, so the TTL only matters
// when an invalidation is lost.
const seatCacheTTL = 30 * time.Second

// Store is the persistence surface the engine needs.  It is satisfied by
// *repository.Store in production and by in-memory fakes in tests.  The
// two composite mutations are transactional: either both the booking row
// and the screen's availability change, or neither does.
type Store interface {
	GetUser(ctx context.Context, id uint64) (*model.User, error)
	GetTheater(ctx context.Context, id uint64) (*model.Theater, error)
	GetScreen(ctx context.Context, id uint64) (*model.Screen, error)
	ListScreensByTheater(ctx context.Context, theaterID uint64) ([]model.Screen, error)
	SearchScreensByMovie(ctx context.Context, movieName string) ([]model.Screen, error)
	GetBooking(ctx context.Context, id uint64) (*model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	ReserveAndCreateBooking(ctx context.Context, b *model.Booking) error
	ReleaseAndDeleteBooking(ctx context.Context, bookingID uint64) error
}

// EventPublisher delivers booking events to the broker.  Delivery
// failures are logged and swallowed; the booking flow never fails
// because the broker is down.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
	PublishBookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// BookingService is the reservation engine.  It orchestrates
// availability checks, booking creation and cancellation while
// maintaining the inventory invariant: a screen's available seats and
// the union of its active bookings' reserved seats partition the fixed
// seat layout.
//
// Two layers guard the check-then-reserve sequence: a per-screen mutex
// serializes callers within this process, and the store's row-locked
// transaction re-checks availability so overlapping requests cannot both
// commit even across processes.
type BookingService struct {
	store     Store
	cache     *redis.Client // nil disables availability caching
	publisher EventPublisher
	now       func() time.Time

	mu          sync.Mutex
	screenLocks map[uint64]*sync.Mutex
}

// NewBookingService constructs the engine.  cache and publisher may be
// nil; both degrade to no-ops.
func NewBookingService(store Store, cache *redis.Client, publisher EventPublisher) *BookingService {
	return &BookingService{
		store:       store,
		cache:       cache,
		publisher:   publisher,
		now:         func() time.Time { return time.Now().UTC() },
		screenLocks: make(map[uint64]*sync.Mutex),
	}
}

// GetAvailableSeats returns the current availability for a screen as a
// sorted label slice.  Reads go through the Redis cache when one is
// configured; cache errors fall back to the store silently.
func (s *BookingService) GetAvailableSeats(ctx context.Context, screenID uint64) ([]string, error) {
	key := seatCacheKey(screenID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			return seats.Labels(seats.Parse(cached)), nil
		}
	}
	screen, err := s.store.GetScreen(ctx, screenID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, seats.Format(screen.AvailableSeats), seatCacheTTL).Err(); err != nil {
			log.Printf("seat cache: set %s failed: %v", key, err)
		}
	}
	return seats.Labels(screen.AvailableSeats), nil
}

// BookSeats reserves the requested seats on a screen for a user and
// returns the created booking.  It fails with ErrNoSeatsSelected for an
// empty request, repository.ErrUserNotFound / ErrScreenNotFound for
// unknown references, and ErrSeatUnavailable when any requested seat is
// not currently free.
func (s *BookingService) BookSeats(ctx context.Context, userID, screenID uint64, seatLabels []string) (*model.Booking, error) {
	requested := seats.New(seatLabels...)
	if requested.Cardinality() == 0 {
		return nil, ErrNoSeatsSelected
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	unlock := s.lockScreen(screenID)
	defer unlock()

	screen, err := s.store.GetScreen(ctx, screenID)
	if err != nil {
		return nil, err
	}
	if !requested.IsSubset(screen.AvailableSeats) {
		return nil, ErrSeatUnavailable
	}

	booking := &model.Booking{
		UserID:        userID,
		ScreenID:      screenID,
		BookingTime:   s.now(),
		ReservedSeats: requested,
		TotalPrice:    float64(requested.Cardinality()) * UnitPrice,
	}
	if err := s.store.ReserveAndCreateBooking(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrSeatConflict) {
			return nil, ErrSeatUnavailable
		}
		return nil, fmt.Errorf("book seats: %w", err)
	}

	s.invalidateSeatCache(ctx, screenID)
	s.publishCreated(ctx, booking, screen)
	return booking, nil
}

// CancelBooking cancels a booking, returning its seats to the screen's
// availability.  Cancellation is only permitted strictly within one hour
// of the booking time: at exactly bookingTime+1h the window has closed
// and ErrCancellationWindowExpired is returned.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uint64) error {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	deadline := booking.BookingTime.Add(CancellationWindow)
	if !s.now().Before(deadline) {
		return ErrCancellationWindowExpired
	}

	unlock := s.lockScreen(booking.ScreenID)
	defer unlock()

	if err := s.store.ReleaseAndDeleteBooking(ctx, bookingID); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}

	s.invalidateSeatCache(ctx, booking.ScreenID)
	s.publishCancelled(ctx, booking)
	return nil
}

// GetScreensForTheater lists a theater's screens ordered by show time.
// It fails with repository.ErrTheaterNotFound for an unknown theater.
func (s *BookingService) GetScreensForTheater(ctx context.Context, theaterID uint64) ([]model.Screen, error) {
	if _, err := s.store.GetTheater(ctx, theaterID); err != nil {
		return nil, err
	}
	return s.store.ListScreensByTheater(ctx, theaterID)
}

// GetScreensForMovie lists screens whose movie name contains the given
// substring, ordered by show time ascending.
func (s *BookingService) GetScreensForMovie(ctx context.Context, movieName string) ([]model.Screen, error) {
	return s.store.SearchScreensByMovie(ctx, movieName)
}

// GetUserBookings lists a user's active bookings, newest first.
func (s *BookingService) GetUserBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.store.ListBookingsByUser(ctx, userID)
}

// lockScreen acquires the per-screen mutex and returns its unlock func.
// Locks are created lazily; screens are few enough that entries are
// never reclaimed.
func (s *BookingService) lockScreen(screenID uint64) func() {
	s.mu.Lock()
	l, ok := s.screenLocks[screenID]
	if !ok {
		l = &sync.Mutex{}
		s.screenLocks[screenID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func seatCacheKey(screenID uint64) string {
	return fmt.Sprintf("screen_seats:%d", screenID)
}

func (s *BookingService) invalidateSeatCache(ctx context.Context, screenID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, seatCacheKey(screenID)).Err(); err != nil {
		log.Printf("seat cache: del %s failed: %v", seatCacheKey(screenID), err)
	}
}

func (s *BookingService) publishCreated(ctx context.Context, b *model.Booking, screen *model.Screen) {
	if s.publisher == nil {
		return
	}
	ev := queue.BookingCreatedEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		ScreenID:   b.ScreenID,
		MovieName:  screen.MovieName,
		ShowTime:   screen.ShowTime.Format(time.RFC3339),
		Seats:      seats.Labels(b.ReservedSeats),
		TotalPrice: b.TotalPrice,
		BookedAt:   b.BookingTime.Format(time.RFC3339),
	}
	if err := s.publisher.PublishBookingCreated(ctx, ev); err != nil {
		log.Printf("publish booking.created for booking %d failed: %v", b.ID, err)
	}
}

func (s *BookingService) publishCancelled(ctx context.Context, b *model.Booking) {
	if s.publisher == nil {
		return
	}
	ev := queue.BookingCancelledEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		ScreenID:    b.ScreenID,
		Seats:       seats.Labels(b.ReservedSeats),
		CancelledAt: s.now().Format(time.RFC3339),
	}
	if err := s.publisher.PublishBookingCancelled(ctx, ev); err != nil {
		log.Printf("publish booking.cancelled for booking %d failed: %v", b.ID, err)
	}
}
