package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviedesk/cinema-booking/internal/model"
	"github.com/moviedesk/cinema-booking/internal/repository"
	"github.com/moviedesk/cinema-booking/internal/seats"
)

// fakeStore is an in-memory Store.  Its composite operations mirror the
// SQL store's semantics: the availability check is redone inside
// ReserveAndCreateBooking, and ReleaseAndDeleteBooking unions seats back
// idempotently.  All methods are safe for concurrent use.
type fakeStore struct {
	mu       sync.Mutex
	users    map[uint64]*model.User
	theaters map[uint64]*model.Theater
	screens  map[uint64]*model.Screen
	bookings map[uint64]*model.Booking
	nextID   uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uint64]*model.User),
		theaters: make(map[uint64]*model.Theater),
		screens:  make(map[uint64]*model.Screen),
		bookings: make(map[uint64]*model.Booking),
	}
}

func (f *fakeStore) GetUser(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetTheater(_ context.Context, id uint64) (*model.Theater, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.theaters[id]
	if !ok {
		return nil, repository.ErrTheaterNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) GetScreen(_ context.Context, id uint64) (*model.Screen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.screens[id]
	if !ok {
		return nil, repository.ErrScreenNotFound
	}
	cp := *s
	cp.SeatLayout = s.SeatLayout.Clone()
	cp.AvailableSeats = s.AvailableSeats.Clone()
	return &cp, nil
}

func (f *fakeStore) ListScreensByTheater(_ context.Context, theaterID uint64) ([]model.Screen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Screen, 0)
	for _, s := range f.screens {
		if s.TheaterID == theaterID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchScreensByMovie(_ context.Context, movieName string) ([]model.Screen, error) {
	return nil, nil
}

func (f *fakeStore) GetBooking(_ context.Context, id uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	cp.ReservedSeats = b.ReservedSeats.Clone()
	return &cp, nil
}

func (f *fakeStore) ListBookingsByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) ReserveAndCreateBooking(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	screen, ok := f.screens[b.ScreenID]
	if !ok {
		return repository.ErrScreenNotFound
	}
	if !b.ReservedSeats.IsSubset(screen.AvailableSeats) {
		return repository.ErrSeatConflict
	}
	f.nextID++
	b.ID = f.nextID
	cp := *b
	cp.ReservedSeats = b.ReservedSeats.Clone()
	f.bookings[b.ID] = &cp
	screen.AvailableSeats = screen.AvailableSeats.Difference(b.ReservedSeats)
	return nil
}

func (f *fakeStore) ReleaseAndDeleteBooking(_ context.Context, bookingID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return repository.ErrBookingNotFound
	}
	screen, ok := f.screens[b.ScreenID]
	if !ok {
		return repository.ErrScreenNotFound
	}
	screen.AvailableSeats = screen.AvailableSeats.Union(b.ReservedSeats)
	delete(f.bookings, bookingID)
	return nil
}

// availability reads a screen's availability directly from the fake.
func (f *fakeStore) availability(screenID uint64) seats.Set {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screens[screenID].AvailableSeats.Clone()
}

// reservedUnion computes the union of reserved seats over all active
// bookings for a screen.
func (f *fakeStore) reservedUnion(screenID uint64) seats.Set {
	f.mu.Lock()
	defer f.mu.Unlock()
	union := seats.New()
	for _, b := range f.bookings {
		if b.ScreenID == screenID {
			union = union.Union(b.ReservedSeats)
		}
	}
	return union
}

func newTestService(t *testing.T) (*BookingService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.users[1] = &model.User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: "CUSTOMER"}
	store.users[2] = &model.User{ID: 2, Name: "Bob", Email: "bob@example.com", Role: "CUSTOMER"}
	store.theaters[1] = &model.Theater{ID: 1, Name: "Grand Central"}
	store.screens[10] = &model.Screen{
		ID:             10,
		TheaterID:      1,
		MovieName:      "Night Train",
		ShowTime:       time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
		SeatLayout:     seats.New("A1", "A2", "A3"),
		AvailableSeats: seats.New("A1", "A2", "A3"),
	}
	return NewBookingService(store, nil, nil), store
}

func TestBookSeatsSuccess(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	booking, err := svc.BookSeats(ctx, 1, 10, []string{"A1", "A2"})
	require.NoError(t, err)
	assert.NotZero(t, booking.ID)
	assert.Equal(t, 20.0, booking.TotalPrice)
	assert.Equal(t, []string{"A1", "A2"}, seats.Labels(booking.ReservedSeats))

	labels, err := svc.GetAvailableSeats(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A3"}, labels)

	// The screen's availability and the booking's seats stay disjoint
	// and together cover the layout.
	avail := store.availability(10)
	reserved := store.reservedUnion(10)
	assert.Equal(t, 0, avail.Intersect(reserved).Cardinality())
	assert.True(t, avail.Union(reserved).Equal(seats.New("A1", "A2", "A3")))
}

func TestBookSeatsOverlapFails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.BookSeats(ctx, 1, 10, []string{"A1", "A2"})
	require.NoError(t, err)

	_, err = svc.BookSeats(ctx, 2, 10, []string{"A2", "A3"})
	assert.ErrorIs(t, err, ErrSeatUnavailable)

	// A3 was never taken by the failed attempt.
	labels, err := svc.GetAvailableSeats(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A3"}, labels)
}

func TestBookSeatsOutsideLayoutFails(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.BookSeats(context.Background(), 1, 10, []string{"A1", "Z9"})
	assert.ErrorIs(t, err, ErrSeatUnavailable)
}

func TestBookSeatsValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.BookSeats(ctx, 1, 10, nil)
	assert.ErrorIs(t, err, ErrNoSeatsSelected)

	_, err = svc.BookSeats(ctx, 1, 99, []string{"A1"})
	assert.ErrorIs(t, err, repository.ErrScreenNotFound)

	_, err = svc.BookSeats(ctx, 99, 10, []string{"A1"})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestCancelRestoresAvailabilityExactly(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	before := store.availability(10)
	booking, err := svc.BookSeats(ctx, 1, 10, []string{"A1", "A2"})
	require.NoError(t, err)

	require.NoError(t, svc.CancelBooking(ctx, booking.ID))

	after := store.availability(10)
	assert.True(t, after.Equal(before), "availability must round-trip exactly")

	_, err = store.GetBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestCancelWindow(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
		wantErr error
	}{
		{"well inside window", 59 * time.Minute, nil},
		{"exactly at the boundary", time.Hour, ErrCancellationWindowExpired},
		{"past the window", 61 * time.Minute, ErrCancellationWindowExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			ctx := context.Background()

			bookedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			svc.now = func() time.Time { return bookedAt }
			booking, err := svc.BookSeats(ctx, 1, 10, []string{"A1"})
			require.NoError(t, err)

			svc.now = func() time.Time { return bookedAt.Add(tc.elapsed) }
			err = svc.CancelBooking(ctx, booking.ID)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCancelUnknownBooking(t *testing.T) {
	svc, _ := newTestService(t)
	assert.ErrorIs(t, svc.CancelBooking(context.Background(), 42), repository.ErrBookingNotFound)
}

func TestConcurrentOverlappingBookings(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, req := range [][]string{{"A1", "A2"}, {"A2", "A3"}} {
		wg.Add(1)
		go func(i int, labels []string) {
			defer wg.Done()
			_, errs[i] = svc.BookSeats(ctx, uint64(i+1), 10, labels)
		}(i, req)
	}
	wg.Wait()

	// Exactly one of the overlapping requests may win.
	if errs[0] == nil {
		assert.ErrorIs(t, errs[1], ErrSeatUnavailable)
	} else {
		assert.ErrorIs(t, errs[0], ErrSeatUnavailable)
		assert.NoError(t, errs[1])
	}

	avail := store.availability(10)
	reserved := store.reservedUnion(10)
	assert.Equal(t, 0, avail.Intersect(reserved).Cardinality())
	assert.True(t, avail.Union(reserved).Equal(seats.New("A1", "A2", "A3")))
}

func TestInventoryInvariantAcrossSequence(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	layout := seats.New("A1", "A2", "A3")

	checkInvariant := func() {
		t.Helper()
		avail := store.availability(10)
		reserved := store.reservedUnion(10)
		assert.Equal(t, 0, avail.Intersect(reserved).Cardinality())
		assert.True(t, avail.Union(reserved).Equal(layout))
	}

	b1, err := svc.BookSeats(ctx, 1, 10, []string{"A1"})
	require.NoError(t, err)
	checkInvariant()

	b2, err := svc.BookSeats(ctx, 2, 10, []string{"A2", "A3"})
	require.NoError(t, err)
	checkInvariant()

	require.NoError(t, svc.CancelBooking(ctx, b1.ID))
	checkInvariant()

	_, err = svc.BookSeats(ctx, 1, 10, []string{"A2"})
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	checkInvariant()

	require.NoError(t, svc.CancelBooking(ctx, b2.ID))
	checkInvariant()

	labels, err := svc.GetAvailableSeats(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "A3"}, labels)
}

func TestGetScreensForTheaterUnknown(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetScreensForTheater(context.Background(), 77)
	assert.ErrorIs(t, err, repository.ErrTheaterNotFound)
}
