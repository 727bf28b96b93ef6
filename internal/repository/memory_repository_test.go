package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/residence-gate/internal/domain"
)

func testVisitor(id, qr string, status domain.VisitorStatus) *domain.Visitor {
	now := time.Now()
	return &domain.Visitor{
		ID:          id,
		Name:        "Visitor " + id,
		QRCode:      qr,
		Status:      status,
		HostID:      "resident-1",
		VisitDate:   "2026-10-18",
		AccessZones: []string{"lobby"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestMemoryVisitorRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVisitorRepository()

	require.NoError(t, repo.Create(ctx, testVisitor("v-1", "QR1", domain.VisitorStatusPending)))

	got, err := repo.GetByID(ctx, "v-1")
	require.NoError(t, err)
	assert.Equal(t, "QR1", got.QRCode)

	byQR, err := repo.GetByQRCode(ctx, "QR1")
	require.NoError(t, err)
	assert.Equal(t, "v-1", byQR.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrVisitorNotFound)
	_, err = repo.GetByQRCode(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrVisitorNotFound)

	assert.ErrorIs(t, repo.Create(ctx, testVisitor("v-1", "QR2", domain.VisitorStatusPending)), domain.ErrVisitorExists)
	assert.ErrorIs(t, repo.Create(ctx, testVisitor("v-2", "QR1", domain.VisitorStatusPending)), domain.ErrQRCodeIssued)
}

func TestMemoryVisitorRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVisitorRepository()
	v := testVisitor("v-1", "QR1", domain.VisitorStatusPending)
	require.NoError(t, repo.Create(ctx, v))

	v.Name = "mutated after create"
	got, _ := repo.GetByID(ctx, "v-1")
	got.AccessZones[0] = "rooftop"

	again, _ := repo.GetByID(ctx, "v-1")
	assert.Equal(t, "Visitor v-1", again.Name)
	assert.Equal(t, "lobby", again.AccessZones[0])
}

func TestMemoryVisitorRepository_UpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVisitorRepository()
	require.NoError(t, repo.Create(ctx, testVisitor("v-1", "QR1", domain.VisitorStatusPending)))

	_, err := repo.Update(ctx, "v-1", func(v *domain.Visitor) error {
		v.Name = "half written"
		return v.Apply(domain.VisitorActionCheckIn, time.Now())
	})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	got, _ := repo.GetByID(ctx, "v-1")
	assert.Equal(t, "Visitor v-1", got.Name)
	assert.Equal(t, domain.VisitorStatusPending, got.Status)

	updated, err := repo.Update(ctx, "v-1", func(v *domain.Visitor) error {
		return v.Apply(domain.VisitorActionApprove, time.Now())
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorStatusApproved, updated.Status)

	_, err = repo.Update(ctx, "missing", func(v *domain.Visitor) error { return nil })
	assert.ErrorIs(t, err, domain.ErrVisitorNotFound)
}

func TestMemoryVisitorRepository_ListFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVisitorRepository()
	require.NoError(t, repo.Create(ctx, testVisitor("v-1", "QR1", domain.VisitorStatusPending)))
	require.NoError(t, repo.Create(ctx, testVisitor("v-2", "QR2", domain.VisitorStatusApproved)))
	other := testVisitor("v-3", "QR3", domain.VisitorStatusApproved)
	other.HostID = "resident-2"
	other.VisitDate = "2026-10-19"
	require.NoError(t, repo.Create(ctx, other))

	tests := []struct {
		name   string
		filter VisitorFilter
		want   []string
	}{
		{"all", VisitorFilter{}, []string{"v-1", "v-2", "v-3"}},
		{"status", VisitorFilter{Status: domain.VisitorStatusApproved}, []string{"v-2", "v-3"}},
		{"host", VisitorFilter{HostID: "resident-2"}, []string{"v-3"}},
		{"date", VisitorFilter{VisitDate: "2026-10-18"}, []string{"v-1", "v-2"}},
		{"combined", VisitorFilter{Status: domain.VisitorStatusPending, HostID: "resident-2"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, v := range got {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMemoryVisitorRepository_ExpireStale(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVisitorRepository()
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	stale := testVisitor("v-1", "QR1", domain.VisitorStatusCheckedIn)
	stale.ValidUntil = &past
	fresh := testVisitor("v-2", "QR2", domain.VisitorStatusApproved)
	fresh.ValidUntil = &future
	pending := testVisitor("v-3", "QR3", domain.VisitorStatusPending)
	pending.ValidUntil = &past
	for _, v := range []*domain.Visitor{stale, fresh, pending} {
		require.NoError(t, repo.Create(ctx, v))
	}

	expired, err := repo.ExpireStale(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "v-1", expired[0].ID)
	assert.Equal(t, domain.VisitorStatusExpired, expired[0].Status)

	again, err := repo.ExpireStale(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func testAmenity(id string) *domain.Amenity {
	return &domain.Amenity{
		ID:                id,
		Name:              "Cinema Hall",
		Code:              "CH",
		Location:          domain.LocationBasement,
		Type:              domain.AmenityTypePaymentRequired,
		Capacity:          20,
		IsAvailable:       true,
		RequiresPayment:   true,
		PricePerHour:      decimal.NewFromInt(25),
		MaintenanceStatus: domain.MaintenanceOperational,
	}
}

func TestMemoryAmenityRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAmenityRepository()

	require.NoError(t, repo.Create(ctx, testAmenity("a-1")))
	require.NoError(t, repo.Create(ctx, testAmenity("a-2")))
	assert.ErrorIs(t, repo.Create(ctx, testAmenity("a-1")), domain.ErrAmenityExists)

	updated, err := repo.Update(ctx, "a-1", func(a *domain.Amenity) error {
		a.IsAvailable = false
		return nil
	})
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)

	require.NoError(t, repo.Delete(ctx, "a-1"))
	assert.ErrorIs(t, repo.Delete(ctx, "a-1"), domain.ErrAmenityNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a-2", list[0].ID)

	_, err = repo.GetByID(ctx, "a-1")
	assert.ErrorIs(t, err, domain.ErrAmenityNotFound)
}

func testBooking(id, start, end string) *domain.Booking {
	return &domain.Booking{
		ID:        id,
		AmenityID: "a-1",
		UserID:    "resident-1",
		Date:      "2026-10-18",
		StartTime: start,
		EndTime:   end,
		Status:    domain.BookingStatusConfirmed,
	}
}

func TestMemoryBookingRepository_Reserve(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()

	require.NoError(t, repo.Reserve(ctx, testBooking("b-1", "14:00", "16:00")))

	tests := []struct {
		name    string
		booking *domain.Booking
		wantErr error
	}{
		{"overlapping", testBooking("b-2", "15:00", "17:00"), domain.ErrBookingOverlap},
		{"enclosing", testBooking("b-3", "13:00", "17:00"), domain.ErrBookingOverlap},
		{"adjacent after", testBooking("b-4", "16:00", "17:00"), nil},
		{"adjacent before", testBooking("b-5", "13:00", "14:00"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Reserve(ctx, tt.booking)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	otherDay := testBooking("b-6", "14:00", "16:00")
	otherDay.Date = "2026-10-19"
	assert.NoError(t, repo.Reserve(ctx, otherDay))
}

func TestMemoryBookingRepository_DuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()
	require.NoError(t, repo.Reserve(ctx, testBooking("b-1", "09:00", "10:00")))

	err := repo.Reserve(ctx, testBooking("b-1", "18:00", "19:00"))
	assert.ErrorIs(t, err, domain.ErrBookingExists)
	assert.True(t, domain.IsConflictError(err))
}

func TestMemoryBookingRepository_CancelledFreesSlot(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()
	require.NoError(t, repo.Reserve(ctx, testBooking("b-1", "14:00", "16:00")))

	_, err := repo.Update(ctx, "b-1", func(b *domain.Booking) error {
		return b.Apply(domain.BookingActionCancel, time.Now())
	})
	require.NoError(t, err)

	assert.NoError(t, repo.Reserve(ctx, testBooking("b-2", "14:00", "16:00")))
}

func TestMemoryBookingRepository_ConcurrentReserve(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()

	var wg sync.WaitGroup
	var succeeded atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := testBooking("b-"+string(rune('A'+i)), "10:00", "11:00")
			if err := repo.Reserve(ctx, b); err == nil {
				succeeded.Add(1)
			} else if !errors.Is(err, domain.ErrBookingOverlap) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
}

func TestMemoryBookingRepository_ListFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()
	require.NoError(t, repo.Reserve(ctx, testBooking("b-1", "08:00", "09:00")))
	mine := testBooking("b-2", "09:00", "10:00")
	mine.UserID = "resident-2"
	mine.Status = domain.BookingStatusPending
	require.NoError(t, repo.Reserve(ctx, mine))

	got, err := repo.List(ctx, BookingFilter{UserID: "resident-2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b-2", got[0].ID)

	got, err = repo.List(ctx, BookingFilter{Status: domain.BookingStatusConfirmed, AmenityID: "a-1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b-1", got[0].ID)
}

func TestMemoryAlertRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAlertRepository()
	now := time.Now()

	first := domain.NewEmergencyAlert("al-1", &domain.AlertTrigger{Type: domain.AlertTypeFire, Message: "Fire"}, "security-1", now)
	second := domain.NewEmergencyAlert("al-2", &domain.AlertTrigger{Type: domain.AlertTypeMedical, Message: "Medical"}, "security-1", now)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.ErrorIs(t, repo.Create(ctx, first), domain.ErrAlertExists)

	_, err := repo.Update(ctx, "al-1", func(a *domain.EmergencyAlert) error {
		return a.Resolve("security-1", now)
	})
	require.NoError(t, err)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "al-2", all[0].ID, "newest first")

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "al-2", active[0].ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAlertNotFound)
}

func TestMemoryOccupancyCounter(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryOccupancyCounter()

	n, err := c.Increment(ctx, "a-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = c.Increment(ctx, "a-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = c.Increment(ctx, "a-1", 2)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 2, n)

	for i := 0; i < 3; i++ {
		n, err = c.Decrement(ctx, "a-1")
		require.NoError(t, err)
	}
	assert.Equal(t, 0, n, "floors at zero")

	require.NoError(t, c.Set(ctx, "a-1", -5))
	n, _ = c.Decrement(ctx, "a-1")
	assert.Equal(t, 0, n)
}

func TestMemoryOccupancyCounter_SetIfAbsentKeepsLiveCount(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryOccupancyCounter()

	_, ok, err := c.Get(ctx, "gym")
	require.NoError(t, err)
	assert.False(t, ok)

	written, err := c.SetIfAbsent(ctx, "gym", 12)
	require.NoError(t, err)
	assert.True(t, written)

	_, err = c.Increment(ctx, "gym", 30)
	require.NoError(t, err)

	written, err = c.SetIfAbsent(ctx, "gym", 12)
	require.NoError(t, err)
	assert.False(t, written)

	n, ok, err := c.Get(ctx, "gym")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 13, n)
}

func TestMemoryOccupancyCounter_ConcurrentNeverExceedsCapacity(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryOccupancyCounter()

	var wg sync.WaitGroup
	var admitted atomic.Int32
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Increment(ctx, "pool", 30); err == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(30), admitted.Load())
}
