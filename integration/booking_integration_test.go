package integration_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/booking"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/classes"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/clock"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/config"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/member"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingService(database *sqlx.DB, clk clock.Clock, events *recordingPublisher) booking.Service {
	return booking.NewService(
		booking.NewRepository(database),
		classes.NewRepository(database),
		member.NewRepository(database),
		events,
		clk,
		config.WaitlistConfig{BatchSize: 50, SweepTimeout: 10 * time.Second},
	)
}

func TestWaitlistPromotionOrder_Integration(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	clk := clock.NewFake(time.Now().UTC().Truncate(time.Microsecond))
	events := &recordingPublisher{}
	svc := newBookingService(database, clk, events)

	facilityID := createFacility(t, database, "Downtown")
	classID := createClass(t, database, facilityID, 2, clk.Now().Add(48*time.Hour))

	users := make([]int, 5)
	for i := range users {
		users[i] = 101 + i
		createMember(t, database, users[i], fmt.Sprintf("member-%d", i))
	}

	var bookings []*booking.ClassBooking
	for _, u := range users {
		clk.Advance(time.Second)
		b, err := svc.Book(ctx, u, classID)
		require.NoError(t, err)
		bookings = append(bookings, b)
	}
	assert.Equal(t, booking.StatusBooked, bookings[0].Status)
	assert.Equal(t, booking.StatusBooked, bookings[1].Status)
	for _, b := range bookings[2:] {
		assert.Equal(t, booking.StatusWaitlisted, b.Status)
	}

	_, err := svc.Book(ctx, users[0], classID)
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.AlreadyBooked})

	// Two seats free up; the two oldest waitlisted bookings take them.
	_, err = svc.Cancel(ctx, users[0], bookings[0].ID)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, users[1], bookings[1].ID)
	require.NoError(t, err)

	res, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Promoted)

	roster, err := svc.Roster(ctx, classID)
	require.NoError(t, err)
	require.Len(t, roster.Booked, 2)
	assert.Equal(t, bookings[2].ID, roster.Booked[0].ID)
	assert.Equal(t, bookings[3].ID, roster.Booked[1].ID)
	require.Len(t, roster.Waitlisted, 1)
	assert.Equal(t, bookings[4].ID, roster.Waitlisted[0].ID)

	assert.Len(t, events.Events(), 2)

	res, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Promoted)
}

func TestSweepReachesClassBehindFullBatch_Integration(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	clk := clock.NewFake(time.Now().UTC().Truncate(time.Microsecond))
	svc := booking.NewService(
		booking.NewRepository(database),
		classes.NewRepository(database),
		member.NewRepository(database),
		&recordingPublisher{},
		clk,
		config.WaitlistConfig{BatchSize: 3, SweepTimeout: 10 * time.Second},
	)

	facilityID := createFacility(t, database, "Downtown")
	for i := 0; i < 5; i++ {
		classID := createClass(t, database, facilityID, 1, clk.Now().Add(time.Duration(i+1)*time.Hour))
		createMember(t, database, 101+2*i, fmt.Sprintf("seated-%d", i))
		createMember(t, database, 102+2*i, fmt.Sprintf("queued-%d", i))
		_, err := svc.Book(ctx, 101+2*i, classID)
		require.NoError(t, err)
		_, err = svc.Book(ctx, 102+2*i, classID)
		require.NoError(t, err)
	}

	openID := createClass(t, database, facilityID, 1, clk.Now().Add(24*time.Hour))
	createMember(t, database, 500, "late")
	// Seat the member directly on the waitlist of an empty class.
	_, err := database.Exec(`
		INSERT INTO class_bookings (class_instance_id, member_id, status, booked_at)
		SELECT $1, id, 'waitlisted', $2 FROM members WHERE user_id = 500`, openID, clk.Now())
	require.NoError(t, err)

	res, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Promoted)

	roster, err := svc.Roster(ctx, openID)
	require.NoError(t, err)
	assert.Len(t, roster.Booked, 1)
	assert.Empty(t, roster.Waitlisted)
}

func TestConcurrentPromotionRespectsCapacity_Integration(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	clk := clock.NewFake(time.Now().UTC().Truncate(time.Microsecond))
	events := &recordingPublisher{}
	svc := newBookingService(database, clk, events)

	facilityID := createFacility(t, database, "Downtown")
	classID := createClass(t, database, facilityID, 1, clk.Now().Add(24*time.Hour))

	var first *booking.ClassBooking
	for i := 0; i < 4; i++ {
		createMember(t, database, 101+i, fmt.Sprintf("member-%d", i))
		clk.Advance(time.Second)
		b, err := svc.Book(ctx, 101+i, classID)
		require.NoError(t, err)
		if i == 0 {
			first = b
		}
	}
	_, err := svc.Cancel(ctx, 101, first.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	promoted := make(chan bool, 6)
	for i := 0; i < cap(promoted); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := svc.Promote(ctx, classID)
			assert.NoError(t, err)
			promoted <- ok
		}()
	}
	wg.Wait()
	close(promoted)

	count := 0
	for ok := range promoted {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count)

	roster, err := svc.Roster(ctx, classID)
	require.NoError(t, err)
	assert.Len(t, roster.Booked, 1)
	assert.Len(t, roster.Waitlisted, 2)
}
