package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ureserve/internal/models"
	"ureserve/internal/session"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func sampleReservations() []models.Reservation {
	return []models.Reservation{
		{Code: "R-1", Type: models.TypeCubicle, Date: "2024-03-10", StartTime: "10:00", EndTime: "12:00", StudentID: "A01", FacilityName: "Cubiculo 3", Status: models.StatusConfirmed},
		{Code: "R-2", Type: models.TypeRestaurant, Date: "2024-03-11", StartTime: "", EndTime: "", StudentID: "A01", FacilityName: "Comedor"},
		{Code: "R-3", Type: models.TypeProjector, Date: "2024-03-09", StartTime: "08:00", EndTime: "09:00", StudentID: "A02", FacilityName: "Proyector 1", Status: models.StatusCompleted},
	}
}

func TestReplaceAndListReservations(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	require.NoError(t, d.ReplaceReservations(ctx, "A01", sampleReservations()[:2]))
	require.NoError(t, d.ReplaceReservations(ctx, "A02", sampleReservations()[2:]))

	got, err := d.ListReservations(ctx, "A01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "R-2", got[0].Code, "newest date first")
	assert.Equal(t, models.TypeRestaurant, got[0].Type)
	assert.Equal(t, models.StatusPending, got[0].Status, "empty status defaults to pending")

	// Replacing drops rows no longer in the listing.
	require.NoError(t, d.ReplaceReservations(ctx, "A01", sampleReservations()[:1]))
	got, err = d.ListReservations(ctx, "A01")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Other students' rows are untouched.
	other, err := d.ListReservations(ctx, "A02")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestSetReservationStatus(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	require.NoError(t, d.ReplaceReservations(ctx, "A01", sampleReservations()[:1]))

	require.NoError(t, d.SetReservationStatus(ctx, "R-1", models.StatusCanceled))
	got, err := d.ListReservations(ctx, "A01")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, got[0].Status)

	assert.Error(t, d.SetReservationStatus(ctx, "nope", models.StatusCanceled))
}

func TestPurgeStale(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	require.NoError(t, d.ReplaceReservations(ctx, "A01", sampleReservations()[:2]))

	// Nothing is older than a cutoff in the past.
	n, err := d.PurgeStale(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = d.PurgeStale(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSessionRoundTrip(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	s, err := d.LoadSession(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsZero())

	issued := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, d.SaveSession(ctx, session.Session{
		Token: "tok-1", StudentID: "A01", Name: "Ana", Email: "ana@example.edu", IssuedAt: issued,
	}))

	s, err = d.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", s.Token)
	assert.Equal(t, "A01", s.StudentID)
	assert.True(t, s.IssuedAt.Equal(issued))

	// Saving again overwrites the single row.
	require.NoError(t, d.SaveSession(ctx, session.Session{Token: "tok-2", StudentID: "A01", IssuedAt: issued}))
	s, err = d.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", s.Token)

	require.NoError(t, d.ClearSession(ctx))
	s, err = d.LoadSession(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsZero())
}

func TestCountByType(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	require.NoError(t, d.ReplaceReservations(ctx, "A01", sampleReservations()[:2]))
	require.NoError(t, d.ReplaceReservations(ctx, "A02", sampleReservations()[2:]))

	counts, err := d.CountByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[string(models.TypeCubicle)])
	assert.Equal(t, 1, counts[string(models.TypeRestaurant)])
	assert.Equal(t, 1, counts[string(models.TypeProjector)])
}
