package report

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ureserve/internal/models"
	"ureserve/internal/window"
)

type fakeSource struct {
	items []models.Reservation
}

func (f *fakeSource) AllReservations(_ context.Context) ([]models.Reservation, error) {
	return f.items, nil
}

type capturedSheet struct {
	name   string
	header []string
	rows   [][]interface{}
}

type fakeWriter struct {
	sheets []*capturedSheet
	saved  bool
}

func (f *fakeWriter) Sheet(name string, header []string) error {
	f.sheets = append(f.sheets, &capturedSheet{name: name, header: header})
	return nil
}

func (f *fakeWriter) Row(values ...interface{}) error {
	cur := f.sheets[len(f.sheets)-1]
	cur.rows = append(cur.rows, values)
	return nil
}

func (f *fakeWriter) Save(io.Writer) error    { f.saved = true; return nil }
func (f *fakeWriter) SaveToFile(string) error { f.saved = true; return nil }
func (f *fakeWriter) Close() error            { return nil }

func (f *fakeWriter) sheet(name string) *capturedSheet {
	for _, s := range f.sheets {
		if s.name == name {
			return s
		}
	}
	return nil
}

func TestServiceExport(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{items: []models.Reservation{
		{Code: "C-1", Type: models.TypeCubicle, Date: "2024-03-10", StartTime: "10:00", EndTime: "14:00", StudentID: "A01", FacilityName: "Cubiculo 3", Status: models.StatusConfirmed},
		{Code: "C-2", Type: models.TypeCubicle, Date: "2024-03-09", StartTime: "10:00", EndTime: "12:00", StudentID: "A02", Status: models.StatusCompleted},
		{Code: "L-1", Type: models.TypeLaboratory, Date: "not-a-date", StartTime: "10:00", EndTime: "12:00", StudentID: "A03"},
		{Code: "R-1", Type: models.TypeRestaurant, Date: "2024-03-10", StartTime: "13:00", EndTime: "14:00", StudentID: "A04"},
	}}

	fw := &fakeWriter{}
	eval := window.NewEvaluator(window.FixedClock{At: now})
	svc := NewService(src, func() SheetWriter { return fw }, eval, zerolog.Nop())

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf))
	assert.True(t, fw.saved)

	summary := fw.sheet("Resumen")
	require.NotNil(t, summary)
	assert.Equal(t, []string{"Tipo", "Total", "Activas", "Finalizadas", "Invalidas"}, summary.header)
	require.Len(t, summary.rows, 3)
	// Workbook order: cubicles, laboratories, restaurant.
	assert.Equal(t, string(models.TypeCubicle), summary.rows[0][0])
	assert.Equal(t, []interface{}{string(models.TypeCubicle), 2, 1, 1, 0}, summary.rows[0])
	assert.Equal(t, []interface{}{string(models.TypeLaboratory), 1, 0, 0, 1}, summary.rows[1])
	// Restaurant row is active at noon: fixed 23:59:59 end of day.
	assert.Equal(t, []interface{}{string(models.TypeRestaurant), 1, 1, 0, 0}, summary.rows[2])

	cubicles := fw.sheet("Cubiculos")
	require.NotNil(t, cubicles)
	require.Len(t, cubicles.rows, 2)
	assert.Equal(t, "C-1", cubicles.rows[0][0])
	assert.Equal(t, string(window.StateActive), cubicles.rows[0][7])
	assert.Equal(t, "02h 00min 00s", cubicles.rows[0][8])
	assert.Equal(t, string(window.StateExpired), cubicles.rows[1][7])
	assert.Equal(t, window.TextExpired, cubicles.rows[1][8])

	labs := fw.sheet("Laboratorios")
	require.NotNil(t, labs)
	assert.Equal(t, window.TextInvalid, labs.rows[0][8])
}

func TestServiceExport_EmptySource(t *testing.T) {
	fw := &fakeWriter{}
	svc := NewService(&fakeSource{}, func() SheetWriter { return fw },
		window.NewEvaluator(window.FixedClock{At: time.Now()}), zerolog.Nop())

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf))
	summary := fw.sheet("Resumen")
	require.NotNil(t, summary)
	assert.Empty(t, summary.rows)
}

func TestGenerateFilename(t *testing.T) {
	assert.Equal(t, "Marzo_2024.xlsx", GenerateFilename(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Diciembre_2025.xlsx", GenerateFilename(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
}
