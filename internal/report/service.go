// Package report exports administrative reservation reports as Excel
// workbooks: a summary sheet plus one sheet per facility type, with
// each row classified through the window evaluator.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"ureserve/internal/metrics"
	"ureserve/internal/models"
	"ureserve/internal/window"
)

// Source provides the reservation rows to report on. The local cache
// database satisfies this, so reports work offline.
type Source interface {
	AllReservations(ctx context.Context) ([]models.Reservation, error)
}

// Service builds reservation reports.
type Service struct {
	source Source
	writer func() SheetWriter
	eval   *window.Evaluator
	logger zerolog.Logger
}

// NewService creates a report service. A nil writer factory defaults
// to the Excel writer.
func NewService(source Source, writerFactory func() SheetWriter, eval *window.Evaluator, logger zerolog.Logger) *Service {
	if writerFactory == nil {
		writerFactory = NewExcelWriter
	}
	if eval == nil {
		eval = window.NewEvaluator(nil)
	}
	return &Service{
		source: source,
		writer: writerFactory,
		eval:   eval,
		logger: logger,
	}
}

// Sheet names per facility type, plus the leading summary sheet.
const summarySheet = "Resumen"

var typeSheets = map[models.TypeCode]string{
	models.TypeCubicle:    "Cubiculos",
	models.TypeLaboratory: "Laboratorios",
	models.TypeProjector:  "Proyectores",
	models.TypeRestaurant: "Restaurante",
}

// typeOrder fixes sheet ordering in the workbook.
var typeOrder = []models.TypeCode{
	models.TypeCubicle,
	models.TypeLaboratory,
	models.TypeProjector,
	models.TypeRestaurant,
}

// Export writes the full report to w.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	sw, err := s.build(ctx)
	if err != nil {
		return err
	}
	defer sw.Close()
	if err := sw.Save(w); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	metrics.IncReportExported()
	return nil
}

// ExportToFile writes the full report to disk.
func (s *Service) ExportToFile(ctx context.Context, path string) error {
	sw, err := s.build(ctx)
	if err != nil {
		return err
	}
	defer sw.Close()
	if err := sw.SaveToFile(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	metrics.IncReportExported()
	s.logger.Info().Str("path", path).Msg("report exported")
	return nil
}

type typeStats struct {
	total   int
	active  int
	expired int
	invalid int
}

func (s *Service) build(ctx context.Context) (SheetWriter, error) {
	reservations, err := s.source.AllReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}

	now := s.eval.Now()
	byType := make(map[models.TypeCode][]models.Reservation)
	stats := make(map[models.TypeCode]*typeStats)

	for _, r := range reservations {
		typ := r.NormalizedType()
		byType[typ] = append(byType[typ], r)

		st := stats[typ]
		if st == nil {
			st = &typeStats{}
			stats[typ] = st
		}
		st.total++
		switch window.EvaluateAt(window.For(&r), now).State {
		case window.StateActive:
			st.active++
		case window.StateExpired:
			st.expired++
		case window.StateInvalid:
			st.invalid++
		}
	}

	sw := s.writer()

	if err := sw.Sheet(summarySheet, []string{"Tipo", "Total", "Activas", "Finalizadas", "Invalidas"}); err != nil {
		return nil, err
	}
	for _, typ := range orderedTypes(stats) {
		st := stats[typ]
		if err := sw.Row(string(typ), st.total, st.active, st.expired, st.invalid); err != nil {
			return nil, err
		}
	}

	header := []string{"Codigo", "Matricula", "Recurso", "Fecha", "Inicio", "Fin", "Estado", "Ventana", "Restante"}
	for _, typ := range orderedTypes(byType) {
		name, ok := typeSheets[typ]
		if !ok {
			name = string(typ)
		}
		if err := sw.Sheet(name, header); err != nil {
			return nil, err
		}
		for _, r := range byType[typ] {
			res := window.EvaluateAt(window.For(&r), now)
			if err := sw.Row(
				r.Code, r.StudentID, r.FacilityName,
				r.Date, r.StartTime, r.EndTime,
				r.Status, string(res.State), res.Text,
			); err != nil {
				return nil, err
			}
		}
	}

	return sw, nil
}

// orderedTypes returns the keys of m in workbook order, with unknown
// type codes sorted last.
func orderedTypes[M any](m map[models.TypeCode]M) []models.TypeCode {
	known := make(map[models.TypeCode]bool, len(typeOrder))
	var out []models.TypeCode
	for _, typ := range typeOrder {
		known[typ] = true
		if _, ok := m[typ]; ok {
			out = append(out, typ)
		}
	}
	var rest []models.TypeCode
	for typ := range m {
		if !known[typ] {
			rest = append(rest, typ)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}

// GenerateFilename creates a report filename like "Marzo_2024.xlsx".
func GenerateFilename(t time.Time) string {
	return fmt.Sprintf("%s_%d.xlsx", monthNames[t.Month()], t.Year())
}

var monthNames = map[time.Month]string{
	time.January:   "Enero",
	time.February:  "Febrero",
	time.March:     "Marzo",
	time.April:     "Abril",
	time.May:       "Mayo",
	time.June:      "Junio",
	time.July:      "Julio",
	time.August:    "Agosto",
	time.September: "Septiembre",
	time.October:   "Octubre",
	time.November:  "Noviembre",
	time.December:  "Diciembre",
}
