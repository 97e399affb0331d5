package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ureserve/internal/api"
	"ureserve/internal/models"
	"ureserve/internal/window"
)

func newReserveCmd() *cobra.Command {
	var (
		typeFlag   string
		facilityID int64
		date       string
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Create a reservation",
		RunE: func(cmd *cobra.Command, args []string) error {
			typeCode := models.TypeCode(strings.ToUpper(typeFlag))
			switch typeCode {
			case models.TypeCubicle, models.TypeLaboratory, models.TypeProjector, models.TypeRestaurant:
			default:
				return fmt.Errorf("unknown type %q (use cubiculo, laboratorio, proyector or restaurante)", typeFlag)
			}

			// Restaurant bookings are all-day; others need a valid window.
			if typeCode == models.TypeRestaurant {
				if !window.ParseAllDay(date).Valid {
					return fmt.Errorf("invalid date %q", date)
				}
			} else if !window.Parse(date, start, end).Valid {
				return fmt.Errorf("invalid window %q %q-%q", date, start, end)
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			sess, err := a.currentSession(ctx)
			if err != nil {
				return err
			}

			resp, err := a.client.CreateReservation(ctx, sess, api.CreateReservationRequest{
				Type:       typeCode,
				FacilityID: facilityID,
				Date:       date,
				StartTime:  start,
				EndTime:    end,
			})
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("reservation rejected: %s", resp.Error)
			}

			a.logger.Info().Str("code", resp.Code).Str("type", string(typeCode)).Msg("reservation created")
			fmt.Printf("Reserva creada: %s\n", resp.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "facility type: cubiculo, laboratorio, proyector, restaurante")
	cmd.Flags().Int64Var(&facilityID, "facility", 0, "facility id")
	cmd.Flags().StringVar(&date, "date", "", "date (e.g. 2024-03-10)")
	cmd.Flags().StringVar(&start, "start", "", "start time (e.g. 10:00 or 10:00 AM)")
	cmd.Flags().StringVar(&end, "end", "", "end time")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("facility")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
