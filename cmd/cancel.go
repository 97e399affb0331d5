package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ureserve/internal/models"
)

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <code>",
		Short: "Cancel a reservation by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

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

			if err := a.client.CancelReservation(ctx, sess, code); err != nil {
				return err
			}
			// Best effort; the row may not be cached yet.
			if err := a.db.SetReservationStatus(ctx, code, models.StatusCanceled); err != nil {
				a.logger.Debug().Err(err).Msg("cache status update skipped")
			}

			a.logger.Info().Str("code", code).Msg("reservation canceled")
			fmt.Printf("Reserva cancelada: %s\n", code)
			return nil
		},
	}
}
