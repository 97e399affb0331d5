package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ureserve/internal/models"
	"ureserve/internal/window"
)

func newListCmd() *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reservations with their remaining time",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			var items []models.Reservation
			if cached {
				items, err = a.db.ListReservations(ctx, sess.StudentID)
			} else {
				items, err = a.client.ListReservations(ctx, sess)
				if err != nil {
					a.logger.Warn().Err(err).Msg("listing fetch failed, using cache")
					items, err = a.db.ListReservations(ctx, sess.StudentID)
				} else if cacheErr := a.db.ReplaceReservations(ctx, sess.StudentID, items); cacheErr != nil {
					a.logger.Warn().Err(cacheErr).Msg("cache write failed")
				}
			}
			if err != nil {
				return err
			}

			if len(items) == 0 {
				fmt.Println("Sin reservas.")
				return nil
			}

			eval := window.NewEvaluator(nil)
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODIGO\tTIPO\tRECURSO\tFECHA\tHORARIO\tRESTANTE")
			for i := range items {
				r := &items[i]
				res := eval.Evaluate(r)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s-%s\t%s\n",
					r.Code, r.NormalizedType(), r.FacilityName,
					r.Date, r.StartTime, r.EndTime, res.Text)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "list from the local cache without hitting the API")
	return cmd
}
