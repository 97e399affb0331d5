package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the reservation service and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("URESERVE_PASSWORD")
			}
			if email == "" || password == "" {
				return fmt.Errorf("provide --email and --password (or URESERVE_PASSWORD)")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			sess, err := a.client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := a.db.SaveSession(ctx, sess); err != nil {
				return err
			}

			a.logger.Info().Str("student", sess.StudentID).Msg("logged in")
			fmt.Printf("Sesión iniciada: %s (%s)\n", sess.Name, sess.StudentID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "institutional email")
	cmd.Flags().StringVar(&password, "password", "", "password (prefer URESERVE_PASSWORD)")
	return cmd
}
