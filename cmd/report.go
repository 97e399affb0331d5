package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ureserve/internal/report"
	"ureserve/internal/window"
)

func newReportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export an Excel report of cached reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if out == "" {
				if err := os.MkdirAll(a.cfg.Report.OutputDir, 0o755); err != nil {
					return err
				}
				out = filepath.Join(a.cfg.Report.OutputDir, report.GenerateFilename(time.Now()))
			}

			svc := report.NewService(a.db, nil, window.NewEvaluator(nil), a.logger)
			if err := svc.ExportToFile(cmd.Context(), out); err != nil {
				return err
			}

			fmt.Printf("Reporte generado: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output path (defaults to <report.output_dir>/<Mes_Año>.xlsx)")
	return cmd
}
