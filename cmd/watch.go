package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ureserve/internal/agenda"
	"ureserve/internal/countdown"
	"ureserve/internal/db"
	"ureserve/internal/events"
	"ureserve/internal/metrics"
	"ureserve/internal/window"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the countdown daemon: sync reservations and tick their windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, err := a.currentSession(ctx)
			if err != nil {
				return err
			}

			if a.cfg.Monitoring.HealthCheckPort == 0 {
				a.cfg.Monitoring.HealthCheckPort = 8090
			}
			go startHealthServer(ctx, a, a.cfg.Monitoring.HealthCheckPort)

			if a.cfg.Monitoring.PrometheusEnabled {
				if a.cfg.Monitoring.PrometheusPort == 0 {
					a.cfg.Monitoring.PrometheusPort = 9090
				}
				metrics.Register()
				go startMetricsServer(ctx, a.cfg.Monitoring.PrometheusPort, a.logger)
			}

			if a.cfg.Backup.Enabled {
				backup := db.NewBackupService(a.cfg.Database.Path, db.BackupConfig{
					Enabled:       true,
					StoragePath:   a.cfg.Backup.Path,
					Interval:      a.cfg.BackupInterval(),
					RetentionDays: a.cfg.Backup.RetentionDays,
				}, a.logger)
				go backup.Start(ctx)
			}

			go runCacheMaintenance(ctx, a)

			bus := events.NewBus()
			bus.Subscribe(func(tr events.Transition) {
				a.logger.Info().
					Str("code", tr.Code).
					Str("from", string(tr.From)).
					Str("to", string(tr.To)).
					Str("remaining", tr.Text).
					Msg("reservation window")
			})

			manager := countdown.NewManager(window.NewEvaluator(nil), bus.Listener())
			syncer := agenda.NewSyncer(a.client, a.db, manager, a.cfg.RefreshInterval(), a.logger)

			a.logger.Info().
				Str("student", sess.StudentID).
				Dur("refresh", a.cfg.RefreshInterval()).
				Msg("watch started")
			syncer.Run(ctx, sess)
			return nil
		},
	}
}

// runCacheMaintenance prunes rows that stopped appearing in listings
// and logs a per-type cache summary once an hour.
func runCacheMaintenance(ctx context.Context, a *app) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-7 * 24 * time.Hour)
			removed, err := a.db.PurgeStale(ctx, cutoff)
			if err != nil {
				a.logger.Warn().Err(err).Msg("cache purge failed")
				continue
			}
			counts, err := a.db.CountByType(ctx)
			if err != nil {
				a.logger.Warn().Err(err).Msg("cache count failed")
				continue
			}
			a.logger.Info().
				Int64("purged", removed).
				Interface("by_type", counts).
				Msg("cache maintenance")
		}
	}
}

func startHealthServer(ctx context.Context, a *app, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := a.db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if a.rdb != nil {
			if err := a.rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		if err := a.client.HealthCheck(ctxPing); err != nil {
			http.Error(w, "api not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
