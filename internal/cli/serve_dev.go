package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"roadmap-admin/internal/devapi"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeDevCmd(app *App) *cobra.Command {
	var (
		addr     string
		dbPath   string
		seed     bool
		events   int
		students int
	)
	cmd := &cobra.Command{
		Use:   "serve-dev",
		Short: "Run a local implementation of the admin API (SQLite backed)",
		Example: `  roadmap-admin serve-dev --seed
  roadmap-admin --api http://127.0.0.1:8089 roadmaps list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config()
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Dev.Addr
			}
			if !cmd.Flags().Changed("db") {
				dbPath = cfg.Dev.DB
			}
			log := app.logger(false).Named("devapi")

			ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repo, err := devapi.OpenRepo(ctx, dbPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = repo.Close() }()

			if err := repo.EnsureUser(ctx, cfg.User, cfg.User); err != nil {
				return writeErr(cmd, err)
			}
			if seed {
				res, err := devapi.Seed(ctx, repo, cfg.User, events, students)
				if err != nil {
					return writeErr(cmd, err)
				}
				log.Info("seeded",
					zap.String("roadmap_id", res.RoadmapID.String()),
					zap.Int("events", len(res.EventIDs)),
				)
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           devapi.NewServer(repo, log).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			log.Info("listening", zap.String("addr", addr), zap.String("db", dbPath))

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return writeErr(cmd, err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return writeErr(cmd, err)
			}
			log.Info("stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config dev_addr)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file (default from config dev_db; empty keeps data in memory)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Create a sample roadmap with events and pending submissions")
	cmd.Flags().IntVar(&events, "seed-events", 3, "Events created by --seed")
	cmd.Flags().IntVar(&students, "seed-students", 25, "Submissions per event created by --seed")
	return cmd
}
