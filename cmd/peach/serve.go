package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arin-jaff/peach-data-tool/internal/config"
	"github.com/arin-jaff/peach-data-tool/internal/logging"
	"github.com/arin-jaff/peach-data-tool/internal/sample"
	"github.com/arin-jaff/peach-data-tool/internal/server"
	"github.com/arin-jaff/peach-data-tool/internal/store"
)

const (
	defaultServeAddr = ":8000"
	shutdownTimeout  = 5 * time.Second
)

var (
	serveAddr        string
	serveDB          string
	serveCORSOrigins []string
	serveDemo        bool
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local replay API backed by SQLite",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultServeAddr, "listen address")
	cmd.Flags().StringVar(&serveDB, "db", config.DefaultDBPath(), "SQLite database path")
	cmd.Flags().StringSliceVar(&serveCORSOrigins, "cors-origins", nil, "allowed CORS origins")
	cmd.Flags().BoolVar(&serveDemo, "demo", false, "seed a demo session when the database is empty")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
	applyStringConfig(cmd, "db", &serveDB, fileCfg.Serve.DB)
	if !cmd.Flags().Changed("cors-origins") && len(fileCfg.Serve.CORSOrigins) > 0 {
		serveCORSOrigins = fileCfg.Serve.CORSOrigins
	}

	log := s.logger(os.Stderr)
	if err := ensureDir(serveDB); err != nil {
		return err
	}
	st, err := store.Open(serveDB)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Errorf("failed to close store: %v", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveDemo {
		if err := seedDemo(ctx, st, log); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           server.New(st, server.Options{CORSOrigins: serveCORSOrigins, Logger: log}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("listening on %s (db %s)", serveAddr, serveDB)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func seedDemo(ctx context.Context, st *store.Store, log *logging.Logger) error {
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) > 0 {
		log.Debugf("database has %d sessions, skipping demo seed", len(sessions))
		return nil
	}
	res, err := st.ImportBundle(ctx, sample.Bundle(sample.Options{Seats: 8, Pieces: 3, Strokes: 40}), "")
	if err != nil {
		return fmt.Errorf("failed to seed demo session: %w", err)
	}
	log.Infof("seeded demo session %q (%s)", res.SessionName, res.SessionID)
	return nil
}
