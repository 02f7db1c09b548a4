package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/mbarden/gopull/internal/api"
	"github.com/mbarden/gopull/internal/app"
	"github.com/mbarden/gopull/internal/downloader"
	"github.com/mbarden/gopull/internal/engine"
	"github.com/mbarden/gopull/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the transfer queue daemon with the REST API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	st, err := store.NewPersistentStore(cfg.Store.SQLitePath)
	if err != nil {
		return err
	}
	defer st.Close()

	appCtx := app.NewContext(cfg, log)
	appCtx.Store = st
	appCtx.Downloader = downloader.NewService(cfg, log)

	qm := engine.NewQueueManager(appCtx, true)
	appCtx.Queue = qm

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go qm.Start(ctx)

	e := echo.New()
	api.RegisterRoutes(e, appCtx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("Listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
