package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mbarden/gopull/internal/domain"
	"github.com/mbarden/gopull/internal/downloader"
	"github.com/mbarden/gopull/internal/infra/config"
	"github.com/mbarden/gopull/internal/infra/logger"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	output  string
	workers int
	timeout int
)

func main() {
	root := &cobra.Command{
		Use:          "gopull [url]",
		Short:        "Segmented multi-connection file downloader",
		Args:         cobra.ExactArgs(1),
		RunE:         runDownload,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	root.Flags().StringVarP(&output, "output", "o", "", "destination path (defaults to the URL file name)")
	root.Flags().IntVarP(&workers, "workers", "n", 0, "number of parallel segment workers")
	root.Flags().IntVarP(&timeout, "timeout", "t", 0, "per-request timeout in seconds")

	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), cfg.Log.IncludeStdout)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	// Flags override config
	if workers > 0 {
		cfg.Download.Workers = workers
	}
	if timeout > 0 {
		cfg.Download.TimeoutSeconds = timeout
	}

	// Setup Signal Handling for Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rawURL := args[0]
	name := domain.DeriveName(rawURL)

	dest := output
	if dest == "" {
		dest = filepath.Join(cfg.Download.OutDir, name)
	}

	item := &domain.QueueItem{
		ID:     ksuid.New().String(),
		Name:   name,
		Status: domain.StatusPending,
		Job: &domain.TransferJob{
			URL:     rawURL,
			Dest:    dest,
			Workers: cfg.Download.Workers,
			Timeout: cfg.Download.Timeout(),
		},
	}

	svc := downloader.NewService(cfg, log)
	if err := svc.Download(ctx, item); err != nil {
		log.Error("Download failed: %v", err)
		return err
	}

	log.Info("File saved to %s", dest)
	return nil
}
