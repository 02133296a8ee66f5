package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/battnet/internal/config"
	"github.com/Dicklesworthstone/battnet/internal/format"
	"github.com/Dicklesworthstone/battnet/internal/metrics"
	"github.com/Dicklesworthstone/battnet/internal/model"
	"github.com/Dicklesworthstone/battnet/internal/overlay"
	"github.com/Dicklesworthstone/battnet/internal/sampler"
	"github.com/Dicklesworthstone/battnet/internal/ui"
)

var version = "dev"

func main() {
	var (
		configPath string
		flagged    config.Config
	)

	rootCmd := &cobra.Command{
		Use:   "battnet",
		Short: "Battery, network and CPU overlay",
		Long: `battnet draws a small always-on overlay with battery charge, the
dominant network throughput direction and a CPU sparkline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, configPath, flagged)
			if err != nil {
				return err
			}
			return runOverlay(cmd.Context(), cfg)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	config.BindFlags(rootCmd.PersistentFlags(), &flagged)

	rootCmd.AddCommand(
		newSnapshotCmd(&configPath, &flagged),
		newVersionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logErrorCmd(*rootCmd, err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, path string, flagged config.Config) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	config.ApplyFlags(cmd.Flags(), flagged, &cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger writes JSON logs to cfg.LogFile. Without a file the logs are
// dropped, since stdout belongs to the overlay.
func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	var (
		out     io.Writer = io.Discard
		closeFn           = func() {}
	)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

func runOverlay(ctx context.Context, cfg config.Config) error {
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return err
	}

	smp := sampler.New(sampler.Options{
		Logger:          logger,
		BatteryCacheTTL: cfg.BatteryCacheTTL,
		WindowCacheTTL:  cfg.WindowCacheTTL,
	})
	intervals := overlay.Intervals{
		Battery: cfg.BatteryInterval,
		Network: cfg.NetworkInterval,
		CPU:     cfg.CPUInterval,
	}
	if cfg.HideOnFullscreen {
		intervals.Fullscreen = cfg.FullscreenInterval
	}
	ov := overlay.New(overlay.Options{
		Sampler:   smp,
		Recorder:  rec,
		Logger:    logger,
		Graph:     ui.GraphGeometry(cfg),
		Intervals: intervals,
		Samples:   cfg.Samples,
		DarkTheme: cfg.DarkTheme(),
	})
	m, err := ui.New(cfg, ov, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return ui.Run(runCtx, m)
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(runCtx, cfg.MetricsAddr, metrics.Handler(reg), logger)
		})
	}

	logger.Info("overlay started",
		"battery_interval", cfg.BatteryInterval,
		"network_interval", cfg.NetworkInterval,
		"cpu_interval", cfg.CPUInterval,
		"hide_on_fullscreen", cfg.HideOnFullscreen,
	)
	return g.Wait()
}

func newSnapshotCmd(configPath *string, flagged *config.Config) *cobra.Command {
	var (
		window time.Duration
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print one reading and exit",
		Long: `Sample battery, network and CPU once over a short window and print
the result. Useful for status bars and scripts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *configPath, *flagged)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			reading, err := takeSnapshot(cmd.Context(), sampler.New(sampler.Options{Logger: logger}), window)
			if err != nil {
				return err
			}
			if asJSON {
				return logJSONCmd(*cmd, reading)
			}
			logReadingCmd(*cmd, reading)
			return nil
		},
	}
	cmd.Flags().DurationVar(&window, "window", time.Second, "sampling window for rates")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// takeSnapshot primes the rate baselines, waits out window and reads
// everything once more. Missing network or battery data degrades to the
// same values the overlay would show.
func takeSnapshot(ctx context.Context, smp *sampler.Sampler, window time.Duration) (model.Reading, error) {
	if window < sampler.MinElapsed {
		window = sampler.MinElapsed
	}
	netErr := smp.Prime(ctx)
	if _, err := smp.ReadCPU(ctx); err != nil {
		return model.Reading{}, fmt.Errorf("read cpu: %w", err)
	}

	timer := time.NewTimer(window)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return model.Reading{}, ctx.Err()
	case <-timer.C:
	}

	cpuPct, err := smp.ReadCPU(ctx)
	if err != nil {
		return model.Reading{}, fmt.Errorf("read cpu: %w", err)
	}
	bat, err := smp.ReadBattery(ctx)
	if err != nil {
		bat = model.Unavailable()
	}

	var (
		rate  model.Throughput
		speed = format.Unavailable
		snap  model.NetworkCounterSnapshot
	)
	if netErr == nil {
		if t, ok, err := smp.Throughput(ctx); err == nil && ok {
			rate, speed = t, format.Speed(t)
		}
		if s, ok := smp.Baseline(); ok {
			snap = s
		}
	}
	return model.NewReading(time.Now(), bat, rate, speed, cpuPct, snap), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
