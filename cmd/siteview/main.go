package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/csdemo/siteview/internal/config"
	"github.com/csdemo/siteview/internal/database"
	"github.com/csdemo/siteview/internal/dataset"
	"github.com/csdemo/siteview/internal/influx"
	"github.com/csdemo/siteview/internal/logging"
	"github.com/csdemo/siteview/internal/maps"
	intOtel "github.com/csdemo/siteview/internal/otel"
	"github.com/csdemo/siteview/internal/render"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// build info - can be set at build time via ldflags
var (
	Version   string = "0.1.0"
	BuildDate string = "unknown"
)

// AppName prefixes log files and telemetry
const AppName = "siteview"

// app holds the components shared by every subcommand.
type app struct {
	logger      *slog.Logger
	slogManager *logging.SlogManager
	otel        *intOtel.Provider
	zlog        zerolog.Logger
	logFile     *os.File

	registry *maps.Registry
	snapshot *dataset.Snapshot
	renderer *render.Renderer
	influx   *influx.Manager
	db       *database.Manager
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	inv, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		printUsage(stderr)
		return 2
	}
	if inv.cmd == nil {
		printUsage(stdout)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	defer a.close()
	if err := a.setup(ctx, inv.cmd, stderr); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	if err := inv.cmd.run(ctx, a, stdout); err != nil {
		a.logger.Error("Command failed", "command", inv.cmd.name, "error", err)
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func (a *app) setup(ctx context.Context, cmd *command, stderr io.Writer) error {
	if err := config.Load(viper.GetString("configDir")); err != nil {
		fmt.Fprintf(stderr, "%v, using defaults\n", err)
	}

	a.setupLogging(stderr)
	a.logger.Info("Starting up", "version", Version, "buildDate", BuildDate, "command", cmd.name)

	if err := a.setupTelemetry(ctx); err != nil {
		a.logger.Warn("OTel provider not started", "error", err)
	}

	registry, err := maps.LoadFile(config.GetMapsConfig().Path)
	if err != nil {
		return fmt.Errorf("load map registry: %w", err)
	}
	a.registry = registry

	if cmd.needs&needsDatabase != 0 || strings.EqualFold(config.GetDatasetConfig().Source, "database") && cmd.needs&needsDataset != 0 {
		if err := a.connectDatabase(ctx); err != nil {
			return err
		}
	}
	if cmd.needs&needsRenderer != 0 {
		if err := a.setupRenderer(ctx); err != nil {
			return err
		}
	}
	if cmd.needs&needsDataset != 0 {
		if err := a.loadDataset(ctx, cmd.name == "serve"); err != nil {
			return err
		}
	}
	return nil
}

// setupLogging opens the session log file. Logs go to stderr when it cannot be created.
func (a *app) setupLogging(stderr io.Writer) {
	a.slogManager = logging.NewSlogManager()

	var out io.Writer = stderr
	logsDir := viper.GetString("logsDir")
	path := logging.LogFilePath(logsDir, AppName, time.Now())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
		if f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666); err == nil {
			a.logFile = f
			out = f
		}
	}

	a.slogManager.Setup(out, viper.GetString("logLevel"), nil, a.contextAttrs)
	a.logger = a.slogManager.Logger()

	zl, err := logging.NewZerolog(out, logging.ZerologOptions{
		Level:          viper.GetString("logLevel"),
		GraylogEnabled: config.GetGraylogConfig().Enabled,
		GraylogAddress: config.GetGraylogConfig().Address,
	})
	if err != nil {
		a.logger.Warn("Graylog output disabled", "error", err)
	}
	a.zlog = zl
	if a.logFile != nil {
		a.logger.Info("Logging to file", "path", a.logFile.Name())
	}
}

func (a *app) setupTelemetry(ctx context.Context) error {
	otelCfg := config.GetOTelConfig()
	if !otelCfg.Enabled {
		return nil
	}
	var logWriter io.Writer
	if a.logFile != nil {
		logWriter = a.logFile
	}
	p, err := intOtel.New(ctx, intOtel.ConfigFrom(otelCfg, Version, logWriter))
	if err != nil {
		return err
	}
	a.otel = p

	var out io.Writer = os.Stderr
	if a.logFile != nil {
		out = a.logFile
	}
	a.slogManager.Setup(out, viper.GetString("logLevel"), p.LoggerProvider(), a.contextAttrs)
	a.logger = a.slogManager.Logger()
	a.logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
	return nil
}

// contextAttrs adds the loaded dataset to every log record.
func (a *app) contextAttrs() []slog.Attr {
	if a.snapshot == nil {
		return nil
	}
	st := a.snapshot.Status()
	if !st.Loaded {
		return nil
	}
	return []slog.Attr{slog.String("demoFile", st.DemoFile), slog.String("map", st.Map)}
}

func (a *app) connectDatabase(ctx context.Context) error {
	a.db = database.NewManager(a.zlog.With().Str("component", "database").Logger())
	if err := a.db.Connect(ctx, config.GetDBConfig()); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := a.db.Setup(); err != nil {
		return fmt.Errorf("setup database: %w", err)
	}
	return nil
}

func (a *app) setupRenderer(ctx context.Context) error {
	var observer render.Observer
	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		m := influx.NewManager(a.zlog.With().Str("component", "influx").Logger(), influxCfg)
		if err := m.Connect(ctx); err != nil {
			a.logger.Warn("Render timings will not be recorded", "error", err)
		} else {
			a.influx = m
			observer = m
		}
	}

	rc := config.GetRenderConfig()
	hc := config.GetHeatmapConfig()
	opts := render.Options{
		Weights: render.Weights{
			MinStroke:  rc.MinStroke,
			MaxStroke:  rc.MaxStroke,
			MinOpacity: rc.MinOpacity,
			MaxOpacity: rc.MaxOpacity,
		},
		Heatmap: render.HeatmapParams{
			MinSize:     hc.MinSize,
			ScaleFactor: hc.ScaleFactor,
			Ceiling:     hc.Ceiling,
		},
		Icons:    a.registry,
		Logger:   a.logger,
		Observer: observer,
	}
	r, err := render.New(opts)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	a.renderer = r
	return nil
}

// loadDataset fills the snapshot. With tolerate set, a failed source leaves
// the snapshot in its error state instead of aborting.
func (a *app) loadDataset(ctx context.Context, tolerate bool) error {
	src, err := createDatasetSource(config.GetDatasetConfig(), a.db, a.logger)
	if err != nil {
		return err
	}
	a.snapshot = dataset.NewSnapshot()

	cfg := config.GetDatasetConfig()
	loadCtx := ctx
	if cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
	}
	if err := a.snapshot.Load(loadCtx, src, a.logger); err != nil {
		if tolerate {
			a.logger.Warn("Serving without a dataset", "source", src.Name(), "error", err)
			return nil
		}
		return fmt.Errorf("load dataset: %w", err)
	}
	st := a.snapshot.Status()
	a.logger.Info("Dataset loaded", "source", st.Source, "rounds", st.TotalRounds,
		"quarantined", st.Report.Quarantined())
	return nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if a.influx != nil {
		errs = append(errs, a.influx.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.slogManager != nil {
		errs = append(errs, a.slogManager.Flush(ctx))
	}
	if a.otel != nil {
		errs = append(errs, a.otel.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil && a.logger != nil {
		a.logger.Warn("Shutdown incomplete", "error", err)
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
